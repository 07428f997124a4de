// Package textproc implements the deterministic text-processing pipeline
// shared by the indexer, the query planner, and the classifier: lowercase,
// tokenize, drop non-alphabetic tokens, drop English stopwords, and reduce
// the remainder to Porter stems.
package textproc

import (
	"strings"

	"github.com/kljensen/snowball"
)

// Process runs the full pipeline over text and returns the resulting term
// sequence in original order. It is pure and deterministic: the same input
// always yields the same output, and running it again on the joined output
// yields the same tokens back (every stem is already lowercase, alphabetic,
// and not a stopword).
func Process(text string) []string {
	lower := strings.ToLower(text)
	raw := strings.FieldsFunc(lower, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})

	terms := make([]string, 0, len(raw))
	for _, tok := range raw {
		if strings.ContainsAny(tok, "0123456789") || stopWords[tok] {
			continue
		}
		stemmed, err := snowball.Stem(tok, "english", true)
		if err != nil {
			// snowball only fails on unsupported languages; "english" is
			// always supported, so fall back to the raw token defensively.
			stemmed = tok
		}
		terms = append(terms, stemmed)
	}
	return terms
}

// stopWords mirrors NLTK's English stopword list, the set used by the
// original Python text processor this pipeline is modeled on.
var stopWords = map[string]bool{
	"i": true, "me": true, "my": true, "myself": true, "we": true, "our": true,
	"ours": true, "ourselves": true, "you": true, "youre": true, "youve": true,
	"youll": true, "youd": true, "your": true, "yours": true, "yourself": true,
	"yourselves": true, "he": true, "him": true, "his": true, "himself": true,
	"she": true, "shes": true, "her": true, "hers": true, "herself": true,
	"it": true, "its": true, "itself": true, "they": true, "them": true,
	"their": true, "theirs": true, "themselves": true, "what": true,
	"which": true, "who": true, "whom": true, "this": true, "that": true,
	"thatll": true, "these": true, "those": true, "am": true, "is": true,
	"are": true, "was": true, "were": true, "be": true, "been": true,
	"being": true, "have": true, "has": true, "had": true, "having": true,
	"do": true, "does": true, "did": true, "doing": true, "a": true,
	"an": true, "the": true, "and": true, "but": true, "if": true, "or": true,
	"because": true, "as": true, "until": true, "while": true, "of": true,
	"at": true, "by": true, "for": true, "with": true, "about": true,
	"against": true, "between": true, "into": true, "through": true,
	"during": true, "before": true, "after": true, "above": true,
	"below": true, "to": true, "from": true, "up": true, "down": true,
	"in": true, "out": true, "on": true, "off": true, "over": true,
	"under": true, "again": true, "further": true, "then": true,
	"once": true, "here": true, "there": true, "when": true, "where": true,
	"why": true, "how": true, "all": true, "any": true, "both": true,
	"each": true, "few": true, "more": true, "most": true, "other": true,
	"some": true, "such": true, "no": true, "nor": true, "not": true,
	"only": true, "own": true, "same": true, "so": true, "than": true,
	"too": true, "very": true, "s": true, "t": true, "can": true,
	"will": true, "just": true, "don": true, "dont": true, "should": true,
	"shouldve": true, "now": true, "d": true, "ll": true, "m": true,
	"o": true, "re": true, "ve": true, "y": true, "ain": true, "aren": true,
	"arent": true, "couldn": true, "couldnt": true, "didn": true,
	"didnt": true, "doesn": true, "doesnt": true, "hadn": true,
	"hadnt": true, "hasn": true, "hasnt": true, "haven": true,
	"havent": true, "isn": true, "isnt": true, "ma": true, "mightn": true,
	"mightnt": true, "mustn": true, "mustnt": true, "needn": true,
	"neednt": true, "shan": true, "shant": true, "shouldn": true,
	"shouldnt": true, "wasn": true, "wasnt": true, "weren": true,
	"werent": true, "won": true, "wont": true, "wouldn": true,
	"wouldnt": true,
}
