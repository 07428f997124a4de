package textproc

import (
	"reflect"
	"testing"
)

func TestProcessSampleSentence(t *testing.T) {
	got := Process("This is a sample text about Information Retrieval, showing tokenization and stemming.")
	want := []string{"sampl", "text", "inform", "retriev", "show", "token", "stem"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Process() = %v, want %v", got, want)
	}
}

func TestProcessDropsDigitsAndPunctuation(t *testing.T) {
	got := Process("CO2 levels rose 42% in 2020!")
	for _, tok := range got {
		for _, r := range tok {
			if r < 'a' || r > 'z' {
				t.Fatalf("Process() produced non-alphabetic token %q", tok)
			}
		}
	}
}

func TestProcessEmptyString(t *testing.T) {
	got := Process("")
	if len(got) != 0 {
		t.Errorf("Process(\"\") = %v, want empty", got)
	}
}

func TestProcessIsIdempotentOnRejoinedOutput(t *testing.T) {
	first := Process("Neural networks for distributed systems research")
	rejoined := ""
	for i, tok := range first {
		if i > 0 {
			rejoined += " "
		}
		rejoined += tok
	}
	second := Process(rejoined)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Process() not idempotent: first=%v second=%v", first, second)
	}
}

func TestProcessRemovesStopwords(t *testing.T) {
	got := Process("the quick brown fox and the lazy dog")
	for _, tok := range got {
		if stopWords[tok] {
			t.Errorf("Process() left stopword %q in output", tok)
		}
	}
}
