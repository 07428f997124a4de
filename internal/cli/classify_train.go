package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/pubsearch/internal/classifier"

	"github.com/spf13/cobra"
)

var classifyTrainCmd = &cobra.Command{
	Use:   "classify-train",
	Short: "Train the short-text topic classifier",
	Long: `Reads a labeled corpus ({"text": ..., "label": ...} pairs), trains the
Naive Bayes classifier over TF-IDF features, logs held-out accuracy, and
persists the fitted model.

Example:

  pubsearch classify-train --corpus labeled.json --out classifier.bin`,
	RunE: runClassifyTrain,
}

func init() {
	classifyTrainCmd.Flags().String("corpus", "", "Path to the labeled corpus JSON file (required)")
	classifyTrainCmd.Flags().String("out", "", "Path to write the trained classifier (required)")
	_ = classifyTrainCmd.MarkFlagRequired("corpus")
	_ = classifyTrainCmd.MarkFlagRequired("out")
}

// labeledExample is one training row: free text and its ground-truth
// category label.
type labeledExample struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

func runClassifyTrain(cmd *cobra.Command, args []string) error {
	corpusPath, _ := cmd.Flags().GetString("corpus")
	out, _ := cmd.Flags().GetString("out")

	raw, err := os.ReadFile(corpusPath)
	if err != nil {
		return fmt.Errorf("reading labeled corpus: %w", err)
	}
	var examples []labeledExample
	if err := json.Unmarshal(raw, &examples); err != nil {
		return fmt.Errorf("parsing labeled corpus: %w", err)
	}

	texts := make([]string, len(examples))
	labels := make([]string, len(examples))
	for i, e := range examples {
		texts[i] = e.Text
		labels[i] = e.Label
	}

	model, err := classifier.Train(texts, labels)
	if err != nil {
		return fmt.Errorf("training classifier: %w", err)
	}
	if err := model.Save(out); err != nil {
		return fmt.Errorf("saving classifier: %w", err)
	}

	fmt.Printf("Trained classifier over %d example(s), %d label(s)\n", len(texts), len(model.Labels))
	fmt.Printf("Wrote classifier to %s\n", out)
	return nil
}
