package validation

import "testing"

func TestValidateSearchQueryTooShort(t *testing.T) {
	if _, err := ValidateSearchQuery("ai"); err == nil {
		t.Error("ValidateSearchQuery(\"ai\") = nil error, want error")
	}
}

func TestValidateSearchQueryOK(t *testing.T) {
	got, err := ValidateSearchQuery("  neural   networks  ")
	if err != nil {
		t.Fatalf("ValidateSearchQuery() error = %v", err)
	}
	if got != "neural networks" {
		t.Errorf("ValidateSearchQuery() = %q, want %q", got, "neural networks")
	}
}

func TestValidateSearchQueryPreservesQuotes(t *testing.T) {
	got, err := ValidateSearchQuery(`"risk management"`)
	if err != nil {
		t.Fatalf("ValidateSearchQuery() error = %v", err)
	}
	if got != `"risk management"` {
		t.Errorf("ValidateSearchQuery() = %q, want quotes preserved", got)
	}
}

func TestValidateFieldRejectsUnknown(t *testing.T) {
	if err := ValidateField("keywords"); err == nil {
		t.Error("ValidateField(\"keywords\") = nil error, want error")
	}
}

func TestValidateFieldAcceptsKnown(t *testing.T) {
	for _, f := range []string{"title", "author", "abstract"} {
		if err := ValidateField(f); err != nil {
			t.Errorf("ValidateField(%q) error = %v", f, err)
		}
	}
}
