package models

import (
	"testing"
)

func TestEmbeddingUUID(t *testing.T) {
	tests := []struct {
		key  string
		kind string
	}{
		{"HELP-123", "full_context"},
		{"OPS-9", "full_context"},
		{"HELP-123", "summary_only"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"/"+tt.kind, func(t *testing.T) {
			// UUID should be deterministic
			uuid1 := EmbeddingUUID(tt.key, tt.kind)
			uuid2 := EmbeddingUUID(tt.key, tt.kind)

			if uuid1 != uuid2 {
				t.Errorf("EmbeddingUUID not deterministic: %v != %v", uuid1, uuid2)
			}

			if len(uuid1) != 36 {
				t.Errorf("EmbeddingUUID invalid length: %d", len(uuid1))
			}
		})
	}

	// Distinct kinds for the same issue must map to distinct points
	if EmbeddingUUID("HELP-123", "full_context") == EmbeddingUUID("HELP-123", "summary_only") {
		t.Errorf("different kinds produced the same UUID")
	}
}

func TestIssue_CustomField(t *testing.T) {
	issue := &Issue{
		CustomFields: map[string]string{"Region": "EU"},
	}

	if v, ok := issue.CustomField("Region"); !ok || v != "EU" {
		t.Errorf("CustomField(Region) = %q, %v, want EU, true", v, ok)
	}

	if _, ok := issue.CustomField("Missing"); ok {
		t.Errorf("CustomField(Missing) reported ok for absent key")
	}

	// Nil map must behave like an empty one
	empty := &Issue{}
	if _, ok := empty.CustomField("Region"); ok {
		t.Errorf("CustomField on nil map reported ok")
	}
}

func TestIssue_TextHash(t *testing.T) {
	issue := &Issue{Summary: "Login fails", Description: "500 on submit"}

	hash1 := issue.TextHash()
	hash2 := issue.TextHash()

	if hash1 != hash2 {
		t.Errorf("TextHash not deterministic")
	}

	if len(hash1) != 64 {
		t.Errorf("TextHash invalid length: %d", len(hash1))
	}

	issue.Description = "timeout on submit"
	if hash1 == issue.TextHash() {
		t.Errorf("different text produced same hash")
	}
}

func TestFallbackAnalysis(t *testing.T) {
	a := FallbackAnalysis()

	if !a.Failed() {
		t.Errorf("Failed() = false for fallback result")
	}
	if a.Confidence != 0.0 {
		t.Errorf("Confidence = %v, want 0.0", a.Confidence)
	}
	if a.RootCause != FailureRootCause {
		t.Errorf("RootCause = %q, want %q", a.RootCause, FailureRootCause)
	}

	// No required field may be empty
	for name, v := range map[string]string{
		"Summary":        a.Summary,
		"Category":       a.Category,
		"Urgency":        a.Urgency,
		"RequiredAction": a.RequiredAction,
		"SuggestedTeam":  a.SuggestedTeam,
	} {
		if v == "" {
			t.Errorf("fallback %s is empty", name)
		}
	}
}
