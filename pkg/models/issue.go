package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Issue represents a support issue record with its metadata.
// Issues are owned by the ingestion side; the triage core only reads them.
type Issue struct {
	Key          string            `json:"key"`
	Summary      string            `json:"summary"`
	Description  string            `json:"description"`
	Status       string            `json:"status"`
	Type         string            `json:"type"`
	Priority     string            `json:"priority"`
	Assignee     string            `json:"assignee,omitempty"`
	Reporter     string            `json:"reporter,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	CustomFields map[string]string `json:"custom_fields,omitempty"`
	Analysis     *AnalysisResult   `json:"analysis,omitempty"`
}

// CustomField reads a named custom field. A missing key is reported
// as ok=false, never as an error; rule predicates read defensively.
func (i *Issue) CustomField(name string) (string, bool) {
	if i.CustomFields == nil {
		return "", false
	}
	v, ok := i.CustomFields[name]
	return v, ok
}

// UUID generates a deterministic point ID for an (issue, embedding kind) pair
func (i *Issue) UUID(kind string) string {
	return EmbeddingUUID(i.Key, kind)
}

// TextHash returns a SHA256 hash of summary+description for change detection
func (i *Issue) TextHash() string {
	h := sha256.Sum256([]byte(i.Summary + "\n" + i.Description))
	return hex.EncodeToString(h[:])
}

// EmbeddingUUID generates a deterministic UUID from issue key and embedding
// kind. Upserting under this ID is what guarantees at most one live vector
// per (issue, kind) pair.
func EmbeddingUUID(key, kind string) string {
	data := fmt.Sprintf("%s#%s", key, kind)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(data)).String()
}
