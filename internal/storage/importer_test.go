package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStore_ImportCSV(t *testing.T) {
	store := newTestStore(t)

	csvContent := `key,summary,description,status,type,priority,region,created_at
HELP-1,Login broken,500 on submit,Open,Bug,High,EU,2025-06-01T12:00:00Z
HELP-2,Add tag,Please tag the new site,Open,Task,Low,US,2025-06-02
,missing key row,should be skipped,Open,Bug,Low,,
HELP-3,Slow reports,Dashboard takes 40s,Open,Bug,Medium,,2025-06-03T08:00:00Z
`

	path := filepath.Join(t.TempDir(), "issues.csv")
	if err := os.WriteFile(path, []byte(csvContent), 0644); err != nil {
		t.Fatalf("failed to write CSV: %v", err)
	}

	imported, err := store.ImportCSV(path)
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}
	if imported != 3 {
		t.Errorf("imported = %d, want 3", imported)
	}

	issue, err := store.GetIssue("HELP-1")
	if err != nil || issue == nil {
		t.Fatalf("GetIssue(HELP-1) = %v, %v", issue, err)
	}
	if issue.Summary != "Login broken" {
		t.Errorf("Summary = %q", issue.Summary)
	}
	if issue.Priority != "High" {
		t.Errorf("Priority = %q", issue.Priority)
	}

	// Unrecognized columns land in custom fields under a canonical name
	if region, ok := issue.CustomField("Region"); !ok || region != "EU" {
		t.Errorf("CustomField(Region) = %q, %v, want EU, true", region, ok)
	}

	// Date-only timestamps parse
	issue2, _ := store.GetIssue("HELP-2")
	if issue2 == nil || issue2.CreatedAt.IsZero() {
		t.Errorf("HELP-2 created_at not parsed: %+v", issue2)
	}
}

func TestStore_ImportCSV_Reimport(t *testing.T) {
	store := newTestStore(t)

	csvContent := `key,summary
HELP-1,First version
`
	path := filepath.Join(t.TempDir(), "issues.csv")
	os.WriteFile(path, []byte(csvContent), 0644)

	if _, err := store.ImportCSV(path); err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}
	if _, err := store.ImportCSV(path); err != nil {
		t.Fatalf("ImportCSV() second run error = %v", err)
	}

	count, _ := store.CountIssues()
	if count != 1 {
		t.Errorf("count after reimport = %d, want 1", count)
	}
}
