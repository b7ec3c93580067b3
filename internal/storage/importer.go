package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/opsdesk/triage/pkg/models"
)

// coreColumns are recognized issue fields in a CSV export. Any other
// header becomes a custom field keyed by its header name.
var coreColumns = map[string]bool{
	"key": true, "summary": true, "description": true, "status": true,
	"type": true, "priority": true, "assignee": true, "reporter": true,
	"created_at": true, "updated_at": true,
}

// ImportCSV loads issue records from a CSV export into the store.
// The first row is a header. Rows without a key are skipped and logged.
// Returns the number of rows imported.
func (s *Store) ImportCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.ToLower(header[i]))
	}

	imported := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		issue := recordToIssue(header, record)
		if issue.Key == "" {
			log.Printf("skipping CSV line %d: no issue key", line)
			continue
		}

		if err := s.UpsertIssue(issue); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

// recordToIssue maps one CSV row onto an Issue by header name
func recordToIssue(header, record []string) *models.Issue {
	issue := &models.Issue{}

	for i, name := range header {
		if i >= len(record) {
			break
		}
		value := strings.TrimSpace(record[i])

		switch name {
		case "key":
			issue.Key = value
		case "summary":
			issue.Summary = value
		case "description":
			issue.Description = value
		case "status":
			issue.Status = value
		case "type":
			issue.Type = value
		case "priority":
			issue.Priority = value
		case "assignee":
			issue.Assignee = value
		case "reporter":
			issue.Reporter = value
		case "created_at":
			issue.CreatedAt = parseTimestamp(value)
		case "updated_at":
			issue.UpdatedAt = parseTimestamp(value)
		default:
			if value != "" {
				if issue.CustomFields == nil {
					issue.CustomFields = make(map[string]string)
				}
				issue.CustomFields[canonicalFieldName(name)] = value
			}
		}
	}

	if issue.CreatedAt.IsZero() {
		issue.CreatedAt = time.Now().UTC()
	}
	if issue.UpdatedAt.IsZero() {
		issue.UpdatedAt = issue.CreatedAt
	}

	return issue
}

// canonicalFieldName title-cases a lowered header name ("region" -> "Region")
// so rule predicates can read exports and API payloads under one key.
func canonicalFieldName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// parseTimestamp accepts RFC3339 or date-only values
func parseTimestamp(value string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
