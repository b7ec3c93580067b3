package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opsdesk/triage/pkg/models"
)

// UpsertIssue inserts or replaces an issue record
func (s *Store) UpsertIssue(issue *models.Issue) error {
	var customFields sql.NullString
	if len(issue.CustomFields) > 0 {
		data, err := json.Marshal(issue.CustomFields)
		if err != nil {
			return fmt.Errorf("failed to encode custom fields: %w", err)
		}
		customFields = sql.NullString{String: string(data), Valid: true}
	}

	query := `
		INSERT INTO issues (
			key, summary, description, status, type, priority,
			assignee, reporter, created_at, updated_at, custom_fields
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			summary = excluded.summary,
			description = excluded.description,
			status = excluded.status,
			type = excluded.type,
			priority = excluded.priority,
			assignee = excluded.assignee,
			reporter = excluded.reporter,
			updated_at = excluded.updated_at,
			custom_fields = excluded.custom_fields
	`

	_, err := s.db.Exec(query,
		issue.Key, issue.Summary, issue.Description, issue.Status,
		issue.Type, issue.Priority, issue.Assignee, issue.Reporter,
		issue.CreatedAt.UTC().Format(time.RFC3339),
		issue.UpdatedAt.UTC().Format(time.RFC3339),
		customFields,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert issue %s: %w", issue.Key, err)
	}

	return nil
}

// GetIssue retrieves an issue by key.
// Returns (nil, nil) when the issue does not exist.
func (s *Store) GetIssue(key string) (*models.Issue, error) {
	row := s.db.QueryRow(issueSelect+" WHERE key = ?", key)

	issue, err := scanIssue(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get issue %s: %w", key, err)
	}
	return issue, nil
}

// ListUnindexed returns issues lacking a live embedding of the given kind,
// oldest first, up to limit. limit <= 0 means no limit.
func (s *Store) ListUnindexed(kind string, limit int) ([]*models.Issue, error) {
	query := issueSelect + `
		WHERE key NOT IN (SELECT issue_key FROM embeddings WHERE kind = ?)
		ORDER BY created_at ASC`
	args := []any{kind}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list unindexed issues: %w", err)
	}
	defer rows.Close()

	var issues []*models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, issue)
	}

	return issues, rows.Err()
}

// CountIssues returns the total number of issue records
func (s *Store) CountIssues() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM issues").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count issues: %w", err)
	}
	return n, nil
}

const issueSelect = `
	SELECT key, summary, description, status, type, priority,
		assignee, reporter, created_at, updated_at, custom_fields
	FROM issues`

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanIssue(row scanner) (*models.Issue, error) {
	var issue models.Issue
	var createdAt, updatedAt string
	var customFields sql.NullString

	err := row.Scan(
		&issue.Key, &issue.Summary, &issue.Description, &issue.Status,
		&issue.Type, &issue.Priority, &issue.Assignee, &issue.Reporter,
		&createdAt, &updatedAt, &customFields,
	)
	if err != nil {
		return nil, err
	}

	issue.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	issue.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	if customFields.Valid && customFields.String != "" {
		if err := json.Unmarshal([]byte(customFields.String), &issue.CustomFields); err != nil {
			return nil, fmt.Errorf("failed to decode custom fields: %w", err)
		}
	}

	return &issue, nil
}
