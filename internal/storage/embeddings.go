package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// CorpusInfo describes the embedding corpus for one kind
type CorpusInfo struct {
	ModelVersion string
	Dimensions   int
	Count        int
}

// MarkIndexed records that an issue carries a live embedding of the given
// kind. Replaces any previous row for the (issue, kind) pair.
func (s *Store) MarkIndexed(issueKey, kind, modelVersion string, dimensions int) error {
	query := `
		INSERT INTO embeddings (issue_key, kind, model_version, dimensions, indexed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(issue_key, kind) DO UPDATE SET
			model_version = excluded.model_version,
			dimensions = excluded.dimensions,
			indexed_at = excluded.indexed_at
	`

	_, err := s.db.Exec(query, issueKey, kind, modelVersion, dimensions,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to mark %s indexed: %w", issueKey, err)
	}

	return nil
}

// Corpus returns the model version, dimensionality, and size of the
// embedding corpus for one kind. An empty corpus returns (nil, nil).
// A corpus holding more than one model version or dimensionality is
// corrupt and reported as an error rather than averaged over.
func (s *Store) Corpus(kind string) (*CorpusInfo, error) {
	rows, err := s.db.Query(`
		SELECT model_version, dimensions, COUNT(*)
		FROM embeddings
		WHERE kind = ?
		GROUP BY model_version, dimensions`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect corpus: %w", err)
	}
	defer rows.Close()

	var info *CorpusInfo
	for rows.Next() {
		var model string
		var dims, count int
		if err := rows.Scan(&model, &dims, &count); err != nil {
			return nil, fmt.Errorf("failed to scan corpus row: %w", err)
		}
		if info != nil {
			return nil, fmt.Errorf("corpus for kind %q mixes models (%s/%dd and %s/%dd)",
				kind, info.ModelVersion, info.Dimensions, model, dims)
		}
		info = &CorpusInfo{ModelVersion: model, Dimensions: dims, Count: count}
	}

	return info, rows.Err()
}

// IsIndexed reports whether an issue carries a live embedding of a kind
func (s *Store) IsIndexed(issueKey, kind string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		"SELECT 1 FROM embeddings WHERE issue_key = ? AND kind = ?",
		issueKey, kind).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check embedding: %w", err)
	}
	return true, nil
}

// DeleteEmbedding drops the bookkeeping row for one (issue, kind) pair,
// making the issue eligible for reindexing.
func (s *Store) DeleteEmbedding(issueKey, kind string) error {
	_, err := s.db.Exec(
		"DELETE FROM embeddings WHERE issue_key = ? AND kind = ?",
		issueKey, kind)
	if err != nil {
		return fmt.Errorf("failed to delete embedding row: %w", err)
	}
	return nil
}

// ClearEmbeddings drops all bookkeeping rows across every kind. Pairs
// with dropping the vector collection when rebuilding the corpus, since
// one collection holds the vectors for all kinds.
func (s *Store) ClearEmbeddings() error {
	if _, err := s.db.Exec("DELETE FROM embeddings"); err != nil {
		return fmt.Errorf("failed to clear embedding rows: %w", err)
	}
	return nil
}
