package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrEmptyQuery is returned for a report query with no statement left
var ErrEmptyQuery = errors.New("empty report query")

// SalesStore reads call transcripts and runs agent-generated report SQL
type SalesStore struct {
	db *gorm.DB
}

func NewSalesStore(db *gorm.DB) *SalesStore {
	return &SalesStore{db: db}
}

// Transcript returns the transcript of a sales conversation. found is false when the
// conversation does not exist or has no transcript.
func (s *SalesStore) Transcript(ctx context.Context, conversationID string) (text string, found bool, err error) {
	var transcript sql.NullString
	row := s.db.WithContext(ctx).
		Raw("SELECT transcript_text FROM sales_conversations WHERE conversation_id = ? LIMIT 1", conversationID).
		Row()
	if err := row.Scan(&transcript); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("transcript %s: %w", conversationID, err)
	}
	return transcript.String, transcript.Valid, nil
}

// RunReport executes query in a read-only transaction and returns the rows as maps
func (s *SalesStore) RunReport(ctx context.Context, query string) ([]map[string]any, error) {
	query = NormalizeReportSQL(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	rows := []map[string]any{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SET TRANSACTION READ ONLY").Error; err != nil {
			return err
		}
		return tx.Raw(query).Scan(&rows).Error
	})
	if err != nil {
		return nil, fmt.Errorf("run report: %w", err)
	}
	return rows, nil
}

// NormalizeReportSQL drops statement separators so only a single statement can run
func NormalizeReportSQL(query string) string {
	return strings.TrimSpace(strings.ReplaceAll(query, ";", ""))
}
