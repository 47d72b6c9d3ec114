package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/intakerouter/pkg/domain"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

// RoutingStore keeps every routing decision ever made, so the history of an
// intake survives spec revisions.
type RoutingStore struct {
	DB *sql.DB
}

func NewRoutingStore(db *sql.DB) *RoutingStore {
	return &RoutingStore{DB: db}
}

const selectColumns = `id, intake_id, path, score, breakdown, explanation, rule, reasons, warnings, spec_hash, routed_at, routed_by`

func (s *RoutingStore) Save(ctx context.Context, rec *domain.RoutingRecord) error {
	breakdown, err := json.Marshal(rec.Result.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	reasons, err := json.Marshal(nonNil(rec.Result.Reasons))
	if err != nil {
		return fmt.Errorf("marshal reasons: %w", err)
	}
	warnings, err := json.Marshal(nonNil(rec.Result.Warnings))
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
INSERT INTO routing_records (`+selectColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID,
		rec.IntakeID,
		string(rec.Result.Path),
		rec.Result.Score,
		breakdown,
		rec.Result.Explanation,
		rec.Result.Rule,
		reasons,
		warnings,
		rec.Result.SpecHash,
		rec.RoutedAt.UTC(),
		rec.RoutedBy,
	)
	if err != nil {
		return fmt.Errorf("insert routing record: %w", err)
	}
	return nil
}

// Latest returns the most recent decision for an intake.
func (s *RoutingStore) Latest(ctx context.Context, intakeID string) (*domain.RoutingRecord, error) {
	row := s.DB.QueryRowContext(ctx, `
SELECT `+selectColumns+`
FROM routing_records
WHERE intake_id = $1
ORDER BY routed_at DESC
LIMIT 1`, intakeID)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("routing for intake %s: %w", intakeID, domain.ErrNotFound)
	}
	return rec, err
}

// History returns up to limit decisions for an intake, newest first.
func (s *RoutingStore) History(ctx context.Context, intakeID string, limit int) ([]*domain.RoutingRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.DB.QueryContext(ctx, `
SELECT `+selectColumns+`
FROM routing_records
WHERE intake_id = $1
ORDER BY routed_at DESC
LIMIT $2`, intakeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query routing history: %w", err)
	}
	defer rows.Close()

	var out []*domain.RoutingRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*domain.RoutingRecord, error) {
	var (
		rec                          domain.RoutingRecord
		path                         string
		breakdown, reasons, warnings []byte
	)
	err := row.Scan(
		&rec.ID,
		&rec.IntakeID,
		&path,
		&rec.Result.Score,
		&breakdown,
		&rec.Result.Explanation,
		&rec.Result.Rule,
		&reasons,
		&warnings,
		&rec.Result.SpecHash,
		&rec.RoutedAt,
		&rec.RoutedBy,
	)
	if err != nil {
		return nil, err
	}

	rec.Result.Path = routing.DeliveryPath(path)
	if err := json.Unmarshal(breakdown, &rec.Result.Breakdown); err != nil {
		return nil, fmt.Errorf("decode breakdown: %w", err)
	}
	if err := json.Unmarshal(reasons, &rec.Result.Reasons); err != nil {
		return nil, fmt.Errorf("decode reasons: %w", err)
	}
	if err := json.Unmarshal(warnings, &rec.Result.Warnings); err != nil {
		return nil, fmt.Errorf("decode warnings: %w", err)
	}
	if len(rec.Result.Warnings) == 0 {
		rec.Result.Warnings = nil
	}
	return &rec, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
