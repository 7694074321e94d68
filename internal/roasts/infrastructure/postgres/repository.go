package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	roasts "roastlog/internal/roasts/domain"
)

const (
	defaultRoastTable   = "roasts"
	defaultReadingTable = "roast_readings"
)

// RoastRepository is a Postgres implementation of the roast archive.
type RoastRepository struct {
	db           *sql.DB
	roastTable   string
	readingTable string
}

// RepositoryOption configures the repository.
type RepositoryOption func(*RoastRepository)

// WithTables overrides the default table names.
func WithTables(roastTable, readingTable string) RepositoryOption {
	return func(repo *RoastRepository) {
		if roastTable != "" {
			repo.roastTable = roastTable
		}
		if readingTable != "" {
			repo.readingTable = readingTable
		}
	}
}

// NewRoastRepository constructs a repository with default table names.
func NewRoastRepository(db *sql.DB, opts ...RepositoryOption) *RoastRepository {
	repo := &RoastRepository{
		db:           db,
		roastTable:   defaultRoastTable,
		readingTable: defaultReadingTable,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Save upserts the roast row and replaces its readings in one transaction.
func (r *RoastRepository) Save(ctx context.Context, roast *roasts.Roast) error {
	if r == nil || r.db == nil {
		return errors.New("roast repo: nil db")
	}
	if roast == nil || roast.ID == "" {
		return errors.New("roast repo: invalid roast")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	upsert := fmt.Sprintf(`
INSERT INTO %s (
	id,
	label,
	roasted_at,
	duration_minutes,
	interval_seconds,
	starting_reading
) VALUES (
	$1, $2, $3, $4, $5, $6
)
ON CONFLICT (id)
DO UPDATE SET
	label = EXCLUDED.label,
	roasted_at = EXCLUDED.roasted_at,
	duration_minutes = EXCLUDED.duration_minutes,
	interval_seconds = EXCLUDED.interval_seconds,
	starting_reading = EXCLUDED.starting_reading`, r.roastTable)

	if _, err := tx.ExecContext(ctx, upsert,
		roast.ID,
		roast.Label,
		roast.RoastedAt,
		roast.DurationMinutes,
		roast.IntervalSeconds,
		roast.StartingReading,
	); err != nil {
		_ = tx.Rollback()
		return err
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE roast_id = $1`, r.readingTable), roast.ID,
	); err != nil {
		_ = tx.Rollback()
		return err
	}

	insert := fmt.Sprintf(`
INSERT INTO %s (roast_id, boundary_index, value)
VALUES ($1, $2, $3)`, r.readingTable)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for boundary, value := range roast.Readings {
		if boundary < 0 {
			_ = tx.Rollback()
			return errors.New("roast repo: negative boundary index")
		}
		if _, err := stmt.ExecContext(ctx, roast.ID, boundary, value); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// Get loads one roast with its readings.
func (r *RoastRepository) Get(ctx context.Context, id string) (*roasts.Roast, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("roast repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, label, roasted_at, duration_minutes, interval_seconds, starting_reading
FROM %s
WHERE id = $1`, r.roastTable)

	roast := &roasts.Roast{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&roast.ID,
		&roast.Label,
		&roast.RoastedAt,
		&roast.DurationMinutes,
		&roast.IntervalSeconds,
		&roast.StartingReading,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, roasts.ErrRoastNotFound
	}
	if err != nil {
		return nil, err
	}

	roast.Readings, err = r.loadReadings(ctx, id)
	if err != nil {
		return nil, err
	}
	return roast, nil
}

// List returns the most recent roasts with their readings.
func (r *RoastRepository) List(ctx context.Context, limit int) ([]*roasts.Roast, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("roast repo: nil db")
	}
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
SELECT id, label, roasted_at, duration_minutes, interval_seconds, starting_reading
FROM %s
ORDER BY roasted_at DESC
LIMIT $1`, r.roastTable)

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*roasts.Roast
	for rows.Next() {
		roast := &roasts.Roast{}
		if err := rows.Scan(
			&roast.ID,
			&roast.Label,
			&roast.RoastedAt,
			&roast.DurationMinutes,
			&roast.IntervalSeconds,
			&roast.StartingReading,
		); err != nil {
			return nil, err
		}
		list = append(list, roast)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, roast := range list {
		roast.Readings, err = r.loadReadings(ctx, roast.ID)
		if err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (r *RoastRepository) loadReadings(ctx context.Context, roastID string) (map[int]float64, error) {
	query := fmt.Sprintf(`
SELECT boundary_index, value
FROM %s
WHERE roast_id = $1
ORDER BY boundary_index`, r.readingTable)

	rows, err := r.db.QueryContext(ctx, query, roastID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	readings := make(map[int]float64)
	for rows.Next() {
		var boundary int
		var value float64
		if err := rows.Scan(&boundary, &value); err != nil {
			return nil, err
		}
		readings[boundary] = value
	}
	return readings, rows.Err()
}
