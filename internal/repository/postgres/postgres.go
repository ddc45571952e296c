package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vpfs/backend/internal/domain"
)

// PostgresRepository implements domain.AuditRepository
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// SaveFareRecord persists a retired fare to PostgreSQL
func (r *PostgresRepository) SaveFareRecord(ctx context.Context, rec domain.FareRecord) error {
	query := `
		INSERT INTO fare_history (
			match_number, fare_id, fare_type, src_x, src_y, dest_x, dest_y,
			distance, outcome, team, payout, created_at, closed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.pool.Exec(ctx, query,
		rec.MatchNumber, rec.FareID, rec.Type, rec.Src.X, rec.Src.Y, rec.Dest.X, rec.Dest.Y,
		rec.Distance, rec.Outcome, rec.Team, rec.Payout, rec.Created, rec.Closed,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save fare record: %w", err)
	}

	return nil
}

// SaveMatchResult persists a finished match to PostgreSQL. Standings
// are stored as a JSON column since they are only read back whole.
func (r *PostgresRepository) SaveMatchResult(ctx context.Context, res domain.MatchResult) error {
	standings, err := json.Marshal(res.Standings)
	if err != nil {
		return fmt.Errorf("postgres: failed to encode standings: %w", err)
	}

	query := `
		INSERT INTO match_results (
			match_number, duration_seconds, started_at, ended_at, standings
		) VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.pool.Exec(ctx, query,
		res.Number, res.Duration.Seconds(), res.StartedAt, res.EndedAt, standings,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to save match result: %w", err)
	}

	return nil
}

// GetFareHistory retrieves retired fares from PostgreSQL
func (r *PostgresRepository) GetFareHistory(ctx context.Context, from, to time.Time) ([]domain.FareRecord, error) {
	query := `
		SELECT match_number, fare_id, fare_type, src_x, src_y, dest_x, dest_y,
			   distance, outcome, team, payout, created_at, closed_at
		FROM fare_history
		WHERE closed_at BETWEEN $1 AND $2
		ORDER BY closed_at DESC
		LIMIT 100
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query fare history: %w", err)
	}
	defer rows.Close()

	var results []domain.FareRecord
	for rows.Next() {
		var rec domain.FareRecord
		err := rows.Scan(
			&rec.MatchNumber, &rec.FareID, &rec.Type, &rec.Src.X, &rec.Src.Y, &rec.Dest.X, &rec.Dest.Y,
			&rec.Distance, &rec.Outcome, &rec.Team, &rec.Payout, &rec.Created, &rec.Closed,
		)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan fare row: %w", err)
		}
		results = append(results, rec)
	}

	return results, nil
}

// Health checks database connectivity
func (r *PostgresRepository) Health(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: health check failed: %w", err)
	}
	return nil
}
