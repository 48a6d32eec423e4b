package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/unitbalance/internal/audit"
)

// AuditRepository stores balance edits in the balance_audit table.
type AuditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// Record inserts one audit entry.
func (r *AuditRepository) Record(ctx context.Context, e audit.Entry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO balance_audit (at, player, player_id, unit, param_key, old_value, new_value)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.At, e.Player, e.PlayerID, e.Unit, e.Key, e.Old, e.New)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (r *AuditRepository) Recent(ctx context.Context, limit int) ([]audit.Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT at, player, player_id, unit, param_key, old_value, new_value
		 FROM balance_audit ORDER BY at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var result []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.At, &e.Player, &e.PlayerID, &e.Unit, &e.Key, &e.Old, &e.New); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// ByUnit returns every entry for unit, oldest first.
func (r *AuditRepository) ByUnit(ctx context.Context, unit string) ([]audit.Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT at, player, player_id, unit, param_key, old_value, new_value
		 FROM balance_audit WHERE unit = $1 ORDER BY at, id`, unit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries for %q: %w", unit, err)
	}
	defer rows.Close()

	var result []audit.Entry
	for rows.Next() {
		var e audit.Entry
		if err := rows.Scan(&e.At, &e.Player, &e.PlayerID, &e.Unit, &e.Key, &e.Old, &e.New); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
