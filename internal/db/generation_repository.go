package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/unitbalance/internal/balance"
)

// GenerationRepository stores applied balance generations.
type GenerationRepository struct {
	pool *pgxpool.Pool
}

// NewGenerationRepository creates a new GenerationRepository.
func NewGenerationRepository(pool *pgxpool.Pool) *GenerationRepository {
	return &GenerationRepository{pool: pool}
}

// RecordGeneration inserts one generation row.
func (r *GenerationRepository) RecordGeneration(ctx context.Context, g balance.Generation) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO balance_generations (generation, fingerprint, applied, at)
		 VALUES ($1, $2, $3, $4)`,
		int64(g.Number), g.Fingerprint, g.Applied, g.At)
	if err != nil {
		return fmt.Errorf("insert generation %d: %w", g.Number, err)
	}
	return nil
}

// Latest returns up to limit generations, newest first.
func (r *GenerationRepository) Latest(ctx context.Context, limit int) ([]balance.Generation, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT generation, fingerprint, applied, at
		 FROM balance_generations ORDER BY at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var result []balance.Generation
	for rows.Next() {
		var (
			g   balance.Generation
			num int64
		)
		if err := rows.Scan(&num, &g.Fingerprint, &g.Applied, &g.At); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		g.Number = uint64(num)
		result = append(result, g)
	}
	return result, rows.Err()
}
