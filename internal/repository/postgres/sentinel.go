package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepwise/interview-api/internal/repository"
)

var _ repository.HealthChecker = (*SentinelReader)(nil)

// SentinelReader confirms connectivity by reading one known document.
// A missing document still counts as reachable.
type SentinelReader struct {
	pool       *pgxpool.Pool
	collection string
	id         string
}

// NewSentinelReader builds a checker for a "collection/id" path.
func NewSentinelReader(pool *pgxpool.Pool, path string) (*SentinelReader, error) {
	collection, id, ok := strings.Cut(strings.Trim(path, "/"), "/")
	if !ok || collection == "" || id == "" || strings.Contains(id, "/") {
		return nil, fmt.Errorf("postgres: sentinel path %q must look like collection/id", path)
	}
	return &SentinelReader{pool: pool, collection: collection, id: id}, nil
}

func (s *SentinelReader) Check(ctx context.Context) error {
	var one int
	err := s.pool.QueryRow(ctx,
		`SELECT 1 FROM documents WHERE collection = $1 AND id = $2`,
		s.collection, s.id,
	).Scan(&one)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("postgres: sentinel read %s/%s: %w", s.collection, s.id, err)
	}
	return nil
}
