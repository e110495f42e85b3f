package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prepwise/interview-api/internal/domain"
	"github.com/prepwise/interview-api/internal/repository"
)

// Ensure pgInterviewRepo implements repository.InterviewRepository.
var _ repository.InterviewRepository = (*pgInterviewRepo)(nil)

type pgInterviewRepo struct {
	pool       *pgxpool.Pool
	collection string
}

// NewPostgresInterviewRepository stores interviews as JSONB documents in the given collection.
func NewPostgresInterviewRepository(pool *pgxpool.Pool, collection string) repository.InterviewRepository {
	return &pgInterviewRepo{pool: pool, collection: collection}
}

func (r *pgInterviewRepo) Create(ctx context.Context, interview *domain.Interview) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("postgres: generate document id: %w", err)
	}

	doc := *interview
	doc.ID = ""
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("postgres: encode interview: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, interview.CreatedAt)
	if err != nil {
		createdAt = time.Now().UTC()
	}

	query := `
		INSERT INTO documents (collection, id, user_id, data, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.pool.Exec(ctx, query, r.collection, id.String(), interview.UserID, data, createdAt); err != nil {
		return "", fmt.Errorf("postgres: create interview: %w", err)
	}
	return id.String(), nil
}

func (r *pgInterviewRepo) GetByID(ctx context.Context, id string) (*domain.Interview, error) {
	query := `SELECT data FROM documents WHERE collection = $1 AND id = $2`

	var data []byte
	err := r.pool.QueryRow(ctx, query, r.collection, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInterviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get interview: %w", err)
	}
	return decodeInterview(id, data)
}

func (r *pgInterviewRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Interview, error) {
	query := `
		SELECT id, data FROM documents
		WHERE collection = $1 AND user_id = $2
		ORDER BY created_at DESC
		LIMIT $3`

	return r.list(ctx, query, r.collection, userID, limit)
}

func (r *pgInterviewRepo) ListLatest(ctx context.Context, excludeUserID string, limit int) ([]*domain.Interview, error) {
	query := `
		SELECT id, data FROM documents
		WHERE collection = $1
		  AND ($2::text = '' OR user_id <> $2)
		  AND (data->>'finalized')::boolean
		ORDER BY created_at DESC
		LIMIT $3`

	return r.list(ctx, query, r.collection, excludeUserID, limit)
}

func (r *pgInterviewRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Interview, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list interviews: %w", err)
	}
	defer rows.Close()

	interviews := make([]*domain.Interview, 0)
	for rows.Next() {
		var (
			id   string
			data []byte
		)
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("postgres: scan interview: %w", err)
		}
		interview, err := decodeInterview(id, data)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, interview)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list interviews: %w", err)
	}
	return interviews, nil
}

func decodeInterview(id string, data []byte) (*domain.Interview, error) {
	var interview domain.Interview
	if err := json.Unmarshal(data, &interview); err != nil {
		return nil, fmt.Errorf("postgres: decode interview %s: %w", id, err)
	}
	interview.ID = id
	return &interview, nil
}
