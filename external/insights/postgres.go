package insights

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	insightspkg "github.com/mindhaven/sessioncore/internal/insights"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) insightspkg.Store {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CreatePending(ctx context.Context, roomID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO session_insights (room_id, status)
		 VALUES ($1, 'pending')
		 ON CONFLICT (room_id) DO UPDATE SET
			status = 'pending',
			transcript = '',
			summary = '',
			insights = '{}',
			mood = '',
			goals = '{}',
			warnings = '{}',
			failure_reason = '',
			updated_at = NOW()`,
		roomID)
	return err
}

func (s *PostgresStore) TransitionStatus(ctx context.Context, roomID string, from, to insightspkg.Status) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE session_insights SET status = $3, updated_at = NOW()
		 WHERE room_id = $1 AND status = $2`,
		roomID, string(from), string(to))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PostgresStore) SetTranscript(ctx context.Context, roomID, transcript string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE session_insights SET transcript = $2, updated_at = NOW()
		 WHERE room_id = $1`,
		roomID, transcript)
	return err
}

func (s *PostgresStore) SetResult(ctx context.Context, roomID string, result insightspkg.Result) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE session_insights SET
			summary = $2,
			insights = $3,
			mood = $4,
			goals = $5,
			warnings = $6,
			failure_reason = '',
			updated_at = NOW()
		 WHERE room_id = $1`,
		roomID, result.Summary, result.Insights, result.Mood, result.Goals, result.Warnings)
	return err
}

func (s *PostgresStore) MarkFailed(ctx context.Context, roomID, reason string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE session_insights SET status = 'failed', failure_reason = $2, updated_at = NOW()
		 WHERE room_id = $1`,
		roomID, reason)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, roomID string) (*insightspkg.SessionInsights, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT room_id, transcript, summary, insights, mood, goals, warnings,
			status, failure_reason, created_at, updated_at
		 FROM session_insights WHERE room_id = $1`,
		roomID)
	var doc insightspkg.SessionInsights
	var status string
	err := row.Scan(&doc.RoomID, &doc.Transcript, &doc.Summary, &doc.Insights,
		&doc.Mood, &doc.Goals, &doc.Warnings, &status, &doc.FailureReason,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, insightspkg.ErrNotFound
		}
		return nil, err
	}
	doc.Status = insightspkg.Status(status)
	return &doc, nil
}
