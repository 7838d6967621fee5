package kyc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/layer-3/trustgate/core"
	"github.com/layer-3/trustgate/ports"
)

const submissionColumns = `user_id, image_url, video_url, status, created_at, updated_at`

// PostgresStore implements KYCStore on the kyc_submissions table
type PostgresStore struct {
	db *sql.DB
}

var _ ports.KYCStore = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Find(ctx context.Context, userID string) (*core.Submission, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, core.ErrKYCNotFound
	}

	var sub core.Submission
	err := s.db.QueryRowContext(ctx,
		`select `+submissionColumns+` from kyc_submissions where user_id = $1`, userID,
	).Scan(&sub.UserID, &sub.ImageURL, &sub.VideoURL, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrKYCNotFound
		}
		return nil, fmt.Errorf("kyc: find: %w", err)
	}
	return &sub, nil
}

// Submit upserts the submission. The conflict branch only fires for rejected
// submissions, so concurrent submits cannot both replace a record.
func (s *PostgresStore) Submit(ctx context.Context, userID, imageURL, videoURL string) (*core.Submission, bool, error) {
	var (
		sub     core.Submission
		created bool
	)
	err := s.db.QueryRowContext(ctx,
		`insert into kyc_submissions (user_id, image_url, video_url, status)
		 values ($1, $2, $3, 'pending')
		 on conflict (user_id) do update
		   set image_url = excluded.image_url, video_url = excluded.video_url,
		       status = 'pending', updated_at = now()
		   where kyc_submissions.status = 'rejected'
		 returning `+submissionColumns+`, (xmax = 0)`,
		userID, imageURL, videoURL,
	).Scan(&sub.UserID, &sub.ImageURL, &sub.VideoURL, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt, &created)
	if err == nil {
		return &sub, created, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("kyc: submit: %w", err)
	}

	existing, err := s.Find(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return nil, false, refusal(existing.Status)
}

// SetStatus moves a pending submission to status.
func (s *PostgresStore) SetStatus(ctx context.Context, userID string, status core.KYCStatus) (*core.Submission, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, core.ErrKYCNotFound
	}

	var sub core.Submission
	err := s.db.QueryRowContext(ctx,
		`update kyc_submissions set status = $2, updated_at = now()
		 where user_id = $1 and status = 'pending'
		 returning `+submissionColumns,
		userID, string(status),
	).Scan(&sub.UserID, &sub.ImageURL, &sub.VideoURL, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if err == nil {
		return &sub, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("kyc: set status: %w", err)
	}

	if _, err := s.Find(ctx, userID); err != nil {
		return nil, err
	}
	return nil, core.ErrInvalidKYCTransition
}
