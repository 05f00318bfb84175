package usage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed usage store.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

func (s *pgStore) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := s.DB.QueryRowContext(ctx, `
SELECT COUNT(*) FROM processed_files WHERE user_id = $1 AND created_at >= $2`, userID, since).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Reserve locks the user's row, recounts the period inside the transaction,
// and inserts the record only when the count is under limit. The row lock
// serializes concurrent reservations for the same user.
func (s *pgStore) Reserve(ctx context.Context, rec Record, since time.Time, limit int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var lockedID string
	err = tx.QueryRowContext(ctx, `
SELECT id FROM users WHERE id = $1 FOR UPDATE`, rec.UserID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.New("user not found")
		}
		return err
	}

	var count int
	if err = tx.QueryRowContext(ctx, `
SELECT COUNT(*) FROM processed_files WHERE user_id = $1 AND created_at >= $2`, rec.UserID, since).Scan(&count); err != nil {
		return err
	}
	if count >= limit {
		err = ErrLimitReached
		return err
	}

	if _, err = tx.ExecContext(ctx, `
INSERT INTO processed_files (id, user_id, file_name, ip_address, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.UserID, rec.FileName, nullable(rec.IPAddress), rec.CreatedAt); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Store = (*pgStore)(nil)
