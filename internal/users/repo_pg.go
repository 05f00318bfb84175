package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

type pgRepo struct {
	DB *sql.DB
}

// NewPGRepo constructs a Postgres-backed user repository.
func NewPGRepo(db *sql.DB) *pgRepo {
	return &pgRepo{DB: db}
}

func (r *pgRepo) Create(ctx context.Context, u User) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO users (id, email, password_hash, plan, created_at)
VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.PasswordHash, u.Plan, u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *pgRepo) GetByID(ctx context.Context, id string) (User, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *pgRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.getBy(ctx, `WHERE email = $1`, email)
}

func (r *pgRepo) getBy(ctx context.Context, where string, arg any) (User, error) {
	var u User
	var customerID sql.NullString
	row := r.DB.QueryRowContext(ctx, `
SELECT id, email, password_hash, plan, stripe_customer_id, created_at FROM users `+where, arg)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Plan, &customerID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.StripeCustomerID = customerID.String
	return u, nil
}

func (r *pgRepo) UpdatePlan(ctx context.Context, id, plan string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET plan = $1 WHERE id = $2`, plan, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (r *pgRepo) SetStripeCustomerID(ctx context.Context, id, customerID string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE users SET stripe_customer_id = $1 WHERE id = $2`, customerID, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// pgx surfaces unique violations as SQLSTATE 23505 in the error text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") || strings.Contains(msg, "duplicate key")
}

var _ Repo = (*pgRepo)(nil)
