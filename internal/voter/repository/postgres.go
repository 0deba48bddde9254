package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"voteauth/internal/db"
	"voteauth/internal/voter/domain"
)

const voterColumns = `id, reg_no, name, email, phone, status, created_at, updated_at`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a voter repository over conn (a *sql.DB or *sql.Tx).
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

func (r *PostgresRepository) GetByRegNo(ctx context.Context, regNo string) (*domain.Voter, error) {
	return r.getOne(ctx, `SELECT `+voterColumns+` FROM eligible_voters WHERE reg_no = $1`, regNo)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Voter, error) {
	return r.getOne(ctx, `SELECT `+voterColumns+` FROM eligible_voters WHERE id = $1`, id)
}

// LockByID selects the voter FOR UPDATE. Only meaningful when r wraps a transaction.
func (r *PostgresRepository) LockByID(ctx context.Context, id string) (*domain.Voter, error) {
	return r.getOne(ctx, `SELECT `+voterColumns+` FROM eligible_voters WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status domain.VoterStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE eligible_voters SET status = $2, updated_at = $3 WHERE id = $1`,
		id, string(status), at)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Create inserts the voter. Used by the seed command; roster import lives elsewhere.
func (r *PostgresRepository) Create(ctx context.Context, v *domain.Voter) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO eligible_voters (`+voterColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v.ID, v.RegNo, v.Name, nullString(v.Email), nullString(v.Phone), string(v.Status), v.CreatedAt, v.UpdatedAt)
	return err
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg string) (*domain.Voter, error) {
	var (
		v            domain.Voter
		email, phone sql.NullString
		status       string
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&v.ID, &v.RegNo, &v.Name, &email, &phone, &status, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	v.Email = email.String
	v.Phone = phone.String
	v.Status = domain.VoterStatus(status)
	return &v, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
