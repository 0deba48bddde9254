package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"voteauth/internal/ballot/domain"
	"voteauth/internal/db"
)

const ballotColumns = `id, voter_id, token, status, issued_at, consumed_at`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a ballot token repository over conn (a *sql.DB or *sql.Tx).
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

// Create uses ON CONFLICT DO NOTHING so a conflict does not abort the surrounding transaction,
// then checks which constraint was hit.
func (r *PostgresRepository) Create(ctx context.Context, b *domain.BallotToken) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ballot_tokens (id, voter_id, token, status, issued_at)
		 VALUES ($1, $2, $3, $4, $5) ON CONFLICT DO NOTHING`,
		b.ID, b.VoterID, b.Token, string(domain.TokenStatusActive), b.IssuedAt)
	if err != nil {
		if constraint, ok := db.UniqueViolation(err); ok {
			return conflictError(constraint)
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	existing, err := r.GetByVoter(ctx, b.VoterID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrVoterHasToken
	}
	return ErrTokenCollision
}

func (r *PostgresRepository) GetByVoter(ctx context.Context, voterID string) (*domain.BallotToken, error) {
	return r.getOne(ctx, `SELECT `+ballotColumns+` FROM ballot_tokens WHERE voter_id = $1`, voterID)
}

func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.BallotToken, error) {
	return r.getOne(ctx, `SELECT `+ballotColumns+` FROM ballot_tokens WHERE token = $1`, token)
}

func (r *PostgresRepository) Consume(ctx context.Context, token string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ballot_tokens SET status = $3, consumed_at = $2 WHERE token = $1 AND status = $4`,
		token, at, string(domain.TokenStatusConsumed), string(domain.TokenStatusActive))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query, arg string) (*domain.BallotToken, error) {
	var (
		b          domain.BallotToken
		status     string
		consumedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&b.ID, &b.VoterID, &b.Token, &status, &b.IssuedAt, &consumedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	b.Status = domain.TokenStatus(status)
	if consumedAt.Valid {
		t := consumedAt.Time
		b.ConsumedAt = &t
	}
	return &b, nil
}

func conflictError(constraint string) error {
	if constraint == "ballot_tokens_token_key" {
		return ErrTokenCollision
	}
	return ErrVoterHasToken
}
