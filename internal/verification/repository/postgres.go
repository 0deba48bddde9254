package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"voteauth/internal/db"
	"voteauth/internal/verification/domain"
)

// ErrAlreadyVerified is returned by MarkVerified when the row was verified concurrently.
var ErrAlreadyVerified = errors.New("verification already verified")

const verificationColumns = `id, voter_id, method, otp_hash, issued_at, expires_at, verified_at, consumed_at, failed_attempts, ballot_token`

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns a verification repository over conn (a *sql.DB or *sql.Tx).
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

func (r *PostgresRepository) Create(ctx context.Context, v *domain.Verification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verifications (id, voter_id, method, otp_hash, issued_at, expires_at, failed_attempts)
		 VALUES ($1, $2, $3, $4, $5, $6, 0)`,
		v.ID, v.VoterID, v.Method, v.OTPHash, v.IssuedAt, v.ExpiresAt)
	return err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Verification, error) {
	return r.getOne(ctx, `SELECT `+verificationColumns+` FROM verifications WHERE id = $1`, id)
}

func (r *PostgresRepository) LatestActive(ctx context.Context, voterID string, now time.Time, maxAttempts int) (*domain.Verification, error) {
	return r.getOne(ctx, `SELECT `+verificationColumns+` FROM verifications
		WHERE voter_id = $1 AND verified_at IS NULL AND consumed_at IS NULL AND expires_at >= $2
		  AND ($3 = 0 OR failed_attempts < $3)
		ORDER BY issued_at DESC LIMIT 1`, voterID, now, maxAttempts)
}

func (r *PostgresRepository) LatestVerified(ctx context.Context, voterID string) (*domain.Verification, error) {
	return r.getOne(ctx, `SELECT `+verificationColumns+` FROM verifications
		WHERE voter_id = $1 AND verified_at IS NOT NULL AND ballot_token IS NOT NULL
		ORDER BY issued_at DESC LIMIT 1`, voterID)
}

func (r *PostgresRepository) LatestPendingSince(ctx context.Context, voterID string, since time.Time) (*domain.Verification, error) {
	return r.getOne(ctx, `SELECT `+verificationColumns+` FROM verifications
		WHERE voter_id = $1 AND verified_at IS NULL AND consumed_at IS NULL AND issued_at > $2
		ORDER BY issued_at DESC LIMIT 1`, voterID, since)
}

func (r *PostgresRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE verifications SET verified_at = $2 WHERE id = $1 AND verified_at IS NULL`, id, at)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyVerified
	}
	return nil
}

func (r *PostgresRepository) LinkBallotToken(ctx context.Context, id, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE verifications SET ballot_token = $2 WHERE id = $1`, id, token)
	return err
}

func (r *PostgresRepository) RecordFailedAttempt(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`UPDATE verifications SET failed_attempts = failed_attempts + 1 WHERE id = $1 RETURNING failed_attempts`,
		id).Scan(&n)
	return n, err
}

func (r *PostgresRepository) MarkConsumedByToken(ctx context.Context, token string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE verifications SET consumed_at = $2 WHERE ballot_token = $1 AND consumed_at IS NULL`, token, at)
	return err
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*domain.Verification, error) {
	var (
		v                      domain.Verification
		verifiedAt, consumedAt sql.NullTime
		ballotToken            sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&v.ID, &v.VoterID, &v.Method, &v.OTPHash, &v.IssuedAt, &v.ExpiresAt,
		&verifiedAt, &consumedAt, &v.FailedAttempts, &ballotToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		v.VerifiedAt = &t
	}
	if consumedAt.Valid {
		t := consumedAt.Time
		v.ConsumedAt = &t
	}
	v.BallotToken = ballotToken.String
	return &v, nil
}
