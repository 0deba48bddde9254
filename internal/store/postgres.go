package store

import (
	"context"
	"database/sql"

	ballotrepo "voteauth/internal/ballot/repository"
	"voteauth/internal/db"
	verificationrepo "voteauth/internal/verification/repository"
	voterdomain "voteauth/internal/voter/domain"
	voterrepo "voteauth/internal/voter/repository"
)

// Postgres implements Store over a *sql.DB. Per-voter serialization is a SELECT ... FOR UPDATE
// on eligible_voters, so it holds across server instances.
type Postgres struct {
	conn *sql.DB
}

// NewPostgres returns a Store backed by conn.
func NewPostgres(conn *sql.DB) *Postgres {
	return &Postgres{conn: conn}
}

func (p *Postgres) Voters() voterrepo.Repository {
	return voterrepo.NewPostgresRepository(p.conn)
}

func (p *Postgres) Verifications() verificationrepo.Repository {
	return verificationrepo.NewPostgresRepository(p.conn)
}

func (p *Postgres) Ballots() ballotrepo.Repository {
	return ballotrepo.NewPostgresRepository(p.conn)
}

func (p *Postgres) WithinVoter(ctx context.Context, voterID string, fn func(ctx context.Context, tx Tx) error) error {
	return db.RunInTx(ctx, p.conn, func(sqlTx *sql.Tx) error {
		voters := voterrepo.NewPostgresRepository(sqlTx)
		v, err := voters.LockByID(ctx, voterID)
		if err != nil {
			return err
		}
		if v == nil {
			return ErrVoterNotFound
		}
		return fn(ctx, &pgTx{
			voter:         v,
			voters:        voters,
			verifications: verificationrepo.NewPostgresRepository(sqlTx),
			ballots:       ballotrepo.NewPostgresRepository(sqlTx),
		})
	})
}

type pgTx struct {
	voter         *voterdomain.Voter
	voters        *voterrepo.PostgresRepository
	verifications *verificationrepo.PostgresRepository
	ballots       *ballotrepo.PostgresRepository
}

func (t *pgTx) Voter() *voterdomain.Voter { return t.voter }
func (t *pgTx) Voters() voterrepo.Repository { return t.voters }
func (t *pgTx) Verifications() verificationrepo.Repository { return t.verifications }
func (t *pgTx) Ballots() ballotrepo.Repository { return t.ballots }
