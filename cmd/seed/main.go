// seed inserts development voters for local testing. Not a roster import.
// Idempotent: voters whose registration number already exists are skipped.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"voteauth/internal/config"
	"voteauth/internal/db"
	voterdomain "voteauth/internal/voter/domain"
	voterrepo "voteauth/internal/voter/repository"
)

var devVoters = []voterdomain.Voter{
	{RegNo: "REG001", Name: "Dev Voter One", Email: "voter1@example.com", Phone: "+15550000001", Status: voterdomain.VoterStatusEligible},
	{RegNo: "REG002", Name: "Dev Voter Two", Email: "voter2@example.com", Phone: "+15550000002", Status: voterdomain.VoterStatusEligible},
	{RegNo: "REG003", Name: "Dev Voter Three", Email: "voter3@example.com", Status: voterdomain.VoterStatusEligible},
	{RegNo: "REG004", Name: "Ineligible Voter", Email: "voter4@example.com", Status: voterdomain.VoterStatusIneligible},
	{RegNo: "REG005", Name: "No Contact Voter", Status: voterdomain.VoterStatusEligible},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	voters := voterrepo.NewPostgresRepository(conn)
	ctx := context.Background()
	now := time.Now().UTC()

	created := 0
	for _, v := range devVoters {
		existing, err := voters.GetByRegNo(ctx, v.RegNo)
		if err != nil {
			log.Fatalf("seed check %s: %v", v.RegNo, err)
		}
		if existing != nil {
			log.Printf("seed: %s exists, skipping", v.RegNo)
			continue
		}
		v.ID = uuid.New().String()
		v.CreatedAt, v.UpdatedAt = now, now
		if err := voters.Create(ctx, &v); err != nil {
			log.Fatalf("create voter %s: %v", v.RegNo, err)
		}
		created++
	}
	log.Printf("Seed completed: %d voter(s) created.", created)
}
