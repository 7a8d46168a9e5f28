// seed inserts a test client and a small Tel Aviv freelancer pool into
// the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/carematch/carematch/internal/infrastructure/postgres"
)

const clientID = "seed-client"

type freelancerSpec struct {
	id           string
	fullName     string
	availableNow bool
	maxChildren  int
	firstAid     bool
	newbornCare  bool
	specialNeeds bool
	rateMin      *float64
	rateMax      *float64
	languages    []string
}

func rate(v float64) *float64 { return &v }

var freelancers = []freelancerSpec{
	// Broadly eligible: high capacity, all capabilities, open rates
	{"seed-f-001", "Noa Levi", true, 4, true, true, true, nil, nil, []string{"he", "en"}},
	{"seed-f-002", "Maya Cohen", true, 3, true, true, false, rate(40), rate(80), []string{"he"}},
	{"seed-f-003", "Dana Mizrahi", true, 2, true, false, false, rate(50), rate(90), []string{"he", "ru"}},

	// Capacity-limited: only single-child jobs
	{"seed-f-004", "Shira Peretz", true, 1, true, true, false, rate(35), rate(60), []string{"he", "en"}},

	// Missing capabilities
	{"seed-f-005", "Tamar Avraham", true, 3, false, false, false, rate(30), rate(55), []string{"he"}},

	// Priced out of modest budgets
	{"seed-f-006", "Yael Biton", true, 4, true, true, true, rate(120), rate(200), []string{"he", "en", "fr"}},

	// Not currently available — never sourced
	{"seed-f-007", "Rivka Azulay", false, 3, true, true, false, rate(45), rate(75), []string{"he"}},

	// English-only
	{"seed-f-008", "Emily Carter", true, 2, true, false, false, rate(55), rate(95), []string{"en"}},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	_, err = pool.Exec(ctx, `
		INSERT INTO profiles (id, role, full_name, email, city)
		VALUES ($1, 'client', 'Seed Client', 'client@seed.local', 'Tel Aviv')
		ON CONFLICT (id) DO UPDATE SET updated_at = NOW()`,
		clientID,
	)
	if err != nil {
		log.Fatalf("upsert client: %v", err)
	}

	var inserted int
	for _, spec := range freelancers {
		_, err := pool.Exec(ctx, `
			INSERT INTO profiles (id, role, full_name, email, city)
			VALUES ($1, 'freelancer', $2, $3, 'Tel Aviv')
			ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name`,
			spec.id, spec.fullName, spec.id+"@seed.local",
		)
		if err != nil {
			log.Fatalf("upsert profile %s: %v", spec.id, err)
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO freelancer_profiles (
				profile_id, city, available_now, max_children,
				has_first_aid, has_newborn_care, has_special_needs,
				rate_min, rate_max, languages
			) VALUES ($1, 'Tel Aviv', $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (profile_id) DO UPDATE SET
				available_now = EXCLUDED.available_now,
				max_children  = EXCLUDED.max_children,
				rate_min      = EXCLUDED.rate_min,
				rate_max      = EXCLUDED.rate_max,
				languages     = EXCLUDED.languages`,
			spec.id, spec.availableNow, spec.maxChildren,
			spec.firstAid, spec.newbornCare, spec.specialNeeds,
			spec.rateMin, spec.rateMax, spec.languages,
		)
		if err != nil {
			log.Fatalf("upsert freelancer %s: %v", spec.id, err)
		}
		inserted++
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  Client:      %s\n", clientID)
	fmt.Printf("  Freelancers: %d (Tel Aviv)\n", inserted)
	fmt.Println()
	fmt.Println("Post a job as the client to see the fan-out:")
	fmt.Println(`  curl -X POST localhost:8080/jobs -H "Authorization: Bearer <jwt sub=seed-client>" \`)
	fmt.Println(`    -d '{"city":"Tel Aviv","children_count":2,"first_aid":true}'`)
}
