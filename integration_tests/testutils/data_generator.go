package testutils

import (
	"fmt"
	"math"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
)

// TestDataGenerator builds reproducible tournaments for integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s)), seed: s}
}

// Seed returns the seed so failures can be replayed.
func (g *TestDataGenerator) Seed() int64 { return g.seed }

// Registrations returns count distinct registration IDs.
func (g *TestDataGenerator) Registrations(count int) []string {
	ids := make([]string, count)
	for i := range ids {
		ids[i] = g.faker.UUID()
	}
	return ids
}

// RoundRobinBallots pairs every registration by the circle method for the
// given number of rounds. An odd field gives one bye per round. Winners and
// speaks are random; speaks land on half points between 25 and 30.
func (g *TestDataGenerator) RoundRobinBallots(tournamentID, eventID string, registrations []string, rounds int) []standingsdomain.Ballot {
	field := append([]string(nil), registrations...)
	if len(field)%2 == 1 {
		field = append(field, "")
	}
	n := len(field)

	var ballots []standingsdomain.Ballot
	for round := 1; round <= rounds && round < n; round++ {
		for i := 0; i < n/2; i++ {
			aff, neg := field[i], field[n-1-i]
			if aff == "" {
				aff, neg = neg, aff
			}
			b := standingsdomain.Ballot{
				PairingID:    fmt.Sprintf("%s-r%d-p%d", eventID, round, i+1),
				TournamentID: tournamentID,
				EventID:      eventID,
				RoundNumber:  round,
				AffID:        aff,
				NegID:        neg,
				Final:        true,
			}
			if neg == "" {
				b.AffSpeaks = g.speaks()
			} else {
				b.Winner = standingsdomain.SideNeg
				if g.faker.Bool() {
					b.Winner = standingsdomain.SideAff
				}
				b.AffSpeaks = g.speaks()
				b.NegSpeaks = g.speaks()
			}
			ballots = append(ballots, b)
		}
		// rotate everyone but the first seat
		field = append([]string{field[0], field[n-1]}, field[1:n-1]...)
	}
	return ballots
}

func (g *TestDataGenerator) speaks() *float64 {
	v := math.Round(g.faker.Float64Range(25, 30)*2) / 2
	return &v
}
