package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	standingsauth "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventYAML = `
tournament_id: t1
event_id: e1
break_count: 2
registrations: [idle]
tiebreaker_order: [wins, head_to_head, speaks, coin_flip]
ballots:
  - {pairing_id: r1-1, tournament_id: t1, event_id: e1, round_number: 1, aff_id: a, neg_id: b, winner: aff, aff_speaks: 29, neg_speaks: 27, final: true}
  - {pairing_id: r1-2, tournament_id: t1, event_id: e1, round_number: 1, aff_id: c, neg_id: d, winner: neg, aff_speaks: 28, neg_speaks: 28.5, final: true}
  - {pairing_id: r2-1, tournament_id: t1, event_id: e1, round_number: 2, aff_id: d, neg_id: a, winner: neg, aff_speaks: 27, neg_speaks: 28, final: true}
  - {pairing_id: r2-2, tournament_id: t1, event_id: e1, round_number: 2, aff_id: b, neg_id: c, winner: aff, aff_speaks: 28, neg_speaks: 26, final: true}
`

func writeEvent(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "event.yaml")
	require.NoError(t, os.WriteFile(path, []byte(eventYAML), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"tabulate"}, args...))
	return out.String(), err
}

func TestStandingsJSON(t *testing.T) {
	out, err := run(t, "standings", "--ballots", writeEvent(t), "--format", "json")
	require.NoError(t, err)

	var standings []standingsdomain.ComputedStanding
	require.NoError(t, json.Unmarshal([]byte(out), &standings))

	ids := make([]string, len(standings))
	for i, s := range standings {
		ids[i] = s.RegistrationID
	}
	assert.Equal(t, []string{"a", "d", "b", "c", "idle"}, ids)
	assert.True(t, standings[1].IsBreaking)
	assert.False(t, standings[2].IsBreaking)
}

func TestStandingsTableAndXLSX(t *testing.T) {
	path := writeEvent(t)

	out, err := run(t, "standings", "--ballots", path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasPrefix(lines[0], "RANK"))
	assert.Contains(t, lines[1], "2-0")

	target := filepath.Join(t.TempDir(), "standings.xlsx")
	out, err = run(t, "standings", "--ballots", path, "--format", "xlsx", "--out", target)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 5 competitors")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")))
}

func TestTiersWithOrderOverride(t *testing.T) {
	out, err := run(t, "tiers", "--ballots", writeEvent(t), "--order", "wins")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1: a", lines[0])
	assert.Contains(t, lines[1], "b")
	assert.Contains(t, lines[1], "d")
}

func TestCompare(t *testing.T) {
	path := writeEvent(t)

	out, err := run(t, "compare", "--ballots", path, "b", "d")
	require.NoError(t, err)
	assert.Equal(t, "d ranks above b on speaks\n", out)

	_, err = run(t, "compare", "--ballots", path, "a", "ghost")
	assert.Error(t, err)
}

func TestCheckOrder(t *testing.T) {
	out, err := run(t, "check-order", " Wins", "opp_wins")
	require.NoError(t, err)
	assert.Equal(t, "wins,opp_wins\n", out)

	_, err = run(t, "check-order", "wins", "elo")
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	out, err := run(t, "token", "--secret", "cli-secret-0123456789", "--role", "viewer")
	require.NoError(t, err)

	provider, err := standingsauth.NewProvider("cli-secret-0123456789", "tabroom")
	require.NoError(t, err)
	claims, err := provider.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, standingsauth.RoleViewer, claims.Role)
	assert.Equal(t, "tabulate", claims.Subject)

	_, err = run(t, "token", "--secret", "cli-secret-0123456789", "--role", "root")
	assert.Error(t, err)
}

func TestUnsupportedBallotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ballots.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	_, err := run(t, "standings", "--ballots", path)
	assert.ErrorContains(t, err, "unsupported")
}
