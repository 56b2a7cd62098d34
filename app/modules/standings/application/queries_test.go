package standingsservice

import (
	"bytes"
	"context"
	"strings"
	"testing"

	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGetStandingsUnknownEvent(t *testing.T) {
	svc := newTestService(NewFakeStandingsRepo())
	_, err := svc.GetStandings(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestGetTiers(t *testing.T) {
	svc, _ := seededService(t)
	ctx := context.Background()

	tiers, err := svc.GetTiers(ctx, "e1", nil)
	require.NoError(t, err)
	assert.Len(t, tiers, 5)

	tiers, err = svc.GetTiers(ctx, "e1", []string{"wins"})
	require.NoError(t, err)
	require.Len(t, tiers, 3)
	assert.Equal(t, []string{"a"}, registrationIDs(tiers[0]))
	assert.ElementsMatch(t, []string{"d", "b"}, registrationIDs(tiers[1]))
	assert.ElementsMatch(t, []string{"c", "idle"}, registrationIDs(tiers[2]))

	_, err = svc.GetTiers(ctx, "e1", []string{"elo"})
	assert.ErrorIs(t, err, ErrInvalidTiebreakerOrder)
}

func TestExplainPair(t *testing.T) {
	svc, _ := seededService(t)
	ctx := context.Background()

	exp, err := svc.ExplainPair(ctx, "e1", "b", "d")
	require.NoError(t, err)
	assert.Equal(t, "d", exp.Leader)
	assert.Equal(t, standingsdomain.TiebreakerSpeaks, exp.Outcome.DecidedBy)
	assert.Equal(t, 1, exp.Outcome.Result)
	assert.Equal(t, []CriterionComparison{
		{Criterion: standingsdomain.TiebreakerWins, Result: 0},
		{Criterion: standingsdomain.TiebreakerHeadToHead, Result: 0},
		{Criterion: standingsdomain.TiebreakerSpeaks, Result: 1},
	}, exp.Steps)

	exp, err = svc.ExplainPair(ctx, "e1", "a", "d")
	require.NoError(t, err)
	assert.Equal(t, "a", exp.Leader)
	assert.Equal(t, standingsdomain.TiebreakerWins, exp.Outcome.DecidedBy)
	assert.Len(t, exp.Steps, 1)

	_, err = svc.ExplainPair(ctx, "e1", "a", "ghost")
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestExportStandingsXLSX(t *testing.T) {
	svc, _ := seededService(t)

	data, err := svc.ExportStandingsXLSX(context.Background(), "e1")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{standingsSheet, tiersSheet}, f.GetSheetList())

	rows, err := f.GetRows(standingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, []string{"1", "a"}, rows[1][:2])
	assert.Equal(t, "idle", rows[5][1])

	tiers, err := f.GetRows(tiersSheet)
	require.NoError(t, err)
	assert.Len(t, tiers, 6)
}

func TestParseBallotsXLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"Pairing_ID", "tournament_id", "event_id", "round", "aff", "neg", "winner", "aff_speaks", "neg_speaks", "final"},
		{"p1", "t1", "e1", 1, "a", "b", "AFF", 28.5, 27, "true"},
		{"p2", "t1", "e1", 2, "c", "", "", "", "", "true"},
		{"", "", "", "", "", "", "", "", "", ""},
		{"p3", "t1", "e1", 2, "a", "d", "", "", "", "false"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ballots, err := ParseBallotsXLSX(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, ballots, 3)

	assert.Equal(t, standingsdomain.SideAff, ballots[0].Winner)
	require.NotNil(t, ballots[0].AffSpeaks)
	assert.InDelta(t, 28.5, *ballots[0].AffSpeaks, 1e-9)
	assert.True(t, ballots[1].IsBye())
	assert.Nil(t, ballots[1].AffSpeaks)
	assert.False(t, ballots[2].Final)
	for _, b := range ballots {
		assert.NoError(t, b.Validate(), b.PairingID)
	}

	_, err = ParseBallotsXLSX([]byte("not a workbook"))
	assert.Error(t, err)
}

func TestParseBallotsXLSXMissingColumn(t *testing.T) {
	f := excelize.NewFile()
	header := []any{"pairing_id", "aff"}
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &header))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	_, err = ParseBallotsXLSX(buf.Bytes())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), `"round"`))
}

func TestSpeakerChart(t *testing.T) {
	svc, _ := seededService(t)
	ctx := context.Background()
	pngMagic := []byte{0x89, 'P', 'N', 'G'}

	img, err := svc.SpeakerChart(ctx, "e1", "a")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	// registered but never debated renders the placeholder
	img, err = svc.SpeakerChart(ctx, "e1", "idle")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	_, err = svc.SpeakerChart(ctx, "e1", "ghost")
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestGenerateSpeakerChartSingleRound(t *testing.T) {
	img, err := GenerateSpeakerChart([]standingsdomain.RoundResult{
		{RoundNumber: 1, Outcome: standingsdomain.OutcomeWin, Speaks: ptr(28)},
	}, DefaultChartPalette)
	require.NoError(t, err)
	assert.NotEmpty(t, img)
}

func TestArchiveSnapshot(t *testing.T) {
	t.Run("disabled without a store", func(t *testing.T) {
		svc := newTestService(NewFakeStandingsRepo())
		_, err := svc.ArchiveSnapshot(context.Background(), "e1")
		assert.ErrorIs(t, err, ErrArchiveDisabled)
	})

	t.Run("uploads the export", func(t *testing.T) {
		store := &FakeArchive{}
		svc, _ := seededService(t, WithArchive(store))

		url, err := svc.ArchiveSnapshot(context.Background(), "e1")
		require.NoError(t, err)
		assert.Equal(t, []string{"standings/e1/20260314T120000Z.xlsx"}, store.keys)
		assert.Equal(t, "https://archive.example/standings/e1/20260314T120000Z.xlsx", url)
		assert.NotEmpty(t, store.body)
	})
}
