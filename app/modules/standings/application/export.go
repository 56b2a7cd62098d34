package standingsservice

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	"github.com/xuri/excelize/v2"
)

const (
	standingsSheet = "Standings"
	tiersSheet     = "Tiers"
)

var standingsHeader = []any{
	"Rank", "Registration", "Wins", "Losses", "Byes", "Total Speaks", "Adj Speaks",
	"Dbl Adj Speaks", "Avg Ranks", "Opp Wins", "Opp Win %", "Aff", "Neg", "Rounds", "Breaking", "Seed",
}

// ExportStandingsXLSX renders the persisted standings and tiers of an event as a workbook.
func (s *StandingsService) ExportStandingsXLSX(ctx context.Context, eventID string) ([]byte, error) {
	return query(s, ctx, "ExportStandingsXLSX", eventID, func(ctx context.Context) ([]byte, error) {
		snap, err := s.loadSnapshot(ctx, eventID)
		if err != nil {
			return nil, err
		}
		order := standingsdomain.WithoutCoinFlip(snap.order)
		tiers := standingsdomain.GroupIntoTiers(snap.standings, order, snap.h2h)
		return WriteStandingsWorkbook(snap.standings, tiers)
	})
}

// WriteStandingsWorkbook builds an xlsx file with a Standings sheet and a Tiers sheet.
func WriteStandingsWorkbook(standings []standingsdomain.ComputedStanding, tiers [][]standingsdomain.ComputedStanding) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", standingsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(tiersSheet); err != nil {
		return nil, fmt.Errorf("failed to add tiers sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(standingsSheet, "A1", &standingsHeader); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(standingsHeader), 1)
	if err := f.SetCellStyle(standingsSheet, "A1", lastCol, bold); err != nil {
		return nil, err
	}

	for i, st := range standings {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			rankOrBlank(st.OverallRank), st.RegistrationID, st.Wins, st.Losses, st.Byes,
			st.TotalSpeaks, st.AdjustedSpeaks, st.DoubleAdjustedSpeaks, st.AvgRanks,
			st.OppWins, st.OppWinPct, st.AffRounds, st.NegRounds, st.RoundsCompleted,
			st.IsBreaking, rankOrBlank(st.BreakSeed),
		}
		if err := f.SetSheetRow(standingsSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	tierHeader := []any{"Tier", "Registrations"}
	if err := f.SetSheetRow(tiersSheet, "A1", &tierHeader); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(tiersSheet, "A1", "B1", bold); err != nil {
		return nil, err
	}
	for i, tier := range tiers {
		ids := make([]string, 0, len(tier))
		for _, st := range tier {
			ids = append(ids, st.RegistrationID)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{i + 1, strings.Join(ids, ", ")}
		if err := f.SetSheetRow(tiersSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func rankOrBlank(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}

// ballotColumns are the recognised header names of a ballot sheet.
var ballotColumns = []string{
	"pairing_id", "tournament_id", "event_id", "round", "aff", "neg", "winner",
	"aff_speaks", "neg_speaks", "aff_rank", "neg_rank", "forfeit", "final",
}

// ParseBallotsXLSX reads ballots from the first sheet of a workbook. The first
// row names the columns; pairing_id, round and aff are required.
func ParseBallotsXLSX(data []byte) ([]standingsdomain.Ballot, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"pairing_id", "round", "aff"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("ballot sheet is missing column %q (known columns: %s)", required, strings.Join(ballotColumns, ", "))
		}
	}

	ballots := make([]standingsdomain.Ballot, 0, len(rows)-1)
	for n, row := range rows[1:] {
		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}
		if cell("pairing_id") == "" {
			continue
		}

		line := n + 2
		round, err := strconv.Atoi(cell("round"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid round %q", line, cell("round"))
		}
		b := standingsdomain.Ballot{
			PairingID:    cell("pairing_id"),
			TournamentID: cell("tournament_id"),
			EventID:      cell("event_id"),
			RoundNumber:  round,
			AffID:        cell("aff"),
			NegID:        cell("neg"),
			Winner:       standingsdomain.Side(strings.ToLower(cell("winner"))),
			Forfeit:      standingsdomain.Side(strings.ToLower(cell("forfeit"))),
			Final:        true,
		}
		if v := cell("final"); v != "" {
			b.Final, err = strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid final %q", line, v)
			}
		}
		for name, dst := range map[string]**float64{
			"aff_speaks": &b.AffSpeaks,
			"neg_speaks": &b.NegSpeaks,
			"aff_rank":   &b.AffRank,
			"neg_rank":   &b.NegRank,
		} {
			v := cell(name)
			if v == "" {
				continue
			}
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid %s %q", line, name, v)
			}
			*dst = &parsed
		}
		ballots = append(ballots, b)
	}
	return ballots, nil
}
