package standingsservice

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"slices"
	"sort"

	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colors of rendered charts.
type ChartPalette struct {
	Background  drawing.Color
	PrimaryLine drawing.Color
	AccentLine  drawing.Color
	TextColor   drawing.Color
}

// DefaultChartPalette is a light theme.
var DefaultChartPalette = ChartPalette{
	Background:  drawing.ColorWhite,
	PrimaryLine: drawing.ColorFromHex("1f4e79"),
	AccentLine:  drawing.ColorFromHex("c9a227"),
	TextColor:   drawing.ColorFromHex("333333"),
}

// SpeakerChart renders a PNG of a registration's speaker points per round.
func (s *StandingsService) SpeakerChart(ctx context.Context, eventID, registrationID string) ([]byte, error) {
	return query(s, ctx, "SpeakerChart", eventID, func(ctx context.Context) ([]byte, error) {
		cfg, err := s.loadEvent(ctx, eventID)
		if err != nil {
			return nil, err
		}
		rows, err := s.repo.ListBallots(ctx, nil, eventID)
		if err != nil {
			return nil, err
		}

		ballots := make([]standingsdomain.Ballot, 0, len(rows))
		for i := range rows {
			ballots = append(ballots, rows[i].ToDomain())
		}
		byRegistration := standingsdomain.ResultsByRegistration(ballots)

		results, ok := byRegistration[registrationID]
		if !ok && !slices.Contains(cfg.RegistrationIDs, registrationID) {
			return nil, fmt.Errorf("%w: %s", ErrRegistrationNotFound, registrationID)
		}
		return GenerateSpeakerChart(results, DefaultChartPalette)
	})
}

// GenerateSpeakerChart plots the entered speaker points of each round. Rounds
// without a score are skipped.
func GenerateSpeakerChart(results []standingsdomain.RoundResult, palette ChartPalette) ([]byte, error) {
	points := make([]standingsdomain.RoundResult, 0, len(results))
	for _, r := range results {
		if r.Speaks != nil {
			points = append(points, r)
		}
	}
	if len(points) == 0 {
		return renderNoDataPlaceholder(palette, "No speaker points entered")
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].RoundNumber < points[j].RoundNumber })

	xValues := make([]float64, len(points))
	yValues := make([]float64, len(points))
	ticks := make([]chart.Tick, len(points))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, p := range points {
		xValues[i] = float64(p.RoundNumber)
		yValues[i] = *p.Speaks
		ticks[i] = chart.Tick{Value: xValues[i], Label: fmt.Sprintf("R%d", p.RoundNumber)}
		lo = math.Min(lo, *p.Speaks)
		hi = math.Max(hi, *p.Speaks)
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:  "Round",
			Ticks: ticks,
			Style: chart.Style{FontColor: palette.TextColor},
			// explicit ranges keep single-round charts renderable
			Range: &chart.ContinuousRange{Min: xValues[0] - 0.5, Max: xValues[len(xValues)-1] + 0.5},
		},
		YAxis: chart.YAxis{
			Name:  "Speaker points",
			Style: chart.Style{FontColor: palette.TextColor},
			Range: &chart.ContinuousRange{Min: math.Floor(lo) - 1, Max: math.Ceil(hi) + 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Speaks",
				XValues: xValues,
				YValues: yValues,
				Style: chart.Style{
					StrokeColor: palette.PrimaryLine,
					StrokeWidth: 2,
					DotWidth:    4,
					DotColor:    palette.AccentLine,
				},
			},
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render speaker chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette, msg string) ([]byte, error) {
	const (
		width  = 400
		height = 200
	)

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	r.SetFillColor(palette.Background)
	r.MoveTo(0, 0)
	r.LineTo(width, 0)
	r.LineTo(width, height)
	r.LineTo(0, height)
	r.Close()
	r.Fill()

	r.SetFont(font)
	r.SetFontColor(palette.TextColor)
	r.SetFontSize(12.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	buffer := bytes.NewBuffer([]byte{})
	if err := r.Save(buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
