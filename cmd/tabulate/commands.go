package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	standingsservice "github.com/Black-And-White-Club/tabroom/app/modules/standings/application"
	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	standingsauth "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/auth"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// eventFile is the YAML layout of an offline event.
type eventFile struct {
	TournamentID    string                   `yaml:"tournament_id"`
	EventID         string                   `yaml:"event_id"`
	Registrations   []string                 `yaml:"registrations"`
	BreakCount      int                      `yaml:"break_count"`
	TiebreakerOrder []string                 `yaml:"tiebreaker_order"`
	Ballots         []standingsdomain.Ballot `yaml:"ballots"`
}

func inputFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{
		&cli.StringFlag{Name: "ballots", Aliases: []string{"b"}, Usage: "ballot file (.yaml, .yml or .xlsx)", Required: true},
		&cli.StringSliceFlag{Name: "order", Usage: "tiebreaker order, overrides the file"},
		&cli.IntFlag{Name: "break", Value: -1, Usage: "number of breaking competitors, overrides the file"},
	}, extra...)
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "tabulate",
		Usage:     "debate standings from the command line",
		Writer:    out,
		ErrWriter: out,
		Commands: []*cli.Command{
			{
				Name:  "standings",
				Usage: "rank every competitor",
				Flags: inputFlags(
					&cli.StringFlag{Name: "format", Value: "table", Usage: "table, json or xlsx"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file for xlsx"},
				),
				Action: standingsAction,
			},
			{
				Name:   "tiers",
				Usage:  "group competitors that tie on every criterion but coin_flip",
				Flags:  inputFlags(),
				Action: tiersAction,
			},
			{
				Name:      "compare",
				Usage:     "explain which of two competitors ranks higher",
				ArgsUsage: "<registration> <registration>",
				Flags:     inputFlags(),
				Action:    compareAction,
			},
			{
				Name:      "check-order",
				Usage:     "validate a tiebreaker order",
				ArgsUsage: "<criterion...>",
				Action: func(c *cli.Context) error {
					order, err := standingsdomain.ParseTiebreakerOrder(c.Args().Slice())
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, strings.Join(standingsdomain.OrderStrings(order), ","))
					return nil
				},
			},
			{
				Name:  "token",
				Usage: "mint an API token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "secret", EnvVars: []string{"JWT_SECRET"}, Required: true},
					&cli.StringFlag{Name: "issuer", EnvVars: []string{"JWT_ISSUER"}, Value: "tabroom"},
					&cli.StringFlag{Name: "subject", Value: "tabulate"},
					&cli.StringFlag{Name: "role", Value: string(standingsauth.RoleAdmin)},
					&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour},
				},
				Action: tokenAction,
			},
		},
	}
}

func loadInput(c *cli.Context) (standingsdomain.TabInput, error) {
	path := c.String("ballots")
	data, err := os.ReadFile(path)
	if err != nil {
		return standingsdomain.TabInput{}, fmt.Errorf("read ballots: %w", err)
	}

	var ev eventFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		ev.Ballots, err = standingsservice.ParseBallotsXLSX(data)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &ev)
	default:
		err = fmt.Errorf("unsupported ballot file %q", filepath.Base(path))
	}
	if err != nil {
		return standingsdomain.TabInput{}, err
	}

	for _, b := range ev.Ballots {
		if err := b.Validate(); err != nil {
			return standingsdomain.TabInput{}, fmt.Errorf("ballot %s: %w", b.PairingID, err)
		}
	}

	names := ev.TiebreakerOrder
	if c.IsSet("order") {
		names = c.StringSlice("order")
	}
	var order []standingsdomain.TiebreakerType
	if len(names) > 0 {
		if order, err = standingsdomain.ParseTiebreakerOrder(names); err != nil {
			return standingsdomain.TabInput{}, err
		}
	}
	if n := c.Int("break"); n >= 0 {
		ev.BreakCount = n
	}

	return standingsdomain.TabInput{
		TournamentID:  ev.TournamentID,
		EventID:       ev.EventID,
		Registrations: ev.Registrations,
		Ballots:       ev.Ballots,
		Order:         order,
		BreakCount:    ev.BreakCount,
		ComputedAt:    time.Now().UTC(),
	}, nil
}

func standingsAction(c *cli.Context) error {
	in, err := loadInput(c)
	if err != nil {
		return err
	}
	tab := standingsdomain.ComputeStandings(in)

	switch c.String("format") {
	case "json":
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(tab.Standings)
	case "xlsx":
		target := c.String("out")
		if target == "" {
			return errors.New("--out is required for xlsx")
		}
		data, err := standingsservice.WriteStandingsWorkbook(tab.Standings, tab.Tiers)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "wrote %d competitors to %s\n", len(tab.Standings), target)
		return nil
	case "table":
		return writeTable(c.App.Writer, tab.Standings)
	default:
		return fmt.Errorf("unknown format %q", c.String("format"))
	}
}

func writeTable(out io.Writer, standings []standingsdomain.ComputedStanding) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tCOMPETITOR\tW-L\tSPEAKS\tADJ\tOPP WIN%\tBREAK")
	for _, s := range standings {
		brk := ""
		if s.IsBreaking {
			brk = fmt.Sprintf("#%d", *s.BreakSeed)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d-%d\t%.1f\t%.1f\t%.3f\t%s\n",
			*s.OverallRank, s.RegistrationID, s.Wins, s.Losses,
			s.TotalSpeaks, s.AdjustedSpeaks, s.OppWinPct, brk)
	}
	return tw.Flush()
}

func tiersAction(c *cli.Context) error {
	in, err := loadInput(c)
	if err != nil {
		return err
	}
	tab := standingsdomain.ComputeStandings(in)
	for i, tier := range tab.Tiers {
		ids := make([]string, len(tier))
		for j, s := range tier {
			ids[j] = s.RegistrationID
		}
		fmt.Fprintf(c.App.Writer, "%d: %s\n", i+1, strings.Join(ids, ", "))
	}
	return nil
}

func compareAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("compare needs exactly two registrations")
	}
	in, err := loadInput(c)
	if err != nil {
		return err
	}
	order := in.Order
	if len(order) == 0 {
		order = standingsdomain.DefaultTiebreakerOrder
	}
	tab := standingsdomain.ComputeStandings(in)

	byID := make(map[string]standingsdomain.ComputedStanding, len(tab.Standings))
	for _, s := range tab.Standings {
		byID[s.RegistrationID] = s
	}
	a, okA := byID[c.Args().Get(0)]
	b, okB := byID[c.Args().Get(1)]
	if !okA || !okB {
		return errors.New("unknown registration")
	}

	res := standingsdomain.CompareTiebreakerOrder(a, b, order, standingsdomain.BuildHeadToHeadMap(tab.HeadToHead))
	switch {
	case res.Result > 0:
		fmt.Fprintf(c.App.Writer, "%s ranks above %s on %s\n", b.RegistrationID, a.RegistrationID, res.DecidedBy)
	case res.Result < 0:
		fmt.Fprintf(c.App.Writer, "%s ranks above %s on %s\n", a.RegistrationID, b.RegistrationID, res.DecidedBy)
	default:
		fmt.Fprintf(c.App.Writer, "%s and %s are tied on every criterion\n", a.RegistrationID, b.RegistrationID)
	}
	return nil
}

func tokenAction(c *cli.Context) error {
	role := standingsauth.Role(c.String("role"))
	if role != standingsauth.RoleAdmin && role != standingsauth.RoleViewer {
		return fmt.Errorf("unknown role %q", role)
	}
	provider, err := standingsauth.NewProvider(c.String("secret"), c.String("issuer"))
	if err != nil {
		return err
	}
	token, err := provider.GenerateToken(c.String("subject"), role, c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}
