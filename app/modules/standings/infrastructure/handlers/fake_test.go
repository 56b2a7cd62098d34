package standingshandlers

import (
	"context"

	standingsservice "github.com/Black-And-White-Club/tabroom/app/modules/standings/application"
	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
)

// ------------------------
// Fake Standings Service
// ------------------------

type FakeStandingsService struct {
	trace []string

	SubmitBallotFunc          func(ctx context.Context, ballot standingsdomain.Ballot) (standingsservice.BallotOperationResult, error)
	RecomputeStandingsFunc    func(ctx context.Context, eventID string) (standingsservice.StandingsOperationResult, error)
	UpdateTiebreakerOrderFunc func(ctx context.Context, eventID string, names []string) (standingsservice.TiebreakerOperationResult, error)
}

func NewFakeStandingsService() *FakeStandingsService {
	return &FakeStandingsService{
		trace: []string{},
	}
}

func (f *FakeStandingsService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakeStandingsService) ConfigureEvent(ctx context.Context, setup standingsservice.EventSetup) (*standingsservice.EventSetup, error) {
	f.record("ConfigureEvent")
	return &setup, nil
}

func (f *FakeStandingsService) SubmitBallot(ctx context.Context, ballot standingsdomain.Ballot) (standingsservice.BallotOperationResult, error) {
	f.record("SubmitBallot")
	if f.SubmitBallotFunc != nil {
		return f.SubmitBallotFunc(ctx, ballot)
	}
	return standingsservice.BallotOperationResult{}, nil
}

func (f *FakeStandingsService) RecomputeStandings(ctx context.Context, eventID string) (standingsservice.StandingsOperationResult, error) {
	f.record("RecomputeStandings")
	if f.RecomputeStandingsFunc != nil {
		return f.RecomputeStandingsFunc(ctx, eventID)
	}
	return standingsservice.StandingsOperationResult{}, nil
}

func (f *FakeStandingsService) UpdateTiebreakerOrder(ctx context.Context, eventID string, names []string) (standingsservice.TiebreakerOperationResult, error) {
	f.record("UpdateTiebreakerOrder")
	if f.UpdateTiebreakerOrderFunc != nil {
		return f.UpdateTiebreakerOrderFunc(ctx, eventID, names)
	}
	return standingsservice.TiebreakerOperationResult{}, nil
}

func (f *FakeStandingsService) GetStandings(ctx context.Context, eventID string) ([]standingsdomain.ComputedStanding, error) {
	f.record("GetStandings")
	return nil, nil
}

func (f *FakeStandingsService) GetTiers(ctx context.Context, eventID string, names []string) ([][]standingsdomain.ComputedStanding, error) {
	f.record("GetTiers")
	return nil, nil
}

func (f *FakeStandingsService) ExplainPair(ctx context.Context, eventID, a, b string) (*standingsservice.PairExplanation, error) {
	f.record("ExplainPair")
	return nil, nil
}

func (f *FakeStandingsService) ExportStandingsXLSX(ctx context.Context, eventID string) ([]byte, error) {
	f.record("ExportStandingsXLSX")
	return nil, nil
}

func (f *FakeStandingsService) SpeakerChart(ctx context.Context, eventID, registrationID string) ([]byte, error) {
	f.record("SpeakerChart")
	return nil, nil
}

func (f *FakeStandingsService) ArchiveSnapshot(ctx context.Context, eventID string) (string, error) {
	f.record("ArchiveSnapshot")
	return "", nil
}

// --- Accessors for assertions ---

func (f *FakeStandingsService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ standingsservice.Service = (*FakeStandingsService)(nil)
