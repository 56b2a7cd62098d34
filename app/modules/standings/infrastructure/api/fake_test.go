package standingsapi

import (
	"context"
	"errors"

	standingsservice "github.com/Black-And-White-Club/tabroom/app/modules/standings/application"
	standingsdomain "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain"
	standingsqueue "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/queue"
)

var errNotStubbed = errors.New("not stubbed")

// FakeStandingsService stubs the service. Unset funcs return errNotStubbed.
type FakeStandingsService struct {
	trace []string

	ConfigureEventFunc        func(ctx context.Context, setup standingsservice.EventSetup) (*standingsservice.EventSetup, error)
	SubmitBallotFunc          func(ctx context.Context, ballot standingsdomain.Ballot) (standingsservice.BallotOperationResult, error)
	RecomputeStandingsFunc    func(ctx context.Context, eventID string) (standingsservice.StandingsOperationResult, error)
	UpdateTiebreakerOrderFunc func(ctx context.Context, eventID string, names []string) (standingsservice.TiebreakerOperationResult, error)
	GetStandingsFunc          func(ctx context.Context, eventID string) ([]standingsdomain.ComputedStanding, error)
	GetTiersFunc              func(ctx context.Context, eventID string, names []string) ([][]standingsdomain.ComputedStanding, error)
	ExplainPairFunc           func(ctx context.Context, eventID, a, b string) (*standingsservice.PairExplanation, error)
	ExportStandingsXLSXFunc   func(ctx context.Context, eventID string) ([]byte, error)
	SpeakerChartFunc          func(ctx context.Context, eventID, registrationID string) ([]byte, error)
	ArchiveSnapshotFunc       func(ctx context.Context, eventID string) (string, error)
}

func (f *FakeStandingsService) record(step string) { f.trace = append(f.trace, step) }

func (f *FakeStandingsService) Trace() []string { return f.trace }

func (f *FakeStandingsService) ConfigureEvent(ctx context.Context, setup standingsservice.EventSetup) (*standingsservice.EventSetup, error) {
	f.record("ConfigureEvent")
	if f.ConfigureEventFunc != nil {
		return f.ConfigureEventFunc(ctx, setup)
	}
	return nil, errNotStubbed
}

func (f *FakeStandingsService) SubmitBallot(ctx context.Context, ballot standingsdomain.Ballot) (standingsservice.BallotOperationResult, error) {
	f.record("SubmitBallot")
	if f.SubmitBallotFunc != nil {
		return f.SubmitBallotFunc(ctx, ballot)
	}
	return standingsservice.BallotOperationResult{}, errNotStubbed
}

func (f *FakeStandingsService) RecomputeStandings(ctx context.Context, eventID string) (standingsservice.StandingsOperationResult, error) {
	f.record("RecomputeStandings")
	if f.RecomputeStandingsFunc != nil {
		return f.RecomputeStandingsFunc(ctx, eventID)
	}
	return standingsservice.StandingsOperationResult{}, errNotStubbed
}

func (f *FakeStandingsService) UpdateTiebreakerOrder(ctx context.Context, eventID string, names []string) (standingsservice.TiebreakerOperationResult, error) {
	f.record("UpdateTiebreakerOrder")
	if f.UpdateTiebreakerOrderFunc != nil {
		return f.UpdateTiebreakerOrderFunc(ctx, eventID, names)
	}
	return standingsservice.TiebreakerOperationResult{}, errNotStubbed
}

func (f *FakeStandingsService) GetStandings(ctx context.Context, eventID string) ([]standingsdomain.ComputedStanding, error) {
	f.record("GetStandings")
	if f.GetStandingsFunc != nil {
		return f.GetStandingsFunc(ctx, eventID)
	}
	return nil, errNotStubbed
}

func (f *FakeStandingsService) GetTiers(ctx context.Context, eventID string, names []string) ([][]standingsdomain.ComputedStanding, error) {
	f.record("GetTiers")
	if f.GetTiersFunc != nil {
		return f.GetTiersFunc(ctx, eventID, names)
	}
	return nil, errNotStubbed
}

func (f *FakeStandingsService) ExplainPair(ctx context.Context, eventID, a, b string) (*standingsservice.PairExplanation, error) {
	f.record("ExplainPair")
	if f.ExplainPairFunc != nil {
		return f.ExplainPairFunc(ctx, eventID, a, b)
	}
	return nil, errNotStubbed
}

func (f *FakeStandingsService) ExportStandingsXLSX(ctx context.Context, eventID string) ([]byte, error) {
	f.record("ExportStandingsXLSX")
	if f.ExportStandingsXLSXFunc != nil {
		return f.ExportStandingsXLSXFunc(ctx, eventID)
	}
	return nil, errNotStubbed
}

func (f *FakeStandingsService) SpeakerChart(ctx context.Context, eventID, registrationID string) ([]byte, error) {
	f.record("SpeakerChart")
	if f.SpeakerChartFunc != nil {
		return f.SpeakerChartFunc(ctx, eventID, registrationID)
	}
	return nil, errNotStubbed
}

func (f *FakeStandingsService) ArchiveSnapshot(ctx context.Context, eventID string) (string, error) {
	f.record("ArchiveSnapshot")
	if f.ArchiveSnapshotFunc != nil {
		return f.ArchiveSnapshotFunc(ctx, eventID)
	}
	return "", errNotStubbed
}

var _ standingsservice.Service = (*FakeStandingsService)(nil)

type fakeJobs struct {
	jobs []standingsqueue.JobInfo
}

func (f *fakeJobs) PendingJobs(ctx context.Context, eventID string) ([]standingsqueue.JobInfo, error) {
	return f.jobs, nil
}
