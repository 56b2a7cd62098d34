package standingsservice

import (
	"context"
	"slices"
	"sync"

	standingsevents "github.com/Black-And-White-Club/tabroom/app/modules/standings/domain/events"
	standingsdb "github.com/Black-And-White-Club/tabroom/app/modules/standings/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Standings Repo
// ------------------------

// FakeStandingsRepo is an in-memory repository. Set a Func field to override
// a method. The service loads data concurrently, so state is mutex guarded.
type FakeStandingsRepo struct {
	mu    sync.Mutex
	trace []string

	configs   map[string]*standingsdb.EventConfig
	ballots   map[string]standingsdb.Ballot
	standings map[string][]standingsdb.Standing
	h2h       map[string][]standingsdb.HeadToHeadRecord

	GetEventConfigFunc   func(ctx context.Context, db bun.IDB, eventID string) (*standingsdb.EventConfig, error)
	UpsertBallotFunc     func(ctx context.Context, db bun.IDB, ballot *standingsdb.Ballot) error
	ListBallotsFunc      func(ctx context.Context, db bun.IDB, eventID string) ([]standingsdb.Ballot, error)
	ReplaceStandingsFunc func(ctx context.Context, db bun.IDB, eventID string, standings []standingsdb.Standing, h2h []standingsdb.HeadToHeadRecord) error
}

func NewFakeStandingsRepo() *FakeStandingsRepo {
	return &FakeStandingsRepo{
		trace:     []string{},
		configs:   map[string]*standingsdb.EventConfig{},
		ballots:   map[string]standingsdb.Ballot{},
		standings: map[string][]standingsdb.Standing{},
		h2h:       map[string][]standingsdb.HeadToHeadRecord{},
	}
}

func (f *FakeStandingsRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

func (f *FakeStandingsRepo) GetEventConfig(ctx context.Context, db bun.IDB, eventID string) (*standingsdb.EventConfig, error) {
	f.record("GetEventConfig")
	if f.GetEventConfigFunc != nil {
		return f.GetEventConfigFunc(ctx, db, eventID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg, ok := f.configs[eventID]
	if !ok {
		return nil, standingsdb.ErrNotFound
	}
	cp := *cfg
	cp.RegistrationIDs = slices.Clone(cfg.RegistrationIDs)
	cp.TiebreakerOrder = slices.Clone(cfg.TiebreakerOrder)
	return &cp, nil
}

func (f *FakeStandingsRepo) UpsertEventConfig(ctx context.Context, db bun.IDB, cfg *standingsdb.EventConfig) error {
	f.record("UpsertEventConfig")
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *cfg
	f.configs[cfg.EventID] = &cp
	return nil
}

func (f *FakeStandingsRepo) UpdateTiebreakerOrder(ctx context.Context, db bun.IDB, eventID string, order []string) error {
	f.record("UpdateTiebreakerOrder")
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg, ok := f.configs[eventID]
	if !ok {
		return standingsdb.ErrNoRowsAffected
	}
	cfg.TiebreakerOrder = slices.Clone(order)
	return nil
}

func (f *FakeStandingsRepo) AddRegistration(ctx context.Context, db bun.IDB, eventID, registrationID string) error {
	f.record("AddRegistration")
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg, ok := f.configs[eventID]
	if !ok {
		return standingsdb.ErrNotFound
	}
	if !slices.Contains(cfg.RegistrationIDs, registrationID) {
		cfg.RegistrationIDs = append(cfg.RegistrationIDs, registrationID)
	}
	return nil
}

func (f *FakeStandingsRepo) UpsertBallot(ctx context.Context, db bun.IDB, ballot *standingsdb.Ballot) error {
	f.record("UpsertBallot")
	if f.UpsertBallotFunc != nil {
		return f.UpsertBallotFunc(ctx, db, ballot)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ballots[ballotKey(ballot.EventID, ballot.PairingID)] = *ballot
	return nil
}

func ballotKey(eventID, pairingID string) string { return eventID + "/" + pairingID }

func (f *FakeStandingsRepo) ListBallots(ctx context.Context, db bun.IDB, eventID string) ([]standingsdb.Ballot, error) {
	f.record("ListBallots")
	if f.ListBallotsFunc != nil {
		return f.ListBallotsFunc(ctx, db, eventID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []standingsdb.Ballot
	for _, b := range f.ballots {
		if b.EventID == eventID {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b standingsdb.Ballot) int {
		if a.PairingID < b.PairingID {
			return -1
		}
		if a.PairingID > b.PairingID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (f *FakeStandingsRepo) ReplaceStandings(ctx context.Context, db bun.IDB, eventID string, standings []standingsdb.Standing, h2h []standingsdb.HeadToHeadRecord) error {
	f.record("ReplaceStandings")
	if f.ReplaceStandingsFunc != nil {
		return f.ReplaceStandingsFunc(ctx, db, eventID, standings, h2h)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.standings[eventID] = slices.Clone(standings)
	f.h2h[eventID] = slices.Clone(h2h)
	return nil
}

func (f *FakeStandingsRepo) ListStandings(ctx context.Context, db bun.IDB, eventID string) ([]standingsdb.Standing, error) {
	f.record("ListStandings")
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.standings[eventID]), nil
}

func (f *FakeStandingsRepo) ListHeadToHead(ctx context.Context, db bun.IDB, eventID string) ([]standingsdb.HeadToHeadRecord, error) {
	f.record("ListHeadToHead")
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.h2h[eventID]), nil
}

// --- Accessors for assertions ---

func (f *FakeStandingsRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

func (f *FakeStandingsRepo) Called(step string) bool {
	return slices.Contains(f.Trace(), step)
}

var _ standingsdb.Repository = (*FakeStandingsRepo)(nil)

// ------------------------
// Fake collaborators
// ------------------------

type FakeScheduler struct {
	events []string
	err    error
}

func (f *FakeScheduler) ScheduleRecompute(ctx context.Context, eventID string) error {
	f.events = append(f.events, eventID)
	return f.err
}

type FakeNotifier struct {
	mu       sync.Mutex
	payloads []standingsevents.StandingsRecomputedPayloadV1
}

func (f *FakeNotifier) StandingsUpdated(ctx context.Context, payload standingsevents.StandingsRecomputedPayloadV1) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
}

type FakeArchive struct {
	keys []string
	body []byte
}

func (f *FakeArchive) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	f.keys = append(f.keys, key)
	f.body = body
	return "https://archive.example/" + key, nil
}
