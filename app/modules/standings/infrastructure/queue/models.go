package standingsqueue

import "time"

// QueueName is the River queue standings jobs run on.
const QueueName = "standings"

// RecomputeStandingsJob rebuilds the standings of one event. Window is the
// start of the debounce window the job was requested in; together with
// EventID it keys job uniqueness, so every window gets at most one job.
type RecomputeStandingsJob struct {
	EventID string `json:"event_id"`
	Window  int64  `json:"window"`
}

// Kind returns the job type identifier for River
func (RecomputeStandingsJob) Kind() string { return "standings_recompute" }

// debounceWindow returns the window containing now and the time its job runs.
func debounceWindow(now time.Time, debounce time.Duration) (window int64, runAt time.Time) {
	if debounce <= 0 {
		return now.UnixNano(), now
	}
	start := now.Truncate(debounce)
	return start.UnixNano(), start.Add(debounce)
}

// JobInfo represents information about a queued job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	EventID     string `json:"event_id"`
	State       string `json:"state"`
	ScheduledAt string `json:"scheduled_at"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
