// Package poll implements the Smart Poller: adaptive polling of the
// upstream history endpoint with stall detection, early completion, and
// terminal failure classification. The tick closure is synchronous; the
// loop owns time via an injectable clock for test determinism.
package poll

import (
	"context"
	"time"

	"github.com/uniedit/genbridge/internal/model"
	apperrors "github.com/uniedit/genbridge/internal/shared/errors"
)

// Clock abstracts time so tests can drive the poller without real sleeps.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time     { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// RealClock is the production Clock.
var RealClock Clock = realClock{}

// TickFunc fetches the current state of one historyId. Returning a
// transport-kind *apperrors.AppError is retried (bounded); any other error
// or a terminal upstream status stops the loop immediately.
type TickFunc func(ctx context.Context) (model.PollingStatus, error)

// Config is the poller's fixed, per-call configuration.
type Config struct {
	HistoryID         string
	ExpectedItemCount int

	InitialInterval time.Duration
	MaxInterval     time.Duration
	IntervalStep    time.Duration
	MaxAttempts     int
	// StableRounds is the number of consecutive ticks without item-count
	// progress after which the interval widens.
	StableRounds int
	// StallThreshold is the number of consecutive no-progress ticks after
	// which the poller declares a stall (finishTime still 0).
	StallThreshold int

	MaxTransportRetries int

	Clock Clock
}

// DefaultConfig mirrors the upstream's observed pacing: ~2s initial
// interval, widening by 1s up to 10s after 3 stable rounds, 40 attempts,
// stall after 12 consecutive ticks with no progress.
func DefaultConfig(historyID string, expectedItemCount int) Config {
	return Config{
		HistoryID:           historyID,
		ExpectedItemCount:   expectedItemCount,
		InitialInterval:     2 * time.Second,
		MaxInterval:         10 * time.Second,
		IntervalStep:        1 * time.Second,
		MaxAttempts:         40,
		StableRounds:        3,
		StallThreshold:      12,
		MaxTransportRetries: 3,
		Clock:               RealClock,
	}
}

// terminalFailureStatuses classifies status codes that end the poll with a
// remote-reported failure rather than success, timeout, or stall. Kept as
// data so it can be extended without touching control flow.
var terminalFailureStatuses = map[int]bool{
	30: true, // FAILED
}

// terminalSuccessStatuses are status codes the upstream uses to signal a
// completed generation, independent of item-count/finish-time evidence.
var terminalSuccessStatuses = map[int]bool{
	50: true, // COMPLETED
}

// StatusTable maps the status codes the upstream reports to human labels.
// Poll does not consult it: terminal classification uses
// terminalFailureStatuses and terminalSuccessStatuses above.
var StatusTable = map[int]string{
	10: "SUCCESS",
	20: "PROCESSING",
	30: "FAILED",
	42: "POST_PROCESSING",
	45: "FINALIZING",
	50: "COMPLETED",
}

// Poll runs the adaptive loop until a terminal outcome or ctx cancellation.
func Poll(ctx context.Context, cfg Config, tick TickFunc) (*model.PollResult, error) {
	clock := cfg.Clock
	if clock == nil {
		clock = RealClock
	}

	start := clock.Now()
	interval := cfg.InitialInterval
	lastItemCount := -1
	stableRounds := 0
	noProgressTicks := 0
	transportFailures := 0

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.New(apperrors.KindTransport, "poll cancelled", err)
		}

		status, err := tick(ctx)
		if err != nil {
			if apperrors.Is(err, apperrors.KindTransport) {
				transportFailures++
				if transportFailures > cfg.MaxTransportRetries {
					return nil, apperrors.New(apperrors.KindTransport, "poll: transport retries exhausted", err)
				}
				clock.Sleep(interval)
				continue
			}
			return nil, err
		}
		transportFailures = 0

		if terminalFailureStatuses[status.Status] || status.FailCode != "" {
			elapsed := clock.Now().Sub(start)
			return &model.PollResult{
				Outcome:     model.PollOutcomeFailed,
				ElapsedTime: elapsed.Milliseconds(),
				Record:      toRecord(status),
			}, apperrors.New(apperrors.KindPollRemoteFailed, "upstream reported a terminal failure", nil)
		}

		succeeded := terminalSuccessStatuses[status.Status] &&
			(status.ItemCount >= cfg.ExpectedItemCount || status.FinishTime > 0)

		if succeeded {
			elapsed := clock.Now().Sub(start)
			return &model.PollResult{
				Outcome:     model.PollOutcomeSucceeded,
				ElapsedTime: elapsed.Milliseconds(),
				Record:      toRecord(status),
			}, nil
		}

		if status.ItemCount > lastItemCount {
			lastItemCount = status.ItemCount
			stableRounds = 0
			noProgressTicks = 0
			interval = cfg.InitialInterval
		} else {
			stableRounds++
			noProgressTicks++
			if stableRounds >= cfg.StableRounds && interval < cfg.MaxInterval {
				interval += cfg.IntervalStep
				if interval > cfg.MaxInterval {
					interval = cfg.MaxInterval
				}
				stableRounds = 0
			}
		}

		if noProgressTicks >= cfg.StallThreshold && status.FinishTime == 0 {
			elapsed := clock.Now().Sub(start)
			return &model.PollResult{
				Outcome:     model.PollOutcomeStalled,
				ElapsedTime: elapsed.Milliseconds(),
				Record:      toRecord(status),
			}, apperrors.New(apperrors.KindPollStall, "no progress past the stall threshold", nil)
		}

		clock.Sleep(interval)
	}

	return &model.PollResult{
		Outcome: model.PollOutcomeTimeout,
	}, apperrors.New(apperrors.KindPollTimeout, "poll: max attempts reached", nil)
}

func toRecord(status model.PollingStatus) *model.HistoryRecord {
	return &model.HistoryRecord{
		HistoryID:  status.HistoryID,
		Status:     status.Status,
		FailCode:   status.FailCode,
		FinishTime: status.FinishTime,
	}
}
