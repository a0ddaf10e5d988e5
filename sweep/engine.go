package sweep

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	// DefaultTimeout bounds a single sweep.
	DefaultTimeout = 5 * time.Minute

	singleFlightKey = "overdue-sweep"
)

// Result summarizes one sweep. A failed or skipped sweep reports zero counts
// because nothing it did was committed.
type Result struct {
	StartedAt               time.Time     `json:"startedAt"`
	Duration                time.Duration `json:"duration"`
	Skipped                 bool          `json:"skipped"`
	LoansProcessed          int           `json:"loansProcessed"`
	NewlyOverdue            int           `json:"newlyOverdue"`
	AccountsLocked          int           `json:"accountsLocked"`
	NotificationsCreated    int           `json:"notificationsCreated"`
	NotificationsSuppressed int           `json:"notificationsSuppressed"`
	ReservationsExpired     int           `json:"reservationsExpired"`
	ReservationsHandedOff   int           `json:"reservationsHandedOff"`
}

// Engine runs overdue sweeps against a circulation.Store.
type Engine struct {
	store            circulation.Store
	clock            circulation.Clock
	timeout          time.Duration
	group            singleflight.Group
	logger           circulation.Logger
	contextualLogger circulation.ContextualLogger
	metricsCollector circulation.MetricsCollector
	tracingCollector circulation.TracingCollector
}

// NewEngine creates an Engine with optional configuration.
func NewEngine(store circulation.Store, options ...Option) (*Engine, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	e := &Engine{
		store:   store,
		clock:   circulation.SystemClock,
		timeout: DefaultTimeout,
	}

	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// RunSweep executes one sweep. Callers arriving while a sweep of this Engine is running
// share its outcome instead of starting another one. A sweep that finds the store's sweep
// lock taken returns a skipped Result and no error.
func (e *Engine) RunSweep(ctx context.Context) (Result, error) {
	value, err, _ := e.group.Do(singleFlightKey, func() (any, error) {
		return e.runSweep(ctx)
	})

	result, _ := value.(Result)

	return result, err
}

func (e *Engine) runSweep(ctx context.Context) (Result, error) {
	startedAt := e.clock()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ctx, span := e.startSweepSpan(ctx)
	e.logSweepStarted(ctx)

	run := sweepRun{now: startedAt}

	err := e.store.WithinTx(ctx, func(ctx context.Context, uow circulation.UnitOfWork) error {
		run.reset()
		return run.execute(ctx, uow)
	})

	duration := time.Since(start)

	switch {
	case errors.Is(err, circulation.ErrSweepInProgress):
		result := Result{StartedAt: startedAt, Duration: duration, Skipped: true}
		e.recordSweepSkipped(ctx, result, span)

		return result, nil

	case err != nil:
		result := Result{StartedAt: startedAt, Duration: duration}
		e.recordSweepFailed(ctx, err, run, result, span)

		return result, err
	}

	result := run.result
	result.StartedAt = startedAt
	result.Duration = duration
	e.recordSweepCompleted(ctx, result, span)

	return result, nil
}

// sweepRun holds the counts of one attempt. They only become the Result after a commit.
type sweepRun struct {
	now          time.Time
	candidates   int
	failedLoanID uuid.UUID
	result       Result
}

func (r *sweepRun) reset() {
	r.candidates = 0
	r.failedLoanID = uuid.Nil
	r.result = Result{}
}

func (r *sweepRun) execute(ctx context.Context, uow circulation.UnitOfWork) error {
	acquired, err := uow.TryAcquireSweepLock(ctx)
	if err != nil {
		return err
	}

	if !acquired {
		return circulation.ErrSweepInProgress
	}

	pastDue, err := uow.FindOverdueLoans(ctx, r.now)
	if err != nil {
		return err
	}

	reengageable, err := uow.FindReengageableOverdueLoans(ctx)
	if err != nil {
		return err
	}

	candidates := MergeCandidates(pastDue, reengageable)
	r.candidates = len(candidates)
	lockedAccounts := make(map[uuid.UUID]struct{})

	for _, loan := range candidates {
		outcome, applyErr := circulation.ApplyOverdueTransition(ctx, uow, loan, r.now)
		if applyErr != nil {
			r.failedLoanID = loan.ID
			return applyErr
		}

		r.result.LoansProcessed++
		lockedAccounts[loan.UserID] = struct{}{}

		if outcome.NewlyOverdue {
			r.result.NewlyOverdue++
		}

		switch outcome.Notification {
		case circulation.NotificationCreated:
			r.result.NotificationsCreated++
		case circulation.NotificationSuppressed:
			r.result.NotificationsSuppressed++
		}
	}

	r.result.AccountsLocked = len(lockedAccounts)

	return r.expireReservations(ctx, uow)
}

// expireReservations expires lapsed holds and offers copies whose notified holder never
// came to the next patron in the queue.
func (r *sweepRun) expireReservations(ctx context.Context, uow circulation.UnitOfWork) error {
	expired, err := uow.ExpireReservations(ctx, r.now)
	if err != nil {
		return err
	}

	r.result.ReservationsExpired = len(expired)

	for _, reservation := range expired {
		book, getErr := uow.GetBook(ctx, reservation.BookID)
		if getErr != nil {
			return getErr
		}

		if book.AvailableQuantity == 0 {
			continue
		}

		outcome, handoffErr := circulation.FulfillNextReservation(ctx, uow, reservation.BookID, r.now)
		if handoffErr != nil {
			return handoffErr
		}

		if outcome.Notified {
			r.result.ReservationsHandedOff++
		}
	}

	return nil
}

// MergeCandidates concatenates loan lists and drops repeated loan ids, keeping the first occurrence.
func MergeCandidates(lists ...circulation.Loans) circulation.Loans {
	seen := make(map[uuid.UUID]struct{})
	merged := make(circulation.Loans, 0)

	for _, list := range lists {
		for _, loan := range list {
			if _, dup := seen[loan.ID]; dup {
				continue
			}

			seen[loan.ID] = struct{}{}
			merged = append(merged, loan)
		}
	}

	return merged
}
