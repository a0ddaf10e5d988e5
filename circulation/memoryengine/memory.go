package memoryengine

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation/circulation"
)

const (
	logMsgTxCommitted  = "unit of work committed"
	logMsgTxRolledBack = "unit of work rolled back"
	logAttrError       = "error"
	logAttrMutations   = "mutations"
)

// Store is an in-memory circulation.Store.
type Store struct {
	txMu      sync.Mutex
	sweepMu   sync.Mutex
	faultsMu  sync.Mutex
	committed *state
	faults    map[string]error
	logger    circulation.Logger
}

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithLogger sets the logger for the Store.
func WithLogger(logger circulation.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// NewStore creates an empty in-memory Store.
func NewStore(options ...Option) (*Store, error) {
	s := &Store{
		committed: newState(),
		faults:    make(map[string]error),
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// WithinTx runs fn on a private copy of the state and publishes the copy when fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn circulation.UnitOfWorkFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	uow := &unitOfWork{
		store: s,
		state: s.committed.clone(),
	}
	defer uow.releaseSweepLock()

	if err := fn(ctx, uow); err != nil {
		if s.logger != nil {
			s.logger.Debug(logMsgTxRolledBack, logAttrError, err.Error())
		}

		return err
	}

	if err := ctx.Err(); err != nil {
		if s.logger != nil {
			s.logger.Debug(logMsgTxRolledBack, logAttrError, err.Error())
		}

		return err
	}

	s.committed = uow.state

	if s.logger != nil {
		s.logger.Debug(logMsgTxCommitted, logAttrMutations, uow.mutations)
	}

	return nil
}

// HoldSweepLock takes the sweep lock as if another process was sweeping.
// The returned function releases it.
func (s *Store) HoldSweepLock() func() {
	s.sweepMu.Lock()
	return s.sweepMu.Unlock
}

// InjectFault makes the named unit-of-work operation (e.g. "CreateNotification") fail with err
// until ClearFaults is called.
func (s *Store) InjectFault(operation string, err error) {
	s.faultsMu.Lock()
	defer s.faultsMu.Unlock()

	s.faults[operation] = err
}

// ClearFaults removes all injected faults.
func (s *Store) ClearFaults() {
	s.faultsMu.Lock()
	defer s.faultsMu.Unlock()

	s.faults = make(map[string]error)
}

func (s *Store) fault(operation string) error {
	s.faultsMu.Lock()
	defer s.faultsMu.Unlock()

	return s.faults[operation]
}

// Snapshot returns copies of all committed loans, accounts, books, reservations and notifications.
// It is meant for assertions in tests.
func (s *Store) Snapshot() Snapshot {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	st := s.committed.clone()

	return Snapshot{
		Loans:         st.loans,
		Accounts:      st.accounts,
		Books:         st.books,
		Reservations:  st.reservations,
		Notifications: st.notifications,
	}
}

// Snapshot is a copy of the committed state.
type Snapshot struct {
	Loans         map[uuid.UUID]circulation.Loan
	Accounts      map[uuid.UUID]circulation.Account
	Books         map[uuid.UUID]circulation.Book
	Reservations  map[uuid.UUID]circulation.Reservation
	Notifications map[uuid.UUID]circulation.Notification
}

var _ circulation.Store = (*Store)(nil)
