// Package state holds one dashboard session: the loaded record set of each
// section, its load status, and the table selections applied to it.
package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/webpos/posdash/internal/pos"
)

// Status is a section's load state.
type Status string

// Section load states. A section starts idle and moves through loading to
// ready or failed on every fetch.
const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Policy decides which of several overlapping fetches commits.
type Policy string

const (
	// LastResolvedWins commits every response in arrival order, so a slow
	// superseded fetch can overwrite a newer one.
	LastResolvedWins Policy = "last-resolved"
	// Sequenced drops a response issued before the newest committed one.
	Sequenced Policy = "sequenced"
)

// ParsePolicy validates a policy name. Blank selects LastResolvedWins.
func ParsePolicy(value string) (Policy, error) {
	switch p := Policy(value); p {
	case "":
		return LastResolvedWins, nil
	case LastResolvedWins, Sequenced:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown race policy %q", pos.ErrValidation, value)
	}
}

// Ticket identifies one fetch. Tickets increase in issue order.
type Ticket uint64

// Snapshot is a consistent read of a section.
type Snapshot[T any] struct {
	Status   Status    `json:"status"`
	Data     T         `json:"-"`
	Error    string    `json:"error,omitempty"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	// Version is the ticket of the committed data. It changes whenever the
	// data does.
	Version uint64 `json:"version"`
}

// Section is the record set of one dashboard section. A failed fetch keeps
// the previously committed data.
type Section[T any] struct {
	mu        sync.RWMutex
	policy    Policy
	now       func() time.Time
	status    Status
	data      T
	err       error
	issued    Ticket
	committed Ticket
	loadedAt  time.Time
}

// NewSection starts an idle section holding zero.
func NewSection[T any](policy Policy, zero T) *Section[T] {
	if policy == "" {
		policy = LastResolvedWins
	}
	return &Section[T]{policy: policy, now: time.Now, status: StatusIdle, data: zero}
}

// Begin issues a ticket and marks the section loading.
func (s *Section[T]) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	s.status = StatusLoading
	s.err = nil
	return s.issued
}

// accept reports whether a response for t may commit. Callers hold mu.
func (s *Section[T]) accept(t Ticket) bool {
	if s.policy == Sequenced && t < s.committed {
		return false
	}
	s.committed = t
	return true
}

// Resolve commits data fetched under t. It reports false when the policy
// discarded the response.
func (s *Section[T]) Resolve(t Ticket, data T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.accept(t) {
		return false
	}
	s.data = data
	s.status = StatusReady
	s.err = nil
	s.loadedAt = s.now()
	return true
}

// Fail records err for the fetch issued under t.
func (s *Section[T]) Fail(t Ticket, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.accept(t) {
		return false
	}
	s.status = StatusFailed
	s.err = err
	return true
}

// Load runs fetch under a new ticket and commits its outcome. The fetch is
// not cancelled with ctx: a caller that gives up still lets the response
// land, as any other in-flight fetch would.
func (s *Section[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) error {
	ticket := s.Begin()
	done := make(chan error, 1)
	go func() {
		data, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			s.Fail(ticket, err)
		} else {
			s.Resolve(ticket, data)
		}
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current load state.
func (s *Section[T]) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Snapshot reads status and data together.
func (s *Section[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot[T]{
		Status:   s.status,
		Data:     s.data,
		LoadedAt: s.loadedAt,
		Version:  uint64(s.committed),
	}
	if s.err != nil {
		snap.Error = s.err.Error()
	}
	return snap
}
