// Package proposal holds the single outstanding AI-drafted change awaiting an
// operator decision.
package proposal

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
)

// Payload is the kind-specific content of a proposal.
type Payload interface {
	Kind() domain.ActionKind
}

// FileEditPayload carries a full replacement for an existing file.
type FileEditPayload struct {
	Path         string
	Original     string
	Proposed     string
	Diff         string
	Instructions string
}

func (FileEditPayload) Kind() domain.ActionKind { return domain.ActionFileEdit }

// FileCreatePayload carries the content of a file that does not exist yet.
type FileCreatePayload struct {
	Path        string
	Content     string
	Description string
}

func (FileCreatePayload) Kind() domain.ActionKind { return domain.ActionFileCreate }

// TaskPayload carries a generated step plan.
type TaskPayload struct {
	Description string
	Plan        string
}

func (TaskPayload) Kind() domain.ActionKind { return domain.ActionTaskExecute }

// Proposal is an AI-drafted mutation awaiting approval.
type Proposal struct {
	ID        ulid.ULID
	CreatedAt time.Time
	Payload   Payload
}

// Kind returns the payload's action kind.
func (p Proposal) Kind() domain.ActionKind {
	if p.Payload == nil {
		return ""
	}
	return p.Payload.Kind()
}

// New wraps a payload with a fresh id and creation time.
func New(payload Payload, now time.Time) Proposal {
	return Proposal{
		ID:        ulid.MustNew(ulid.Timestamp(now), rand.Reader),
		CreatedAt: now,
		Payload:   payload,
	}
}

// Slot holds at most one open proposal. All transitions are linearizable.
type Slot struct {
	mu      sync.Mutex
	pending *Proposal
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Slot.
type Option func(*Slot)

// WithTTL expires open proposals older than ttl. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(s *Slot) { s.ttl = ttl }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Slot) { s.now = now }
}

// NewSlot returns an empty slot.
func NewSlot(opts ...Option) *Slot {
	s := &Slot{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Propose opens p. It fails with ErrProposalPending while another proposal is
// open; an expired one counts as empty.
func (s *Slot) Propose(p Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()
	if s.pending != nil {
		return domain.ProposalPending(s.pending.Kind())
	}
	s.pending = &p
	return nil
}

// Replace opens p unconditionally and returns the proposal it displaced, if any.
func (s *Slot) Replace(p Proposal) *Proposal {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()
	displaced := s.pending
	s.pending = &p
	return displaced
}

// Approve empties the slot and hands the proposal to the caller, who is its
// only executor.
func (s *Slot) Approve() (Proposal, error) {
	return s.take()
}

// Reject empties the slot and returns the discarded proposal.
func (s *Slot) Reject() (Proposal, error) {
	return s.take()
}

// Pending reports the open proposal without changing state. A proposal past
// its TTL is still reported so the next decision can surface the expiry.
func (s *Slot) Pending() (Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return Proposal{}, false
	}
	return *s.pending, true
}

// Expire drops the open proposal if it is past its TTL and returns it, so the
// caller can tell the operator what was discarded.
func (s *Slot) Expire() (Proposal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pending
	s.expireLocked()
	if p == nil || s.pending != nil {
		return Proposal{}, false
	}
	return *p, true
}

// Clear drops any open proposal.
func (s *Slot) Clear() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

func (s *Slot) take() (Proposal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending == nil {
		return Proposal{}, domain.NoPendingProposal()
	}
	p := *s.pending
	s.pending = nil
	if age := s.now().Sub(p.CreatedAt); s.ttl > 0 && age > s.ttl {
		return p, domain.ProposalExpired(p.Kind(), age)
	}
	return p, nil
}

func (s *Slot) expireLocked() {
	if s.pending == nil || s.ttl <= 0 {
		return
	}
	if s.now().Sub(s.pending.CreatedAt) > s.ttl {
		s.pending = nil
	}
}
