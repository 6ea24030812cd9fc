package proposal

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rhonimohanraj/anti-bot/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func editProposal(now time.Time) Proposal {
	return New(FileEditPayload{Path: "a.txt", Original: "a\n", Proposed: "b\n"}, now)
}

func TestProposeApprove(t *testing.T) {
	slot := NewSlot()
	p := editProposal(time.Now())
	require.NoError(t, slot.Propose(p))

	got, ok := slot.Pending()
	require.True(t, ok)
	assert.Equal(t, p.ID, got.ID)

	approved, err := slot.Approve()
	require.NoError(t, err)
	assert.Equal(t, p.ID, approved.ID)

	_, ok = slot.Pending()
	assert.False(t, ok)
}

func TestApproveIsAtMostOnce(t *testing.T) {
	slot := NewSlot()
	require.NoError(t, slot.Propose(editProposal(time.Now())))

	_, err := slot.Approve()
	require.NoError(t, err)

	_, err = slot.Approve()
	assert.ErrorIs(t, err, domain.ErrNoPendingProposal)
}

func TestRejectEmptiesSlot(t *testing.T) {
	slot := NewSlot()
	require.NoError(t, slot.Propose(New(TaskPayload{Description: "x"}, time.Now())))

	rejected, err := slot.Reject()
	require.NoError(t, err)
	assert.Equal(t, domain.ActionTaskExecute, rejected.Kind())

	_, ok := slot.Pending()
	assert.False(t, ok)
}

func TestDecisionOnEmpty(t *testing.T) {
	slot := NewSlot()
	_, err := slot.Approve()
	assert.ErrorIs(t, err, domain.ErrNoPendingProposal)
	_, err = slot.Reject()
	assert.ErrorIs(t, err, domain.ErrNoPendingProposal)
}

func TestProposeWhileOpenKeepsFirst(t *testing.T) {
	slot := NewSlot()
	first := editProposal(time.Now())
	require.NoError(t, slot.Propose(first))

	err := slot.Propose(New(FileCreatePayload{Path: "b.txt"}, time.Now()))
	require.ErrorIs(t, err, domain.ErrProposalPending)

	got, _ := slot.Pending()
	assert.Equal(t, first.ID, got.ID)
}

func TestReplaceReportsDisplaced(t *testing.T) {
	slot := NewSlot()
	first := editProposal(time.Now())
	second := New(FileCreatePayload{Path: "b.txt"}, time.Now())

	assert.Nil(t, slot.Replace(first))
	displaced := slot.Replace(second)
	require.NotNil(t, displaced)
	assert.Equal(t, first.ID, displaced.ID)

	got, _ := slot.Pending()
	assert.Equal(t, second.ID, got.ID)
}

func TestExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	slot := NewSlot(WithTTL(10*time.Minute), WithClock(clock.Now))
	require.NoError(t, slot.Propose(editProposal(clock.Now())))

	clock.Advance(11 * time.Minute)
	p, err := slot.Approve()
	require.ErrorIs(t, err, domain.ErrProposalExpired)
	assert.Equal(t, domain.ActionFileEdit, p.Kind())

	_, ok := slot.Pending()
	assert.False(t, ok, "expired proposal is dropped")
}

func TestExpiredCountsAsEmptyForPropose(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	slot := NewSlot(WithTTL(time.Minute), WithClock(clock.Now))
	require.NoError(t, slot.Propose(editProposal(clock.Now())))

	clock.Advance(2 * time.Minute)
	assert.NoError(t, slot.Propose(editProposal(clock.Now())))
}

func TestExpireReturnsDroppedProposal(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	slot := NewSlot(WithTTL(time.Minute), WithClock(clock.Now))
	first := editProposal(clock.Now())
	require.NoError(t, slot.Propose(first))

	_, expired := slot.Expire()
	assert.False(t, expired, "fresh proposal stays")
	_, open := slot.Pending()
	assert.True(t, open)

	clock.Advance(2 * time.Minute)
	got, expired := slot.Expire()
	require.True(t, expired)
	assert.Equal(t, first.ID, got.ID)
	_, open = slot.Pending()
	assert.False(t, open)

	_, expired = slot.Expire()
	assert.False(t, expired, "empty slot has nothing to expire")
}

func TestZeroTTLNeverExpires(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	slot := NewSlot(WithClock(clock.Now))
	require.NoError(t, slot.Propose(editProposal(clock.Now())))

	clock.Advance(24 * time.Hour)
	_, err := slot.Approve()
	assert.NoError(t, err)
}

func TestConcurrentProposeHasOneWinner(t *testing.T) {
	slot := NewSlot()
	var wins, losses atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := slot.Propose(editProposal(time.Now()))
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, domain.ErrProposalPending):
				losses.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
	assert.Equal(t, int32(31), losses.Load())
}

func TestClassify(t *testing.T) {
	tokens := Tokens{Approve: domain.DefaultApproveWords, Reject: domain.DefaultRejectWords}
	cases := map[string]Decision{
		"✅":                 Approve,
		"yes":               Approve,
		"  YES ":            Approve,
		"Y":                 Approve,
		"approve":           Approve,
		"❌":                 Reject,
		"no":                Reject,
		"N":                 Reject,
		"Cancel":            Reject,
		"reject":            Reject,
		"":                  Unrecognized,
		"yes please":        Unrecognized,
		"what about line 3": Unrecognized,
	}
	for text, want := range cases {
		assert.Equal(t, want, Classify(text, tokens), "%q", text)
	}
}
