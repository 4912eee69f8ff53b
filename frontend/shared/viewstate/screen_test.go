package viewstate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScreen_StartsIdle(t *testing.T) {
	s := NewScreen[[]string]("users")
	snap := s.Snapshot()
	require.Equal(t, Idle, snap.Phase)
	require.False(t, snap.HasData)
}

func TestScreen_SupersededTicketDoesNotOverwrite(t *testing.T) {
	s := NewScreen[[]string]("users")
	first := s.Begin()
	second := s.Begin()

	require.True(t, s.Complete(second, []string{"new"}))
	require.False(t, s.Complete(first, []string{"old"}))

	snap := s.Snapshot()
	require.Equal(t, Loaded, snap.Phase)
	require.Equal(t, []string{"new"}, snap.Data)
}

func TestScreen_SupersededLoadIgnoredWhileNewerInFlight(t *testing.T) {
	s := NewScreen[[]string]("users")
	first := s.Begin()
	_ = s.Begin()

	require.False(t, s.Complete(first, []string{"old"}))
	snap := s.Snapshot()
	require.Equal(t, Loading, snap.Phase)
	require.False(t, snap.HasData)
}

func TestScreen_FailureKeepsStaleData(t *testing.T) {
	s := NewScreen[[]string]("projects")
	require.True(t, s.Complete(s.Begin(), []string{"a"}))

	boom := errors.New("boom")
	require.True(t, s.Fail(s.Begin(), boom))

	snap := s.Snapshot()
	require.Equal(t, Failed, snap.Phase)
	require.ErrorIs(t, snap.Err, boom)
	require.True(t, snap.HasData)
	require.Equal(t, []string{"a"}, snap.Data)
}

func TestScreen_StaleFailureIgnored(t *testing.T) {
	s := NewScreen[int]("x")
	first := s.Begin()
	second := s.Begin()
	require.False(t, s.Fail(first, errors.New("late")))
	require.True(t, s.Complete(second, 7))
	require.Nil(t, s.Snapshot().Err)
}

func TestScreen_AbandonRestoresPreviousPhase(t *testing.T) {
	s := NewScreen[int]("x")
	require.True(t, s.Complete(s.Begin(), 1))

	ticket := s.Begin()
	s.Abandon(ticket)

	snap := s.Snapshot()
	require.Equal(t, Loaded, snap.Phase)
	require.Equal(t, 1, snap.Data)
}

func TestScreen_LoadCancelledLeavesBuffer(t *testing.T) {
	s := NewScreen[int]("x")
	require.True(t, s.Complete(s.Begin(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	snap, err := s.Load(ctx, func(ctx context.Context) (int, error) {
		cancel()
		return 0, ctx.Err()
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, Loaded, snap.Phase)
	require.Equal(t, 1, snap.Data)
}

func TestScreen_LoadStoresResult(t *testing.T) {
	s := NewScreen[int]("x")
	snap, err := s.Load(context.Background(), func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	require.Equal(t, Loaded, snap.Phase)
	require.Equal(t, 42, snap.Data)
	require.False(t, snap.LoadedAt.IsZero())
}

func TestScreen_OutOfOrderCompletionKeepsLatest(t *testing.T) {
	s := NewScreen[string]("users")
	slow := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	firstTicket := s.Begin()
	go func() {
		defer wg.Done()
		<-slow
		s.Complete(firstTicket, "first")
	}()
	secondTicket := s.Begin()
	require.True(t, s.Complete(secondTicket, "second"))
	close(slow)
	wg.Wait()

	require.Equal(t, "second", s.Snapshot().Data)
}

func TestScreen_MergeFiltersKeepsUnsetFields(t *testing.T) {
	s := NewScreen[int]("users")
	s.MergeFilters(map[string]string{"nombre": "ana", "email": "a@"})
	s.MergeFilters(map[string]string{"nombre": "eva"})

	require.Equal(t, map[string]string{"nombre": "eva", "email": "a@"}, s.Snapshot().Filters)
}
