package workers

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMailbox_Is_Fifo_And_Tracked(t *testing.T) {
	req := require.New(t)
	tracker := &Tracker{}
	box := NewMailbox[string](tracker)

	// Given two items pushed
	box.Push("a")
	box.Push("b")
	req.Equal(2, box.Len())
	req.Equal(int64(2), tracker.Pending())

	// When both are taken and released
	first, err := box.Next(context.Background())
	req.NoError(err)
	box.Done()
	second, err := box.Next(context.Background())
	req.NoError(err)
	box.Done()

	// Then they come out in push order and nothing is pending
	req.Equal("a", first)
	req.Equal("b", second)
	req.Zero(tracker.Pending())
}

func TestMailbox_Next_Returns_On_Cancel(t *testing.T) {
	req := require.New(t)
	box := NewMailbox[int](nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := box.Next(ctx)

	req.ErrorIs(err, context.DeadlineExceeded)
}

func TestPoolUnitWorker_Keeps_Going_After_Error(t *testing.T) {
	req := require.New(t)
	tracker := &Tracker{}
	box := NewMailbox[int](tracker)
	handled := make(chan int, 3)
	worker := NewPoolUnitWorker("numbers", box, func(_ context.Context, n int) error {
		handled <- n
		if n == 2 {
			return errors.New("two is refused")
		}
		return nil
	}, slog.Default())

	// Given three items, the second one failing
	box.Push(1)
	box.Push(2)
	box.Push(3)

	// When the worker runs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	// Then every item is handled in order and released
	req.Equal(1, <-handled)
	req.Equal(2, <-handled)
	req.Equal(3, <-handled)
	req.Eventually(func() bool { return tracker.Pending() == 0 }, time.Second, 5*time.Millisecond)
	req.Equal("numbers", worker.Name())
}
