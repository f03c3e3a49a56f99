package app

import (
	"context"
	"sync"

	"benefits-points-service/internal/domain"
)

// LeaderboardNotifier fans out leaderboard snapshots to in-process
// subscribers (the websocket stream). A nil notifier is valid and makes
// Publish a no-op, so the ledger and chest services can run without a
// live stream wired in.
type LeaderboardNotifier struct {
	build func(context.Context) (domain.LeaderboardView, error)

	mu          sync.Mutex
	subscribers map[chan domain.LeaderboardView]struct{}
}

func NewLeaderboardNotifier(build func(context.Context) (domain.LeaderboardView, error)) *LeaderboardNotifier {
	return &LeaderboardNotifier{
		build:       build,
		subscribers: make(map[chan domain.LeaderboardView]struct{}),
	}
}

// Subscribe registers a listener and delivers the current snapshot
// immediately. The caller must invoke the returned cancel function to
// avoid leaks.
func (n *LeaderboardNotifier) Subscribe(ctx context.Context) (<-chan domain.LeaderboardView, func(), error) {
	initial, err := n.build(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.LeaderboardView, 8)
	n.mu.Lock()
	n.subscribers[ch] = struct{}{}
	n.mu.Unlock()

	ch <- initial

	cancel := func() {
		n.mu.Lock()
		if _, ok := n.subscribers[ch]; ok {
			delete(n.subscribers, ch)
			close(ch)
		}
		n.mu.Unlock()
	}
	return ch, cancel, nil
}

// Publish rebuilds the snapshot once and sends it to every subscriber.
// Slow subscribers lose the stale update rather than blocking the rest.
func (n *LeaderboardNotifier) Publish(ctx context.Context) {
	if n == nil {
		return
	}

	n.mu.Lock()
	if len(n.subscribers) == 0 {
		n.mu.Unlock()
		return
	}
	n.mu.Unlock()

	view, err := n.build(ctx)
	if err != nil {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for ch := range n.subscribers {
		select {
		case ch <- view:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}
