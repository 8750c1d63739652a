package tui

import "github.com/Githaiga22/movie-hub/internal/watchlist"

// ChannelObserver adapts watchlist subscriptions to a channel for Bubble Tea.
// The channel holds at most one pending snapshot: a newer snapshot replaces
// an unread older one, so the UI always ends on the latest state.
type ChannelObserver struct {
	ch chan watchlist.Snapshot
}

// NewChannelObserver creates a new channel-based observer.
func NewChannelObserver() *ChannelObserver {
	return &ChannelObserver{ch: make(chan watchlist.Snapshot, 1)}
}

// Updates returns the receive side of the channel.
func (o *ChannelObserver) Updates() <-chan watchlist.Snapshot {
	return o.ch
}

// OnChange sends snap to the channel without blocking.
// Store notifications are serialized, so there is a single sender.
func (o *ChannelObserver) OnChange(snap watchlist.Snapshot) {
	select {
	case o.ch <- snap:
		return
	default:
	}
	// Full: drop the stale snapshot and retry once
	select {
	case <-o.ch:
	default:
	}
	select {
	case o.ch <- snap:
	default:
	}
}

// Attach subscribes the observer to store and returns the cancel func.
func (o *ChannelObserver) Attach(store *watchlist.Store) func() {
	return store.Subscribe(o.OnChange)
}
