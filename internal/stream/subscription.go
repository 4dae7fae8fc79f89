package stream

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
)

// Phase of a subscription. A fresh subscription is INITIALIZING until its
// first snapshot has been delivered; from then on it is LIVE and every
// delivery carries classified per-document changes.
type Phase int32

const (
	Initializing Phase = iota
	Live
)

type ChangeType string

const (
	Added    ChangeType = "added"
	Modified ChangeType = "modified"
	Removed  ChangeType = "removed"
)

// Doc is what the diff engine needs from a document: a stable identity and a
// revision string that changes whenever the mutable part of the document does.
type Doc interface {
	StreamID() string
	StreamRev() string
}

type Change[T Doc] struct {
	Type ChangeType `json:"type"`
	Doc  T          `json:"doc"`
}

// Snapshot is a complete, consistent result set as of the last refresh.
// Initial is true exactly once, for the first delivery; its Changes are empty
// no matter how many documents the first fetch returned.
type Snapshot[T Doc] struct {
	Docs    []T         `json:"docs"`
	Changes []Change[T] `json:"changes"`
	Initial bool        `json:"initial"`
}

// Subscription runs a full filtered query on demand, diffs the result set
// against the previous one, and delivers classified snapshots. The phase
// machine is owned by the subscription itself, so tearing one down and
// opening a new one always starts a fresh INITIALIZING round: a re-opened
// subscription never replays change notifications for documents it has not
// seen change.
type Subscription[T Doc] struct {
	fetch func(context.Context) ([]T, error)

	out   chan Snapshot[T]
	kick  chan struct{}
	done  chan struct{}
	once  sync.Once
	phase atomic.Int32

	prev map[string]T
}

func NewSubscription[T Doc](fetch func(context.Context) ([]T, error)) *Subscription[T] {
	return &Subscription[T]{
		fetch: fetch,
		out:   make(chan Snapshot[T], 8),
		kick:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
}

// Run drives the subscription until ctx is cancelled or Close is called.
// It performs the initial fetch immediately, then refetches on every Refresh.
func (s *Subscription[T]) Run(ctx context.Context) {
	defer close(s.out)

	s.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-s.kick:
			s.refresh(ctx)
		}
	}
}

// Refresh requests a refetch. Multiple pending requests collapse into one:
// every refetch sees the full current result set anyway.
func (s *Subscription[T]) Refresh() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) Snapshots() <-chan Snapshot[T] { return s.out }

func (s *Subscription[T]) Phase() Phase { return Phase(s.phase.Load()) }

// Close tears the subscription down. Snapshots() is closed once Run returns.
func (s *Subscription[T]) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Subscription[T]) refresh(ctx context.Context) {
	docs, err := s.fetch(ctx)
	if err != nil {
		// A failed fetch leaves consumer state where it was; the next event
		// on the feed retries. During INITIALIZING this means nothing has
		// been delivered yet, which is the intended behavior for a failed
		// initial read.
		log.Printf("stream: fetch failed: %v", err)
		return
	}

	next := make(map[string]T, len(docs))
	for _, d := range docs {
		next[d.StreamID()] = d
	}

	if s.Phase() == Initializing {
		s.prev = next
		s.deliver(ctx, Snapshot[T]{Docs: docs, Initial: true})
		s.phase.Store(int32(Live))
		return
	}

	changes := classify(s.prev, docs)
	s.prev = next
	if len(changes) == 0 {
		// The triggering event did not touch this filtered set.
		return
	}
	s.deliver(ctx, Snapshot[T]{Docs: docs, Changes: changes})
}

func (s *Subscription[T]) deliver(ctx context.Context, snap Snapshot[T]) {
	select {
	case s.out <- snap:
	case <-ctx.Done():
	case <-s.done:
	}
}

// classify diffs the new result set against the previous one by document ID,
// tagging each difference as added, modified, or removed.
func classify[T Doc](prev map[string]T, docs []T) []Change[T] {
	var changes []Change[T]
	seen := make(map[string]struct{}, len(docs))

	for _, d := range docs {
		id := d.StreamID()
		seen[id] = struct{}{}
		old, ok := prev[id]
		switch {
		case !ok:
			changes = append(changes, Change[T]{Type: Added, Doc: d})
		case old.StreamRev() != d.StreamRev():
			changes = append(changes, Change[T]{Type: Modified, Doc: d})
		}
	}

	for id, old := range prev {
		if _, ok := seen[id]; !ok {
			changes = append(changes, Change[T]{Type: Removed, Doc: old})
		}
	}

	return changes
}
