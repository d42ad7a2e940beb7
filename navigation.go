package parkgate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// EpisodeKind classifies an authorization-failure episode.
//
//	Docs: docs/coordinator.md
type EpisodeKind uint8

const (
	// EpisodeUnauthorized is an exported constant or variable used by the coordination layer.
	EpisodeUnauthorized EpisodeKind = iota
	// EpisodeForbidden is an exported constant or variable used by the coordination layer.
	EpisodeForbidden
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (k EpisodeKind) String() string {
	switch k {
	case EpisodeUnauthorized:
		return "unauthorized"
	case EpisodeForbidden:
		return "forbidden"
	default:
		return "invalid"
	}
}

// NavigationIntent is the message-passing form of a redirect: the Coordinator
// emits one per genuine failure episode, and the hosting UI layer executes
// the navigation. The core never touches navigation state itself.
type NavigationIntent struct {
	EpisodeID string
	Kind      EpisodeKind
	Target    string
	FiredAt   time.Time
}

// NavigationSink consumes navigation intents. Implementations must not block
// for long; intents are fire-and-forget.
type NavigationSink interface {
	Navigate(ctx context.Context, intent NavigationIntent)
}

// NoOpNavigator defines a public type used by parkgate APIs.
//
// NoOpNavigator instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type NoOpNavigator struct{}

// Navigate describes the navigate operation and its observable behavior.
//
// Navigate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (NoOpNavigator) Navigate(context.Context, NavigationIntent) {}

// ChannelNavigator defines a public type used by parkgate APIs.
//
// ChannelNavigator instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ChannelNavigator struct {
	intents chan NavigationIntent
}

// NewChannelNavigator describes the newchannelnavigator operation and its observable behavior.
//
// NewChannelNavigator does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewChannelNavigator(buffer int) *ChannelNavigator {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelNavigator{
		intents: make(chan NavigationIntent, buffer),
	}
}

// Navigate describes the navigate operation and its observable behavior.
//
// Navigate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (n *ChannelNavigator) Navigate(ctx context.Context, intent NavigationIntent) {
	select {
	case n.intents <- intent:
	case <-ctx.Done():
	}
}

// Intents describes the intents operation and its observable behavior.
//
// Intents does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (n *ChannelNavigator) Intents() <-chan NavigationIntent {
	return n.intents
}

// FuncNavigator adapts a plain function into a NavigationSink.
type FuncNavigator func(ctx context.Context, intent NavigationIntent)

// Navigate describes the navigate operation and its observable behavior.
//
// Navigate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f FuncNavigator) Navigate(ctx context.Context, intent NavigationIntent) {
	if f == nil {
		return
	}
	f(ctx, intent)
}

/*
====================================
DISPATCHER
====================================
*/

// navigationDispatcher delivers intents to the host sink off the caller's
// goroutine, so a slow UI handler cannot stall the transport path that
// detected the failure.
type navigationDispatcher struct {
	cfg       CoordinatorConfig
	sink      NavigationSink
	ch        chan NavigationIntent
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newNavigationDispatcher(cfg CoordinatorConfig, sink NavigationSink) *navigationDispatcher {
	if cfg.NavigationBuffer <= 0 {
		cfg.NavigationBuffer = 1
	}
	if sink == nil {
		sink = NoOpNavigator{}
	}

	d := &navigationDispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan NavigationIntent, cfg.NavigationBuffer),
		done: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *navigationDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case intent := <-d.ch:
			d.sink.Navigate(context.Background(), intent)
		case <-d.done:
			for {
				select {
				case intent := <-d.ch:
					d.sink.Navigate(context.Background(), intent)
				default:
					return
				}
			}
		}
	}
}

func (d *navigationDispatcher) Emit(ctx context.Context, intent NavigationIntent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- intent:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.ch <- intent:
	case <-ctx.Done():
	case <-d.done:
	}
}

func (d *navigationDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

func (d *navigationDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
