// ABOUTME: ReembedScheduler debounces change notifications per topic
// ABOUTME: Quiet-period timers, generation counters, and serialized passes
package core

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// DefaultQuietPeriod is the debounce window between the last change
// notification and the embedding pass it triggers
const DefaultQuietPeriod = 2 * time.Second

// ErrSchedulerClosed means the scheduler has been shut down
var ErrSchedulerClosed = errors.New("reembed scheduler closed")

// PassRunner runs one embedding pass for a topic. Satisfied by *TopicEmbedder.
type PassRunner interface {
	EmbedTopic(ctx context.Context, topicID string) (*PassResult, error)
}

// topicState tracks the debounce machinery for one topic. The generation
// counter invalidates timers that fire after a newer notification or a cancel;
// runMu serializes passes so at most one is in flight per topic, with later
// notifications queueing behind it.
type topicState struct {
	runMu      sync.Mutex
	timer      *time.Timer
	generation uint64
}

// ReembedScheduler coalesces bursts of edit notifications into a single
// embedding pass per topic. Each notification restarts the topic's quiet-period
// timer; only when the timer survives the full window does a pass run.
type ReembedScheduler struct {
	runner PassRunner
	quiet  time.Duration

	mu     sync.Mutex
	topics map[string]*topicState
	closed bool

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewReembedScheduler creates a scheduler with the given quiet period.
// Non-positive quiet periods fall back to the default.
func NewReembedScheduler(runner PassRunner, quiet time.Duration) *ReembedScheduler {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ReembedScheduler{
		runner:  runner,
		quiet:   quiet,
		topics:  make(map[string]*topicState),
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// Notify records that topicID changed and restarts its quiet-period timer.
// Safe for concurrent use; a burst of calls yields exactly one pass.
func (s *ReembedScheduler) Notify(topicID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	st := s.state(topicID)
	st.generation++
	gen := st.generation

	if st.timer != nil {
		st.timer.Stop()
	}
	st.timer = time.AfterFunc(s.quiet, func() {
		s.fire(topicID, gen)
	})
}

// EmbedNow bypasses the debounce window and runs a pass synchronously. Any
// pending timer for the topic is superseded; an in-flight pass is waited out
// first so passes never overlap.
func (s *ReembedScheduler) EmbedNow(ctx context.Context, topicID string) (*PassResult, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSchedulerClosed
	}
	st := s.state(topicID)
	st.generation++
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	s.mu.Unlock()

	st.runMu.Lock()
	defer st.runMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrSchedulerClosed
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	return s.runner.EmbedTopic(ctx, topicID)
}

// CancelTopic discards any pending pass for topicID, e.g. when the topic is
// deleted. A timer that already fired but has not run its checks yet sees the
// bumped generation and does nothing.
func (s *ReembedScheduler) CancelTopic(topicID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.topics[topicID]
	if !ok {
		return
	}
	st.generation++
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
}

// Close stops every pending timer and waits for in-flight passes to finish.
// Further Notify calls are ignored.
func (s *ReembedScheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, st := range s.topics {
		if st.timer != nil {
			st.timer.Stop()
			st.timer = nil
		}
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// state returns the tracking record for topicID, creating it on first use.
// Caller holds s.mu.
func (s *ReembedScheduler) state(topicID string) *topicState {
	st, ok := s.topics[topicID]
	if !ok {
		st = &topicState{}
		s.topics[topicID] = st
	}
	return st
}

// fire runs when a quiet-period timer expires. It revalidates the generation
// after acquiring the topic's run slot: a pass that was queued behind an
// in-flight one is skipped if a newer notification superseded it, because that
// notification's own timer will fire.
func (s *ReembedScheduler) fire(topicID string, gen uint64) {
	s.mu.Lock()
	st, ok := s.topics[topicID]
	if !ok || s.closed || st.generation != gen {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	st.runMu.Lock()
	defer st.runMu.Unlock()

	s.mu.Lock()
	if s.closed || st.generation != gen {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	if _, err := s.runner.EmbedTopic(s.baseCtx, topicID); err != nil {
		log.Printf("[Scheduler] Embedding pass for topic %s failed: %v", topicID, err)
	}
}
