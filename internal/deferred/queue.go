// Package deferred runs best-effort background actions after a fixed delay,
// such as putting the previous clipboard content back after a paste.
//
// Tasks cannot be cancelled once scheduled. Each one is tracked by a Task
// handle so callers and tests can wait for it, and the Clock is injectable so
// tests advance virtual time instead of sleeping.
package deferred

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrQueueClosed is returned by Schedule after Close.
var ErrQueueClosed = errors.New("deferred queue closed")

// Task status values reported to the observer.
const (
	StatusScheduled = "scheduled"
	StatusSuccess   = "success"
	StatusError     = "error"
)

// Task is the handle of one scheduled action.
type Task struct {
	ID   string
	Name string
	Due  time.Time

	fn    func() error
	timer Timer
	once  sync.Once
	done  chan struct{}
	err   error
}

// Done is closed once the action has run.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the action's error. It is only meaningful after Done is closed.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the action has run or ctx ends.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Queue schedules Tasks on a Clock.
type Queue struct {
	mu      sync.Mutex
	clock   Clock
	pending map[string]*Task
	closed  bool

	onError  func(task *Task, err error)
	observer func(status string)
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock replaces the wall clock, typically with a ManualClock.
func WithClock(clock Clock) Option {
	return func(q *Queue) {
		if clock != nil {
			q.clock = clock
		}
	}
}

// WithOnError sets a callback for actions that fail or panic.
func WithOnError(fn func(task *Task, err error)) Option {
	return func(q *Queue) {
		q.onError = fn
	}
}

// WithObserver receives a status for every scheduled, succeeded and failed task.
func WithObserver(fn func(status string)) Option {
	return func(q *Queue) {
		q.observer = fn
	}
}

// NewQueue creates a Queue on the wall clock unless WithClock is given.
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		clock:   RealClock(),
		pending: make(map[string]*Task),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Schedule runs fn once after delay. A non-positive delay still runs fn on
// the clock, never on the caller's goroutine.
func (q *Queue) Schedule(name string, delay time.Duration, fn func() error) (*Task, error) {
	if fn == nil {
		return nil, fmt.Errorf("schedule %s: nil action", name)
	}
	if delay < 0 {
		delay = 0
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, ErrQueueClosed
	}
	task := &Task{
		ID:   uuid.NewString(),
		Name: name,
		Due:  q.clock.Now().Add(delay),
		fn:   fn,
		done: make(chan struct{}),
	}
	q.pending[task.ID] = task
	task.timer = q.clock.AfterFunc(delay, func() { q.run(task) })
	q.mu.Unlock()

	q.observe(StatusScheduled)
	return task, nil
}

// Pending returns the number of tasks that have not run yet.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close rejects new tasks and runs every pending task immediately, so
// restorations still happen when the process exits early.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	tasks := make([]*Task, 0, len(q.pending))
	for _, task := range q.pending {
		if task.timer == nil || task.timer.Stop() {
			tasks = append(tasks, task)
		}
	}
	q.mu.Unlock()

	for _, task := range tasks {
		q.run(task)
	}
}

func (q *Queue) run(task *Task) {
	task.once.Do(func() {
		q.mu.Lock()
		delete(q.pending, task.ID)
		q.mu.Unlock()

		err := call(task.fn)
		task.err = err
		close(task.done)

		if err != nil {
			q.observe(StatusError)
			if q.onError != nil {
				q.onError(task, err)
			}
			return
		}
		q.observe(StatusSuccess)
	})
}

func (q *Queue) observe(status string) {
	if q.observer != nil {
		q.observer(status)
	}
}

func call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("deferred task panicked: %v", r)
		}
	}()
	return fn()
}
