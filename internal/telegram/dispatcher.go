package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"lecturebot/internal/logging"
)

// Dispatcher runs tasks in per-key serial lanes. A lane's goroutine exists
// only while the lane has queued work.
type Dispatcher struct {
	mu     sync.Mutex
	lanes  map[int64][]queuedTask
	wg     sync.WaitGroup
	logger *slog.Logger
}

// queuedTask keeps the context a task was dispatched with, so request
// scoped values follow each task rather than the first task of its lane.
type queuedTask struct {
	ctx context.Context
	run func(context.Context)
}

// NewDispatcher constructs an idle Dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		lanes:  make(map[int64][]queuedTask),
		logger: logging.NewComponentLogger(logger, "dispatcher"),
	}
}

// Dispatch queues task on the lane for key. Tasks sharing a key run one at
// a time in submission order.
func (d *Dispatcher) Dispatch(ctx context.Context, key int64, task func(context.Context)) {
	queued := queuedTask{ctx: ctx, run: task}
	d.mu.Lock()
	if queue, busy := d.lanes[key]; busy {
		d.lanes[key] = append(queue, queued)
		d.mu.Unlock()
		return
	}
	d.lanes[key] = []queuedTask{queued}
	d.wg.Add(1)
	d.mu.Unlock()
	go d.drain(key)
}

// Wait blocks until every queued task has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Active returns the number of lanes with pending work.
func (d *Dispatcher) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lanes)
}

func (d *Dispatcher) drain(key int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		queue := d.lanes[key]
		if len(queue) == 0 {
			delete(d.lanes, key)
			d.mu.Unlock()
			return
		}
		task := queue[0]
		d.lanes[key] = queue[1:]
		d.mu.Unlock()
		d.run(key, task)
	}
}

func (d *Dispatcher) run(key int64, task queuedTask) {
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logging.WithContext(task.ctx, d.logger), "event handler panicked", "handler_panic",
				logging.Int64("lane", key),
				logging.String(logging.FieldErrorHint, "see stack for the failing handler"),
				logging.Error(fmt.Errorf("panic: %v", r)),
				logging.String("stack", string(debug.Stack())),
			)
		}
	}()
	task.run(task.ctx)
}
