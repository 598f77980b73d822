package watcher

import (
	"context"
	"time"

	"github.com/epaperdriver/gather-build/pkg/logging"
)

// Debouncer batches rapid change events so an editor save storm causes one regather
type Debouncer struct {
	input       <-chan ChangeEvent
	output      chan []ChangeEvent
	quietPeriod time.Duration
	maxWait     time.Duration
}

// NewDebouncer creates a new event debouncer. A batch is emitted once no event
// arrived for quietPeriod, or maxWait after the first event of the batch.
func NewDebouncer(input <-chan ChangeEvent, quietPeriod, maxWait time.Duration) *Debouncer {
	return &Debouncer{
		input:       input,
		output:      make(chan []ChangeEvent, 10),
		quietPeriod: quietPeriod,
		maxWait:     maxWait,
	}
}

// Start begins processing events with debouncing
func (d *Debouncer) Start(ctx context.Context) {
	go d.run(ctx)
}

func (d *Debouncer) run(ctx context.Context) {
	defer close(d.output)

	var (
		quietTimer  *time.Timer
		maxTimer    *time.Timer
		quiet       <-chan time.Time
		deadline    <-chan time.Time
		accumulated = make(map[ChangeType][]string)
		eventCount  int
	)

	stopTimers := func() {
		if quietTimer != nil {
			quietTimer.Stop()
		}
		if maxTimer != nil {
			maxTimer.Stop()
		}
		quiet, deadline = nil, nil
	}

	flush := func() {
		stopTimers()
		if eventCount == 0 {
			return
		}

		logging.Debug("flushing accumulated events", "count", eventCount)

		// Library changes first, they affect every unit
		var batch []ChangeEvent
		for _, ct := range []ChangeType{ChangeTypeLibrary, ChangeTypeExample} {
			if paths := accumulated[ct]; len(paths) > 0 {
				batch = append(batch, ChangeEvent{Type: ct, Paths: paths, Timestamp: time.Now()})
			}
		}

		accumulated = make(map[ChangeType][]string)
		eventCount = 0

		select {
		case d.output <- batch:
		case <-ctx.Done():
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimers()
			return

		case event, ok := <-d.input:
			if !ok {
				flush()
				return
			}

			accumulated[event.Type] = append(accumulated[event.Type], event.Paths...)
			eventCount++

			if quietTimer == nil {
				quietTimer = time.NewTimer(d.quietPeriod)
			} else {
				quietTimer.Reset(d.quietPeriod)
			}
			quiet = quietTimer.C

			if deadline == nil {
				if maxTimer == nil {
					maxTimer = time.NewTimer(d.maxWait)
				} else {
					maxTimer.Reset(d.maxWait)
				}
				deadline = maxTimer.C
			}

		case <-quiet:
			flush()

		case <-deadline:
			flush()
		}
	}
}

// Output returns the channel of debounced batches. It is closed when the input
// is closed or the context is done.
func (d *Debouncer) Output() <-chan []ChangeEvent {
	return d.output
}
