// Package batch coordinates stroke-batch animation: it fetches the stroke
// payloads behind an agent_strokes_ready signal, deduplicates by batch id,
// and replays each stroke point-by-point through the canvas reducer on a
// frame clock.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/odvcencio/easel/pkg/canvas"
	"github.com/odvcencio/easel/pkg/observability"
	"github.com/odvcencio/easel/pkg/protocol"
)

// FetchFunc retrieves the stroke payloads for a ready-signaled batch. The
// HTTP transport behind it is the caller's concern.
type FetchFunc func(ctx context.Context, batchID int) ([]protocol.StrokeRecord, error)

// FrameClock paces per-point dispatch. Wait blocks until the next frame
// or ctx cancellation.
type FrameClock interface {
	Wait(ctx context.Context) error
}

// IntervalClock is a FrameClock ticking at a fixed interval.
type IntervalClock struct {
	Interval time.Duration
}

// Wait sleeps one interval, honoring ctx.
func (c IntervalClock) Wait(ctx context.Context) error {
	if c.Interval <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.Interval):
		return nil
	}
}

// Result reports what HandleStrokesReady did.
type Result struct {
	Fetched     bool
	StrokeCount int
}

// Renderer is the one stateful coordinator in the engine. It owns the
// monotonic last-fetched batch id and a stop flag; everything else flows
// back through the reducer via the sink.
type Renderer struct {
	fetch  FetchFunc
	sink   canvas.Sink
	clock  FrameClock
	logger *observability.Logger

	mu          sync.Mutex
	lastBatchID int
	stopped     bool
}

// NewRenderer builds a renderer. clock may be nil for unpaced dispatch
// (tests); logger may be nil.
func NewRenderer(fetch FetchFunc, sink canvas.Sink, clock FrameClock, logger *observability.Logger) *Renderer {
	return &Renderer{fetch: fetch, sink: sink, clock: clock, logger: logger}
}

// HandleStrokesReady fetches and animates one ready-signaled batch.
//
// A batch id at or below the last fetched id is a duplicate signal and is
// skipped without fetching. A fetch failure propagates to the caller and
// does not advance the batch id, so retrying the same id is safe; no
// partial dispatch happens on failure. On success the pending-strokes
// promise is cleared, the batch id advances, and each stroke with at
// least one point is replayed as per-point pen moves followed by a final
// AddStroke.
func (r *Renderer) HandleStrokesReady(ctx context.Context, batchID int) (Result, error) {
	r.mu.Lock()
	if batchID <= r.lastBatchID {
		r.mu.Unlock()
		observability.BatchesDeduped.Inc()
		return Result{}, nil
	}
	r.mu.Unlock()

	records, err := r.fetch(ctx, batchID)
	if err != nil {
		observability.BatchFetchFailures.Inc()
		return Result{}, fmt.Errorf("fetch stroke batch %d: %w", batchID, err)
	}

	r.sink.Dispatch(canvas.ClearPendingStrokes{})

	r.mu.Lock()
	r.lastBatchID = batchID
	r.mu.Unlock()

	observability.BatchesFetched.Inc()
	if r.logger != nil {
		r.logger.WithBatch(batchID).Debug("animating stroke batch",
			slog.Int("strokes", len(records)),
		)
	}

	for _, record := range records {
		if len(record.Points) == 0 {
			continue
		}
		if err := r.animateStroke(ctx, record); err != nil {
			return Result{Fetched: true, StrokeCount: len(records)}, err
		}
		if r.isStopped() {
			break
		}
	}
	return Result{Fetched: true, StrokeCount: len(records)}, nil
}

// animateStroke replays one stroke: a pen dispatch per point on the frame
// clock, then the finalized path. The stop flag is checked before every
// point; once set, no further dispatch happens, including the terminal
// AddStroke.
func (r *Renderer) animateStroke(ctx context.Context, record protocol.StrokeRecord) error {
	for _, pt := range record.Points {
		if r.isStopped() {
			return nil
		}
		if r.clock != nil {
			if err := r.clock.Wait(ctx); err != nil {
				return err
			}
		}
		r.sink.Dispatch(canvas.SetPen{
			X:      pt.X,
			Y:      pt.Y,
			Down:   true,
			Author: protocol.AuthorAgent,
		})
		observability.PointsDispatched.Inc()
	}
	if r.isStopped() {
		return nil
	}

	path := record.Path
	path.Points = record.Points
	if path.Author == "" {
		path.Author = protocol.AuthorAgent
	}
	r.sink.Dispatch(canvas.AddStroke{Path: path})
	return nil
}

// Stop halts any in-flight animation between two points. Fetches already
// in progress are not cancelled; their results are simply not replayed.
func (r *Renderer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
}

// Reset clears the batch-id watermark and the stop flag, allowing batch
// ids to be reprocessed. Used when a new piece or session starts.
func (r *Renderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastBatchID = 0
	r.stopped = false
}

// LastFetchedBatchID returns the id of the most recently fetched batch.
func (r *Renderer) LastFetchedBatchID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastBatchID
}

func (r *Renderer) isStopped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopped
}
