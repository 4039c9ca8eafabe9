package canvas

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Default performer pacing.
const (
	DefaultRevealInterval = 150 * time.Millisecond
	DefaultPointInterval  = 16 * time.Millisecond
	defaultIdleInterval   = 50 * time.Millisecond
)

// Snapshotter supplies the performer with state snapshots. *Store
// satisfies it.
type Snapshotter interface {
	State() *State
}

// Performer drives the staging pipeline at a human-perceivable pace: it
// advances buffered items on stage, reveals words at the reveal interval,
// and steps stroke points at the point interval. Each tick reads a fresh
// snapshot and emits at most one action, so a concurrent human stroke or
// clear is picked up between any two steps.
type Performer struct {
	snap   Snapshotter
	sink   Sink
	reveal *rate.Limiter
	points *rate.Limiter
	idle   time.Duration
}

// PerformerConfig configures performer pacing. Zero values fall back to
// defaults.
type PerformerConfig struct {
	RevealInterval time.Duration
	PointInterval  time.Duration
}

// NewPerformer builds a performer reading snapshots from snap and
// dispatching into sink.
func NewPerformer(snap Snapshotter, sink Sink, cfg PerformerConfig) *Performer {
	if cfg.RevealInterval <= 0 {
		cfg.RevealInterval = DefaultRevealInterval
	}
	if cfg.PointInterval <= 0 {
		cfg.PointInterval = DefaultPointInterval
	}
	return &Performer{
		snap:   snap,
		sink:   sink,
		reveal: rate.NewLimiter(rate.Every(cfg.RevealInterval), 1),
		points: rate.NewLimiter(rate.Every(cfg.PointInterval), 1),
		idle:   defaultIdleInterval,
	}
}

// Run loops until ctx is cancelled. Returns ctx.Err().
func (p *Performer) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		acted, err := p.Step(ctx)
		if err != nil {
			return err
		}
		if !acted {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.idle):
			}
		}
	}
}

// Step performs at most one staging transition and reports whether it did
// anything. Exposed so tests and frame-driven callers can single-step.
func (p *Performer) Step(ctx context.Context) (bool, error) {
	s := p.snap.State()
	perf := s.Performance

	if perf.OnStage == nil {
		if len(perf.Buffer) == 0 {
			return false, nil
		}
		p.sink.Dispatch(AdvanceStage{})
		return true, nil
	}

	switch perf.OnStage.Kind {
	case ItemWords:
		words := perf.OnStage.WordCount
		if perf.WordIndex >= words {
			p.sink.Dispatch(StageComplete{})
			return true, nil
		}
		if err := p.reveal.Wait(ctx); err != nil {
			return false, err
		}
		p.sink.Dispatch(RevealWord{})
		return true, nil

	case ItemStrokes:
		strokes := perf.OnStage.Strokes
		if perf.StrokeIndex >= len(strokes) {
			p.sink.Dispatch(StageComplete{})
			return true, nil
		}
		current := strokes[perf.StrokeIndex]
		if perf.StrokeProgress >= len(current.Points) {
			p.sink.Dispatch(StrokeComplete{})
			return true, nil
		}
		if err := p.points.Wait(ctx); err != nil {
			return false, err
		}
		p.sink.Dispatch(StrokeProgress{
			Point: current.Points[perf.StrokeProgress],
			Style: current.Style,
		})
		return true, nil
	}

	return false, nil
}
