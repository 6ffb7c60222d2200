package treecs

import (
	"context"
	"reflect"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/plus3/visora/treecs"

// Pass is one step of a frame, such as mounting, measuring, placing or
// serializing. Passes can hold Resource fields, which are bound to the tree
// when the pass is registered, and any state that persists between frames.
type Pass interface {
	Execute(frame *Frame)
}

// Frame is handed to every pass of one Once call.
type Frame struct {
	Context   context.Context
	DeltaTime float64
	Commands  *Commands
	Tree      *Treecs
}

func newFrame(ctx context.Context, dt float64, tree *Treecs) *Frame {
	return &Frame{
		Context:   ctx,
		DeltaTime: dt,
		Commands:  NewCommands(),
		Tree:      tree,
	}
}

// PassesStats provides statistics about pass execution.
type PassesStats struct {
	PassCount       int
	TotalExecutions int64
	Passes          []PassStats
}

// PassStats provides execution statistics for a single pass.
type PassStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type passStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// PassesOption configures Passes.
type PassesOption func(*Passes)

// WithTracer sets the tracer used for frame and pass spans.
// Default: the global OpenTelemetry tracer provider.
func WithTracer(tracer trace.Tracer) PassesOption {
	return func(p *Passes) {
		p.tracer = tracer
	}
}

// Passes runs an ordered list of passes over one tree.
type Passes struct {
	tree      *Treecs
	passes    []Pass
	passStats []*passStatsInternal
	tracer    trace.Tracer
}

// NewPasses creates a pass runner for the given tree.
func NewPasses(tree *Treecs, opts ...PassesOption) *Passes {
	p := &Passes{
		tree:   tree,
		passes: make([]Pass, 0),
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register adds a pass and binds its Resource fields to the tree.
func (p *Passes) Register(pass Pass) {
	p.initializeResources(pass)
	p.passes = append(p.passes, pass)

	passType := reflect.TypeOf(pass)
	if passType.Kind() == reflect.Ptr {
		passType = passType.Elem()
	}

	p.passStats = append(p.passStats, &passStatsInternal{
		name:        passType.Name(),
		minDuration: time.Duration(1<<63 - 1),
	})
}

func (p *Passes) initializeResources(pass Pass) {
	passValue := reflect.ValueOf(pass)
	if passValue.Kind() == reflect.Ptr {
		passValue = passValue.Elem()
	}

	if passValue.Kind() != reflect.Struct {
		return
	}

	passType := passValue.Type()

	for i := 0; i < passValue.NumField(); i++ {
		field := passValue.Field(i)
		fieldType := passType.Field(i)

		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		if strings.HasPrefix(field.Type().Name(), "Resource[") {
			initMethod := field.Addr().MethodByName("Init")
			if !initMethod.IsValid() {
				panic("Init method not found on Resource field: " + fieldType.Name)
			}

			initMethod.Call([]reflect.Value{
				reflect.ValueOf(p.tree),
			})
		}
	}
}

// Once executes every pass once and then flushes the frame's commands.
func (p *Passes) Once(dt float64) {
	p.OnceContext(context.Background(), dt)
}

// OnceContext is Once with a parent context for the frame span.
func (p *Passes) OnceContext(ctx context.Context, dt float64) {
	ctx, frameSpan := p.tracer.Start(ctx, "treecs.frame")
	defer frameSpan.End()

	frame := newFrame(ctx, dt, p.tree)

	for i, pass := range p.passes {
		stats := p.passStats[i]

		passCtx, span := p.tracer.Start(ctx, stats.name)
		frame.Context = passCtx

		start := time.Now()
		pass.Execute(frame)
		duration := time.Since(start)
		span.End()

		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}

	frame.Context = ctx
	frameSpan.SetAttributes(attribute.Int("treecs.commands", frame.Commands.Len()))
	frame.Commands.Flush(p.tree)
}

// Run executes all passes repeatedly at the given interval until the context is cancelled.
func (p *Passes) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			p.OnceContext(ctx, dt)
		}
	}
}

// GetStats returns statistics about pass execution.
func (p *Passes) GetStats() *PassesStats {
	stats := &PassesStats{
		PassCount: len(p.passes),
		Passes:    make([]PassStats, len(p.passStats)),
	}

	var totalExecs int64
	for i, internal := range p.passStats {
		avgDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
		}

		stats.Passes[i] = PassStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    internal.minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
