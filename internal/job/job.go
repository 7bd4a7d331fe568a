// Package job turns a list of operations into one machining program.
//
// A Job collects raw operations, then Calculate parses them, prepares their
// contours in parallel (tool compensation, holding tabs), orders them to
// keep rapid travel short and emits them one after the other. Emission is
// sequential because each operation starts where the previous one parked
// the head.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"slices"
	"sync"

	"svgcam/internal/gcode"
	"svgcam/internal/geom"
	"svgcam/internal/metrics"
	"svgcam/internal/offset"
	"svgcam/internal/path"
	"svgcam/internal/tabs"
	"svgcam/internal/tour"
	"svgcam/internal/worker"
)

var (
	// ErrCalculated is returned when a job is modified or calculated again
	// after Calculate.
	ErrCalculated = errors.New("job: already calculated")
	// ErrCompensationCollapsed is returned when tool compensation leaves
	// nothing to cut.
	ErrCompensationCollapsed = errors.New("job: tool compensation removed the contour")
)

// engravingPark is where the engraving placeholder leaves the head.
var engravingPark = geom.Pt(1, 1)

type Job struct {
	mu         sync.Mutex
	log        *slog.Logger
	metrics    *metrics.Collector
	workers    int
	pos        geom.Point
	raw        []RawOperation
	parsed     []ParsedOperation
	order      []int
	program    string
	calculated bool
}

type Option func(*Job)

func WithLogger(l *slog.Logger) Option {
	return func(j *Job) { j.log = l.With("component", "job") }
}

// WithMetrics records job statistics on m. A nil collector disables them.
func WithMetrics(m *metrics.Collector) Option {
	return func(j *Job) { j.metrics = m }
}

// WithWorkers sets how many operations are prepared in parallel.
func WithWorkers(n int) Option {
	return func(j *Job) {
		if n > 0 {
			j.workers = n
		}
	}
}

// WithStart sets the initial head position.
func WithStart(p geom.Point) Option {
	return func(j *Job) { j.pos = p }
}

func New(opts ...Option) *Job {
	j := &Job{
		log:     slog.Default().With("component", "job"),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// AddOperation appends an operation cutting pathText. Properties not set
// by opts keep their defaults.
func (j *Job) AddOperation(kind Kind, pathText string, opts ...PropertyOption) error {
	return j.Add(RawOperation{Kind: kind, PathText: pathText, Properties: NewProperties(opts...)})
}

// Add appends op as given. Its Properties are taken as complete; a zero
// Properties value stands for DefaultProperties.
func (j *Job) Add(op RawOperation) error {
	if !op.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, int(op.Kind))
	}
	if op.Properties == (Properties{}) {
		op.Properties = DefaultProperties()
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.calculated {
		return ErrCalculated
	}
	j.raw = append(j.raw, op)
	return nil
}

// prepared is an operation whose contour is ready for emission.
type prepared struct {
	op      ParsedOperation
	contour path.Contour
	tabs    int
}

// Calculate runs CalculateContext without a deadline.
func (j *Job) Calculate(priority ...Kind) (string, error) {
	return j.CalculateContext(context.Background(), priority...)
}

// CalculateContext computes the program for every operation added so far.
// Operations that fail are reported as *OperationError values joined into
// the returned error; the program still holds every operation that
// succeeded. The priority list is accepted for compatibility and ignored:
// operations are always visited nearest first.
func (j *Job) CalculateContext(ctx context.Context, priority ...Kind) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.calculated {
		return "", ErrCalculated
	}
	j.calculated = true

	if len(priority) > 0 {
		j.log.Debug("Ignoring operation priority", "priority", priority)
	}

	parsed, errs := ParseOperations(j.raw)
	j.parsed = parsed

	ready, prepErrs, err := j.prepareAll(ctx, parsed)
	if err != nil {
		return "", err
	}
	errs = append(errs, prepErrs...)

	contours := make([]path.Contour, len(ready))
	for i, r := range ready {
		contours[i] = r.op.Contour
	}
	visit := tour.Plan(contours, j.pos)
	j.metrics.SetRapidTravel(tour.TravelDistance(contours, visit, j.pos))

	j.order = make([]int, len(visit))
	for i, v := range visit {
		j.order[i] = ready[v].op.Index
	}
	j.log.Debug("Planned visiting order", "order", j.order)

	program := gcode.NewWriter()
	program.Absolute()
	for _, v := range visit {
		if err := j.emit(program, ready[v]); err != nil {
			errs = append(errs, err)
		}
	}
	j.program = program.String()

	for _, e := range errs {
		var opErr *OperationError
		if errors.As(e, &opErr) {
			j.metrics.RecordOperation(opErr.Kind.String(), metrics.StatusFailed)
			j.log.Warn("Operation failed", "index", opErr.Index, "kind", opErr.Kind, "error", opErr.Err)
		}
	}
	slices.SortStableFunc(errs, func(a, b error) int { return opIndex(a) - opIndex(b) })
	return j.program, errors.Join(errs...)
}

// prepareAll runs prepare for every parsed operation on the worker pool and
// returns the successes in their original order.
func (j *Job) prepareAll(ctx context.Context, parsed []ParsedOperation) ([]prepared, []error, error) {
	tasks := make([]worker.Task[prepared], len(parsed))
	for i, op := range parsed {
		op := op // per-iteration copy (go 1.21 loop semantics)
		tasks[i] = worker.Task[prepared]{
			ID: i,
			Fn: func(context.Context) (prepared, error) { return j.prepare(op) },
		}
	}

	results, err := worker.Run(ctx, j.workers, tasks)
	if err != nil {
		return nil, nil, fmt.Errorf("job: prepare operations: %w", err)
	}

	var (
		ready []prepared
		errs  []error
	)
	for _, r := range results {
		op := parsed[r.ID]
		j.metrics.ObservePrepare(r.Duration.Seconds())
		if r.Err != nil {
			errs = append(errs, &OperationError{Index: op.Index, Kind: op.Kind, Err: r.Err})
			continue
		}
		ready = append(ready, r.Value)
	}
	return ready, errs, nil
}

// prepare applies tool compensation and holding tabs to one operation.
// It only reads op.
func (j *Job) prepare(op ParsedOperation) (prepared, error) {
	p := prepared{op: op, contour: op.Contour}
	if op.Kind == Engraving {
		return p, nil
	}

	props := op.Properties
	if props.ToolCompensation && props.DrillRadius > 0 {
		loops, err := offset.Offset(op.Contour, props.DrillRadius, op.Kind.Side())
		if err != nil {
			return p, fmt.Errorf("tool compensation: %w", err)
		}
		j.metrics.RecordOffsetLoops(len(loops))
		if len(loops) == 0 {
			return p, ErrCompensationCollapsed
		}
		if len(loops) > 1 {
			j.log.Warn("Tool compensation split the contour, keeping the largest loop",
				"index", op.Index, "loops", len(loops))
		}
		p.contour = largest(loops)
	}

	if op.Kind.IsProfile() {
		c, n, err := tabs.Insert(p.contour, props.tabOptions())
		if err != nil {
			return p, fmt.Errorf("holding tabs: %w", err)
		}
		if n < props.HoldingTabsNumber {
			j.log.Debug("Fewer holding tabs than requested",
				"index", op.Index, "requested", props.HoldingTabsNumber, "inserted", n)
		}
		p.contour, p.tabs = c, n
	}
	return p, nil
}

// emit cuts one prepared operation into program and moves the head. The
// program is left untouched when emission fails.
func (j *Job) emit(program *gcode.Writer, r prepared) error {
	op := r.op
	if op.Kind == Engraving {
		j.log.Warn("Engraving is not implemented, operation skipped", "index", op.Index)
		j.pos = engravingPark
		j.metrics.RecordOperation(op.Kind.String(), metrics.StatusOK)
		return nil
	}

	scratch := gcode.NewWriter()
	end, stats, err := gcode.Emit(scratch, r.contour, j.pos, op.Properties.gcodeParams())
	if err != nil {
		return &OperationError{Index: op.Index, Kind: op.Kind, Err: err}
	}
	program.Append(scratch)
	j.pos = end

	j.metrics.RecordOperation(op.Kind.String(), metrics.StatusOK)
	j.metrics.RecordEmission(stats.Layers, stats.Moves)
	j.metrics.RecordTabs(r.tabs)
	j.log.Debug("Operation emitted",
		"index", op.Index, "kind", op.Kind, "layers", stats.Layers, "moves", stats.Moves, "tabs", r.tabs)
	return nil
}

func largest(loops []path.Contour) path.Contour {
	best, bestArea := loops[0], -1.0
	for _, l := range loops {
		if a := math.Abs(path.Orientation(l)); a > bestArea {
			best, bestArea = l, a
		}
	}
	return best
}

func opIndex(err error) int {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Index
	}
	return math.MaxInt
}

// Order returns the operation indices in the order they were visited.
func (j *Job) Order() []int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.order)
}

// Position returns the current head position.
func (j *Job) Position() geom.Point {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pos
}

// Program returns the program text computed by Calculate.
func (j *Job) Program() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.program
}

// Operations returns the operations that parsed successfully.
func (j *Job) Operations() []ParsedOperation {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.parsed)
}

// Len returns the number of operations added.
func (j *Job) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.raw)
}
