package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ekiroute/pkg/ekispert"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultDelay is the pause between two consecutive provider queries.
const DefaultDelay = 300 * time.Millisecond

// ErrNoRows is returned when a run is started without input rows.
var ErrNoRows = errors.New("no input rows")

var errEmptyResult = errors.New("search returned no result")

// Searcher performs one course search. ekispert.Client and
// ekispert.ProxyClient both satisfy it.
type Searcher interface {
	SearchCourse(ctx context.Context, origin, dest ekispert.LatLng) (*ekispert.SearchResult, error)
}

// SearchFunc adapts a plain function to Searcher.
type SearchFunc func(ctx context.Context, origin, dest ekispert.LatLng) (*ekispert.SearchResult, error)

// SearchCourse calls f.
func (f SearchFunc) SearchCourse(ctx context.Context, origin, dest ekispert.LatLng) (*ekispert.SearchResult, error) {
	return f(ctx, origin, dest)
}

// Progress is reported after every row, failed ones included.
type Progress struct {
	RunID uuid.UUID
	Done  int
	Total int
	Last  Result
}

// ProgressFunc receives progress reports. It runs on the pipeline's goroutine.
type ProgressFunc func(Progress)

// Pipeline resolves rows one at a time against a Searcher.
type Pipeline struct {
	searcher   Searcher
	delay      time.Duration
	logger     *zap.Logger
	onProgress ProgressFunc
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithDelay sets the pause between rows. Zero disables it.
func WithDelay(d time.Duration) Option {
	return func(p *Pipeline) {
		p.delay = d
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(p *Pipeline) {
		p.onProgress = fn
	}
}

// New creates a pipeline around s.
func New(s Searcher, opts ...Option) *Pipeline {
	p := &Pipeline{
		searcher: s,
		delay:    DefaultDelay,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run resolves every row and returns one result per row, in input order.
func (p *Pipeline) Run(ctx context.Context, rows []Row) ([]Result, error) {
	run, err := p.NewRun(rows)
	if err != nil {
		return nil, err
	}
	return run.Execute(ctx), nil
}

// State is the lifecycle stage of a Run
type State int

const (
	Idle State = iota
	Running
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Run is the state of one pass over the input. Its accessors may be polled
// from other goroutines while Execute runs.
type Run struct {
	ID       uuid.UUID
	pipeline *Pipeline
	rows     []Row

	mu      sync.Mutex
	results []Result
	state   State
}

// NewRun prepares a run. An empty input is refused before anything is queried.
func (p *Pipeline) NewRun(rows []Row) (*Run, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return &Run{
		ID:       uuid.New(),
		pipeline: p,
		rows:     rows,
		results:  make([]Result, 0, len(rows)),
	}, nil
}

// State returns the run's lifecycle stage.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Progress returns how many rows are done out of how many.
func (r *Run) Progress() (done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.results), len(r.rows)
}

// Results returns a copy of the results recorded so far.
func (r *Run) Results() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Result, len(r.results))
	copy(out, r.results)
	return out
}

// Execute processes the rows strictly in order. A failing row is recorded and
// the run moves on; the returned slice always has one entry per input row.
// Once ctx is done, the remaining rows fail with its error without being queried.
// A run executes once: later calls query nothing and return what the first
// call recorded.
func (r *Run) Execute(ctx context.Context) []Result {
	r.mu.Lock()
	if r.state != Idle {
		r.mu.Unlock()
		return r.Results()
	}
	r.state = Running
	r.mu.Unlock()

	p := r.pipeline
	log := p.logger.With(zap.String("run_id", r.ID.String()))

	log.Info("route run started", zap.Int("rows", len(r.rows)))

	for i, row := range r.rows {
		if i > 0 && p.delay > 0 {
			// A cancelled wait is picked up by the ctx check in resolve.
			_ = sleep(ctx, p.delay)
		}

		res := p.resolve(ctx, log, i, row)
		r.mu.Lock()
		r.results = append(r.results, res)
		r.mu.Unlock()

		log.Debug("row resolved",
			zap.Int("row", i+1),
			zap.String("id", res.ID),
			zap.Bool("ok", res.OK()),
			zap.String("status", res.Status()),
		)

		if p.onProgress != nil {
			p.onProgress(Progress{RunID: r.ID, Done: i + 1, Total: len(r.rows), Last: res})
		}
	}

	results := r.Results()
	r.mu.Lock()
	r.state = Completed
	r.mu.Unlock()

	log.Info("route run completed", zap.Int("rows", len(results)), zap.Int("failed", countFailed(results)))
	return results
}

func (p *Pipeline) resolve(ctx context.Context, log *zap.Logger, index int, row Row) Result {
	res := Result{
		ID:         row.label(index),
		OriginName: nameOrUnset(row.OriginName),
		DestName:   nameOrUnset(row.DestName),
		OriginLat:  row.OriginLat,
		OriginLng:  row.OriginLng,
		DestLat:    row.DestLat,
		DestLng:    row.DestLng,
	}

	if !row.HasCoordinates() {
		return res.fail(ErrMissingCoordinates)
	}
	if err := ctx.Err(); err != nil {
		return res.fail(err)
	}

	found, err := p.searcher.SearchCourse(ctx, row.Origin(), row.Destination())
	if err != nil {
		return res.fail(err)
	}
	if found == nil {
		return res.fail(errEmptyResult)
	}
	res.DebugURL = found.RequestURL

	course, ok := found.Response.BestCourse()
	if !ok {
		return res.fail(&ekispert.NoRouteError{
			Message:    found.Response.ErrorMessage(),
			RequestURL: found.RequestURL,
		})
	}
	if n := found.Response.CourseCount(); n > 1 {
		log.Warn("provider returned several courses, using the first", zap.Int("row", index+1), zap.Int("courses", n))
	}

	it, err := ekispert.Normalize(course)
	if err != nil {
		return res.fail(fmt.Errorf("%w | URL=%s", err, found.RequestURL))
	}

	res.DistanceKm = it.DistanceKm
	res.DurationMin = it.DurationMin
	res.CostYen = it.CostYen
	res.Segments = it.Segments
	res.Waypoints = it.Waypoints
	return res
}

func (r Result) fail(err error) Result {
	r.Err = err
	r.DistanceKm, r.DurationMin, r.CostYen = 0, 0, 0
	r.Segments = []ekispert.Segment{}
	r.Waypoints = []ekispert.Waypoint{}
	return r
}

func countFailed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NewSearcher returns a direct provider client, or a proxy client when
// proxyURL is set.
func NewSearcher(apiKey, proxyURL string) (Searcher, error) {
	if proxyURL != "" {
		pc, err := ekispert.NewProxyClient(proxyURL, apiKey)
		if err != nil {
			return nil, err
		}
		return pc, nil
	}
	c, err := ekispert.NewClient(apiKey)
	if err != nil {
		return nil, err
	}
	return c, nil
}
