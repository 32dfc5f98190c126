// Package engine ties the tile field pipeline together: one-time
// build of the leaf set, quadtree, and LOD pyramid, then per-frame
// camera snapshot, visible-tile selection, and renderer submission.
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/tilefield"
	"github.com/gogpu/tilefield/camera"
	"github.com/gogpu/tilefield/grid"
	"github.com/gogpu/tilefield/internal/parallel"
	"github.com/gogpu/tilefield/lod"
	"github.com/gogpu/tilefield/quadtree"
	"github.com/gogpu/tilefield/render"
)

// Engine owns the tile field: it builds the leaf set, quadtree, and
// LOD pyramid once at startup, then produces one instance batch per
// frame from the camera state.
//
// Build may run on a background goroutine; Frame returns an empty
// batch until the build has completed, so the frame loop never has to
// coordinate with the builder beyond the atomic ready flag.
type Engine struct {
	opts engineOptions
	cam  *camera.Camera

	mu     sync.Mutex
	leaves []tilefield.Tile
	qt     *quadtree.Quadtree
	pyr    *lod.Pyramid
	sel    *lod.Selector

	ready  atomic.Bool
	paused atomic.Bool

	// lastSnap/lastFrame cache the previous selection: an unchanged
	// camera resubmits the same instances without reselecting.
	lastSnap  camera.Snapshot
	lastFrame []render.Instance
	hasFrame  bool
}

// New creates an engine with the given options. The field is not built
// yet; call Build.
func New(opts ...Option) *Engine {
	o := defaultEngineOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{
		opts: o,
		cam:  camera.New(),
	}
}

// Camera returns the engine's camera. Input handlers mutate it; the
// frame loop reads a snapshot per frame.
func (e *Engine) Camera() *camera.Camera { return e.cam }

// Ready reports whether the build has completed.
func (e *Engine) Ready() bool { return e.ready.Load() }

// LeafCount returns the number of generated leaf tiles, 0 before Build.
func (e *Engine) LeafCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.leaves)
}

// Pyramid returns the built LOD pyramid, nil before Build.
func (e *Engine) Pyramid() *lod.Pyramid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pyr
}

// Build generates the leaf tiles, then constructs the quadtree and the
// LOD pyramid. Grid rows fan out across a worker pool; the structures
// are published only after everything is complete, so a concurrent
// frame loop observes either nothing or the finished field.
//
// Build honors ctx cancellation between build phases.
func (e *Engine) Build(ctx context.Context) error {
	start := time.Now()

	cfg := grid.Config{
		Radius:  e.opts.radius,
		Budget:  e.opts.budget,
		BadRate: e.opts.badRate,
		Seed:    e.opts.seed,
	}

	leaves, err := e.generate(ctx, cfg)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("engine: build canceled: %w", err)
	}

	var qtOpts []quadtree.Option
	if e.opts.maxDepth > 0 {
		qtOpts = append(qtOpts, quadtree.WithMaxDepth(e.opts.maxDepth))
	}
	if e.opts.maxItems > 0 {
		qtOpts = append(qtOpts, quadtree.WithMaxItems(e.opts.maxItems))
	}
	qt := quadtree.New(grid.Bounds(cfg), qtOpts...)

	pyr := lod.BuildPyramid(leaves, e.opts.levels, cfg.Side())
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("engine: build canceled: %w", err)
	}

	// Insert after the pyramid stamped leaf levels, so the quadtree
	// and the selector see identical records.
	for i := range leaves {
		qt.Insert(int32(i), leaves[i])
	}

	sel := lod.NewSelector(pyr, qt, leaves, camera.DefaultZoomMin, camera.DefaultZoomMax)

	e.mu.Lock()
	e.leaves = leaves
	e.qt = qt
	e.pyr = pyr
	e.sel = sel
	e.hasFrame = false
	e.mu.Unlock()
	e.ready.Store(true)

	tilefield.Logger().Info("engine: build complete",
		"tiles", len(leaves),
		"levels", e.opts.levels,
		"side", cfg.Side(),
		"elapsed", time.Since(start))
	return nil
}

// generate runs the grid generator, fanning row ranges across workers.
func (e *Engine) generate(ctx context.Context, cfg grid.Config) ([]tilefield.Tile, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("engine: build canceled: %w", err)
	}

	pool := parallel.NewWorkerPool(e.opts.workers)
	defer pool.Stop()

	workers := pool.Workers()
	dim := cfg.Dim()
	if workers <= 1 || dim < workers*4 {
		return grid.Generate(cfg), nil
	}

	chunk := (dim + workers - 1) / workers
	parts := make([][]tilefield.Tile, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, dim)
		if lo >= hi {
			break
		}
		wg.Add(1)
		slot := w
		pool.Submit(func() {
			defer wg.Done()
			parts[slot] = grid.GenerateRows(cfg, lo, hi, nil)
		})
	}
	wg.Wait()

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	if total == 0 {
		return grid.Generate(cfg), nil
	}
	leaves := make([]tilefield.Tile, 0, total)
	for _, p := range parts {
		leaves = append(leaves, p...)
	}
	return leaves, nil
}

// Frame takes a camera snapshot and returns the frame's instance
// batch. Before the build completes, while paused after device loss,
// or on an empty selection, the batch is empty; no frame is an error.
//
// The returned slice is reused across frames; renderers consume it
// before the next Frame call.
func (e *Engine) Frame() []render.Instance {
	if !e.ready.Load() || e.paused.Load() {
		return nil
	}

	e.cam.Step()
	snap := e.cam.Snapshot()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.hasFrame && snap == e.lastSnap {
		return e.lastFrame
	}

	start := time.Now()
	tiles := e.sel.Select(snap.Bounds, snap.Zoom)

	e.lastFrame = e.lastFrame[:0]
	for _, t := range tiles {
		e.lastFrame = append(e.lastFrame, render.FromTile(t))
	}
	e.lastSnap = snap
	e.hasFrame = true

	tilefield.Logger().Debug("engine: frame selected",
		"instances", len(e.lastFrame),
		"zoom", snap.Zoom,
		"elapsed", time.Since(start))
	return e.lastFrame
}

// FrameTiles selects the current frame and returns the tile records
// themselves rather than packed instances, for callers that want the
// per-tile fields (Dist, Angle, Level) the instance format drops. The
// returned slice is valid until the next selection.
func (e *Engine) FrameTiles() []tilefield.Tile {
	if !e.ready.Load() || e.paused.Load() {
		return nil
	}
	e.cam.Step()
	snap := e.cam.Snapshot()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sel.Select(snap.Bounds, snap.Zoom)
}

// RenderFrame selects the frame and submits it to r, installing the
// snapshot's projection matrix first.
func (e *Engine) RenderFrame(r render.Renderer) error {
	frame := e.Frame()
	if e.paused.Load() {
		return nil
	}
	r.SetMatrix(e.cam.Snapshot().Matrix)
	return r.Submit(frame)
}

// Pause suspends frame production, typically wired to the renderer's
// device-lost handler.
func (e *Engine) Pause() {
	e.paused.Store(true)
	tilefield.Logger().Warn("engine: selection paused")
}

// Resume lifts a pause and invalidates the frame cache so the next
// Frame re-runs one full selection pass.
func (e *Engine) Resume() {
	e.mu.Lock()
	e.hasFrame = false
	e.mu.Unlock()
	e.paused.Store(false)
	tilefield.Logger().Info("engine: selection resumed")
}

// Paused reports whether frame production is suspended.
func (e *Engine) Paused() bool { return e.paused.Load() }
