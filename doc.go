// Package tilefield renders a dense disk-shaped field of small colored
// tiles at interactive frame rates.
//
// The field is static: a generator lays out on the order of 10^5-10^6
// square tiles on a regular lattice inside a disk, a quadtree indexes
// their centers for viewport culling, and a pyramid of pre-merged
// level-of-detail tiles summarizes the field at progressively coarser
// resolutions. Each frame a selector combines the camera's zoom with a
// distance-to-center falloff to pick exactly one tile per occupied
// cell and hands the result to a renderer as instanced quads.
//
// The root package holds the shared value types (Point, Rect, RGBA,
// Tile, CellKey) and the package-wide logger. Typical use goes through
// the engine subpackage:
//
//	eng := engine.New(
//	    engine.WithRadius(500),
//	    engine.WithBudget(900_000),
//	)
//	if err := eng.Build(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	cam := eng.Camera()
//	cam.SetAspect(800, 600)
//	frame := eng.Frame()
//	// submit frame to a render.Renderer
//
// Subpackages:
//
//   - grid: the disk grid generator
//   - quadtree: the spatial index
//   - lod: the merge pyramid and the per-frame visible-tile selector
//   - camera: pan/zoom navigation and the orthographic projection
//   - render: the renderer contract, a GPU implementation over
//     gogpu/wgpu, and a software reference implementation
//   - engine: build orchestration and the per-frame pipeline
package tilefield
