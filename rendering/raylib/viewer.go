// Package raylib draws generated surfaces in a native window.
package raylib

import (
	"context"
	"fmt"
	"log/slog"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"lunargen/core"
	"lunargen/logging"
	"lunargen/rendering"
	"lunargen/terrain"
	"lunargen/worker"
)

// Options configure a Viewer window
type Options struct {
	Width, Height int
	Color         rendering.RGBA
	Logger        *slog.Logger
}

// Viewer shows the latest surface from a Regenerator and turns key presses
// into new submissions. All raylib calls happen on the goroutine running Run.
type Viewer struct {
	regen  *worker.Regenerator
	params core.GenerationParams
	opts   Options
	logger *slog.Logger

	camera    rl.Camera3D
	model     rl.Model
	buffers   *rendering.Buffers // Backs the model's CPU arrays while it is loaded
	loaded    bool
	wireframe bool
	stats     core.Stats
	seed      uint64
}

// NewViewer creates a viewer that starts by generating params
func NewViewer(regen *worker.Regenerator, params core.GenerationParams, opts Options) *Viewer {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	distance := float32(3 * params.Size)
	return &Viewer{
		regen:  regen,
		params: params,
		opts:   opts,
		logger: logger,
		camera: rl.Camera3D{
			Position:   rl.NewVector3(distance, distance*0.4, distance),
			Target:     rl.NewVector3(0, 0, 0),
			Up:         rl.NewVector3(0, 1, 0),
			Fovy:       45,
			Projection: rl.CameraPerspective,
		},
	}
}

// Run opens the window and blocks until it is closed or ctx is cancelled.
// It must be called from the main goroutine.
func (v *Viewer) Run(ctx context.Context) error {
	rl.InitWindow(int32(v.opts.Width), int32(v.opts.Height), "lunargen")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	defer v.unload()

	v.regen.Submit(v.params)
	tint := rl.NewColor(v.opts.Color.R, v.opts.Color.G, v.opts.Color.B, v.opts.Color.A)

	for !rl.WindowShouldClose() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		select {
		case result, ok := <-v.regen.Updates():
			if !ok {
				return fmt.Errorf("regenerator closed")
			}
			v.load(result)
		default:
		}

		for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
			v.handleKey(key)
		}

		rl.UpdateCamera(&v.camera, rl.CameraOrbital)

		rl.BeginDrawing()
		rl.ClearBackground(rl.Black)
		rl.BeginMode3D(v.camera)
		if v.loaded {
			if v.wireframe {
				rl.DrawModelWires(v.model, rl.NewVector3(0, 0, 0), 1, tint)
			} else {
				rl.DrawModel(v.model, rl.NewVector3(0, 0, 0), 1, tint)
			}
		}
		rl.EndMode3D()
		v.drawOverlay()
		rl.EndDrawing()
	}
	return nil
}

func (v *Viewer) handleKey(key int32) {
	action := rendering.ActionForKey(rune(key))
	if action == rendering.ToggleWireframe {
		v.wireframe = !v.wireframe
		return
	}

	params, regenerate := action.Apply(v.params, terrain.RandomSeed())
	if !regenerate {
		return
	}
	v.params = params
	seq := v.regen.Submit(params)
	v.logger.Debug("regenerating", "action", action, "seq", seq,
		"craterDensity", params.CraterDensity, "mountainHeight", params.MountainHeight)
}

func (v *Viewer) load(result *terrain.Result) {
	buffers := rendering.NewBuffers(result.Mesh)

	mesh := rl.Mesh{
		VertexCount:   int32(buffers.VertexCount()),
		TriangleCount: int32(buffers.TriangleCount()),
		Vertices:      &buffers.Positions[0],
		Normals:       &buffers.Normals[0],
	}
	if buffers.Indices != nil {
		mesh.Indices = &buffers.Indices[0]
	}
	rl.UploadMesh(&mesh, false)

	v.unload()
	v.model = rl.LoadModelFromMesh(mesh)
	v.buffers = buffers
	v.loaded = true
	v.stats = result.Stats
	v.seed = result.Seed

	v.logger.Info("surface loaded",
		"seed", result.Seed,
		"vertices", result.Stats.Vertices,
		"indexed", buffers.Indices != nil,
	)
}

// unload releases the GPU model. The CPU arrays belong to Go, so they are
// detached first to keep raylib from freeing them.
func (v *Viewer) unload() {
	if !v.loaded {
		return
	}
	meshes := unsafe.Slice(v.model.Meshes, v.model.MeshCount)
	for i := range meshes {
		meshes[i].Vertices = nil
		meshes[i].Normals = nil
		meshes[i].Indices = nil
	}
	rl.UnloadModel(v.model)
	v.buffers = nil
	v.loaded = false
}

func (v *Viewer) drawOverlay() {
	rl.DrawFPS(10, 10)
	rl.DrawText(fmt.Sprintf("seed %d  craters %d  mountains %d  radius %.3f..%.3f",
		v.seed, v.stats.Craters, v.stats.Mountains, v.stats.MinRadius, v.stats.MaxRadius),
		10, 34, 18, rl.RayWhite)
	rl.DrawText(fmt.Sprintf("crater density %.2f [C/V]  mountain height %.3f [M/N]  reseed [R]  wireframe [W]",
		v.params.CraterDensity, v.params.MountainHeight),
		10, int32(v.opts.Height)-28, 18, rl.Gray)
	if err := v.regen.Err(); err != nil {
		rl.DrawText(err.Error(), 10, 58, 18, rl.Red)
	}
}
