package engine

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-room/common"
	"github.com/Carmen-Shannon/oxy-room/engine/camera"
	"github.com/Carmen-Shannon/oxy-room/engine/clock"
	"github.com/Carmen-Shannon/oxy-room/engine/loader"
	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/Carmen-Shannon/oxy-room/engine/window"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	doc := gltf.NewDocument()
	positions := modeler.WritePosition(doc, [][3]float32{{-1, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	uvs := modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	indices := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(indices),
			Attributes: map[string]int{gltf.POSITION: positions, gltf.TEXCOORD_0: uvs},
		}},
	}}
	doc.Nodes = []*gltf.Node{
		{Name: "Room", Children: []int{1, 2}},
		{Name: "Sphere001", Mesh: gltf.Index(0)},
		{Name: "Floor", Mesh: gltf.Index(0)},
	}
	doc.Scenes[0].Nodes = []int{0}
	require.NoError(t, gltf.SaveBinary(doc, filepath.Join(dir, "model.glb")))

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for x := range 2 {
		for y := range 2 {
			img.Set(x, y, color.NRGBA{R: 90, G: 60, B: 30, A: 255})
		}
	}
	f, err := os.Create(filepath.Join(dir, "baked.png"))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))

	return dir
}

func newTestEngine(t *testing.T, w window.Window, options ...EngineBuilderOption) *engine {
	t.Helper()
	options = append([]EngineBuilderOption{
		WithWindow(w),
		WithFireflies(30, 15, rand.New(rand.NewPCG(1, 2))),
	}, options...)
	e, err := NewEngine(options...)
	require.NoError(t, err)
	return e.(*engine)
}

func runWithTimeout(t *testing.T, e Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	require.NoError(t, e.Run(ctx))
	require.NoError(t, ctx.Err(), "loop did not stop before the timeout")
}

func TestNewEngine_RequiresWindow(t *testing.T) {
	_, err := NewEngine()
	assert.ErrorIs(t, err, ErrNoWindow)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "State(7)", State(7).String())
}

func TestEngine_RunsHeadlessTicks(t *testing.T) {
	var calls int64
	sw := clock.NewStopWatchFunc(func() time.Time {
		calls++
		return time.Unix(calls, 0)
	})
	w := window.NewHeadlessWindow(3, window.WithWidth(64), window.WithHeight(48))
	e := newTestEngine(t, w, WithClock(clock.New(), sw))

	var states []State
	var frames int
	e.SetTickCallback(func(float32) { states = append(states, e.State()) })
	e.SetFrameCallback(func(frame *image.RGBA) { frames++ })

	assert.Equal(t, StateIdle, e.State())
	assert.Nil(t, e.LastFrame())

	runWithTimeout(t, e)

	assert.Equal(t, StateStopped, e.State())
	assert.Equal(t, []State{StateRunning, StateRunning, StateRunning}, states)
	assert.Equal(t, uint64(3), e.Ticks())
	assert.Equal(t, 3, frames)
	assert.Equal(t, uint64(3), e.Clock().Ticks())
	assert.InDelta(t, clock.CandleStart+3*clock.CandleStep, e.Clock().CandleTime, 1e-5)

	// The stopwatch reads 0, 1 and 2 seconds; fireflies time is assigned, not accumulated.
	assert.InDelta(t, 2.0, e.Fireflies().Material.Time, 1e-6)

	require.NotNil(t, e.LastFrame())
	assert.Equal(t, image.Rect(0, 0, 64, 48), e.LastFrame().Bounds())
	assert.Nil(t, e.Model())
	assert.NoError(t, e.LoadError())

	assert.ErrorIs(t, e.Run(context.Background()), ErrAlreadyStarted)
}

func TestEngine_ResizePropagates(t *testing.T) {
	w := window.NewHeadlessWindow(1, window.WithWidth(40), window.WithHeight(20), window.WithPixelRatio(3))
	e := newTestEngine(t, w)

	assert.Equal(t, common.Sizes{Width: 40, Height: 20, PixelRatio: 2}, e.Sizes())
	assert.InDelta(t, 2.0, e.Camera().Aspect(), 1e-6)
	bw, bh := e.renderer.BufferSize()
	assert.Equal(t, [2]int{80, 40}, [2]int{bw, bh})
	bw, bh = e.composer.BufferSize()
	assert.Equal(t, [2]int{80, 40}, [2]int{bw, bh})
	assert.Equal(t, float32(2), e.Fireflies().Material.PixelRatio)
	assert.Equal(t, mgl32.Vec2{80, 40}, e.Binder().Door().Resolution)

	e.resize(0, 0)
	assert.Equal(t, 40, e.Sizes().Width, "zero sizes are ignored")

	w.Resize(30, 30, 1)
	runWithTimeout(t, e)

	assert.Equal(t, common.Sizes{Width: 30, Height: 30, PixelRatio: 1}, e.Sizes())
	assert.InDelta(t, 1.0, e.Camera().Aspect(), 1e-6)
	bw, bh = e.renderer.BufferSize()
	assert.Equal(t, [2]int{30, 30}, [2]int{bw, bh})
	assert.Equal(t, float32(1), e.Fireflies().Material.PixelRatio)
	assert.Equal(t, mgl32.Vec2{30, 30}, e.Binder().Door().Resolution)
	require.NotNil(t, e.LastFrame())
	assert.Equal(t, image.Rect(0, 0, 30, 30), e.LastFrame().Bounds())
}

func TestEngine_BindsModelOnce(t *testing.T) {
	dir := writeAssets(t)
	l := loader.NewLoader(loader.BackendTypeGLTF, loader.WithBaseDir(dir))

	w := window.NewHeadlessWindow(0, window.WithWidth(32), window.WithHeight(32))
	var progressed bool
	e := newTestEngine(t, w,
		WithLoader(l, "/model.glb", "/baked.png"),
		WithProgress(func(loaded, total int64) { progressed = true }),
	)

	var after int
	e.SetTickCallback(func(float32) {
		if e.Model() == nil {
			return
		}
		after++
		if after == 3 {
			e.Quit()
		}
	})
	runWithTimeout(t, e)

	model := e.Model()
	require.NotNil(t, model)
	assert.NoError(t, e.LoadError())
	assert.True(t, progressed)

	children := e.Scene().Root().Children()
	require.Len(t, children, 1, "the model is added exactly once")
	assert.Same(t, model, children[0])

	assert.Same(t, e.Binder().Candle(), model.Find("Sphere001").Material())
	assert.Same(t, e.Binder().Baked(), model.Find("Floor").Material())
	require.NotNil(t, e.Binder().Baked().Texture)

	// Candle time keeps advancing through the bound material.
	assert.Equal(t, float32(e.Clock().CandleTime), e.Binder().Candle().Time)
}

func TestEngine_LoadFailureKeepsRendering(t *testing.T) {
	dir := t.TempDir()
	l := loader.NewLoader(loader.BackendTypeGLTF, loader.WithBaseDir(dir))

	w := window.NewHeadlessWindow(0, window.WithWidth(16), window.WithHeight(16))
	e := newTestEngine(t, w, WithLoader(l, "/model.glb", "/baked.jpg"), WithBloomDisabled())

	var afterFailure int
	e.SetTickCallback(func(float32) {
		if e.LoadError() == nil {
			return
		}
		afterFailure++
		if afterFailure == 2 {
			e.Quit()
		}
	})
	runWithTimeout(t, e)

	var failed *common.AssetLoadFailed
	require.True(t, errors.As(e.LoadError(), &failed))
	assert.Nil(t, e.Model())
	assert.Empty(t, e.Scene().Root().Children())
	assert.NotNil(t, e.LastFrame())
	assert.GreaterOrEqual(t, e.Ticks(), uint64(2))
}

func TestEngine_MissingTextureStillBindsModel(t *testing.T) {
	dir := writeAssets(t)
	l := loader.NewLoader(loader.BackendTypeGLTF, loader.WithBaseDir(dir))

	w := window.NewHeadlessWindow(0, window.WithWidth(16), window.WithHeight(16))
	e := newTestEngine(t, w, WithLoader(l, "/model.glb", "/missing.jpg"), WithBloomDisabled())

	var after int
	e.SetTickCallback(func(float32) {
		if e.LoadError() == nil {
			return
		}
		after++
		if after == 2 {
			e.Quit()
		}
	})
	runWithTimeout(t, e)

	var failed *common.AssetLoadFailed
	require.True(t, errors.As(e.LoadError(), &failed))
	assert.Equal(t, "/missing.jpg", failed.URL)

	model := e.Model()
	require.NotNil(t, model)
	require.Len(t, e.Scene().Root().Children(), 1)
	assert.Nil(t, e.Binder().Baked().Texture)
	assert.Same(t, e.Binder().Baked(), model.Find("Floor").Material())
}

func TestEngine_ContextCancelStopsLoop(t *testing.T) {
	w := window.NewHeadlessWindow(0, window.WithWidth(16), window.WithHeight(16))
	e := newTestEngine(t, w, WithFireflies(0, 0, nil))
	assert.Nil(t, e.Fireflies())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	e.SetTickCallback(func(float32) {
		if e.Ticks() == 2 {
			cancel()
		}
	})

	require.NoError(t, e.Run(ctx))
	assert.Equal(t, uint64(2), e.Ticks())
	assert.Equal(t, StateStopped, e.State())
}

func TestEngine_InputDrivesController(t *testing.T) {
	ctrl := camera.NewOrbitController(
		camera.WithPosition(mgl32.Vec3{0, 0, 10}),
		camera.WithDamping(false, 0),
	)
	cam := camera.NewCamera(camera.WithController(ctrl))

	w := window.NewHeadlessWindow(0, window.WithWidth(16), window.WithHeight(16))
	e := newTestEngine(t, w, WithCamera(cam), WithFireflies(0, 0, nil))

	var distances []float32
	e.SetTickCallback(func(float32) {
		distances = append(distances, ctrl.Distance())
		switch len(distances) {
		case 1:
			w.PressKey(common.KeyR)
			w.PressKey(common.KeyP)
		case 2:
			e.Quit()
		}
	})

	w.Scroll(1)
	w.Drag(window.MouseButtonLeft, 0, 0, 4, 0)
	runWithTimeout(t, e)

	require.Len(t, distances, 2)
	assert.Less(t, distances[0], float32(10), "scrolling up zooms in")
	assert.InDelta(t, 10.0, distances[1], 1e-4, "R resets the controller")
	assert.True(t, e.profilingEnabled, "P toggles the profiler")
}

func TestEngine_CustomBinderGroups(t *testing.T) {
	b, err := material.NewBinder(material.NewBaked(nil), material.NewCandle(), material.NewBubble(), material.NewDoor(),
		material.WithNameGroups(material.NameGroups{Candle: []string{"Floor"}}))
	require.NoError(t, err)

	w := window.NewHeadlessWindow(0, window.WithWidth(8), window.WithHeight(8))
	e := newTestEngine(t, w, WithBinder(b))
	assert.Same(t, b, e.Binder())
	assert.Equal(t, material.KindCandle, e.Binder().Resolve("Floor").Kind())
}

func TestFrameDuration(t *testing.T) {
	assert.Zero(t, frameDuration(0))
	assert.Zero(t, frameDuration(-5))
	assert.Equal(t, 20*time.Millisecond, frameDuration(50))
}
