// room - baked room viewer
// Shows a GLB room textured with a baked lightmap, animated candle, bubble and door shading,
// a fireflies particle field and bloom.
//
// Controls:
//
//	Left drag   - Orbit
//	Right drag  - Pan
//	Scroll      - Zoom
//	R           - Reset the camera
//	P           - Toggle profiler output
//	Esc         - Quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"fortio.org/cli"
	"fortio.org/log"
	"github.com/Carmen-Shannon/oxy-room/config"
	"github.com/Carmen-Shannon/oxy-room/engine"
	"github.com/Carmen-Shannon/oxy-room/engine/loader"
	"github.com/Carmen-Shannon/oxy-room/engine/material"
	"github.com/Carmen-Shannon/oxy-room/engine/presenter"
	"github.com/Carmen-Shannon/oxy-room/engine/window"
)

type options struct {
	configPath  string
	modelPath   string
	texturePath string
	width       int
	height      int
	headless    bool
	frames      int
	out         string
	fps         float64
	profile     bool
	seed        uint64
}

func init() {
	// glfw and the WebGPU surface must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Path to a TOML config file")
	flag.StringVar(&o.modelPath, "model", "", "Model path or URL, overrides the config")
	flag.StringVar(&o.texturePath, "texture", "", "Baked texture path or URL, overrides the config")
	flag.IntVar(&o.width, "width", 0, "Window width, overrides the config")
	flag.IntVar(&o.height, "height", 0, "Window height, overrides the config")
	flag.BoolVar(&o.headless, "headless", false, "Render offscreen without a window")
	flag.IntVar(&o.frames, "frames", 120, "Frames to render in headless mode")
	flag.StringVar(&o.out, "out", "", "Write the last frame to this PNG file")
	flag.Float64Var(&o.fps, "fps", 0, "Frame rate cap, 0 for vsync pacing")
	flag.BoolVar(&o.profile, "profile", false, "Log frame and memory stats every second")
	flag.Uint64Var(&o.seed, "seed", 0, "Fireflies seed, 0 for random")
	cli.MinArgs = 0
	cli.MaxArgs = 0
	cli.Main()
	os.Exit(run(o))
}

func run(o options) int {
	cfg, err := loadConfig(o)
	if err != nil {
		return log.FErrf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	winOpts := []window.WindowBuilderOption{
		window.WithTitle(cfg.Window.Title),
		window.WithWidth(cfg.Window.Width),
		window.WithHeight(cfg.Window.Height),
	}
	var w window.Window
	if o.headless {
		w = window.NewHeadlessWindow(max(1, o.frames), winOpts...)
	} else {
		w, err = window.NewWindow(winOpts...)
		if err != nil {
			return log.FErrf("window: %v", err)
		}
	}
	defer w.Close()

	var p presenter.Presenter
	if !o.headless {
		mode := presenter.PresentModeVSync
		if o.fps > 0 {
			mode = presenter.PresentModeUncapped
		}
		p, err = presenter.NewPresenter(w.SurfaceDescriptor(), presenter.WithPresentMode(mode))
		if err != nil {
			return log.FErrf("presenter: %v", err)
		}
		defer p.Release()
	}

	binder, err := material.NewBinder(
		material.NewBaked(nil),
		material.NewCandle(),
		material.NewBubble(),
		material.NewDoor(),
		material.WithNameGroups(cfg.Materials),
	)
	if err != nil {
		return log.FErrf("materials: %v", err)
	}

	var rng *rand.Rand
	if o.seed != 0 {
		rng = rand.New(rand.NewPCG(o.seed, o.seed))
	}

	l := loader.NewLoader(loader.BackendTypeGLTF, loader.WithHTTPClient(&http.Client{Timeout: 2 * time.Minute}))

	engOpts := []engine.EngineBuilderOption{
		engine.WithWindow(w),
		engine.WithCamera(cfg.NewCamera(float32(cfg.Window.Width) / float32(cfg.Window.Height))),
		engine.WithBinder(binder),
		engine.WithLoader(l, cfg.Assets.Model, cfg.Assets.Texture),
		engine.WithProgress(progressLogger()),
		engine.WithFireflies(cfg.Fireflies.Count, cfg.Fireflies.Size, rng),
		engine.WithBloom(cfg.BloomSettings()),
		engine.WithMaxPixelRatio(cfg.Window.MaxPixelRatio),
		engine.WithRenderFrameLimit(o.fps),
		engine.WithProfiling(o.profile),
	}
	if !cfg.Bloom.Enabled {
		engOpts = append(engOpts, engine.WithBloomDisabled())
	}
	if p != nil {
		engOpts = append(engOpts, engine.WithPresenter(p))
	}

	eng, err := engine.NewEngine(engOpts...)
	if err != nil {
		return log.FErrf("engine: %v", err)
	}

	log.Infof("Loading %s and %s", cfg.Assets.Model, cfg.Assets.Texture)
	if err := eng.Run(ctx); err != nil {
		return log.FErrf("render loop: %v", err)
	}
	log.Infof("Stopped after %d frames", eng.Ticks())

	if o.out != "" {
		frame := eng.LastFrame()
		if frame == nil {
			return log.FErrf("no frame was rendered")
		}
		if err := writePNG(o.out, frame); err != nil {
			return log.FErrf("snapshot: %v", err)
		}
		log.Infof("Wrote %s (%dx%d)", o.out, frame.Bounds().Dx(), frame.Bounds().Dy())
	}
	return 0
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(o options) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.modelPath != "" {
		cfg.Assets.Model = o.modelPath
	}
	if o.texturePath != "" {
		cfg.Assets.Texture = o.texturePath
	}
	if o.width > 0 {
		cfg.Window.Width = o.width
	}
	if o.height > 0 {
		cfg.Window.Height = o.height
	}
	return cfg, cfg.Validate()
}

// progressLogger logs model download progress each time the whole percentage changes.
func progressLogger() loader.ProgressFunc {
	last := -1.0
	return func(loaded, total int64) {
		if total <= 0 {
			log.Debugf("%d bytes loaded", loaded)
			return
		}
		pct := float64(int(loader.Percent(loaded, total)))
		if pct == last {
			return
		}
		last = pct
		log.Infof("%.0f%% loaded", pct)
	}
}

func writePNG(path string, frame *image.RGBA) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	if err := png.Encode(f, frame); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}
