package renderer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/slime/config"
)

// Recorder exports rendered frames as a numbered PNG sequence.
// Each captured frame is blurred and upscaled before export.
type Recorder struct {
	dir   string
	scale int
	blur  int
	every int

	frames   int // frames offered since recording started
	exported int
	enabled  bool
}

// NewRecorder creates a recorder from cfg. It starts enabled only if
// cfg.Enabled is set.
func NewRecorder(cfg config.RecordingConfig) *Recorder {
	r := &Recorder{
		dir:   cfg.Dir,
		scale: max(cfg.Scale, 1),
		blur:  max(cfg.Blur, 0),
		every: max(cfg.Every, 1),
	}
	if cfg.Enabled {
		if err := r.Start(); err != nil {
			slog.Error("recording disabled", "error", err)
		}
	}
	return r
}

// Start creates the output directory and enables capture.
func (r *Recorder) Start() error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("creating frame directory: %w", err)
	}
	r.enabled = true
	slog.Info("recording started", "dir", r.dir, "scale", r.scale, "blur", r.blur, "every", r.every)
	return nil
}

// Stop disables capture.
func (r *Recorder) Stop() {
	if !r.enabled {
		return
	}
	r.enabled = false
	slog.Info("recording stopped", "frames", r.exported)
}

// Toggle starts or stops recording.
func (r *Recorder) Toggle() {
	if r.enabled {
		r.Stop()
		return
	}
	if err := r.Start(); err != nil {
		slog.Error("recording start failed", "error", err)
	}
}

// Enabled reports whether frames are being captured.
func (r *Recorder) Enabled() bool {
	return r.enabled
}

// Exported returns the number of frames written.
func (r *Recorder) Exported() int {
	return r.exported
}

// due advances the frame counter and reports whether this frame is exported.
func (r *Recorder) due() bool {
	r.frames++
	return (r.frames-1)%r.every == 0
}

// framePath returns the file name for the n-th exported frame.
func (r *Recorder) framePath(n int) string {
	return filepath.Join(r.dir, fmt.Sprintf("frame_%06d.png", n))
}

// Capture grabs the current framebuffer. Call after EndDrawing.
// A failed export disables recording.
func (r *Recorder) Capture() {
	if !r.enabled || !r.due() {
		return
	}

	img := rl.LoadImageFromScreen()
	defer rl.UnloadImage(img)

	if r.blur > 0 {
		rl.ImageBlurGaussian(img, int32(r.blur))
	}
	if r.scale > 1 {
		rl.ImageResize(img, img.Width*int32(r.scale), img.Height*int32(r.scale))
	}

	path := r.framePath(r.exported)
	if !rl.ExportImage(*img, path) {
		slog.Error("frame export failed, recording disabled", "path", path)
		r.enabled = false
		return
	}
	r.exported++
}
