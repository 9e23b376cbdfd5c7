package renderer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/slime/config"
)

func TestRecorderCadence(t *testing.T) {
	r := NewRecorder(config.RecordingConfig{Dir: t.TempDir(), Every: 3})

	var got []bool
	for i := 0; i < 7; i++ {
		got = append(got, r.due())
	}
	want := []bool{true, false, false, true, false, false, true}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("frame %d: expected due=%v, got %v", i, want[i], got[i])
		}
	}
}

func TestRecorderClampsSettings(t *testing.T) {
	r := NewRecorder(config.RecordingConfig{Dir: t.TempDir(), Scale: 0, Blur: -3, Every: 0})
	if r.scale != 1 || r.blur != 0 || r.every != 1 {
		t.Errorf("expected clamped settings, got scale=%d blur=%d every=%d", r.scale, r.blur, r.every)
	}
	if r.Enabled() {
		t.Error("expected recorder to start disabled")
	}
}

func TestRecorderToggleCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	r := NewRecorder(config.RecordingConfig{Dir: dir, Every: 1})

	r.Toggle()
	if !r.Enabled() {
		t.Fatal("expected recording to be enabled")
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected frame directory to exist: %v", err)
	}

	r.Toggle()
	if r.Enabled() {
		t.Error("expected recording to be disabled")
	}
}

func TestRecorderFramePath(t *testing.T) {
	r := NewRecorder(config.RecordingConfig{Dir: "out"})
	if got := r.framePath(42); got != filepath.Join("out", "frame_000042.png") {
		t.Errorf("unexpected frame path %q", got)
	}
}
