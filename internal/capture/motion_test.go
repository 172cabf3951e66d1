package capture

import (
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestMotionDetector_NoMotion(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	detected, changed := md.Detect(&frame1)
	if detected || changed != 0 {
		t.Errorf("first frame should only prime the baseline, got detected=%v changed=%f", detected, changed)
	}

	if detected, changed = md.Detect(&frame2); detected {
		t.Errorf("identical frames should not detect motion, changed = %f", changed)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	black := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&black)
	detected, changed := md.Detect(&white)
	if !detected {
		t.Errorf("black to white should detect motion, changed = %f", changed)
	}
	if changed < 50 {
		t.Errorf("expected > 50%% change, got %f", changed)
	}
}

func TestMotionDetector_ResetReprimes(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	black := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(48, 64, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&black)
	md.Reset()

	if detected, _ := md.Detect(&white); detected {
		t.Error("first frame after Reset should not detect motion")
	}
}

func TestMotionDetector_EmptyFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	if detected, _ := md.Detect(nil); detected {
		t.Error("nil frame should not detect motion")
	}
	md.Close()
	md.Close()
}

func TestFrameRate(t *testing.T) {
	r := FrameRate{Active: 15, Idle: 5, IdleAfter: 2 * time.Second}
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	steps := []struct {
		name     string
		activity bool
		offset   time.Duration
		want     int
	}{
		{"starts idle", false, 0, 5},
		{"activity wakes", true, time.Second, 15},
		{"stays active inside window", false, 2 * time.Second, 15},
		{"window edge is still active", false, 3 * time.Second, 15},
		{"idles after window", false, 3*time.Second + time.Millisecond, 5},
	}

	for _, s := range steps {
		if got := r.Observe(s.activity, base.Add(s.offset)); got != s.want {
			t.Errorf("%s: expected %d, got %d", s.name, s.want, got)
		}
	}
}
