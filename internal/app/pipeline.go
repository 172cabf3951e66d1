package app

import (
	"log"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"gocv.io/x/gocv"
)

// runPipeline is the capture loop. Every frame read while enabled goes
// through detection and the gesture engine; motion and hand presence only
// choose between the idle and active frame rates.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	rate := capture.FrameRate{
		Active:    a.activeFPS,
		Idle:      a.config.IdleFPS,
		IdleAfter: a.config.IdleAfter,
	}
	if rate.Active < rate.Idle {
		rate.Active = rate.Idle
	}
	fps := rate.Idle

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	failures := 0
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
		}

		if !a.IsEnabled() {
			continue
		}

		frame, err := a.camera.ReadFrame()
		if err != nil {
			failures++
			log.Printf("Error reading frame: %v", err)
			if failures >= reopenAfter {
				a.reopenCamera()
				failures = 0
			}
			continue
		}
		failures = 0

		moved, _ := a.motion.Detect(frame)
		a.publishFrame(frame)

		obs, err := a.detector.Detect(frame)
		frame.Close()
		if err != nil {
			log.Printf("Error detecting hands: %v", err)
			obs = &detector.Observation{}
		}

		now := time.Now()
		a.ProcessObservation(obs, now)

		next := rate.Observe(moved || len(obs.Hands) > 0, now)
		if next != fps {
			fps = next
			a.camera.SetFPS(fps)
			ticker.Reset(time.Second / time.Duration(fps))
			log.Printf("Capture rate now %d fps", fps)
		}
	}
}

func (a *App) reopenCamera() {
	log.Println("Camera stopped delivering frames, reopening")
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if err := a.camera.Open(); err != nil {
		log.Printf("Error reopening camera: %v", err)
		return
	}
	a.motion.Reset()
}

func (a *App) publishFrame(frame *gocv.Mat) {
	if a.frames.len() == 0 {
		return
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return
	}
	jpeg := append([]byte(nil), buf.GetBytes()...)
	buf.Close()
	a.frames.publish(jpeg)
}

// ProcessObservation runs one frame's detector output through face
// exclusion and the gesture engine, delivers any emitted command and
// publishes the resulting status. It does nothing while detection is
// disabled.
func (a *App) ProcessObservation(obs *detector.Observation, now time.Time) gesture.Result {
	if !a.IsEnabled() {
		return gesture.Result{Label: gesture.LabelSearching}
	}
	if obs == nil {
		obs = &detector.Observation{}
	}

	a.procMu.Lock()
	hand := detector.SelectActive(obs, a.config.FacePadding)
	res := a.engine.Process(hand, now)
	if res.Command != gesture.CommandNone {
		a.lastCommand = res.Command
	}
	last := a.lastCommand
	a.procMu.Unlock()

	if res.Command != gesture.CommandNone {
		a.deliver(res)
	}

	status := Status{
		Enabled:     true,
		Label:       res.Label,
		Category:    res.Category.String(),
		LastCommand: string(last),
		Hands:       len(obs.Hands),
		Faces:       len(obs.Faces),
		HistoryLen:  res.HistoryLen,
		FPS:         a.camera.FPS(),
		At:          now,
	}
	if res.Command != gesture.CommandNone {
		status.Command = string(res.Command)
	}

	a.mu.Lock()
	status.Enabled = a.enabled
	a.status = status
	a.mu.Unlock()
	a.statuses.publish(status)

	return res
}

func (a *App) deliver(res gesture.Result) {
	log.Printf("Command %s (%s)", res.Command, res.Category)

	delivered := false
	if a.sink != nil {
		delivered = a.sink.Send(res.Command)
	}

	if a.config.Store == nil {
		return
	}
	err := a.config.Store.Events().Record(&store.Event{
		Command:   string(res.Command),
		Category:  res.Category.String(),
		Delivered: delivered,
	})
	if err != nil {
		log.Printf("Failed to record event: %v", err)
	}
}
