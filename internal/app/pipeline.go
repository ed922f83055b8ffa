package app

import (
	"errors"
	"io"
	"time"

	"github.com/ayusman/airdraw/internal/engine"
	"gocv.io/x/gocv"
)

// quitter is implemented by sinks that can ask the host to stop.
type quitter interface {
	QuitRequested() bool
}

// loop is the frame loop. It ticks at the pacer's rate, which moves between
// idle and active as the motion detector sees the scene change. It returns
// nil when stopped, ErrQuit when a sink asked to stop and io.EOF when a
// replay session runs out.
func (a *App) loop(stop <-chan struct{}) error {
	ticker := time.NewTicker(a.pacer.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return nil
		case <-ticker.C:
		}

		changed, err := a.tick()
		if err != nil {
			if errors.Is(err, io.EOF) {
				a.logger.Info("landmark session finished")
			}
			return err
		}
		if changed {
			ticker.Reset(a.pacer.Interval())
		}
	}
}

// tick acquires one camera frame, updates pacing and processes it. Camera
// errors skip the frame. It reports whether the frame rate changed.
func (a *App) tick() (bool, error) {
	now := a.clock()

	var frame *gocv.Mat
	changed := false
	if a.camera != nil {
		f, err := a.camera.ReadFrame()
		if err != nil {
			a.logger.Warn("error reading frame", "error", err)
			return false, nil
		}
		defer f.Close()
		frame = f

		m := a.motion.Detect(frame)
		var fps int
		if fps, changed = a.pacer.Observe(m.Detected, now); changed {
			a.camera.SetFPS(fps)
			a.logger.Debug("frame rate changed", "fps", fps, "active", a.pacer.Active(), "change", m.ChangePercent)
		}
	}

	return changed, a.processFrame(now, frame)
}

// processFrame applies queued commands, detects hands, steps the engine and
// renders the preview. Detector failures skip the frame; io.EOF ends the loop.
func (a *App) processFrame(now time.Time, frame *gocv.Mat) error {
	if msg := a.drainCommands(now); msg != "" {
		a.showMessage(msg, now)
	}

	hands, err := a.detector.Detect(frame)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		a.logger.Warn("error detecting hands", "error", err)
		return nil
	}

	f := a.engine.Step(now, hands)
	if f.Message != "" {
		a.showMessage(f.Message, now)
	}
	if now.Before(a.messageUntil) {
		f.Message = a.message
	}
	a.publish(f.Status)

	return a.render(frame, f)
}

// drainCommands applies every queued command and returns the last message.
func (a *App) drainCommands(now time.Time) string {
	var msg string
	for {
		select {
		case cmd := <-a.commands:
			if m := a.engine.Apply(cmd, now); m != "" {
				msg = m
			}
		default:
			return msg
		}
	}
}

func (a *App) showMessage(msg string, now time.Time) {
	a.message = msg
	a.messageUntil = now.Add(a.config.MessageTTL)
}

func (a *App) render(camera *gocv.Mat, f engine.Frame) error {
	if len(a.config.Sinks) == 0 {
		return nil
	}

	if err := a.compositor.Compose(&a.out, camera, a.engine.Surface(), a.engine.Panel(), f); err != nil {
		a.logger.Warn("error compositing frame", "error", err)
		return nil
	}

	for _, sink := range a.config.Sinks {
		if err := sink.Show(&a.out); err != nil {
			a.logger.Warn("error showing frame", "error", err)
		}
		if q, ok := sink.(quitter); ok && q.QuitRequested() {
			return ErrQuit
		}
	}
	return nil
}
