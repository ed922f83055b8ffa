package render

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Sink receives composited frames.
type Sink interface {
	Show(frame *gocv.Mat) error
}

// Window shows frames in a native OpenCV window and reports quit key presses.
type Window struct {
	win     *gocv.Window
	lastKey int
}

// NewWindow opens a named window.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays the frame and pumps the window event loop.
func (w *Window) Show(frame *gocv.Mat) error {
	w.win.IMShow(*frame)
	w.lastKey = w.win.WaitKey(1)
	return nil
}

// QuitRequested reports whether q was pressed during the last Show or the
// window was closed.
func (w *Window) QuitRequested() bool {
	if w.lastKey == 'q' || w.lastKey == 'Q' {
		return true
	}
	return !w.win.IsOpen()
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}

// Preview holds the latest composited frame as JPEG for streaming.
type Preview struct {
	mu    sync.RWMutex
	data  []byte
	seq   uint64
	ready chan struct{}
}

// NewPreview creates an empty Preview.
func NewPreview() *Preview {
	return &Preview{ready: make(chan struct{})}
}

// Show encodes the frame and replaces the held JPEG.
func (p *Preview) Show(frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return fmt.Errorf("failed to encode preview: %w", err)
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	p.Publish(data)
	return nil
}

// Publish stores an already-encoded JPEG and wakes waiting readers.
func (p *Preview) Publish(jpeg []byte) {
	p.mu.Lock()
	p.data = jpeg
	p.seq++
	close(p.ready)
	p.ready = make(chan struct{})
	p.mu.Unlock()
}

// Latest returns the current JPEG, its sequence number and a channel that
// is closed when a newer frame is published.
func (p *Preview) Latest() ([]byte, uint64, <-chan struct{}) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data, p.seq, p.ready
}

// Fanout forwards frames to several sinks, returning the first error.
type Fanout []Sink

// Show forwards the frame to every sink.
func (f Fanout) Show(frame *gocv.Mat) error {
	var first error
	for _, s := range f {
		if err := s.Show(frame); err != nil && first == nil {
			first = err
		}
	}
	return first
}
