package canvas

import (
	"image"
	"image/color"
	"sync"
)

// OpKind identifies a recorded surface mutation.
type OpKind int

const (
	OpClear OpKind = iota
	OpSegment
	OpShape
)

// Op is one recorded mutation.
type Op struct {
	Kind      OpKind
	From      image.Point
	To        image.Point
	Color     color.RGBA
	Thickness int
	Shape     Shape
}

// Recorder is a Surface that records mutations instead of rasterizing them.
// It is used by tests and by headless replay runs.
type Recorder struct {
	mu      sync.Mutex
	size    image.Point
	ops     []Op
	saved   []string
	saveErr error
	closed  bool
}

// NewRecorder creates a recording surface with the given size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{size: image.Point{X: width, Y: height}}
}

// SetSaveError makes subsequent Save calls fail with err.
func (r *Recorder) SetSaveError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveErr = err
}

// Ops returns a copy of the recorded mutations.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Op, len(r.ops))
	copy(out, r.ops)
	return out
}

// Segments returns the recorded segment mutations only.
func (r *Recorder) Segments() []Op {
	var out []Op
	for _, op := range r.Ops() {
		if op.Kind == OpSegment {
			out = append(out, op)
		}
	}
	return out
}

// Saved returns the paths of successful saves.
func (r *Recorder) Saved() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.saved...)
}

// Reset forgets recorded mutations and saves.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
	r.saved = nil
}

func (r *Recorder) Clear() error {
	r.record(Op{Kind: OpClear})
	return nil
}

func (r *Recorder) DrawSegment(from, to image.Point, c color.RGBA, thickness int) error {
	r.record(Op{Kind: OpSegment, From: from, To: to, Color: c, Thickness: thickness})
	return nil
}

func (r *Recorder) CommitShape(s Shape) error {
	r.record(Op{Kind: OpShape, From: s.From, To: s.To, Color: s.Color, Thickness: s.Thickness, Shape: s})
	return nil
}

func (r *Recorder) Save(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved = append(r.saved, path)
	return nil
}

func (r *Recorder) Size() image.Point {
	return r.size
}

func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (r *Recorder) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Recorder) record(op Op) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}
