package render

import "github.com/pondhero/platformer/internal/geom"

// OpKind identifies a recorded draw call.
type OpKind uint8

const (
	OpClear OpKind = iota
	OpImage
	OpRect
	OpHollowRect
)

// Op is one recorded draw call with the offset already applied.
type Op struct {
	Kind  OpKind
	Image Image
	Pos   geom.Point
	Rect  geom.Rect
	Color Color
	// Tag is set by the caller via Recorder.Tag before a draw, letting tests
	// attribute draws to components.
	Tag string
}

// Recorder is a headless Surface that keeps every draw call of the
// current frame. Clear starts a new frame.
type Recorder struct {
	Offsets
	Ops []Op
	// Frames counts Show calls.
	Frames int
	tag    string
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{Ops: make([]Op, 0, 64)}
}

// Tag labels the following draw calls.
func (r *Recorder) Tag(tag string) { r.tag = tag }

// Reset drops recorded ops.
func (r *Recorder) Reset() { r.Ops = r.Ops[:0] }

// Tags returns the tag of every recorded op in order.
func (r *Recorder) Tags() []string {
	out := make([]string, 0, len(r.Ops))
	for _, op := range r.Ops {
		out = append(out, op.Tag)
	}
	return out
}

// Show marks the end of a frame.
func (r *Recorder) Show() { r.Frames++ }

func (r *Recorder) Clear(c Color) {
	r.Ops = append(r.Ops[:0], Op{Kind: OpClear, Color: c, Tag: r.tag})
}

func (r *Recorder) Image(img Image, pos geom.Point, tint Color) {
	r.Ops = append(r.Ops, Op{Kind: OpImage, Image: img, Pos: pos.Add(r.Offset()), Color: tint, Tag: r.tag})
}

func (r *Recorder) Rect(rect geom.Rect, c Color) {
	r.Ops = append(r.Ops, Op{Kind: OpRect, Rect: rect.Translate(r.Offset()), Color: c, Tag: r.tag})
}

func (r *Recorder) HollowRect(rect geom.Rect, c Color) {
	r.Ops = append(r.Ops, Op{Kind: OpHollowRect, Rect: rect.Translate(r.Offset()), Color: c, Tag: r.tag})
}
