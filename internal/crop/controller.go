package crop

import (
	"context"
	"math"

	"github.com/angelmondragon/jewelry-admin/internal/imagecodec"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
	"github.com/angelmondragon/jewelry-admin/pkg/metrics"
)

type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

// Codec decodes sources and encodes the chosen region.
type Codec interface {
	Decode(data []byte, declaredMIME string) (*imagecodec.Surface, error)
	DecodeHandle(h imagecodec.Handle) (*imagecodec.Surface, error)
	EncodeRegion(surface *imagecodec.Surface, rect imagecodec.Rect) (imagecodec.Handle, error)
	Release(h imagecodec.Handle) bool
}

// Target is the draft whose slots receive saved crops.
type Target interface {
	CanWriteSlot(index int) error
	ImageSlot(index int) (imagecodec.Handle, error)
	SetImageSlot(index int, handle imagecodec.Handle) error
}

// Update carries the fields of one interactive adjustment. Nil fields are unchanged.
type Update struct {
	Pan    *Pan               `json:"pan,omitempty"`
	Zoom   *float64           `json:"zoom,omitempty"`
	Aspect *enums.AspectRatio `json:"aspect,omitempty"`
}

type session struct {
	slot   int
	source *imagecodec.Surface
	pan    Pan
	zoom   float64
	aspect enums.AspectRatio
	area   *imagecodec.Rect
}

// View is a read-only copy of the open session.
type View struct {
	State        State             `json:"state"`
	Slot         int               `json:"slot"`
	Pan          Pan               `json:"pan"`
	Zoom         float64           `json:"zoom"`
	Aspect       enums.AspectRatio `json:"aspect"`
	Area         *imagecodec.Rect  `json:"area,omitempty"`
	SourceWidth  int               `json:"source_width"`
	SourceHeight int               `json:"source_height"`
}

// Controller runs at most one crop session for one form.
type Controller struct {
	codec   Codec
	target  Target
	kind    enums.EntityKind
	logg    *logger.Logger
	metrics *metrics.PipelineMetrics
	current *session
}

func NewController(codec Codec, target Target, kind enums.EntityKind, logg *logger.Logger, m *metrics.PipelineMetrics) (*Controller, error) {
	if codec == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "image codec required")
	}
	if target == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "draft target required")
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown entity kind")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Controller{codec: codec, target: target, kind: kind, logg: logg, metrics: m}, nil
}

func (c *Controller) State() State {
	if c.current == nil {
		return StateClosed
	}
	return StateOpen
}

// View returns the open session, or a closed view.
func (c *Controller) View() View {
	s := c.current
	if s == nil {
		return View{State: StateClosed}
	}
	view := View{
		State:        StateOpen,
		Slot:         s.slot,
		Pan:          s.pan,
		Zoom:         s.zoom,
		Aspect:       s.aspect,
		SourceWidth:  s.source.Width(),
		SourceHeight: s.source.Height(),
	}
	if s.area != nil {
		area := *s.area
		view.Area = &area
	}
	return view
}

// Open starts a session on slot from freshly uploaded bytes. The MIME check happens
// before the session exists, so a rejected file never opens one.
func (c *Controller) Open(slot int, data []byte, declaredMIME string) (View, error) {
	if err := c.ensureClosed(); err != nil {
		return View{}, err
	}
	if err := c.target.CanWriteSlot(slot); err != nil {
		return View{}, err
	}
	surface, err := c.codec.Decode(data, declaredMIME)
	if err != nil {
		return View{}, err
	}
	c.start(slot, surface)
	return c.View(), nil
}

// Recrop starts a session on an already filled slot, re-decoding its current image.
func (c *Controller) Recrop(slot int) (View, error) {
	if err := c.ensureClosed(); err != nil {
		return View{}, err
	}
	handle, err := c.target.ImageSlot(slot)
	if err != nil {
		return View{}, err
	}
	if handle == "" {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "slot has no image to crop").
			WithDetails(map[string]any{"slot": slot})
	}
	surface, err := c.codec.DecodeHandle(handle)
	if err != nil {
		return View{}, err
	}
	c.start(slot, surface)
	return c.View(), nil
}

func (c *Controller) start(slot int, surface *imagecodec.Surface) {
	s := &session{
		slot:   slot,
		source: surface,
		zoom:   MinZoom,
		aspect: enums.DefaultAspect(c.kind),
	}
	c.current = s
	c.recompute()
}

// Adjust applies one gesture. Pan and zoom recompute the candidate area; an aspect-only
// change keeps the current area until the next pan or zoom.
func (c *Controller) Adjust(u Update) (View, error) {
	s, err := c.open()
	if err != nil {
		return View{}, err
	}
	if u.Aspect != nil {
		if !u.Aspect.IsValid() {
			return View{}, pkgerrors.New(pkgerrors.CodeValidation, "unsupported aspect ratio").
				WithDetails(map[string]any{"aspect": string(*u.Aspect)})
		}
		s.aspect = *u.Aspect
	}
	if u.Pan != nil {
		s.pan = *u.Pan
	}
	if u.Zoom != nil {
		s.zoom = ClampZoom(*u.Zoom)
	}
	if u.Pan != nil || u.Zoom != nil {
		c.recompute()
	}
	return c.View(), nil
}

func (c *Controller) ZoomIn() (View, error) {
	return c.stepZoom(ZoomStep)
}

func (c *Controller) ZoomOut() (View, error) {
	return c.stepZoom(-ZoomStep)
}

func (c *Controller) stepZoom(delta float64) (View, error) {
	s, err := c.open()
	if err != nil {
		return View{}, err
	}
	zoom := math.Round((s.zoom+delta)*10) / 10
	return c.Adjust(Update{Zoom: &zoom})
}

// ReportArea stores an area computed by the client instead of by pan and zoom.
func (c *Controller) ReportArea(rect imagecodec.Rect) (View, error) {
	s, err := c.open()
	if err != nil {
		return View{}, err
	}
	if rect.Empty() || rect.X < 0 || rect.Y < 0 {
		return View{}, pkgerrors.New(pkgerrors.CodeValidation, "crop area must have positive size").
			WithDetails(map[string]any{"area": rect.String()})
	}
	s.area = &rect
	return c.View(), nil
}

// Save encodes the candidate area into the session's slot and closes the session.
// On failure the session stays open so the operator can retry.
func (c *Controller) Save(ctx context.Context) (imagecodec.Handle, error) {
	s, err := c.open()
	if err != nil {
		return "", err
	}
	if s.area == nil {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "no crop area selected yet")
	}
	ctx = c.logg.WithKind(ctx, string(c.kind))

	handle, err := c.codec.EncodeRegion(s.source, *s.area)
	if err != nil {
		c.metrics.IncCrop(string(c.kind), metrics.OutcomeFailure)
		c.logg.Error(ctx, "crop encode failed", err)
		return "", err
	}
	if err := c.target.SetImageSlot(s.slot, handle); err != nil {
		c.codec.Release(handle)
		c.metrics.IncCrop(string(c.kind), metrics.OutcomeFailure)
		c.logg.Error(ctx, "crop slot write failed", err)
		return "", err
	}
	c.metrics.IncCrop(string(c.kind), metrics.OutcomeSuccess)
	c.current = nil
	return handle, nil
}

// Cancel discards the session without touching the draft.
func (c *Controller) Cancel() {
	c.current = nil
}

func (c *Controller) recompute() {
	s := c.current
	area := ComputeArea(s.source.Width(), s.source.Height(), s.pan, s.zoom, s.aspect.Value())
	if area.Empty() {
		s.area = nil
		return
	}
	s.area = &area
}

func (c *Controller) open() (*session, error) {
	if c.current == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no crop session open")
	}
	return c.current, nil
}

func (c *Controller) ensureClosed() error {
	if c.current != nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "a crop session is already open").
			WithDetails(map[string]any{"slot": c.current.slot})
	}
	return nil
}
