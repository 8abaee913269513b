package forms

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/jewelry-admin/internal/crop"
	"github.com/angelmondragon/jewelry-admin/internal/drafts"
	"github.com/angelmondragon/jewelry-admin/internal/imagecodec"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
	"github.com/angelmondragon/jewelry-admin/pkg/metrics"
	"github.com/google/uuid"
)

// Codec is what a form needs from the image adapter: crop sessions plus the handle
// registry the draft resolves images through.
type Codec interface {
	crop.Codec
	drafts.Blobs
}

// Registry tracks open forms by id.
type Registry struct {
	codec   Codec
	logg    *logger.Logger
	metrics *metrics.PipelineMetrics

	mu    sync.RWMutex
	forms map[uuid.UUID]*Form
}

func NewRegistry(codec Codec, logg *logger.Logger, m *metrics.PipelineMetrics) (*Registry, error) {
	if codec == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "image codec required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Registry{codec: codec, logg: logg, metrics: m, forms: make(map[uuid.UUID]*Form)}, nil
}

// Create opens an empty form of kind.
func (r *Registry) Create(kind enums.EntityKind) (*Form, error) {
	store, err := drafts.New(kind, r.codec)
	if err != nil {
		return nil, err
	}
	controller, err := crop.NewController(r.codec, store, kind, r.logg, r.metrics)
	if err != nil {
		return nil, err
	}
	form := &Form{
		id:        uuid.New(),
		kind:      kind,
		createdAt: time.Now().UTC(),
		store:     store,
		crop:      controller,
	}

	r.mu.Lock()
	r.forms[form.id] = form
	r.mu.Unlock()
	return form, nil
}

// Get looks up an open form.
func (r *Registry) Get(id uuid.UUID) (*Form, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	form, ok := r.forms[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "form not found").
			WithDetails(map[string]any{"form_id": id.String()})
	}
	return form, nil
}

// Discard closes a form and frees every image it held.
func (r *Registry) Discard(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	form, ok := r.forms[id]
	delete(r.forms, id)
	r.mu.Unlock()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "form not found").
			WithDetails(map[string]any{"form_id": id.String()})
	}

	released := form.close()
	r.logg.Debug(r.logg.WithFields(ctx, map[string]any{"form_id": id.String(), "released": released}), "form discarded")
	return nil
}

// Len is the number of open forms.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forms)
}

// Close discards every open form.
func (r *Registry) Close() {
	r.mu.Lock()
	forms := r.forms
	r.forms = make(map[uuid.UUID]*Form)
	r.mu.Unlock()
	for _, form := range forms {
		form.close()
	}
}

// Form is one draft plus at most one crop session. Every operation takes the
// form's lock, so a form behaves like a single-threaded UI.
type Form struct {
	id        uuid.UUID
	kind      enums.EntityKind
	createdAt time.Time

	mu    sync.Mutex
	store *drafts.Store
	crop  *crop.Controller
}

// Snapshot is the JSON shape of a form.
type Snapshot struct {
	ID        uuid.UUID   `json:"id"`
	Kind      string      `json:"kind"`
	CreatedAt time.Time   `json:"createdAt"`
	Draft     drafts.View `json:"draft"`
	Crop      crop.View   `json:"crop"`
}

func (f *Form) ID() uuid.UUID {
	return f.id
}

func (f *Form) Kind() enums.EntityKind {
	return f.kind
}

func (f *Form) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Form) snapshotLocked() Snapshot {
	return Snapshot{
		ID:        f.id,
		Kind:      string(f.kind),
		CreatedAt: f.createdAt,
		Draft:     f.store.View(),
		Crop:      f.crop.View(),
	}
}

// SetFields applies scalar edits in order and stops at the first rejected one.
func (f *Form) SetFields(fields []drafts.Field) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.draftEditable(); err != nil {
		return Snapshot{}, err
	}
	for _, field := range fields {
		if err := f.store.SetField(field.Name, field.Value); err != nil {
			return Snapshot{}, err
		}
	}
	return f.snapshotLocked(), nil
}

func (f *Form) ToggleTag(group, tag string, checked bool) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.draftEditable(); err != nil {
		return Snapshot{}, err
	}
	if err := f.store.ToggleTag(group, tag, checked); err != nil {
		return Snapshot{}, err
	}
	return f.snapshotLocked(), nil
}

// RemoveImage drops slot from the draft. An open crop session targets a slot index,
// so removal is refused until the session ends.
func (f *Form) RemoveImage(slot int) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.draftEditable(); err != nil {
		return Snapshot{}, err
	}
	if err := f.store.RemoveImage(slot); err != nil {
		return Snapshot{}, err
	}
	return f.snapshotLocked(), nil
}

// OpenCrop starts a crop session on slot from uploaded bytes.
func (f *Form) OpenCrop(slot int, data []byte, declaredMIME string) (crop.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.crop.Open(slot, data, declaredMIME)
}

// Recrop starts a crop session from the image already in slot.
func (f *Form) Recrop(slot int) (crop.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.crop.Recrop(slot)
}

func (f *Form) AdjustCrop(u crop.Update) (crop.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.crop.Adjust(u)
}

func (f *Form) ReportCropArea(rect imagecodec.Rect) (crop.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.crop.ReportArea(rect)
}

func (f *Form) ZoomCrop(in bool) (crop.View, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in {
		return f.crop.ZoomIn()
	}
	return f.crop.ZoomOut()
}

// SaveCrop writes the session's region into its slot.
func (f *Form) SaveCrop(ctx context.Context) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.crop.Save(ctx); err != nil {
		return Snapshot{}, err
	}
	return f.snapshotLocked(), nil
}

func (f *Form) CancelCrop() crop.View {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.crop.Cancel()
	return f.crop.View()
}

// WithDraft runs fn on the draft under the form's lock. An open crop session blocks
// it, the same way the crop modal blocks the form behind it.
func (f *Form) WithDraft(fn func(*drafts.Store) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.draftEditable(); err != nil {
		return err
	}
	return fn(f.store)
}

// draftEditable must be called with f.mu held.
func (f *Form) draftEditable() error {
	if f.crop.State() == crop.StateOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "finish or cancel the crop session first")
	}
	return nil
}

func (f *Form) close() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.crop.Cancel()
	return len(f.store.Reset())
}
