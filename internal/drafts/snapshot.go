package drafts

import (
	"encoding/base64"
	"fmt"

	"github.com/angelmondragon/jewelry-admin/internal/imagecodec"
	"github.com/angelmondragon/jewelry-admin/internal/localcache"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
)

// Field is one scalar multipart field.
type Field struct {
	Name  string
	Value string
}

// FilePart is one binary multipart part.
type FilePart struct {
	Field    string
	FileName string
	MIME     string
	Data     []byte
}

// Form is the wire shape of a draft: scalars and repeated tag fields, then images.
type Form struct {
	Kind   enums.EntityKind
	Fields []Field
	Files  []FilePart
}

// Form serializes the draft. Empty scalars are skipped; images keep slot order.
func (s *Store) Form() (Form, error) {
	form := Form{Kind: s.Kind()}
	for _, field := range s.draft.scalars() {
		if *field.value == "" {
			continue
		}
		form.Fields = append(form.Fields, Field{Name: field.name, Value: *field.value})
	}
	if product, ok := s.draft.(*Product); ok {
		for _, group := range []enums.TagGroup{enums.TagGroupLength, enums.TagGroupColor} {
			for _, tag := range product.tagSet(group).Values() {
				form.Fields = append(form.Fields, Field{Name: group.FormField(), Value: tag})
			}
		}
	}

	for slot, h := range s.Slots() {
		if h == "" {
			continue
		}
		blob, err := s.blob(h)
		if err != nil {
			return Form{}, err
		}
		form.Files = append(form.Files, FilePart{
			Field:    "images",
			FileName: imageFileName(s.Kind(), slot),
			MIME:     blob.MIME,
			Data:     blob.Data,
		})
	}
	return form, nil
}

func imageFileName(kind enums.EntityKind, slot int) string {
	if kind != enums.EntityKindProduct && slot == 0 {
		return "image.jpg"
	}
	return fmt.Sprintf("image%d.jpg", slot)
}

// Snapshot is the denormalized copy written to the local cache. It carries a fresh
// local id and only the filled image slots, inlined as data URLs so the copy stays
// readable after the handles are released.
func (s *Store) Snapshot() (localcache.Record, error) {
	fields := make(map[string]any)
	for _, field := range s.draft.scalars() {
		fields[field.name] = *field.value
	}
	if product, ok := s.draft.(*Product); ok {
		fields["color"] = product.Color.Values()
		fields["length"] = product.Length.Values()
	}

	images := make([]string, 0, len(s.Slots()))
	for _, h := range s.Images() {
		blob, err := s.blob(h)
		if err != nil {
			return localcache.Record{}, err
		}
		images = append(images, DataURL(blob))
	}
	fields["images"] = images
	if s.Kind() == enums.EntityKindBanner && len(images) > 0 {
		fields["imageUrl"] = images[0]
	}

	return localcache.NewRecord(NextLocalID(s.now()), fields), nil
}

func (s *Store) blob(h imagecodec.Handle) (imagecodec.Blob, error) {
	blob, ok := s.blobs.Get(h)
	if !ok {
		return imagecodec.Blob{}, pkgerrors.New(pkgerrors.CodeNotFound, "image handle no longer available").
			WithDetails(map[string]any{"handle": h.String()})
	}
	return blob, nil
}

// DataURL inlines an encoded image.
func DataURL(blob imagecodec.Blob) string {
	return "data:" + blob.MIME + ";base64," + base64.StdEncoding.EncodeToString(blob.Data)
}

// View is the JSON shape the local API returns for a draft.
type View struct {
	Kind   enums.EntityKind    `json:"kind"`
	Fields map[string]string   `json:"fields"`
	Tags   map[string][]string `json:"tags,omitempty"`
	Slots  []imagecodec.Handle `json:"slots"`
}

func (s *Store) View() View {
	view := View{
		Kind:   s.Kind(),
		Fields: make(map[string]string),
		Slots:  s.Slots(),
	}
	for _, field := range s.draft.scalars() {
		view.Fields[field.name] = *field.value
	}
	if product, ok := s.draft.(*Product); ok {
		view.Tags = map[string][]string{
			enums.TagGroupColor.String():  product.Color.Values(),
			enums.TagGroupLength.String(): product.Length.Values(),
		}
	}
	if view.Slots == nil {
		view.Slots = []imagecodec.Handle{}
	}
	return view
}
