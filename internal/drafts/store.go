package drafts

import (
	"fmt"
	"time"

	"github.com/angelmondragon/jewelry-admin/internal/imagecodec"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
)

// Blobs resolves and frees encoded image handles.
type Blobs interface {
	Get(h imagecodec.Handle) (imagecodec.Blob, bool)
	Release(h imagecodec.Handle) bool
}

// Store holds one mutable draft. It is not safe for concurrent use; callers serialize
// access per form.
type Store struct {
	draft Draft
	blobs Blobs
	now   func() time.Time
}

func New(kind enums.EntityKind, blobs Blobs) (*Store, error) {
	draft, ok := NewDraft(kind)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown entity kind").
			WithDetails(map[string]any{"kind": string(kind)})
	}
	if blobs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "image registry required")
	}
	return &Store{draft: draft, blobs: blobs, now: time.Now}, nil
}

func (s *Store) Kind() enums.EntityKind {
	return s.draft.Kind()
}

// Draft exposes the current draft for reads.
func (s *Store) Draft() Draft {
	return s.draft
}

// SetField replaces one scalar attribute.
func (s *Store) SetField(name, value string) error {
	for _, field := range s.draft.scalars() {
		if field.name == name {
			*field.value = value
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "unknown field").
		WithDetails(map[string]any{"field": name, "kind": string(s.Kind())})
}

// Field reads one scalar attribute.
func (s *Store) Field(name string) (string, bool) {
	for _, field := range s.draft.scalars() {
		if field.name == name {
			return *field.value, true
		}
	}
	return "", false
}

// ToggleTag adds tag to group when checked and removes it otherwise. Toggling an
// already present tag on, or an absent one off, leaves the set unchanged.
func (s *Store) ToggleTag(group, tag string, checked bool) error {
	product, ok := s.draft.(*Product)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "entity kind has no tag groups").
			WithDetails(map[string]any{"kind": string(s.Kind())})
	}
	tagGroup, err := enums.ParseTagGroup(group)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown tag group").
			WithDetails(map[string]any{"group": group})
	}
	if !tagGroup.Allows(tag) {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown tag").
			WithDetails(map[string]any{"group": group, "tag": tag, "allowed": tagGroup.Options()})
	}
	set := product.tagSet(tagGroup)
	if checked {
		set.Add(tag)
	} else {
		set.Remove(tag)
	}
	return nil
}

// Tags returns the members of group.
func (s *Store) Tags(group enums.TagGroup) []string {
	product, ok := s.draft.(*Product)
	if !ok {
		return nil
	}
	if set := product.tagSet(group); set != nil {
		return set.Values()
	}
	return nil
}

// Slots returns every slot in order; empty slots are "".
func (s *Store) Slots() []imagecodec.Handle {
	switch d := s.draft.(type) {
	case *Product:
		out := make([]imagecodec.Handle, ProductSlots)
		copy(out, d.Images[:])
		return out
	case *MediaEntry:
		return append([]imagecodec.Handle(nil), d.Images...)
	case *Banner:
		return append([]imagecodec.Handle(nil), d.Images...)
	}
	return nil
}

// Images returns the filled slots in slot order.
func (s *Store) Images() []imagecodec.Handle {
	var out []imagecodec.Handle
	for _, h := range s.Slots() {
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}

// ImageSlot returns the handle at index, or "" for an empty product slot.
func (s *Store) ImageSlot(index int) (imagecodec.Handle, error) {
	slots := s.Slots()
	if index < 0 || index >= len(slots) {
		return "", slotRangeError(index, len(slots))
	}
	return slots[index], nil
}

// CanWriteSlot reports whether SetImageSlot(index, handle) would accept index.
func (s *Store) CanWriteSlot(index int) error {
	switch d := s.draft.(type) {
	case *Product:
		if index < 0 || index >= ProductSlots {
			return slotRangeError(index, ProductSlots)
		}
	case *MediaEntry:
		if index < 0 || index > len(d.Images) {
			return slotRangeError(index, len(d.Images)+1)
		}
	case *Banner:
		if index < 0 || index > len(d.Images) {
			return slotRangeError(index, len(d.Images)+1)
		}
	}
	return nil
}

// SetImageSlot writes handle into slot index. Products have four fixed slots; media
// and banners accept index == len to append. An empty handle clears a product slot
// and removes a list slot. The replaced handle is released.
func (s *Store) SetImageSlot(index int, handle imagecodec.Handle) error {
	if err := s.CanWriteSlot(index); err != nil {
		return err
	}
	var previous imagecodec.Handle
	switch d := s.draft.(type) {
	case *Product:
		previous = d.Images[index]
		d.Images[index] = handle
	case *MediaEntry:
		d.Images, previous = writeListSlot(d.Images, index, handle)
	case *Banner:
		d.Images, previous = writeListSlot(d.Images, index, handle)
	}
	s.release(previous)
	return nil
}

// RemoveImage clears slot index.
func (s *Store) RemoveImage(index int) error {
	slots := s.Slots()
	if index < 0 || index >= len(slots) {
		return slotRangeError(index, len(slots))
	}
	return s.SetImageSlot(index, "")
}

func writeListSlot(list []imagecodec.Handle, index int, handle imagecodec.Handle) ([]imagecodec.Handle, imagecodec.Handle) {
	if index == len(list) {
		if handle == "" {
			return list, ""
		}
		return append(list, handle), ""
	}
	previous := list[index]
	if handle == "" {
		return append(list[:index], list[index+1:]...), previous
	}
	list[index] = handle
	return list, previous
}

// release frees h unless another slot still references it.
func (s *Store) release(h imagecodec.Handle) {
	if h == "" {
		return
	}
	for _, other := range s.Slots() {
		if other == h {
			return
		}
	}
	s.blobs.Release(h)
}

// Reset restores the kind's empty defaults and releases every handle the draft held.
func (s *Store) Reset() []imagecodec.Handle {
	held := s.Images()
	draft, _ := NewDraft(s.Kind())
	s.draft = draft
	released := make([]imagecodec.Handle, 0, len(held))
	seen := make(map[imagecodec.Handle]struct{}, len(held))
	for _, h := range held {
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		s.blobs.Release(h)
		released = append(released, h)
	}
	return released
}

func slotRangeError(index, limit int) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image slot %d out of range", index)).
		WithDetails(map[string]any{"slot": index, "limit": limit})
}
