package drafts

import (
	"github.com/angelmondragon/jewelry-admin/internal/imagecodec"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
)

// ProductSlots is the fixed number of image slots on a product.
const ProductSlots = 4

// Draft is the in-progress entity a form edits. It is implemented by *Product,
// *MediaEntry and *Banner only.
type Draft interface {
	Kind() enums.EntityKind
	scalars() []scalar
}

type scalar struct {
	name  string
	value *string
}

// Product is a jewelry item. Price and stock stay strings until validated, the same
// way the form holds them.
type Product struct {
	Title       string `json:"title" validate:"required"`
	Category    string `json:"category"`
	Price       string `json:"price" validate:"required,nonneg_decimal"`
	Description string `json:"description"`
	Stock       string `json:"stock" validate:"required,nonneg_int"`
	Metal       string `json:"metal"`
	Weight      string `json:"weight"`
	Width       string `json:"width"`
	RingSize    string `json:"ring_size"`
	Stone       string `json:"stone"`
	Gender      string `json:"gender"`
	Style       string `json:"style"`

	Color  TagSet `json:"color"`
	Length TagSet `json:"length"`

	// An empty handle marks an empty slot.
	Images [ProductSlots]imagecodec.Handle `json:"images"`
}

func (p *Product) Kind() enums.EntityKind { return enums.EntityKindProduct }

func (p *Product) scalars() []scalar {
	return []scalar{
		{"title", &p.Title},
		{"category", &p.Category},
		{"price", &p.Price},
		{"description", &p.Description},
		{"stock", &p.Stock},
		{"metal", &p.Metal},
		{"weight", &p.Weight},
		{"width", &p.Width},
		{"ring_size", &p.RingSize},
		{"stone", &p.Stone},
		{"gender", &p.Gender},
		{"style", &p.Style},
	}
}

func (p *Product) tagSet(group enums.TagGroup) *TagSet {
	switch group {
	case enums.TagGroupColor:
		return &p.Color
	case enums.TagGroupLength:
		return &p.Length
	}
	return nil
}

// MediaEntry is a gallery item: an image, a video link, or both.
type MediaEntry struct {
	VideoURL string              `json:"videoUrl"`
	Images   []imagecodec.Handle `json:"images"`
}

func (m *MediaEntry) Kind() enums.EntityKind { return enums.EntityKindMedia }

func (m *MediaEntry) scalars() []scalar {
	return []scalar{{"videoUrl", &m.VideoURL}}
}

// Banner is a promotional banner.
type Banner struct {
	Title       string              `json:"title" validate:"required"`
	Description string              `json:"description" validate:"required"`
	Images      []imagecodec.Handle `json:"images"`
}

func (b *Banner) Kind() enums.EntityKind { return enums.EntityKindBanner }

func (b *Banner) scalars() []scalar {
	return []scalar{
		{"title", &b.Title},
		{"description", &b.Description},
	}
}

// NewDraft returns the empty draft for kind.
func NewDraft(kind enums.EntityKind) (Draft, bool) {
	switch kind {
	case enums.EntityKindProduct:
		return &Product{}, true
	case enums.EntityKindMedia:
		return &MediaEntry{}, true
	case enums.EntityKindBanner:
		return &Banner{}, true
	}
	return nil, false
}

// FieldNames lists the scalar fields a kind accepts, in form order.
func FieldNames(kind enums.EntityKind) []string {
	draft, ok := NewDraft(kind)
	if !ok {
		return nil
	}
	fields := draft.scalars()
	names := make([]string, 0, len(fields))
	for _, f := range fields {
		names = append(names, f.name)
	}
	return names
}
