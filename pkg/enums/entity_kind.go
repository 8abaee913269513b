package enums

import "fmt"

// EntityKind discriminates the draft/catalog record variants.
type EntityKind string

const (
	EntityKindProduct EntityKind = "product"
	EntityKindMedia   EntityKind = "media"
	EntityKindBanner  EntityKind = "banner"
)

var validEntityKinds = []EntityKind{
	EntityKindProduct,
	EntityKindMedia,
	EntityKindBanner,
}

// String returns the literal string for the kind.
func (k EntityKind) String() string {
	return string(k)
}

// IsValid reports whether the kind is known.
func (k EntityKind) IsValid() bool {
	for _, candidate := range validEntityKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// EntityKinds lists every supported kind in display order.
func EntityKinds() []EntityKind {
	out := make([]EntityKind, len(validEntityKinds))
	copy(out, validEntityKinds)
	return out
}

// ParseEntityKind converts raw input into an EntityKind.
func ParseEntityKind(value string) (EntityKind, error) {
	for _, candidate := range validEntityKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entity kind %q", value)
}
