package enums

import "fmt"

// TagGroup names a multi-valued product attribute.
type TagGroup string

const (
	TagGroupColor  TagGroup = "color"
	TagGroupLength TagGroup = "length"
)

var tagsByGroup = map[TagGroup][]string{
	TagGroupColor:  {"gold", "silver", "rose gold", "white gold"},
	TagGroupLength: {"100cm", "200cm", "300cm", "400cm"},
}

// String implements fmt.Stringer.
func (g TagGroup) String() string {
	return string(g)
}

// IsValid reports whether the group is known.
func (g TagGroup) IsValid() bool {
	_, ok := tagsByGroup[g]
	return ok
}

// FormField is the repeated multipart field name the remote API expects.
func (g TagGroup) FormField() string {
	return string(g) + "[]"
}

// Allows reports whether tag is one of the predefined options for the group.
func (g TagGroup) Allows(tag string) bool {
	for _, candidate := range tagsByGroup[g] {
		if candidate == tag {
			return true
		}
	}
	return false
}

// Options returns the predefined tags for the group.
func (g TagGroup) Options() []string {
	opts := tagsByGroup[g]
	out := make([]string, len(opts))
	copy(out, opts)
	return out
}

// ParseTagGroup converts raw input into a TagGroup.
func ParseTagGroup(value string) (TagGroup, error) {
	group := TagGroup(value)
	if !group.IsValid() {
		return "", fmt.Errorf("invalid tag group %q", value)
	}
	return group, nil
}
