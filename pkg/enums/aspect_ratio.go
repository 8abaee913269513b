package enums

import "fmt"

// AspectRatio is one of the crop frame ratios offered by the forms.
type AspectRatio string

const (
	AspectSquare   AspectRatio = "1:1"
	AspectWide     AspectRatio = "16:9"
	AspectStandard AspectRatio = "4:3"
	AspectClassic  AspectRatio = "3:2"
	AspectPortrait AspectRatio = "2:3"
)

var validAspectRatios = []AspectRatio{
	AspectSquare,
	AspectWide,
	AspectStandard,
	AspectClassic,
	AspectPortrait,
}

var aspectValues = map[AspectRatio]float64{
	AspectSquare:   1,
	AspectWide:     16.0 / 9.0,
	AspectStandard: 4.0 / 3.0,
	AspectClassic:  3.0 / 2.0,
	AspectPortrait: 2.0 / 3.0,
}

// String implements fmt.Stringer.
func (a AspectRatio) String() string {
	return string(a)
}

// IsValid reports whether the ratio is one of the offered ones.
func (a AspectRatio) IsValid() bool {
	_, ok := aspectValues[a]
	return ok
}

// Value returns width divided by height.
func (a AspectRatio) Value() float64 {
	return aspectValues[a]
}

// AspectRatios lists the offered ratios in menu order.
func AspectRatios() []AspectRatio {
	out := make([]AspectRatio, len(validAspectRatios))
	copy(out, validAspectRatios)
	return out
}

// ParseAspectRatio converts raw input into an AspectRatio.
func ParseAspectRatio(value string) (AspectRatio, error) {
	for _, candidate := range validAspectRatios {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aspect ratio %q", value)
}

// DefaultAspect returns the ratio a crop session opens with for the given kind.
func DefaultAspect(kind EntityKind) AspectRatio {
	if kind == EntityKindProduct {
		return AspectStandard
	}
	return AspectWide
}
