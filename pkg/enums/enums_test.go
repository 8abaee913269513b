package enums

import (
	"math"
	"testing"
)

func TestParseEntityKind(t *testing.T) {
	for _, kind := range EntityKinds() {
		got, err := ParseEntityKind(kind.String())
		if err != nil || got != kind {
			t.Fatalf("round trip failed for %s: %v", kind, err)
		}
	}
	if _, err := ParseEntityKind("order"); err == nil {
		t.Fatalf("expected unknown kind to fail")
	}
}

func TestAspectRatioValues(t *testing.T) {
	if v := AspectWide.Value(); math.Abs(v-16.0/9.0) > 1e-9 {
		t.Fatalf("unexpected 16:9 value %v", v)
	}
	if AspectRatio("5:4").IsValid() {
		t.Fatalf("5:4 is not offered")
	}
	if DefaultAspect(EntityKindProduct) != AspectStandard {
		t.Fatalf("products crop at 4:3")
	}
	if DefaultAspect(EntityKindBanner) != AspectWide {
		t.Fatalf("banners crop at 16:9")
	}
}

func TestTagGroups(t *testing.T) {
	if !TagGroupColor.Allows("rose gold") {
		t.Fatalf("rose gold should be allowed")
	}
	if TagGroupLength.Allows("gold") {
		t.Fatalf("gold is not a length")
	}
	if TagGroupLength.FormField() != "length[]" {
		t.Fatalf("unexpected form field %s", TagGroupLength.FormField())
	}
	if _, err := ParseTagGroup("size"); err == nil {
		t.Fatalf("expected unknown group to fail")
	}
}
