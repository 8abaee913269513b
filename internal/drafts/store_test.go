package drafts

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/jewelry-admin/internal/imagecodec"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
)

func newStore(t *testing.T, kind enums.EntityKind) (*Store, *imagecodec.Registry) {
	t.Helper()
	reg := imagecodec.NewRegistry()
	store, err := New(kind, reg)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, reg
}

func putImage(reg *imagecodec.Registry, payload string) imagecodec.Handle {
	return reg.Put(imagecodec.Blob{Data: []byte(payload), MIME: "image/jpeg"})
}

func fillProduct(t *testing.T, s *Store) {
	t.Helper()
	for name, value := range map[string]string{"title": "Ring", "price": "199.90", "stock": "3"} {
		if err := s.SetField(name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}
}

func missingField(t *testing.T, err error) string {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeMissingField {
		t.Fatalf("expected missing field error, got %v", err)
	}
	return typed.Details().(map[string]any)["field"].(string)
}

func TestNewRejectsUnknownKind(t *testing.T) {
	if _, err := New(enums.EntityKind("order"), imagecodec.NewRegistry()); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetFieldReplacesAndRejectsUnknown(t *testing.T) {
	s, _ := newStore(t, enums.EntityKindProduct)
	if err := s.SetField("title", "Ring"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetField("title", "Necklace"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := s.Field("title"); v != "Necklace" {
		t.Fatalf("expected total replace, got %q", v)
	}
	if err := s.SetField("sku", "x"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown field, got %v", err)
	}

	media, _ := newStore(t, enums.EntityKindMedia)
	if err := media.SetField("title", "x"); err == nil {
		t.Fatal("media has no title field")
	}
}

func TestToggleTagIsItsOwnInverse(t *testing.T) {
	s, _ := newStore(t, enums.EntityKindProduct)
	if err := s.ToggleTag("color", "silver", true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	before := strings.Join(s.Tags(enums.TagGroupColor), ",")

	if err := s.ToggleTag("color", "gold", true); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := s.ToggleTag("color", "gold", false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if after := strings.Join(s.Tags(enums.TagGroupColor), ","); after != before {
		t.Fatalf("expected %q after add/remove, got %q", before, after)
	}
}

func TestToggleTagNeverDuplicates(t *testing.T) {
	s, _ := newStore(t, enums.EntityKindProduct)
	for i := 0; i < 3; i++ {
		if err := s.ToggleTag("length", "200cm", true); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	if got := s.Tags(enums.TagGroupLength); len(got) != 1 {
		t.Fatalf("expected a single member, got %v", got)
	}
	if err := s.ToggleTag("length", "200cm", false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if got := s.Tags(enums.TagGroupLength); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
}

func TestToggleTagRejectsUnknown(t *testing.T) {
	s, _ := newStore(t, enums.EntityKindProduct)
	if err := s.ToggleTag("size", "xl", true); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected unknown group error, got %v", err)
	}
	if err := s.ToggleTag("color", "platinum", true); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected unknown tag error, got %v", err)
	}
	banner, _ := newStore(t, enums.EntityKindBanner)
	if err := banner.ToggleTag("color", "gold", true); err == nil {
		t.Fatal("banners have no tag groups")
	}
}

func TestProductSlotsAreFixed(t *testing.T) {
	s, reg := newStore(t, enums.EntityKindProduct)
	if err := s.SetImageSlot(4, putImage(reg, "x")); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if err := s.SetImageSlot(-1, putImage(reg, "x")); err == nil {
		t.Fatal("expected out of range for negative slot")
	}
	h := putImage(reg, "a")
	if err := s.SetImageSlot(2, h); err != nil {
		t.Fatalf("set slot: %v", err)
	}
	slots := s.Slots()
	if len(slots) != ProductSlots || slots[2] != h || slots[0] != "" {
		t.Fatalf("unexpected slots %v", slots)
	}
}

func TestReplacingSlotReleasesPreviousHandle(t *testing.T) {
	s, reg := newStore(t, enums.EntityKindProduct)
	first := putImage(reg, "a")
	second := putImage(reg, "b")
	if err := s.SetImageSlot(0, first); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetImageSlot(0, second); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := reg.Get(first); ok {
		t.Fatal("replaced handle should be released")
	}
	if err := s.RemoveImage(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if reg.Len() != 0 {
		t.Fatalf("expected registry empty, got %d", reg.Len())
	}
}

func TestSharedHandleIsKeptWhileReferenced(t *testing.T) {
	s, reg := newStore(t, enums.EntityKindProduct)
	h := putImage(reg, "a")
	_ = s.SetImageSlot(0, h)
	_ = s.SetImageSlot(1, h)
	_ = s.RemoveImage(0)
	if _, ok := reg.Get(h); !ok {
		t.Fatal("handle still in slot 1 must stay live")
	}
}

func TestListSlotsAppendReplaceRemove(t *testing.T) {
	s, reg := newStore(t, enums.EntityKindMedia)
	a, b, c := putImage(reg, "a"), putImage(reg, "b"), putImage(reg, "c")

	if err := s.SetImageSlot(1, a); err == nil {
		t.Fatal("cannot write past the end of a list")
	}
	_ = s.SetImageSlot(0, a)
	_ = s.SetImageSlot(1, b)
	_ = s.SetImageSlot(1, c)
	if got := s.Slots(); len(got) != 2 || got[1] != c {
		t.Fatalf("unexpected slots %v", got)
	}
	if err := s.RemoveImage(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if got := s.Slots(); len(got) != 1 || got[0] != c {
		t.Fatalf("expected list to shrink, got %v", got)
	}
	if err := s.RemoveImage(5); err == nil {
		t.Fatal("expected out of range")
	}
}

func TestValidateChecksImagesBeforeScalars(t *testing.T) {
	s, _ := newStore(t, enums.EntityKindProduct)
	if field := missingField(t, s.Validate()); field != "images" {
		t.Fatalf("expected images first, got %s", field)
	}
	fillProduct(t, s)
	if field := missingField(t, s.Validate()); field != "images" {
		t.Fatalf("expected images even with scalars set, got %s", field)
	}
}

func TestValidateProductScalarOrder(t *testing.T) {
	s, reg := newStore(t, enums.EntityKindProduct)
	_ = s.SetImageSlot(3, putImage(reg, "a"))

	if field := missingField(t, s.Validate()); field != "title" {
		t.Fatalf("expected title, got %s", field)
	}
	_ = s.SetField("title", "Ring")
	if field := missingField(t, s.Validate()); field != "price" {
		t.Fatalf("expected price, got %s", field)
	}
	_ = s.SetField("price", "-1")
	if err := s.Validate(); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected invalid price, got %v", err)
	}
	_ = s.SetField("price", "12.50")
	if field := missingField(t, s.Validate()); field != "stock" {
		t.Fatalf("expected stock, got %s", field)
	}
	_ = s.SetField("stock", "1.5")
	if err := s.Validate(); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected invalid stock, got %v", err)
	}
	_ = s.SetField("stock", "0")
	if err := s.Validate(); err != nil {
		t.Fatalf("expected valid product, got %v", err)
	}
}

func TestValidateMediaAcceptsVideoOnly(t *testing.T) {
	s, _ := newStore(t, enums.EntityKindMedia)
	if field := missingField(t, s.Validate()); field != "images" {
		t.Fatalf("expected images, got %s", field)
	}
	_ = s.SetField("videoUrl", "https://example.com/v.mp4")
	if err := s.Validate(); err != nil {
		t.Fatalf("video-only media should validate: %v", err)
	}
}

func TestValidateBanner(t *testing.T) {
	s, reg := newStore(t, enums.EntityKindBanner)
	_ = s.SetField("title", "Sale")
	_ = s.SetField("description", "All rings")
	if field := missingField(t, s.Validate()); field != "images" {
		t.Fatalf("expected images, got %s", field)
	}
	_ = s.SetImageSlot(0, putImage(reg, "a"))
	_ = s.SetField("description", "")
	if field := missingField(t, s.Validate()); field != "description" {
		t.Fatalf("expected description, got %s", field)
	}
}

func TestResetReleasesHandles(t *testing.T) {
	s, reg := newStore(t, enums.EntityKindProduct)
	fillProduct(t, s)
	_ = s.ToggleTag("color", "gold", true)
	_ = s.SetImageSlot(0, putImage(reg, "a"))
	_ = s.SetImageSlot(2, putImage(reg, "b"))

	released := s.Reset()
	if len(released) != 2 || reg.Len() != 0 {
		t.Fatalf("expected both handles released, got %v (live %d)", released, reg.Len())
	}
	if v, _ := s.Field("title"); v != "" {
		t.Fatalf("expected empty title after reset, got %q", v)
	}
	if len(s.Tags(enums.TagGroupColor)) != 0 || len(s.Images()) != 0 {
		t.Fatal("expected empty tags and images after reset")
	}
}

func TestFormOrderAndNaming(t *testing.T) {
	s, reg := newStore(t, enums.EntityKindProduct)
	fillProduct(t, s)
	_ = s.SetField("metal", "gold")
	_ = s.ToggleTag("color", "silver", true)
	_ = s.ToggleTag("color", "gold", true)
	_ = s.ToggleTag("length", "100cm", true)
	_ = s.SetImageSlot(1, putImage(reg, "one"))
	_ = s.SetImageSlot(3, putImage(reg, "three"))

	form, err := s.Form()
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	var names []string
	for _, f := range form.Fields {
		names = append(names, f.Name+"="+f.Value)
	}
	want := "title=Ring,price=199.90,stock=3,metal=gold,length[]=100cm,color[]=gold,color[]=silver"
	if got := strings.Join(names, ","); got != want {
		t.Fatalf("unexpected fields\nwant %s\ngot  %s", want, got)
	}
	if len(form.Files) != 2 || form.Files[0].FileName != "image1.jpg" || form.Files[1].FileName != "image3.jpg" {
		t.Fatalf("unexpected files %+v", form.Files)
	}
	if string(form.Files[1].Data) != "three" || form.Files[0].Field != "images" {
		t.Fatalf("unexpected file payload %+v", form.Files[1])
	}
}

func TestMediaFormUsesSingleImageName(t *testing.T) {
	s, reg := newStore(t, enums.EntityKindMedia)
	_ = s.SetImageSlot(0, putImage(reg, "a"))
	_ = s.SetField("videoUrl", "https://v")
	form, err := s.Form()
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if form.Files[0].FileName != "image.jpg" || form.Fields[0].Name != "videoUrl" {
		t.Fatalf("unexpected media form %+v", form)
	}
}

func TestSnapshotDenormalizes(t *testing.T) {
	s, reg := newStore(t, enums.EntityKindProduct)
	s.now = func() time.Time { return time.UnixMilli(4_000_000_000_000) }
	fillProduct(t, s)
	_ = s.ToggleTag("color", "gold", true)
	_ = s.SetImageSlot(2, putImage(reg, "jpeg-bytes"))

	record, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, err := strconv.ParseInt(record.ID, 10, 64); err != nil {
		t.Fatalf("expected numeric local id, got %q", record.ID)
	}
	images := record.Fields["images"].([]string)
	if len(images) != 1 || !strings.HasPrefix(images[0], "data:image/jpeg;base64,") {
		t.Fatalf("expected one inlined image, got %v", images)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(payload), `"color":["gold"]`) || !strings.Contains(string(payload), `"title":"Ring"`) {
		t.Fatalf("unexpected snapshot payload %s", payload)
	}
}

func TestSnapshotFailsOnReleasedHandle(t *testing.T) {
	s, reg := newStore(t, enums.EntityKindBanner)
	h := putImage(reg, "a")
	_ = s.SetImageSlot(0, h)
	reg.Release(h)
	if _, err := s.Snapshot(); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNextLocalIDIsMonotonic(t *testing.T) {
	now := time.UnixMilli(5_000_000_000_000)
	a, _ := strconv.ParseInt(NextLocalID(now), 10, 64)
	b, _ := strconv.ParseInt(NextLocalID(now), 10, 64)
	c, _ := strconv.ParseInt(NextLocalID(now.Add(-time.Hour)), 10, 64)
	if !(a < b && b < c) {
		t.Fatalf("expected strictly increasing ids, got %d %d %d", a, b, c)
	}
}

func TestTagSetJSON(t *testing.T) {
	set := NewTagSet("b", "a", "b")
	payload, _ := json.Marshal(set)
	if string(payload) != `["a","b"]` {
		t.Fatalf("unexpected payload %s", payload)
	}
	var decoded TagSet
	if err := json.Unmarshal([]byte(`["x","x","y"]`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Equal(NewTagSet("y", "x")) {
		t.Fatalf("unexpected set %v", decoded.Values())
	}
}
