package imagecodec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"testing"

	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
)

func makePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeAcceptsImage(t *testing.T) {
	codec := New(Options{})
	surface, err := codec.Decode(makePNG(t, 40, 20), "image/png")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if surface.Width() != 40 || surface.Height() != 20 {
		t.Fatalf("unexpected size %dx%d", surface.Width(), surface.Height())
	}
	if surface.Format() != "png" {
		t.Fatalf("expected png format, got %s", surface.Format())
	}
}

func TestDecodeSniffsWhenDeclaredTypeMissing(t *testing.T) {
	codec := New(Options{})
	surface, err := codec.Decode(makePNG(t, 8, 8), "")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if surface.MIME() != "image/png" {
		t.Fatalf("expected sniffed image/png, got %s", surface.MIME())
	}
}

func TestDecodeRejectsNonImageBeforeDecoding(t *testing.T) {
	codec := New(Options{})
	_, err := codec.Decode([]byte("%PDF-1.4 not an image"), "application/pdf")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
	if errors.Unwrap(err) != nil {
		t.Fatalf("mime rejection should not carry a decode cause: %v", err)
	}
}

func TestDecodeRejectsCorruptImage(t *testing.T) {
	codec := New(Options{})
	_, err := codec.Decode([]byte("definitely not png bytes"), "image/png")
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
}

func TestDecodeRejectsOversizedUpload(t *testing.T) {
	codec := New(Options{MaxBytes: 16})
	_, err := codec.Decode(makePNG(t, 10, 10), "image/png")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestEncodeRegionProducesExactSize(t *testing.T) {
	codec := New(Options{})
	surface, err := codec.Decode(makePNG(t, 500, 500), "image/png")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	handle, err := codec.EncodeRegion(surface, Rect{X: 10, Y: 10, Width: 100, Height: 50})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	blob, ok := codec.Registry().Get(handle)
	if !ok {
		t.Fatalf("expected handle %s to resolve", handle)
	}
	if blob.MIME != "image/jpeg" {
		t.Fatalf("expected jpeg, got %s", blob.MIME)
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(blob.Data))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Fatalf("expected 100x50, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestEncodeRegionIsReCroppable(t *testing.T) {
	codec := New(Options{})
	surface, err := codec.Decode(makePNG(t, 64, 64), "image/png")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	handle, err := codec.EncodeRegion(surface, Rect{Width: 32, Height: 32})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	again, err := codec.DecodeHandle(handle)
	if err != nil {
		t.Fatalf("decode handle: %v", err)
	}
	if again.Width() != 32 || again.Height() != 32 {
		t.Fatalf("unexpected size %dx%d", again.Width(), again.Height())
	}
}

func TestEncodeRegionRejectsOutOfBounds(t *testing.T) {
	codec := New(Options{})
	surface := NewSurface(image.NewRGBA(image.Rect(0, 0, 10, 10)))

	cases := []Rect{
		{X: 0, Y: 0, Width: 0, Height: 5},
		{X: -1, Y: 0, Width: 5, Height: 5},
		{X: 8, Y: 0, Width: 5, Height: 5},
	}
	for _, rect := range cases {
		if _, err := codec.EncodeRegion(surface, rect); !pkgerrors.IsCode(err, pkgerrors.CodeEncodeFailure) {
			t.Fatalf("rect %s: expected encode failure, got %v", rect, err)
		}
	}
	if codec.Registry().Len() != 0 {
		t.Fatalf("failed encodes must not register handles")
	}
}

func TestEncodeRegionSurfacesEncoderFailure(t *testing.T) {
	codec := New(Options{Encoder: func(io.Writer, image.Image, *jpeg.Options) error {
		return errors.New("rasterizer gone")
	}})
	surface := NewSurface(image.NewRGBA(image.Rect(0, 0, 10, 10)))

	_, err := codec.EncodeRegion(surface, Rect{Width: 5, Height: 5})
	if !pkgerrors.IsCode(err, pkgerrors.CodeEncodeFailure) {
		t.Fatalf("expected encode failure, got %v", err)
	}
	if !pkgerrors.MetadataFor(pkgerrors.CodeEncodeFailure).Retryable {
		t.Fatalf("encode failures should be retryable")
	}
}

func TestRegistryRelease(t *testing.T) {
	reg := NewRegistry()
	h := reg.Put(Blob{Data: []byte{1}, MIME: "image/jpeg"})
	if reg.Len() != 1 {
		t.Fatalf("expected one live handle")
	}
	if !reg.Release(h) {
		t.Fatalf("expected release to succeed")
	}
	if reg.Release(h) {
		t.Fatalf("second release should be a no-op")
	}
	if _, ok := reg.Get(h); ok {
		t.Fatalf("released handle should not resolve")
	}
}
