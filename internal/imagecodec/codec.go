package imagecodec

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"

	pkgerrors "github.com/angelmondragon/jewelry-admin/pkg/errors"
	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// DefaultQuality mirrors the browser's canvas.toBlob JPEG default.
	DefaultQuality  = 92
	defaultMaxBytes = 5 * 1024 * 1024
	encodedMIME     = "image/jpeg"
)

// Rect is an integer pixel rectangle relative to a surface's natural size.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Surface is a decoded, rasterizable image.
type Surface struct {
	img    image.Image
	format string
	mime   string
}

// NewSurface wraps an already decoded image.
func NewSurface(img image.Image) *Surface {
	return &Surface{img: img, format: "raw", mime: "image/raw"}
}

func (s *Surface) Image() image.Image { return s.img }
func (s *Surface) Format() string     { return s.format }
func (s *Surface) MIME() string       { return s.mime }
func (s *Surface) Width() int         { return s.img.Bounds().Dx() }
func (s *Surface) Height() int        { return s.img.Bounds().Dy() }

// Options configures the codec.
type Options struct {
	MaxBytes int64
	Quality  int
	Registry *Registry
	// Encoder replaces jpeg.Encode; tests use it to simulate rasterizer failure.
	Encoder func(io.Writer, image.Image, *jpeg.Options) error
}

// Codec decodes uploads and encodes cropped regions into registry handles.
type Codec struct {
	maxBytes int64
	quality  int
	registry *Registry
	encode   func(io.Writer, image.Image, *jpeg.Options) error
}

// New builds a codec, filling unset options with defaults.
func New(opts Options) *Codec {
	c := &Codec{
		maxBytes: opts.MaxBytes,
		quality:  opts.Quality,
		registry: opts.Registry,
		encode:   opts.Encoder,
	}
	if c.maxBytes <= 0 {
		c.maxBytes = defaultMaxBytes
	}
	if c.quality <= 0 || c.quality > 100 {
		c.quality = DefaultQuality
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}
	if c.encode == nil {
		c.encode = jpeg.Encode
	}
	return c
}

// Registry exposes the handle registry backing this codec.
func (c *Codec) Registry() *Registry {
	return c.registry
}

// Decode turns uploaded bytes into a surface. The MIME type is checked before any decoding.
func (c *Codec) Decode(data []byte, declaredMIME string) (*Surface, error) {
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnsupportedFormat, "image file is empty")
	}
	if int64(len(data)) > c.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image size should be less than %dMB", c.maxBytes/(1024*1024))).
			WithDetails(map[string]any{"size_bytes": len(data), "max_bytes": c.maxBytes})
	}

	mediaType := resolveMimeType(data, declaredMIME)
	if !isImageMime(mediaType) {
		return nil, pkgerrors.New(pkgerrors.CodeUnsupportedFormat, "please upload only image files").
			WithDetails(map[string]any{"mime_type": mediaType})
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnsupportedFormat, err, "image could not be decoded").
			WithDetails(map[string]any{"mime_type": mediaType})
	}
	return &Surface{img: img, format: format, mime: mediaType}, nil
}

// Get resolves a handle to its encoded bytes.
func (c *Codec) Get(h Handle) (Blob, bool) {
	return c.registry.Get(h)
}

// Release frees an encoded image.
func (c *Codec) Release(h Handle) bool {
	return c.registry.Release(h)
}

// DecodeHandle re-decodes an encoded image so it can be cropped again.
func (c *Codec) DecodeHandle(h Handle) (*Surface, error) {
	blob, ok := c.registry.Get(h)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image handle not found")
	}
	return c.Decode(blob.Data, blob.MIME)
}

// EncodeRegion copies rect out of surface pixel for pixel and stores it as a JPEG.
// The caller guarantees rect lies inside the surface; nothing is clamped here.
func (c *Codec) EncodeRegion(surface *Surface, rect Rect) (Handle, error) {
	data, err := c.encodeRegion(surface, rect)
	if err != nil {
		return "", err
	}
	return c.registry.Put(Blob{
		Data:   data,
		MIME:   encodedMIME,
		Width:  rect.Width,
		Height: rect.Height,
	}), nil
}

// EncodeRegionBytes is EncodeRegion without registering a handle.
func (c *Codec) EncodeRegionBytes(surface *Surface, rect Rect) ([]byte, error) {
	return c.encodeRegion(surface, rect)
}

func (c *Codec) encodeRegion(surface *Surface, rect Rect) ([]byte, error) {
	if surface == nil || surface.img == nil {
		return nil, pkgerrors.New(pkgerrors.CodeEncodeFailure, "no source image")
	}
	if rect.Empty() {
		return nil, pkgerrors.New(pkgerrors.CodeEncodeFailure, "crop area is empty")
	}
	bounds := surface.img.Bounds()
	src := image.Rect(rect.X, rect.Y, rect.X+rect.Width, rect.Y+rect.Height).Add(bounds.Min)
	if rect.X < 0 || rect.Y < 0 || !src.In(bounds) {
		return nil, pkgerrors.New(pkgerrors.CodeEncodeFailure, "crop area outside image").
			WithDetails(map[string]any{"rect": rect.String()})
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Width, rect.Height))
	xdraw.Copy(dst, image.Point{}, surface.img, src, xdraw.Src, nil)

	var buf bytes.Buffer
	if err := c.encode(&buf, dst, &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeEncodeFailure, err, "failed to encode cropped image")
	}
	if buf.Len() == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEncodeFailure, "canvas is empty")
	}
	return buf.Bytes(), nil
}
