package imaging

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// ErrNotImage is returned when the supplied content does not carry an image
// media type. Callers that follow the picker's permissive behavior treat it as
// "ignore this load" rather than as a failure.
var ErrNotImage = errors.New("not an image")

// sniffLen is the number of leading bytes inspected to detect a media type.
const sniffLen = 512

// ImageCache provides thread-safe caching of decoded images keyed by path.
//
// The picker server reloads the same file whenever a client reopens it; the
// cache turns that into a lookup. Cached images remain in memory until
// explicitly removed via Evict() or Clear().
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]cachedImage
}

type cachedImage struct {
	img    image.Image
	format string
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]cachedImage),
	}
}

// DecodeFunc decodes content that has already been sniffed as an image. It
// returns the decoded image and the format name registered by its decoder
// ("png", "jpeg", "gif", "bmp", "tiff", "webp").
type DecodeFunc func() (image.Image, string, error)

// Prepare sniffs the file at path and returns the function that decodes it.
//
// Cached paths skip both steps. Files whose media type is not image/* fail
// here with an error wrapping ErrNotImage and are never cached. The returned
// function closes the file and must be called exactly once.
func (c *ImageCache) Prepare(path string) (DecodeFunc, error) {
	c.mu.RLock()
	e, ok := c.images[path]
	c.mu.RUnlock()
	if ok {
		return func() (image.Image, string, error) { return e.img, e.format, nil }, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	decode, err := Prepare(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	return func() (image.Image, string, error) {
		defer f.Close()
		img, format, err := decode()
		if err != nil {
			return nil, "", err
		}
		c.mu.Lock()
		c.images[path] = cachedImage{img: img, format: format}
		c.mu.Unlock()
		return img, format, nil
	}, nil
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]cachedImage)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path.
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}

// MediaType reports the sniffed media type of data, without parameters.
func MediaType(data []byte) string {
	mt := http.DetectContentType(data)
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	mt = strings.TrimSpace(mt)

	// net/http does not sniff TIFF.
	if mt == "application/octet-stream" &&
		(bytes.HasPrefix(data, []byte("II*\x00")) || bytes.HasPrefix(data, []byte("MM\x00*"))) {
		return "image/tiff"
	}
	return mt
}

// IsImageMediaType reports whether mt names an image type ("image/...").
func IsImageMediaType(mt string) bool {
	return strings.HasPrefix(strings.ToLower(mt), "image/")
}

// Prepare reads the head of r and returns the function that decodes the
// rest. Content that does not sniff as image/* fails with ErrNotImage before
// any decoder runs.
func Prepare(r io.Reader) (DecodeFunc, error) {
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if mt := MediaType(head); !IsImageMediaType(mt) {
		return nil, fmt.Errorf("%w: content is %s", ErrNotImage, mt)
	}

	return func() (image.Image, string, error) {
		img, format, err := image.Decode(br)
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode image: %w", err)
		}
		return img, format, nil
	}, nil
}

// PrepareDataURL unpacks an image carried in a data URL such as
// "data:image/png;base64,iVBORw0..." and returns the function that decodes it.
//
// Both the declared media type and the sniffed payload must be image/*;
// anything else fails with ErrNotImage. Both base64 and percent-encoded
// payloads are accepted.
func PrepareDataURL(dataURL string) (DecodeFunc, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(dataURL), "data:")
	if !ok {
		return nil, fmt.Errorf("invalid data URL: missing data: scheme")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("invalid data URL: missing payload separator")
	}

	params := strings.Split(meta, ";")
	mt := strings.TrimSpace(params[0])
	if !IsImageMediaType(mt) {
		if mt == "" {
			mt = "text/plain"
		}
		return nil, fmt.Errorf("%w: data URL declares %s", ErrNotImage, mt)
	}

	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	var err error
	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data URL payload: %w", err)
		}
	} else {
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode data URL payload: %w", err)
		}
		data = []byte(s)
	}

	return Prepare(bytes.NewReader(data))
}

// EncodeDataURL encodes data as a base64 data URL with the sniffed media type.
func EncodeDataURL(data []byte) string {
	return "data:" + MediaType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ImageInfo contains metadata about a loaded image.
type ImageInfo struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Format is the decoder format name, or "unknown" for in-memory images.
	Format string `json:"format,omitempty"`

	// HasAlpha indicates whether the image type carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`
}

// DescribeImage returns metadata for an already decoded image.
func DescribeImage(img image.Image, format string) *ImageInfo {
	if format == "" {
		format = "unknown"
	}

	hasAlpha := false
	switch img.(type) {
	case *image.RGBA, *image.NRGBA, *image.RGBA64, *image.NRGBA64, *image.Paletted:
		hasAlpha = true
	}

	bounds := img.Bounds()
	return &ImageInfo{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Format:   format,
		HasAlpha: hasAlpha,
	}
}
