package picker

import (
	"context"
	"errors"
	"image"

	"github.com/ironsheep/color-picker-mcp/internal/imaging"
)

// Decoder produces the image for a load whose content has been accepted. It
// returns the decoded image and its format name.
type Decoder func(ctx context.Context) (image.Image, string, error)

// Source opens the content for one load and checks that it is an image. It
// should be cheap: the expensive work belongs in the returned Decoder. A
// Source that is handed non-image content returns an error wrapping
// imaging.ErrNotImage, and the load then never takes over the controller.
type Source func(ctx context.Context) (Decoder, error)

// FromImage serves an already decoded image.
func FromImage(img image.Image) Source {
	return func(ctx context.Context) (Decoder, error) {
		if img == nil {
			return nil, errors.New("no image")
		}
		return func(ctx context.Context) (image.Image, string, error) {
			return img, "", nil
		}, nil
	}
}

// FromFile decodes the file at path. With a non-nil cache the decoded image
// is shared with other loads of the same path.
func FromFile(cache *imaging.ImageCache, path string) Source {
	if cache == nil {
		cache = imaging.NewImageCache()
	}
	return func(ctx context.Context) (Decoder, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		decode, err := cache.Prepare(path)
		if err != nil {
			return nil, err
		}
		return fromDecodeFunc(decode), nil
	}
}

// FromDataURL decodes a data:image/...;base64 URL.
func FromDataURL(dataURL string) Source {
	return func(ctx context.Context) (Decoder, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		decode, err := imaging.PrepareDataURL(dataURL)
		if err != nil {
			return nil, err
		}
		return fromDecodeFunc(decode), nil
	}
}

// fromDecodeFunc always runs decode so that file handles get closed, and
// reports cancellation afterwards.
func fromDecodeFunc(decode imaging.DecodeFunc) Decoder {
	return func(ctx context.Context) (image.Image, string, error) {
		img, format, err := decode()
		if err != nil {
			return nil, "", err
		}
		if err := ctx.Err(); err != nil {
			return nil, "", err
		}
		return img, format, nil
	}
}
