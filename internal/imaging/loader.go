package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

var (
	// ErrInvalidImage reports bytes that no registered decoder accepts.
	ErrInvalidImage = errors.New("invalid image data")

	// ErrImageTooLarge reports an image whose width*height exceeds the limit
	// passed to Decode.
	ErrImageTooLarge = errors.New("image dimensions too large")

	// ErrEncode reports a failure while writing the output PNG.
	ErrEncode = errors.New("failed to encode image")
)

// ImageInfo describes a decoded upload.
type ImageInfo struct {
	// Width is the image width in pixels after EXIF orientation is applied.
	Width int

	// Height is the image height in pixels after EXIF orientation is applied.
	Height int

	// Format is the name the sniffing decoder registered under, e.g. "png",
	// "jpeg", "gif", "bmp", "tiff" or "webp".
	Format string

	// SizeBytes is the length of the encoded input.
	SizeBytes int
}

// Decode sniffs and decodes an encoded image held in memory.
//
// Parameters:
//   - data: The complete encoded image.
//   - maxPixels: Upper bound on width*height, checked from the header before
//     the pixel data is decoded. Zero or negative disables the check.
//
// Returns:
//   - image.Image: The decoded image, with JPEG EXIF orientation applied.
//   - *ImageInfo: Dimensions and detected format.
//   - error: Wraps ErrInvalidImage or ErrImageTooLarge.
func Decode(data []byte, maxPixels int) (image.Image, *ImageInfo, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	return img, &ImageInfo{
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		Format:    format,
		SizeBytes: len(data),
	}, nil
}

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return nil
}
