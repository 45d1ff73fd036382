package pixel

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// Channels is the number of samples per pixel (R, G, B, A).
const Channels = 4

var (
	// ErrDimensionMismatch is returned when a buffer's length is not
	// width*height*Channels.
	ErrDimensionMismatch = errors.New("pixel buffer length does not match dimensions")

	// ErrInvalidDimensions is returned for negative or oversized dimensions.
	ErrInvalidDimensions = errors.New("invalid dimensions")
)

// Surface is a renderable view over an RGBA pixel buffer.
//
// Pix is not copied from the buffer the Surface was built from; writes through
// either are visible in both.
type Surface struct {
	Pix    []byte
	Width  uint32
	Height uint32
}

// NewSurface wraps pix as a width x height surface.
//
// Returns ErrDimensionMismatch if len(pix) != width*height*4.
func NewSurface(pix []byte, width, height uint32) (*Surface, error) {
	if err := checkLength(len(pix), width, height); err != nil {
		return nil, err
	}
	return &Surface{Pix: pix, Width: width, Height: height}, nil
}

// Image returns the surface as an *image.NRGBA sharing the same pixels.
func (s *Surface) Image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    s.Pix,
		Stride: int(s.Width) * Channels,
		Rect:   image.Rect(0, 0, int(s.Width), int(s.Height)),
	}
}

// Grayscale desaturates pix in place and returns it as a Surface.
//
// Parameters:
//   - pix: RGBA samples, exclusively borrowed for the duration of the call.
//   - width, height: image dimensions in pixels. Either may be zero, in which
//     case pix must be empty and the call is a no-op.
//
// For every pixel the red, green and blue samples are replaced with
// Average(R, G, B); the alpha sample is left untouched.
//
// On error pix is not modified.
func Grayscale(pix []byte, width, height uint32) (*Surface, error) {
	s, err := NewSurface(pix, width, height)
	if err != nil {
		return nil, err
	}

	for i := 0; i < len(pix); i += Channels {
		avg := Average(pix[i], pix[i+1], pix[i+2])
		pix[i] = avg
		pix[i+1] = avg
		pix[i+2] = avg
	}

	return s, nil
}

// Average returns floor((r+g+b)/3).
func Average(r, g, b uint8) uint8 {
	return uint8((uint32(r) + uint32(g) + uint32(b)) / 3)
}

// Dimensions converts host-supplied integer dimensions to the uint32 pair
// Grayscale expects, rejecting negative values and values above math.MaxUint32.
func Dimensions(width, height int) (uint32, uint32, error) {
	if width < 0 || height < 0 || uint64(width) > math.MaxUint32 || uint64(height) > math.MaxUint32 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return uint32(width), uint32(height), nil
}

// checkLength verifies n == width*height*Channels. The pixel count of two
// uint32 dimensions always fits in a uint64; the byte count may not.
func checkLength(n int, width, height uint32) error {
	pixels := uint64(width) * uint64(height)
	if n%Channels != 0 || uint64(n)/Channels != pixels {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrDimensionMismatch, n, width, height)
	}
	return nil
}
