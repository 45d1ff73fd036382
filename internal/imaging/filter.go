package imaging

import (
	"bytes"
	"image"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-grayscale/internal/pixel"
)

// Grayscale returns a desaturated copy of img.
//
// The image is first converted to non-premultiplied NRGBA, then each pixel's
// colour samples are replaced with pixel.Average(R, G, B), the kernel the
// browser module applies. Both paths therefore produce identical values,
// translucent pixels included. Alpha is preserved and img is not modified.
//
// Rows are processed in parallel.
func Grayscale(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	width := dst.Rect.Dx()

	parallel.Line(dst.Rect.Dy(), func(start, end int) {
		for y := start; y < end; y++ {
			row := dst.Pix[y*dst.Stride : y*dst.Stride+width*pixel.Channels]
			for i := 0; i < len(row); i += pixel.Channels {
				avg := pixel.Average(row[i], row[i+1], row[i+2])
				row[i], row[i+1], row[i+2] = avg, avg, avg
			}
		}
	})

	return dst
}

// Filter decodes data, desaturates it and returns the result as PNG bytes.
//
// Errors wrap ErrInvalidImage, ErrImageTooLarge or ErrEncode. The returned
// ImageInfo describes the decoded input and is nil on decode failure.
func Filter(data []byte, maxPixels int) ([]byte, *ImageInfo, error) {
	img, info, err := Decode(data, maxPixels)
	if err != nil {
		return nil, nil, err
	}

	var buf bytes.Buffer
	if err := EncodePNG(&buf, Grayscale(img)); err != nil {
		return nil, info, err
	}

	return buf.Bytes(), info, nil
}
