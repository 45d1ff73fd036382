// Package imaging provides the image container handling behind the /filter endpoint.
//
// The package decodes an uploaded byte slice into an image.Image, desaturates it
// with the same floor-average kernel the browser module uses (pixel.Average), and
// re-encodes the result as PNG. Everything happens in memory; nothing is cached or
// written to disk.
//
// # Supported Formats
//
// Decoding sniffs the container from its magic bytes, not from a file name or
// content type. PNG, JPEG, GIF, BMP and TIFF are registered by
// github.com/disintegration/imaging; WebP is registered here through
// golang.org/x/image/webp. JPEG EXIF orientation is applied while decoding.
//
// # Thread Safety
//
// All functions are stateless and safe to call concurrently on different inputs.
// Grayscale fans out across rows internally (via bild), so one large image may
// use several goroutines.
//
// # Error Handling
//
// Errors wrap one of three sentinels so callers can map them without inspecting
// messages:
//   - ErrInvalidImage: the bytes are not a decodable image
//   - ErrImageTooLarge: the declared dimensions exceed the caller's pixel limit
//   - ErrEncode: PNG encoding failed
package imaging
