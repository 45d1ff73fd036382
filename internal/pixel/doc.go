// Package pixel implements the grayscale transform over raw RGBA pixel buffers.
//
// A pixel buffer is a flat byte slice holding 4 samples per pixel in the order
// Red, Green, Blue, Alpha, with rows stored top to bottom and no padding. This
// is the layout of a browser canvas ImageData and of Go's image.NRGBA when
// Stride equals 4*width.
//
// # Ownership
//
// Grayscale borrows the caller's buffer for the duration of the call, rewrites
// it in place and hands it back wrapped in a Surface. No copy is made: the
// Surface and the original slice share one backing array.
//
// # Arithmetic
//
// Each colour sample becomes floor((R+G+B)/3), accumulated in uint32. There
// is no gamma correction and no perceptual weighting. Alpha is never touched,
// which makes the transform idempotent.
//
// # Error Handling
//
// Buffer length is checked against width*height*4 before any sample is read,
// so a mismatch yields ErrDimensionMismatch instead of an out-of-range access.
package pixel
