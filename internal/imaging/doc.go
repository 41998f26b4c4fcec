// Package imaging provides the pixel-level primitives of the color picker.
//
// It covers color sampling from canvas buffers, hex formatting and parsing,
// image decoding from files and data URLs, PNG export of canvas snapshots,
// and grid drawing. All operations use standard Go image types and a
// coordinate system where (0,0) is the top-left corner, X increases rightward,
// and Y increases downward.
//
// # Pixel Buffers
//
// Canvas buffers are *image.NRGBA: width×height×4 bytes, non-premultiplied
// RGBA, row-major. SampleRGB reads them directly, so a value written to the
// canvas is read back unchanged.
//
// # Color Representation
//
// Picked colors are reported as "#RRGGBB" with upper-case digits. ColorResult
// adds RGB, RGBA and HSL forms of the same value.
//
// # Input Validation
//
// Prepare, PrepareDataURL and ImageCache.Prepare sniff the content and hand
// back a DecodeFunc for the expensive part. Anything that is not an image
// media type fails with ErrNotImage before decoding starts, so callers can
// ignore it without touching their state.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. The remaining functions are stateless.
package imaging
