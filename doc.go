// Package blockcodec provides the forward path of a baseline block-transform image codec.
//
// An image is split into 8x8 sample blocks in raster order. Each block goes through
// a 2D cosine transform, quantization and zig-zag reordering, then its DC/AC
// coefficients are entropy coded against fixed, externally supplied code tables.
// DC values are coded as differences against the previous block, so the DC
// predictor is threaded explicitly through EncodeBlock calls.
//
// Decoding and the JPEG container format are out of scope. The package also
// carries the error level analysis helpers of the tool it was built for.
package blockcodec
