package jpegx

const (
	SOF0Marker = 0xc0 // Start Of Frame (Baseline Sequential).
	DHTMarker  = 0xc4 // Define Huffman Table.
	SOIMarker  = 0xd8 // Start Of Image.
	EOIMarker  = 0xd9 // End Of Image.
	SOSMarker  = 0xda // Start Of Scan.
	DQTMarker  = 0xdb // Define Quantization Table.
)

// BlockSize is the number of samples in a DCT block (8x8).
const BlockSize = 64

// Unzig maps from the zig-zag ordering to the natural ordering.
var Unzig = [BlockSize]int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}
