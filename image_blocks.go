package blockcodec

import (
	"image"
	"image/color"
)

// ImageResult is the outcome of encoding the luma plane of an image.
type ImageResult struct {
	Bits Bits
	// Cols and Rows are the block grid dimensions.
	Cols, Rows int
	// DC holds the quantized DC value of every block in raster order.
	DC []int
}

// ImageBlocks converts img to luma and splits it into 8x8 blocks in raster
// order. Partial edge blocks repeat the last row and column.
func ImageBlocks(img image.Image) (blocks []SampleBlock, cols, rows int) {
	b := img.Bounds()
	cols = (b.Dx() + BlockDim - 1) / BlockDim
	rows = (b.Dy() + BlockDim - 1) / BlockDim
	blocks = make([]SampleBlock, 0, cols*rows)
	for by := 0; by < rows; by++ {
		for bx := 0; bx < cols; bx++ {
			var sb SampleBlock
			for y := 0; y < BlockDim; y++ {
				for x := 0; x < BlockDim; x++ {
					sb[y][x] = int(grayAt(img, bx*BlockDim+x, by*BlockDim+y))
				}
			}
			blocks = append(blocks, sb)
		}
	}
	return blocks, cols, rows
}

// EncodeGray encodes the luma plane of img.
func EncodeGray(img image.Image, q *QuantTable, t *CodeTables, opts ...func(o *EncodeOptions)) (*ImageResult, error) {
	blocks, cols, rows := ImageBlocks(img)
	res := &ImageResult{
		Cols: cols,
		Rows: rows,
		DC:   make([]int, 0, len(blocks)),
	}
	opts = append(opts, func(o *EncodeOptions) {
		next := o.OnBlock
		o.OnBlock = func(index int, seq *ZigzagSequence, nBits int) {
			res.DC = append(res.DC, seq[0])
			if next != nil {
				next(index, seq, nBits)
			}
		}
	})
	bits, err := EncodeImage(blocks, q, t, opts...)
	if err != nil {
		return nil, err
	}
	res.Bits = bits
	return res, nil
}

// grayAt samples luma at (x, y) relative to the image origin, clamping to bounds.
func grayAt(img image.Image, x, y int) uint8 {
	b := img.Bounds()
	x = min(max(b.Min.X+x, b.Min.X), b.Max.X-1)
	y = min(max(b.Min.Y+y, b.Min.Y), b.Max.Y-1)
	switch m := img.(type) {
	case *image.Gray:
		return m.GrayAt(x, y).Y
	case *image.YCbCr:
		return m.Y[m.YOffset(x, y)]
	}
	return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
}
