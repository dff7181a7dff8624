package blockcodec

import "fmt"

// BlockDim is the width and height of a sample block.
const BlockDim = 8

// SampleBlock is an 8x8 matrix of sample values indexed as [row][col].
type SampleBlock [BlockDim][BlockDim]int

// CoeffMatrix holds forward transform output indexed as [u][v].
type CoeffMatrix [BlockDim][BlockDim]float64

// QuantizedMatrix holds rounded quantized coefficients in natural order.
type QuantizedMatrix [BlockDim][BlockDim]int

// QuantTable is a quantization matrix in natural (row-major) order.
type QuantTable [BlockDim][BlockDim]int

// ZigzagSequence is a quantized matrix linearized in zig-zag order.
// Index 0 is always the DC coefficient.
type ZigzagSequence [BlockDim * BlockDim]int

// NewSampleBlock copies rows into a SampleBlock.
func NewSampleBlock(rows [][]int) (SampleBlock, error) {
	var b SampleBlock
	if err := checkShape(rows, "sample block"); err != nil {
		return b, err
	}
	for i := range rows {
		copy(b[i][:], rows[i])
	}
	return b, nil
}

// NewQuantTable copies rows into a QuantTable and validates its entries.
func NewQuantTable(rows [][]int) (QuantTable, error) {
	var q QuantTable
	if err := checkShape(rows, "quantization matrix"); err != nil {
		return q, err
	}
	for i := range rows {
		copy(q[i][:], rows[i])
	}
	if err := q.validate(); err != nil {
		return QuantTable{}, err
	}
	return q, nil
}

// Uniform returns a quantization table with every entry set to v.
func Uniform(v int) QuantTable {
	var q QuantTable
	for i := range q {
		for j := range q[i] {
			q[i][j] = v
		}
	}
	return q
}

func (q *QuantTable) validate() error {
	for i := range q {
		for j, v := range q[i] {
			if v == 0 {
				return fmt.Errorf("%w: quantization entry [%d][%d]", ErrDivideByZero, i, j)
			}
		}
	}
	return nil
}

func checkShape(rows [][]int, what string) error {
	if len(rows) != BlockDim {
		return fmt.Errorf("%w: %s has %d rows", ErrShapeMismatch, what, len(rows))
	}
	for i, r := range rows {
		if len(r) != BlockDim {
			return fmt.Errorf("%w: %s row %d has %d columns", ErrShapeMismatch, what, i, len(r))
		}
	}
	return nil
}
