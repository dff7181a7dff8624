package blockcodec

import "math"

// Quantize divides each coefficient by the matching quantization entry and
// rounds half away from zero.
func Quantize(c *CoeffMatrix, q *QuantTable) (QuantizedMatrix, error) {
	var m QuantizedMatrix
	if err := q.validate(); err != nil {
		return m, err
	}
	for i := range c {
		for j, v := range c[i] {
			m[i][j] = int(math.Round(v / float64(q[i][j])))
		}
	}
	return m, nil
}

// QuantizeRows is Quantize for a quantization matrix given as rows.
func QuantizeRows(c *CoeffMatrix, rows [][]int) (QuantizedMatrix, error) {
	q, err := NewQuantTable(rows)
	if err != nil {
		return QuantizedMatrix{}, err
	}
	return Quantize(c, &q)
}
