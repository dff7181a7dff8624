package blockcodec

import "math"

// cosTable[k][x] = cos((2x+1)kπ/16).
var cosTable [BlockDim][BlockDim]float64

var alpha = [BlockDim]float64{1 / math.Sqrt2, 1, 1, 1, 1, 1, 1, 1}

func init() {
	for k := 0; k < BlockDim; k++ {
		for x := 0; x < BlockDim; x++ {
			cosTable[k][x] = math.Cos(float64((2*x+1)*k) * math.Pi / (2 * BlockDim))
		}
	}
}

// ForwardDCT computes the 2D cosine transform of b as two 1D passes,
// rows first and then columns.
func ForwardDCT(b *SampleBlock) CoeffMatrix {
	// tmp[x][v] is the transform of row x along y.
	var tmp [BlockDim][BlockDim]float64
	for x := 0; x < BlockDim; x++ {
		for v := 0; v < BlockDim; v++ {
			sum := 0.0
			for y := 0; y < BlockDim; y++ {
				sum += float64(b[x][y]) * cosTable[v][y]
			}
			tmp[x][v] = sum
		}
	}

	var c CoeffMatrix
	for u := 0; u < BlockDim; u++ {
		for v := 0; v < BlockDim; v++ {
			sum := 0.0
			for x := 0; x < BlockDim; x++ {
				sum += tmp[x][v] * cosTable[u][x]
			}
			c[u][v] = 0.25 * alpha[u] * alpha[v] * sum
		}
	}
	return c
}

// ForwardDCTDirect computes the 2D cosine transform of b with the
// quadruple-sum formula. It is the reference ForwardDCT is checked against.
func ForwardDCTDirect(b *SampleBlock) CoeffMatrix {
	var c CoeffMatrix
	for u := 0; u < BlockDim; u++ {
		for v := 0; v < BlockDim; v++ {
			sum := 0.0
			for x := 0; x < BlockDim; x++ {
				for y := 0; y < BlockDim; y++ {
					sum += float64(b[x][y]) *
						math.Cos(float64((2*x+1)*u)*math.Pi/16) *
						math.Cos(float64((2*y+1)*v)*math.Pi/16)
				}
			}
			c[u][v] = 0.25 * alpha[u] * alpha[v] * sum
		}
	}
	return c
}

// TransformRows is ForwardDCT for a block given as rows of samples.
func TransformRows(rows [][]int) (CoeffMatrix, error) {
	b, err := NewSampleBlock(rows)
	if err != nil {
		return CoeffMatrix{}, err
	}
	return ForwardDCT(&b), nil
}
