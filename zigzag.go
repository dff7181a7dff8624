package blockcodec

// zigzag[k] is the row-major index of the k'th coefficient in zig-zag order.
var zigzag = ZigzagOrder(BlockDim)

// ZigzagOrder returns the zig-zag traversal of an n x n matrix as row-major
// indexes. Anti-diagonal d holds the cells with row+col == d. Even diagonals
// run from bottom-left to top-right, odd diagonals from top-right to
// bottom-left.
func ZigzagOrder(n int) []int {
	if n <= 0 {
		return nil
	}
	order := make([]int, 0, n*n)
	for d := 0; d <= 2*n-2; d++ {
		lo, hi := 0, d
		if d >= n {
			lo, hi = d-n+1, n-1
		}
		if d%2 == 0 {
			for row := hi; row >= lo; row-- {
				order = append(order, row*n+d-row)
			}
		} else {
			for row := lo; row <= hi; row++ {
				order = append(order, row*n+d-row)
			}
		}
	}
	return order
}

// Zigzag linearizes m in zig-zag order.
func Zigzag(m *QuantizedMatrix) ZigzagSequence {
	var s ZigzagSequence
	for k, idx := range zigzag {
		s[k] = m[idx/BlockDim][idx%BlockDim]
	}
	return s
}

// Unzigzag is the inverse of Zigzag.
func Unzigzag(s *ZigzagSequence) QuantizedMatrix {
	var m QuantizedMatrix
	for k, idx := range zigzag {
		m[idx/BlockDim][idx%BlockDim] = s[k]
	}
	return m
}
