package blockcodec

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/vearutop/blockcodec/internal/jpegx"
)

// canonicalZigzag is the JPEG zig-zag permutation for 8x8 blocks.
var canonicalZigzag = []int{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

func TestZigzagOrderCanonical(t *testing.T) {
	got := ZigzagOrder(BlockDim)
	if !reflect.DeepEqual(got, canonicalZigzag) {
		t.Fatalf("zig-zag order mismatch:\ngot  %v\nwant %v", got, canonicalZigzag)
	}
	if !reflect.DeepEqual(got, jpegx.Unzig[:]) {
		t.Fatalf("zig-zag order differs from jpegx.Unzig")
	}
}

func TestZigzagOrderSmall(t *testing.T) {
	for _, tc := range []struct {
		n    int
		want []int
	}{
		{n: 0, want: nil},
		{n: 1, want: []int{0}},
		{n: 2, want: []int{0, 1, 2, 3}},
		{n: 4, want: []int{0, 1, 4, 8, 5, 2, 3, 6, 9, 12, 13, 10, 7, 11, 14, 15}},
	} {
		if got := ZigzagOrder(tc.n); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("n=%d: got %v want %v", tc.n, got, tc.want)
		}
	}
}

func TestZigzagPositions(t *testing.T) {
	var m QuantizedMatrix
	for i := range m {
		for j := range m[i] {
			m[i][j] = i*BlockDim + j
		}
	}
	s := Zigzag(&m)
	for k, v := range s {
		if v != canonicalZigzag[k] {
			t.Fatalf("zig-zag index %d: got %d want %d", k, v, canonicalZigzag[k])
		}
	}
	if s[0] != m[0][0] {
		t.Fatalf("DC must come first")
	}
}

func TestZigzagBijection(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for n := 0; n < 100; n++ {
		var m QuantizedMatrix
		for i := range m {
			for j := range m[i] {
				m[i][j] = rnd.Intn(511) - 255
			}
		}
		s := Zigzag(&m)
		if back := Unzigzag(&s); back != m {
			t.Fatalf("unzigzag(zigzag(m)) != m")
		}

		var seq ZigzagSequence
		for i := range seq {
			seq[i] = rnd.Intn(2047) - 1023
		}
		m2 := Unzigzag(&seq)
		if back := Zigzag(&m2); back != seq {
			t.Fatalf("zigzag(unzigzag(s)) != s")
		}
	}
}
