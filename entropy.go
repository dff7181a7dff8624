package blockcodec

import (
	"fmt"
	"math/bits"
)

// category returns the bit length of |v| and the magnitude bits to emit.
// Negative values carry the one's complement of the magnitude.
func category(v int) (size uint8, mag uint32) {
	a := v
	if a < 0 {
		a = -a
	}
	size = uint8(bits.Len(uint(a)))
	mag = uint32(a)
	if v < 0 {
		mag = ^mag & (1<<size - 1)
	}
	return size, mag
}

// EncodeCoefficients appends the entropy-coded form of seq to w and returns
// the DC value of seq, which is the predictor for the next block.
//
// On error nothing is appended to w.
func EncodeCoefficients(w *Bits, seq *ZigzagSequence, predictor int, t *CodeTables) (int, error) {
	var out Bits

	diff := seq[0] - predictor
	size, mag := category(diff)
	code, ok := t.DC[int(size)]
	if !ok {
		return predictor, fmt.Errorf("%w: DC category %d", ErrUnknownSymbol, size)
	}
	out.WriteBits(code.Bits, code.Len)
	out.WriteBits(mag, size)

	run := 0
	for zig := 1; zig < len(seq); zig++ {
		v := seq[zig]
		if v == 0 {
			run++
			continue
		}
		size, mag := category(v)
		rs := RunSize{Run: run, Size: int(size)}
		code, ok := t.AC[rs]
		if !ok {
			return predictor, fmt.Errorf("%w: AC symbol %s at zig-zag index %d", ErrUnknownSymbol, rs, zig)
		}
		out.WriteBits(code.Bits, code.Len)
		out.WriteBits(mag, size)
		run = 0
	}

	eob, ok := t.AC[EOB]
	if !ok {
		return predictor, fmt.Errorf("%w: end-of-block %s", ErrUnknownSymbol, EOB)
	}
	out.WriteBits(eob.Bits, eob.Len)

	w.Append(out)
	return diff + predictor, nil
}

// DCDifferences returns the DC difference of every sequence against its
// predecessor, starting from a zero predictor.
func DCDifferences(seqs []ZigzagSequence) []int {
	diffs := make([]int, len(seqs))
	prev := 0
	for i := range seqs {
		diffs[i] = seqs[i][0] - prev
		prev = seqs[i][0]
	}
	return diffs
}
