package blockcodec

import "strings"

// Bits is an append-only bit sequence, packed MSB first.
type Bits struct {
	buf []byte
	n   int
}

// WriteBits appends the nBits least significant bits of bits, MSB first.
// nBits must not exceed 32.
func (b *Bits) WriteBits(bits uint32, nBits uint8) {
	for i := int(nBits) - 1; i >= 0; i-- {
		if b.n%8 == 0 {
			b.buf = append(b.buf, 0)
		}
		if bits>>uint(i)&1 == 1 {
			b.buf[b.n/8] |= 0x80 >> uint(b.n%8)
		}
		b.n++
	}
}

// Append copies all bits of o to the end of b.
func (b *Bits) Append(o Bits) {
	if b.n%8 == 0 {
		b.buf = append(b.buf, o.buf...)
		b.n += o.n
		return
	}
	for i := 0; i < o.n; i++ {
		b.WriteBits(uint32(o.At(i)), 1)
	}
}

// Clone returns a copy of b that does not share storage with it.
func (b Bits) Clone() Bits {
	return Bits{buf: append([]byte(nil), b.buf...), n: b.n}
}

// At returns bit i as 0 or 1.
func (b Bits) At(i int) byte {
	return b.buf[i/8] >> uint(7-i%8) & 1
}

// Len returns the number of bits written.
func (b Bits) Len() int {
	return b.n
}

// Bytes returns the bits packed into bytes with the final partial byte
// padded with 1-bits.
func (b Bits) Bytes() []byte {
	out := make([]byte, len(b.buf))
	copy(out, b.buf)
	if r := b.n % 8; r != 0 {
		out[len(out)-1] |= 0xff >> uint(r)
	}
	return out
}

// String renders the bits as a string of '0' and '1'.
func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := 0; i < b.n; i++ {
		sb.WriteByte('0' + b.At(i))
	}
	return sb.String()
}
