package blockcodec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/vearutop/blockcodec/internal/jpegx"
)

// JPEGTables holds the luminance tables found in a baseline JPEG.
type JPEGTables struct {
	// Quant is the luminance quantization table in natural order.
	Quant QuantTable
	// Codes holds the luminance DC and AC code tables.
	Codes *CodeTables
	// Baseline is set when the image carries a SOF0 frame header.
	Baseline bool
}

type jpegSegments struct {
	quant    [jpegx.BlockSize]byte
	dc, ac   jpegx.HuffmanSpec
	hasQuant bool
	hasDC    bool
	hasAC    bool
	hasSOF0  bool
}

// ExtractTables reads the luminance quantization and Huffman tables of an
// existing JPEG, so that blocks can be encoded the way that file was.
func ExtractTables(data []byte) (*JPEGTables, error) {
	s, err := scanSegments(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTableLoad, err)
	}
	if !s.hasQuant || !s.hasDC || !s.hasAC {
		return nil, fmt.Errorf("%w: missing luminance DQT or DHT", ErrTableLoad)
	}

	t := &JPEGTables{Baseline: s.hasSOF0}
	for zig, v := range s.quant {
		if v == 0 {
			return nil, fmt.Errorf("%w: %w: zig-zag entry %d", ErrTableLoad, ErrDivideByZero, zig)
		}
		idx := jpegx.Unzig[zig]
		t.Quant[idx/BlockDim][idx%BlockDim] = int(v)
	}
	t.Codes, err = tablesFromSpecs(s.dc, s.ac)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func scanSegments(data []byte) (*jpegSegments, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != jpegx.SOIMarker {
		return nil, errors.New("invalid jpeg")
	}
	s := &jpegSegments{}
	pos := 2
	for pos+3 < len(data) {
		if data[pos] != 0xFF {
			pos++
			continue
		}
		for pos < len(data) && data[pos] == 0xFF {
			pos++
		}
		if pos >= len(data) {
			break
		}
		marker := data[pos]
		pos++
		if marker == jpegx.SOSMarker || marker == jpegx.EOIMarker {
			break
		}
		if marker >= 0xD0 && marker <= 0xD7 {
			continue
		}
		if pos+1 >= len(data) {
			return nil, errors.New("truncated marker")
		}
		segLen := int(binary.BigEndian.Uint16(data[pos:]))
		if segLen < 2 || pos+segLen > len(data) {
			return nil, errors.New("invalid segment length")
		}
		seg := data[pos+2 : pos+segLen]
		switch marker {
		case jpegx.DQTMarker:
			if err := parseDQT(seg, s); err != nil {
				return nil, err
			}
		case jpegx.DHTMarker:
			if err := parseDHT(seg, s); err != nil {
				return nil, err
			}
		case jpegx.SOF0Marker:
			s.hasSOF0 = true
		}
		pos += segLen
	}
	return s, nil
}

func parseDQT(seg []byte, s *jpegSegments) error {
	pos := 0
	for pos < len(seg) {
		pq := seg[pos] >> 4
		tq := seg[pos] & 0x0F
		pos++
		if pq != 0 {
			return errors.New("unsupported 16-bit quant table")
		}
		if pos+jpegx.BlockSize > len(seg) {
			return errors.New("truncated dqt table")
		}
		if tq == 0 {
			copy(s.quant[:], seg[pos:pos+jpegx.BlockSize])
			s.hasQuant = true
		}
		pos += jpegx.BlockSize
	}
	return nil
}

func parseDHT(seg []byte, s *jpegSegments) error {
	pos := 0
	for pos < len(seg) {
		if pos+17 > len(seg) {
			return errors.New("truncated dht")
		}
		tc := seg[pos] >> 4
		th := seg[pos] & 0x0F
		pos++
		var count [16]byte
		copy(count[:], seg[pos:pos+16])
		pos += 16
		total := 0
		for _, c := range count {
			total += int(c)
		}
		if pos+total > len(seg) {
			return errors.New("truncated dht values")
		}
		vals := append([]byte(nil), seg[pos:pos+total]...)
		pos += total

		if th != 0 {
			continue
		}
		switch tc {
		case 0:
			s.dc = jpegx.HuffmanSpec{Count: count, Value: vals}
			s.hasDC = true
		case 1:
			s.ac = jpegx.HuffmanSpec{Count: count, Value: vals}
			s.hasAC = true
		}
	}
	return nil
}
