package blockcodec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/vearutop/blockcodec/internal/jpegx"
)

// Code is a code table entry: the Len least significant bits of Bits, MSB first.
type Code struct {
	Bits uint32
	Len  uint8
}

// ParseCode parses a bit pattern such as "1010".
func ParseCode(pattern string) (Code, error) {
	if pattern == "" {
		return Code{}, errors.New("empty bit pattern")
	}
	if len(pattern) > 32 {
		return Code{}, fmt.Errorf("bit pattern %q longer than 32 bits", pattern)
	}
	var c Code
	for _, r := range pattern {
		c.Bits <<= 1
		switch r {
		case '0':
		case '1':
			c.Bits |= 1
		default:
			return Code{}, fmt.Errorf("invalid bit pattern %q", pattern)
		}
	}
	c.Len = uint8(len(pattern))
	return c, nil
}

// String renders the code as its bit pattern.
func (c Code) String() string {
	s := strconv.FormatUint(uint64(c.Bits), 2)
	if pad := int(c.Len) - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	return s
}

// RunSize is an AC symbol: a zero run followed by a coefficient of the given size.
type RunSize struct {
	Run  int
	Size int
}

// EOB is the end-of-block symbol "0/0".
var EOB = RunSize{}

// ParseRunSize parses an AC key of the form "run/size".
func ParseRunSize(key string) (RunSize, error) {
	r, s, ok := strings.Cut(strings.TrimSpace(key), "/")
	if !ok {
		return RunSize{}, fmt.Errorf("invalid run/size key %q", key)
	}
	run, err := strconv.Atoi(r)
	if err != nil || run < 0 {
		return RunSize{}, fmt.Errorf("invalid run in key %q", key)
	}
	size, err := strconv.Atoi(s)
	if err != nil || size < 0 {
		return RunSize{}, fmt.Errorf("invalid size in key %q", key)
	}
	return RunSize{Run: run, Size: size}, nil
}

func (rs RunSize) String() string {
	return strconv.Itoa(rs.Run) + "/" + strconv.Itoa(rs.Size)
}

// CodeTables maps DC categories and AC run/size symbols to codes.
// Tables are not modified after construction and may be shared between sessions.
type CodeTables struct {
	DC map[int]Code
	AC map[RunSize]Code
}

// TableRow is one (key, bit pattern) pair of an external code table.
type TableRow struct {
	Key     string
	Pattern string
}

// NewCodeTables builds code tables from DC rows keyed by category and AC rows
// keyed by "run/size". The AC rows must define "0/0".
func NewCodeTables(dcRows, acRows []TableRow) (*CodeTables, error) {
	t := &CodeTables{
		DC: make(map[int]Code, len(dcRows)),
		AC: make(map[RunSize]Code, len(acRows)),
	}
	for _, row := range dcRows {
		size, err := strconv.Atoi(strings.TrimSpace(row.Key))
		if err != nil || size < 0 {
			return nil, fmt.Errorf("%w: invalid DC category %q", ErrTableLoad, row.Key)
		}
		if _, ok := t.DC[size]; ok {
			return nil, fmt.Errorf("%w: duplicate DC category %d", ErrTableLoad, size)
		}
		c, err := ParseCode(strings.TrimSpace(row.Pattern))
		if err != nil {
			return nil, fmt.Errorf("%w: DC category %d: %v", ErrTableLoad, size, err)
		}
		t.DC[size] = c
	}
	for _, row := range acRows {
		rs, err := ParseRunSize(row.Key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTableLoad, err)
		}
		if _, ok := t.AC[rs]; ok {
			return nil, fmt.Errorf("%w: duplicate AC symbol %s", ErrTableLoad, rs)
		}
		c, err := ParseCode(strings.TrimSpace(row.Pattern))
		if err != nil {
			return nil, fmt.Errorf("%w: AC symbol %s: %v", ErrTableLoad, rs, err)
		}
		t.AC[rs] = c
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks that the tables can terminate a block.
func (t *CodeTables) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil code tables", ErrTableLoad)
	}
	if _, ok := t.AC[EOB]; !ok {
		return fmt.Errorf("%w: AC table has no end-of-block entry %q", ErrTableLoad, EOB.String())
	}
	return nil
}

// ParseCodeTable reads "key,pattern" CSV rows. Lines starting with '#' are ignored.
func ParseCodeTable(r io.Reader) ([]TableRow, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true

	var rows []TableRow
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTableLoad, err)
		}
		rows = append(rows, TableRow{Key: rec[0], Pattern: rec[1]})
	}
	return rows, nil
}

// LoadCodeTables reads the DC and AC tables as CSV.
func LoadCodeTables(dc, ac io.Reader) (*CodeTables, error) {
	dcRows, err := ParseCodeTable(dc)
	if err != nil {
		return nil, fmt.Errorf("dc table: %w", err)
	}
	acRows, err := ParseCodeTable(ac)
	if err != nil {
		return nil, fmt.Errorf("ac table: %w", err)
	}
	return NewCodeTables(dcRows, acRows)
}

// ParseQuantTable reads 8 CSV rows of 8 integers.
func ParseQuantTable(r io.Reader) (QuantTable, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	recs, err := cr.ReadAll()
	if err != nil {
		return QuantTable{}, fmt.Errorf("%w: %v", ErrTableLoad, err)
	}
	rows := make([][]int, len(recs))
	for i, rec := range recs {
		rows[i] = make([]int, len(rec))
		for j, f := range rec {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return QuantTable{}, fmt.Errorf("%w: quantization entry [%d][%d]: %v", ErrTableLoad, i, j, err)
			}
			rows[i][j] = v
		}
	}
	q, err := NewQuantTable(rows)
	if err != nil {
		return QuantTable{}, fmt.Errorf("%w: %w", ErrTableLoad, err)
	}
	return q, nil
}

// Rows returns the tables as DC and AC rows sorted by symbol.
func (t *CodeTables) Rows() (dc, ac []TableRow) {
	sizes := make([]int, 0, len(t.DC))
	for size := range t.DC {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	for _, size := range sizes {
		dc = append(dc, TableRow{Key: strconv.Itoa(size), Pattern: t.DC[size].String()})
	}

	symbols := make([]RunSize, 0, len(t.AC))
	for rs := range t.AC {
		symbols = append(symbols, rs)
	}
	sort.Slice(symbols, func(i, j int) bool {
		if symbols[i].Run != symbols[j].Run {
			return symbols[i].Run < symbols[j].Run
		}
		return symbols[i].Size < symbols[j].Size
	})
	for _, rs := range symbols {
		ac = append(ac, TableRow{Key: rs.String(), Pattern: t.AC[rs].String()})
	}
	return dc, ac
}

// StandardTables returns the luminance DC and AC tables of JPEG section K.3.
func StandardTables() *CodeTables {
	t, err := tablesFromSpecs(jpegx.LuminanceDC, jpegx.LuminanceAC)
	if err != nil {
		panic(err)
	}
	return t
}

func tablesFromSpecs(dc, ac jpegx.HuffmanSpec) (*CodeTables, error) {
	t := &CodeTables{
		DC: make(map[int]Code, len(dc.Value)),
		AC: make(map[RunSize]Code, len(ac.Value)),
	}
	for v, c := range dc.Codes() {
		t.DC[int(v)] = Code{Bits: c.Bits, Len: c.Len}
	}
	for v, c := range ac.Codes() {
		t.AC[RunSize{Run: int(v >> 4), Size: int(v & 0x0f)}] = Code{Bits: c.Bits, Len: c.Len}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// QuantTableForQuality scales the JPEG section K.1 luminance table by an
// IJG quality in [1, 100].
func QuantTableForQuality(quality int) QuantTable {
	if quality < 1 {
		quality = 1
	} else if quality > 100 {
		quality = 100
	}
	var scale int
	if quality < 50 {
		scale = 5000 / quality
	} else {
		scale = 200 - quality*2
	}
	var q QuantTable
	for zig, v := range jpegx.UnscaledLuminanceQuant {
		x := (int(v)*scale + 50) / 100
		if x < 1 {
			x = 1
		} else if x > 255 {
			x = 255
		}
		idx := jpegx.Unzig[zig]
		q[idx/BlockDim][idx%BlockDim] = x
	}
	return q
}
