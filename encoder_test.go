package blockcodec

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"reflect"
	"testing"
)

func quadrantImage(tl, tr, bl, br uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			v := tl
			switch {
			case x >= 8 && y < 8:
				v = tr
			case x < 8 && y >= 8:
				v = bl
			case x >= 8 && y >= 8:
				v = br
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestEncodeGrayScenario(t *testing.T) {
	tables := literalTables(t,
		map[string]string{"0": "00", "4": "101", "5": "110"},
		map[string]string{"0/0": "1010"},
	)
	q := Uniform(1)

	res, err := EncodeGray(quadrantImage(1, 2, 4, 3), &q, tables)
	if err != nil {
		t.Fatal(err)
	}
	if res.Cols != 2 || res.Rows != 2 {
		t.Fatalf("grid: got %dx%d want 2x2", res.Cols, res.Rows)
	}
	if want := []int{8, 16, 32, 24}; !reflect.DeepEqual(res.DC, want) {
		t.Fatalf("DC: got %v want %v", res.DC, want)
	}

	want := "101" + "1000" + "1010" + // +8
		"101" + "1000" + "1010" + // +8
		"110" + "10000" + "1010" + // +16
		"101" + "0111" + "1010" // -8
	if got := res.Bits.String(); got != want {
		t.Fatalf("bits:\ngot  %s\nwant %s", got, want)
	}
	if got, want := res.Bits.Bytes(), []byte{0xb1, 0x56, 0x2b, 0x42, 0xab, 0xd7}; !bytes.Equal(got, want) {
		t.Fatalf("bytes: got % x want % x", got, want)
	}
}

func TestEncodeImageDCDifferences(t *testing.T) {
	q := Uniform(1)
	tables := StandardTables()
	levels := []int{10, 40, 25, 25, 0, 100, 3}

	blocks := make([]SampleBlock, len(levels))
	for i, k := range levels {
		blocks[i] = constantBlock(k)
	}

	var seqs []ZigzagSequence
	_, err := EncodeImage(blocks, &q, tables, func(o *EncodeOptions) {
		o.Workers = 3
		o.OnBlock = func(index int, seq *ZigzagSequence, nBits int) {
			if index != len(seqs) {
				t.Fatalf("block %d reported out of order", index)
			}
			seqs = append(seqs, *seq)
		}
	})
	if err != nil {
		t.Fatal(err)
	}

	diffs := DCDifferences(seqs)
	sum := 0
	for i, d := range diffs {
		want := 8 * levels[i]
		if i > 0 {
			want -= 8 * levels[i-1]
		}
		if d != want {
			t.Fatalf("block %d: diff %d want %d", i, d, want)
		}
		sum += d
		if sum != seqs[i][0] {
			t.Fatalf("block %d: cumulative DC %d want %d", i, sum, seqs[i][0])
		}
	}
}

// denseTables assigns a fixed-width code to every DC size and every AC
// run/size pair a block can produce.
func denseTables() *CodeTables {
	t := &CodeTables{DC: map[int]Code{}, AC: map[RunSize]Code{}}
	for size := 0; size <= 16; size++ {
		t.DC[size] = Code{Bits: uint32(size), Len: 5}
	}
	for run := 0; run < 64; run++ {
		for size := 0; size <= 16; size++ {
			t.AC[RunSize{Run: run, Size: size}] = Code{Bits: uint32(run<<5 | size), Len: 11}
		}
	}
	return t
}

func TestEncodeImageMatchesSequentialBlocks(t *testing.T) {
	img := quadrantImage(200, 10, 90, 91)
	for y := 0; y < 16; y++ {
		img.SetGray(y, y, color.Gray{Y: uint8(y * 13)})
	}
	blocks, _, _ := ImageBlocks(img)
	q := QuantTableForQuality(75)
	tables := denseTables()

	var want Bits
	predictor := 0
	for i := range blocks {
		bits, next, err := EncodeBlock(&blocks[i], predictor, &q, tables)
		if err != nil {
			t.Fatal(err)
		}
		want.Append(bits)
		predictor = next
	}

	for _, workers := range []int{1, 2, 8} {
		got, err := EncodeImage(blocks, &q, tables, func(o *EncodeOptions) { o.Workers = workers })
		if err != nil {
			t.Fatal(err)
		}
		if got.String() != want.String() {
			t.Fatalf("workers=%d: parallel encode differs from sequential", workers)
		}
	}

	enc, err := NewEncoder(q, tables)
	if err != nil {
		t.Fatal(err)
	}
	for i := range blocks {
		if err := enc.Encode(&blocks[i]); err != nil {
			t.Fatal(err)
		}
	}
	if enc.Bits().String() != want.String() {
		t.Fatalf("session encode differs from sequential")
	}
	if enc.Predictor() != predictor || enc.Blocks() != len(blocks) {
		t.Fatalf("session state: predictor %d blocks %d", enc.Predictor(), enc.Blocks())
	}

	enc.Reset()
	if enc.Bits().Len() != 0 || enc.Predictor() != 0 || enc.Blocks() != 0 {
		t.Fatalf("reset did not clear the session")
	}
}

func TestEncodeImageLevelShift(t *testing.T) {
	blocks := []SampleBlock{constantBlock(128), constantBlock(136)}
	q := Uniform(8)
	tables := StandardTables()

	var dc []int
	_, err := EncodeImage(blocks, &q, tables, func(o *EncodeOptions) {
		o.LevelShift = true
		o.OnBlock = func(_ int, seq *ZigzagSequence, _ int) { dc = append(dc, seq[0]) }
	})
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 8}; !reflect.DeepEqual(dc, want) {
		t.Fatalf("DC: got %v want %v", dc, want)
	}
	if blocks[0][0][0] != 128 {
		t.Fatalf("input block was modified")
	}
}

func TestEncodeImageErrors(t *testing.T) {
	blocks := []SampleBlock{constantBlock(1), constantBlock(200)}
	tables := literalTables(t,
		map[string]string{"0": "00", "4": "101"},
		map[string]string{"0/0": "1010"},
	)

	q := Uniform(1)
	bits, err := EncodeImage(blocks, &q, tables)
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Fatalf("got %v want ErrUnknownSymbol", err)
	}
	if bits.Len() != 0 {
		t.Fatalf("partial result returned")
	}

	q[0][0] = 0
	if _, err := EncodeImage(blocks, &q, tables); !errors.Is(err, ErrDivideByZero) {
		t.Fatalf("got %v want ErrDivideByZero", err)
	}

	if _, err := NewEncoder(Uniform(1), &CodeTables{}); !errors.Is(err, ErrTableLoad) {
		t.Fatalf("got %v want ErrTableLoad", err)
	}

	bits, err = EncodeImage(nil, &q, tables)
	if !errors.Is(err, ErrDivideByZero) || bits.Len() != 0 {
		t.Fatalf("empty image with bad table: %v", err)
	}
}

func TestImageBlocksEdgeReplication(t *testing.T) {
	img := image.NewGray(image.Rect(10, 20, 19, 29))
	for y := img.Rect.Min.Y; y < img.Rect.Max.Y; y++ {
		for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x - 10 + (y-20)*10)})
		}
	}
	blocks, cols, rows := ImageBlocks(img)
	if cols != 2 || rows != 2 || len(blocks) != 4 {
		t.Fatalf("grid: %dx%d, %d blocks", cols, rows, len(blocks))
	}
	if got := blocks[0][0][0]; got != 0 {
		t.Fatalf("origin sample: got %d", got)
	}
	// Block 1 covers x=8 only; columns beyond repeat x=8.
	if got := blocks[1][0][5]; got != 8 {
		t.Fatalf("right edge replication: got %d want 8", got)
	}
	// Block 3 covers (8,8) only.
	if got := blocks[3][7][7]; got != 88 {
		t.Fatalf("corner replication: got %d want 88", got)
	}
}
