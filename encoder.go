package blockcodec

import (
	"fmt"
	"runtime"
	"sync"
)

// EncodeOptions controls image encoding.
type EncodeOptions struct {
	// Workers is the number of goroutines for the transform stages, 0 means runtime.NumCPU().
	Workers int
	// LevelShift subtracts 128 from every sample before the transform.
	LevelShift bool
	// OnBlock is called after each block is entropy coded, in raster order.
	OnBlock func(index int, seq *ZigzagSequence, nBits int)
}

// Prepare runs the transform, quantizer and zig-zag scanner on one block.
func Prepare(b *SampleBlock, q *QuantTable) (ZigzagSequence, error) {
	c := ForwardDCT(b)
	m, err := Quantize(&c, q)
	if err != nil {
		return ZigzagSequence{}, err
	}
	return Zigzag(&m), nil
}

// EncodeBlock encodes one sample block against the previous block's DC value
// and returns the block bits and the new predictor.
func EncodeBlock(b *SampleBlock, predictor int, q *QuantTable, t *CodeTables) (Bits, int, error) {
	var out Bits
	seq, err := Prepare(b, q)
	if err != nil {
		return out, predictor, err
	}
	next, err := EncodeCoefficients(&out, &seq, predictor, t)
	if err != nil {
		return Bits{}, predictor, err
	}
	return out, next, nil
}

// EncodeImage encodes blocks in raster order starting from a zero predictor.
//
// The transform stages run in parallel, entropy coding runs in block order.
// Any error aborts the whole image.
func EncodeImage(blocks []SampleBlock, q *QuantTable, t *CodeTables, opts ...func(o *EncodeOptions)) (Bits, error) {
	var out Bits
	opt := EncodeOptions{}
	for _, applyOpt := range opts {
		applyOpt(&opt)
	}
	if err := t.Validate(); err != nil {
		return out, err
	}
	if err := q.validate(); err != nil {
		return out, err
	}

	seqs, err := prepareBlocks(blocks, q, opt)
	if err != nil {
		return out, err
	}

	predictor := 0
	for i := range seqs {
		before := out.Len()
		if predictor, err = EncodeCoefficients(&out, &seqs[i], predictor, t); err != nil {
			return Bits{}, fmt.Errorf("block %d: %w", i, err)
		}
		if opt.OnBlock != nil {
			opt.OnBlock(i, &seqs[i], out.Len()-before)
		}
	}
	return out, nil
}

func prepareBlocks(blocks []SampleBlock, q *QuantTable, opt EncodeOptions) ([]ZigzagSequence, error) {
	seqs := make([]ZigzagSequence, len(blocks))
	if len(blocks) == 0 {
		return seqs, nil
	}
	workers := opt.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(blocks) {
		workers = len(blocks)
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	stripe := (len(blocks) + workers - 1) / workers
	for start := 0; start < len(blocks); start += stripe {
		end := min(start+stripe, len(blocks))
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				b := blocks[i]
				if opt.LevelShift {
					shift(&b)
				}
				seq, err := Prepare(&b, q)
				if err != nil {
					errOnce.Do(func() { firstErr = fmt.Errorf("block %d: %w", i, err) })
					return
				}
				seqs[i] = seq
			}
		}(start, end)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return seqs, nil
}

func shift(b *SampleBlock) {
	for i := range b {
		for j := range b[i] {
			b[i][j] -= levelShift
		}
	}
}

// Encoder is an encoding session for blocks fed one at a time.
// It owns the DC predictor and must not be used from several goroutines.
type Encoder struct {
	quant     QuantTable
	tables    *CodeTables
	predictor int
	blocks    int
	bits      Bits
}

// NewEncoder validates the tables and starts a session with a zero predictor.
func NewEncoder(q QuantTable, t *CodeTables) (*Encoder, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := q.validate(); err != nil {
		return nil, err
	}
	return &Encoder{quant: q, tables: t}, nil
}

// Encode appends the next block in raster order to the session bitstream.
func (e *Encoder) Encode(b *SampleBlock) error {
	bits, next, err := EncodeBlock(b, e.predictor, &e.quant, e.tables)
	if err != nil {
		return fmt.Errorf("block %d: %w", e.blocks, err)
	}
	e.bits.Append(bits)
	e.predictor = next
	e.blocks++
	return nil
}

// Bits returns the bitstream accumulated so far.
func (e *Encoder) Bits() Bits {
	return e.bits.Clone()
}

// Predictor returns the DC value of the last encoded block.
func (e *Encoder) Predictor() int {
	return e.predictor
}

// Blocks returns the number of blocks encoded in this session.
func (e *Encoder) Blocks() int {
	return e.blocks
}

// Reset starts a new image: the bitstream is cleared and the predictor is zeroed.
func (e *Encoder) Reset() {
	e.bits = Bits{}
	e.predictor = 0
	e.blocks = 0
}
