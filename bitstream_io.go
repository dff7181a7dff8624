package blockcodec

import (
	"encoding/hex"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns the hex BLAKE2b-256 digest of the packed bitstream and
// its bit length, for comparing output across implementations.
func Fingerprint(b Bits) string {
	sum := blake2b.Sum256(b.Bytes())
	return fmt.Sprintf("%d:%s", b.Len(), hex.EncodeToString(sum[:]))
}

// CompressBits packs the bitstream into bytes and wraps them in a zstd frame.
func CompressBits(b Bits) ([]byte, error) {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(b.Bytes(), nil), nil
}

// DecompressBits reverses CompressBits, returning the packed bytes.
func DecompressBits(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	return out, nil
}
