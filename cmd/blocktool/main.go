package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder.
	_ "image/jpeg" // Register JPEG decoder.
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/vearutop/blockcodec"
	_ "golang.org/x/image/bmp"  // Register BMP decoder.
	_ "golang.org/x/image/tiff" // Register TIFF decoder.
	_ "golang.org/x/image/webp" // Register WebP decoder.
	"lukechampine.com/flagg"
)

var (
	infoColor    = color.New(color.FgBlue).SprintFunc()
	successColor = color.New(color.FgGreen).SprintFunc()
	errorColor   = color.New(color.FgRed).SprintFunc()
)

func printInfo(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", infoColor("[*]"), fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s %s\n", successColor("[+]"), fmt.Sprintf(format, args...))
}

func main() {
	flagg.Root.Usage = flagg.SimpleUsage(flagg.Root, `Usage: blocktool <command> [args]

Commands:
    encode  -in img -out out.bits [-q 75] [-dc dc.csv -ac ac.csv] [-quant q.csv] [-tables ref.jpg] [-zstd] [-level-shift]
    ela     -in img -out ela.png [-q 75] [-scale 10] [-w 400 -h 400]
    tables  [-q 75] [-dc dc.csv] [-ac ac.csv] [-quant q.csv]
`)

	encodeCmd := flagg.New("encode", `Usage:
    blocktool encode -in img -out out.bits [flags]
      Encode the luma plane of img into a raw block bitstream
`)
	enc := encodeFlags{
		in:         encodeCmd.String("in", "", "input image"),
		out:        encodeCmd.String("out", "", "output bitstream"),
		quality:    encodeCmd.Int("q", 75, "quality for the standard quantization table"),
		dcPath:     encodeCmd.String("dc", "", "DC code table CSV"),
		acPath:     encodeCmd.String("ac", "", "AC code table CSV"),
		quantPath:  encodeCmd.String("quant", "", "quantization table CSV"),
		tablesFrom: encodeCmd.String("tables", "", "take quantization and code tables from this JPEG"),
		zstd:       encodeCmd.Bool("zstd", false, "wrap the bitstream in a zstd frame"),
		levelShift: encodeCmd.Bool("level-shift", false, "subtract 128 from samples before the transform"),
		workers:    encodeCmd.Int("workers", 0, "transform workers, 0 for one per CPU"),
	}

	elaCmd := flagg.New("ela", `Usage:
    blocktool ela -in img -out ela.png [flags]
      Write the error level analysis of img as PNG
`)
	ela := elaFlags{
		in:      elaCmd.String("in", "", "input image"),
		out:     elaCmd.String("out", "", "output PNG"),
		quality: elaCmd.Int("q", 75, "JPEG re-compression quality"),
		scale:   elaCmd.Float64("scale", 10, "error scale, 10 keeps raw differences"),
		width:   elaCmd.Uint("w", 0, "preview width, 0 keeps full size"),
		height:  elaCmd.Uint("h", 0, "preview height, 0 keeps aspect ratio"),
	}

	tablesCmd := flagg.New("tables", `Usage:
    blocktool tables [-q 75] [-dc dc.csv] [-ac ac.csv] [-quant q.csv]
      Write the standard tables as CSV, to stdout when no path is given
`)
	tbl := tablesFlags{
		quality:   tablesCmd.Int("q", 75, "quality for the quantization table"),
		dcPath:    tablesCmd.String("dc", "", "DC table output"),
		acPath:    tablesCmd.String("ac", "", "AC table output"),
		quantPath: tablesCmd.String("quant", "", "quantization table output"),
	}

	cmd := flagg.Parse(flagg.Tree{
		Cmd: flagg.Root,
		Sub: []flagg.Tree{
			{Cmd: encodeCmd},
			{Cmd: elaCmd},
			{Cmd: tablesCmd},
		},
	})

	var err error
	switch cmd {
	case encodeCmd:
		err = runEncode(enc)
	case elaCmd:
		err = runELA(ela)
	case tablesCmd:
		err = runTables(tbl)
	default:
		flagg.Root.Usage()
		os.Exit(2)
	}
	if err != nil {
		fail(err)
	}
}

type encodeFlags struct {
	in, out                   *string
	quality, workers          *int
	dcPath, acPath, quantPath *string
	tablesFrom                *string
	zstd, levelShift          *bool
}

func runEncode(f encodeFlags) error {
	if *f.in == "" || *f.out == "" {
		return errors.New("missing required arguments")
	}
	q, tables, err := loadTables(f)
	if err != nil {
		return err
	}
	img, err := readImage(*f.in)
	if err != nil {
		return err
	}

	res, err := blockcodec.EncodeGray(img, &q, tables, func(o *blockcodec.EncodeOptions) {
		o.Workers = *f.workers
		o.LevelShift = *f.levelShift
	})
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	payload := res.Bits.Bytes()
	if *f.zstd {
		if payload, err = blockcodec.CompressBits(res.Bits); err != nil {
			return fmt.Errorf("compress: %w", err)
		}
	}
	if err := os.WriteFile(filepath.Clean(*f.out), payload, 0o644); err != nil {
		return err
	}

	printSuccess("encoded %dx%d blocks, %d bits, %d bytes written to %s",
		res.Cols, res.Rows, res.Bits.Len(), len(payload), *f.out)
	printInfo("fingerprint %s", blockcodec.Fingerprint(res.Bits))
	return nil
}

func loadTables(f encodeFlags) (blockcodec.QuantTable, *blockcodec.CodeTables, error) {
	q := blockcodec.QuantTableForQuality(*f.quality)
	tables := blockcodec.StandardTables()

	if *f.tablesFrom != "" {
		data, err := os.ReadFile(filepath.Clean(*f.tablesFrom))
		if err != nil {
			return q, nil, err
		}
		jt, err := blockcodec.ExtractTables(data)
		if err != nil {
			return q, nil, err
		}
		q, tables = jt.Quant, jt.Codes
		printInfo("using tables from %s", *f.tablesFrom)
	}

	if *f.quantPath != "" {
		r, err := os.Open(filepath.Clean(*f.quantPath))
		if err != nil {
			return q, nil, err
		}
		defer r.Close()
		if q, err = blockcodec.ParseQuantTable(r); err != nil {
			return q, nil, fmt.Errorf("%s: %w", *f.quantPath, err)
		}
	}

	if *f.dcPath != "" || *f.acPath != "" {
		if *f.dcPath == "" || *f.acPath == "" {
			return q, nil, errors.New("-dc and -ac must be given together")
		}
		dc, err := os.Open(filepath.Clean(*f.dcPath))
		if err != nil {
			return q, nil, err
		}
		defer dc.Close()
		ac, err := os.Open(filepath.Clean(*f.acPath))
		if err != nil {
			return q, nil, err
		}
		defer ac.Close()
		if tables, err = blockcodec.LoadCodeTables(dc, ac); err != nil {
			return q, nil, err
		}
	}
	return q, tables, nil
}

type elaFlags struct {
	in, out       *string
	quality       *int
	scale         *float64
	width, height *uint
}

func runELA(f elaFlags) error {
	if *f.in == "" || *f.out == "" {
		return errors.New("missing required arguments")
	}
	img, err := readImage(*f.in)
	if err != nil {
		return err
	}
	res, err := blockcodec.ErrorLevelAnalysis(img, func(o *blockcodec.ELAOptions) {
		o.Quality = *f.quality
		o.ErrorScale = *f.scale
	})
	if err != nil {
		return err
	}

	var out image.Image = res
	if *f.width != 0 || *f.height != 0 {
		out = blockcodec.Preview(res, *f.width, *f.height, blockcodec.InterpolationLanczos2)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Clean(*f.out), buf.Bytes(), 0o644); err != nil {
		return err
	}
	printSuccess("error level analysis written to %s", *f.out)
	return nil
}

type tablesFlags struct {
	quality                   *int
	dcPath, acPath, quantPath *string
}

func runTables(f tablesFlags) error {
	dc, ac := blockcodec.StandardTables().Rows()
	q := blockcodec.QuantTableForQuality(*f.quality)

	quant := make([][]string, len(q))
	for i := range q {
		for _, v := range q[i] {
			quant[i] = append(quant[i], fmt.Sprint(v))
		}
	}

	for _, t := range []struct {
		path string
		rows [][]string
	}{
		{path: *f.dcPath, rows: tableRecords(dc)},
		{path: *f.acPath, rows: tableRecords(ac)},
		{path: *f.quantPath, rows: quant},
	} {
		if err := writeCSV(t.path, t.rows); err != nil {
			return err
		}
	}
	return nil
}

func tableRecords(rows []blockcodec.TableRow) [][]string {
	recs := make([][]string, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, []string{r.Key, r.Pattern})
	}
	return recs
}

func writeCSV(path string, rows [][]string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(filepath.Clean(path))
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	if path != "" {
		printSuccess("wrote %d rows to %s", len(rows), path)
	}
	return nil
}

func readImage(path string) (image.Image, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", errorColor("[-]"), err)
	os.Exit(1)
}
