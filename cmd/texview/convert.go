package main

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/texview/texview/internal/ktx2"
	"github.com/texview/texview/internal/loader"
	"github.com/texview/texview/internal/parallel"
	"github.com/texview/texview/internal/pfm"
	"github.com/texview/texview/internal/preview"
)

type convertOptions struct {
	to        string
	zstdLevel int
	order     string
	jobs      int
	outDir    string
	exposure  float32
	gamma     float32
}

func newConvertCmd(g *globals) *cobra.Command {
	opts := convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert --to ktx2|pfm|tiff FILE...",
		Short: "Convert textures to KTX2, PFM or a TIFF preview",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), g, opts, args)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.to, "to", "", "target format: ktx2, pfm or tiff")
	f.IntVar(&opts.zstdLevel, "zstd", 0, "zstd supercompression level for ktx2 (0 disables)")
	f.StringVar(&opts.order, "order", "le", "sample byte order for pfm: le or be")
	f.IntVar(&opts.jobs, "jobs", runtime.NumCPU(), "number of files converted concurrently")
	f.StringVarP(&opts.outDir, "output", "o", "", "output directory (default: next to each input)")
	f.Float32Var(&opts.exposure, "exposure", 0, "tiff preview exposure in stops")
	f.Float32Var(&opts.gamma, "gamma", 2.2, "tiff preview display gamma")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// converter writes one image in the target format.
type converter func(in, out string) error

func runConvert(ctx context.Context, g *globals, opts convertOptions, inputs []string) error {
	conv, ext, err := opts.converter()
	if err != nil {
		return err
	}
	inputs = lo.Uniq(lo.Map(inputs, func(p string, _ int) string {
		return filepath.Clean(p)
	}))
	outputs := lo.Map(inputs, func(in string, _ int) string {
		return outputPath(in, opts.outDir, ext)
	})
	if dup := lo.FindDuplicates(outputs); len(dup) > 0 {
		return fmt.Errorf("several inputs map to the same output: %v", dup)
	}

	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o750); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	errs := parallel.Each(len(inputs), func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		in, out := inputs[i], outputs[i]
		if in == out {
			return fmt.Errorf("%s: output would overwrite input", in)
		}

		start := time.Now()
		if err := conv(in, out); err != nil {
			g.logger.Error("convert failed", "file", in, "error", err)
			return fmt.Errorf("%s: %w", in, err)
		}
		g.logger.Info("converted", "file", in, "output", out, "elapsed", time.Since(start))
		return nil
	}, parallel.DefaultConfig().WithWorkers(opts.jobs))

	return errors.Join(errs...)
}

func (o convertOptions) converter() (converter, string, error) {
	switch strings.ToLower(o.to) {
	case "ktx2":
		save := ktx2.SaveOptions{}
		if o.zstdLevel > 0 {
			save.Supercompression = ktx2.SupercompressionZstd
			save.ZstdLevel = o.zstdLevel
		}
		return func(in, out string) error {
			img, _, err := loader.Open(in)
			if err != nil {
				return err
			}
			tex, err := ktx2.FromImage(img)
			if err != nil {
				return err
			}
			return tex.SaveFile(out, save)
		}, ".ktx2", nil

	case "pfm":
		enc := pfm.EncodeOptions{}
		switch strings.ToLower(o.order) {
		case "le", "little":
			enc.ByteOrder = binary.LittleEndian
		case "be", "big":
			enc.ByteOrder = binary.BigEndian
		default:
			return nil, "", fmt.Errorf("unknown byte order %q (want le or be)", o.order)
		}
		return func(in, out string) error {
			img, _, err := loader.Open(in)
			if err != nil {
				return err
			}
			return pfm.EncodeFile(out, img, enc)
		}, ".pfm", nil

	case "tiff":
		pv := preview.Options{Exposure: o.exposure, Gamma: o.gamma, Parallel: parallel.DefaultConfig()}
		return func(in, out string) error {
			img, _, err := loader.Open(in)
			if err != nil {
				return err
			}
			return preview.WriteTIFFFile(out, img, pv)
		}, ".tiff", nil

	default:
		return nil, "", fmt.Errorf("unknown target format %q (want ktx2, pfm or tiff)", o.to)
	}
}

// outputPath swaps the extension of in for ext, placing the result in dir
// when it is set.
func outputPath(in, dir, ext string) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ext
	if dir == "" {
		dir = filepath.Dir(in)
	}
	return filepath.Join(dir, base)
}
