package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/texview/texview/internal/gpu"
	"github.com/texview/texview/internal/ktx2"
	"github.com/texview/texview/internal/loader"
	"github.com/texview/texview/internal/pfm"
)

func newInfoCmd(g *globals) *cobra.Command {
	var upload, device bool
	cmd := &cobra.Command{
		Use:   "info FILE...",
		Short: "Print the header of each texture file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs []error
			for _, path := range args {
				if err := printInfo(cmd.OutOrStdout(), path, upload); err != nil {
					g.logger.Error("info failed", "file", path, "error", err)
					errs = append(errs, err)
					continue
				}
				if !device {
					continue
				}
				if err := stageOnDevice(g, path); err != nil {
					g.logger.Error("info failed", "file", path, "error", err)
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVar(&upload, "upload", false, "also decode pixels and report the WebGPU upload layout")
	cmd.Flags().BoolVar(&device, "device", false, "upload each image as a WebGPU texture (Windows only)")
	return cmd
}

func printInfo(w io.Writer, path string, upload bool) error {
	format, err := loader.DetectFormat(path)
	if err != nil {
		return err
	}

	switch format {
	case loader.FormatPFM:
		h, err := pfm.ParseHeaderFile(path)
		if err != nil {
			return err
		}
		order := "big-endian"
		if h.LittleEndian() {
			order = "little-endian"
		}
		fmt.Fprintf(w, "%s: PFM %s %dx%d scale=%g %s\n", path, h.Bands, h.Width, h.Height, h.Scale, order)
	case loader.FormatKTX2:
		tex, err := ktx2.ReadFile(path)
		if err != nil {
			return err
		}
		f := tex.Format()
		fmt.Fprintf(w, "%s: KTX2 vkFormat=%d %dx%d layers=%d levels=%d channels=%d %s\n",
			path, tex.VkFormat, tex.Width, tex.Height, tex.Layers, tex.Levels, f.Channels, f.Precision)
	}

	if !upload {
		return nil
	}
	img, _, err := loader.Open(path)
	if err != nil {
		return err
	}
	plan, err := gpu.NewPlan(img)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "  upload: format=%v bytesPerRow=%d size=%d expanded=%t\n",
		plan.Format, plan.BytesPerRow, plan.Size(), plan.Expanded)
	return nil
}

func stageOnDevice(g *globals, path string) error {
	img, _, err := loader.Open(path)
	if err != nil {
		return err
	}
	plan, err := gpu.NewPlan(img)
	if err != nil {
		return err
	}

	u, err := gpu.NewUploader()
	if err != nil {
		return err
	}
	defer u.Release()

	tex, err := u.Upload(plan)
	if err != nil {
		return err
	}
	defer tex.Release()
	g.logger.Debug("uploaded texture", "file", path, "format", plan.Format,
		"width", plan.Width, "height", plan.Height, "bytes", plan.Size())
	return nil
}
