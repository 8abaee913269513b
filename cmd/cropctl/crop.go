package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/angelmondragon/jewelry-admin/internal/crop"
	"github.com/angelmondragon/jewelry-admin/internal/imagecodec"
	"github.com/angelmondragon/jewelry-admin/pkg/enums"
)

type cropFlags struct {
	aspect   string
	zoom     float64
	panX     float64
	panY     float64
	rect     string
	quality  int
	maxBytes int64
}

func newCropCmd() *cobra.Command {
	flags := cropFlags{}
	cmd := &cobra.Command{
		Use:   "crop INPUT OUTPUT",
		Short: "Crop an image to an aspect ratio and write it as JPEG",
		Long: `Crop an image the same way the console's crop dialog does.

Without --rect the area is derived from --aspect, --zoom and --pan-x/--pan-y.
With --rect x,y,width,height the rectangle is used as given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrop(cmd, args, flags)
		},
	}
	cmd.Flags().StringVar(&flags.aspect, "aspect", string(enums.AspectStandard), "aspect ratio (1:1, 16:9, 4:3, 3:2, 2:3)")
	cmd.Flags().Float64Var(&flags.zoom, "zoom", crop.MinZoom, "zoom between 1 and 3")
	cmd.Flags().Float64Var(&flags.panX, "pan-x", 0, "horizontal pan in percent of the crop frame")
	cmd.Flags().Float64Var(&flags.panY, "pan-y", 0, "vertical pan in percent of the crop frame")
	cmd.Flags().StringVar(&flags.rect, "rect", "", "explicit crop rectangle as x,y,width,height")
	cmd.Flags().IntVar(&flags.quality, "quality", imagecodec.DefaultQuality, "JPEG quality (1-100)")
	cmd.Flags().Int64Var(&flags.maxBytes, "max-bytes", 0, "reject inputs larger than this many bytes (0 keeps the default)")
	return cmd
}

func runCrop(cmd *cobra.Command, args []string, flags cropFlags) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	codec := imagecodec.New(imagecodec.Options{MaxBytes: flags.maxBytes, Quality: flags.quality})
	surface, err := codec.Decode(data, "")
	if err != nil {
		return err
	}

	var rect imagecodec.Rect
	if flags.rect != "" {
		rect, err = parseRect(flags.rect)
		if err != nil {
			return err
		}
	} else {
		aspect, err := enums.ParseAspectRatio(flags.aspect)
		if err != nil {
			return err
		}
		rect = crop.ComputeArea(surface.Width(), surface.Height(), crop.Pan{X: flags.panX, Y: flags.panY}, flags.zoom, aspect.Value())
	}

	out, err := codec.EncodeRegionBytes(surface, rect)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[1], out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %dx%d %s -> %s (%d bytes)\n",
		args[0], surface.Width(), surface.Height(), rect, args[1], len(out))
	return nil
}

func parseRect(raw string) (imagecodec.Rect, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return imagecodec.Rect{}, fmt.Errorf("rect must be x,y,width,height (got %q)", raw)
	}
	values := make([]int, 4)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return imagecodec.Rect{}, fmt.Errorf("rect component %d: %w", i+1, err)
		}
		values[i] = v
	}
	return imagecodec.Rect{X: values[0], Y: values[1], Width: values[2], Height: values[3]}, nil
}
