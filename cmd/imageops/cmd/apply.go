package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ironsheep/imageops/internal/imaging"
	"github.com/ironsheep/imageops/internal/ops"
)

func newApplyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply <operation> <in> <out>",
		Short: "run one operation on an image file",
		Long:  "Decode <in>, run the named operation and write the result to <out> as PNG. Use - for stdin or stdout.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, inPath, outPath := args[0], args[1], args[2]
			proc := a.processor()
			if _, ok := proc.Lookup(name); !ok || name == ops.Distance {
				return fmt.Errorf("%w: %q (see 'imageops operations')", ops.ErrUnknownOperation, name)
			}

			var params ops.Params
			if cmd.Flags().Changed("k") {
				k, _ := cmd.Flags().GetInt("k")
				params.K = &k
			}
			if cmd.Flags().Changed("threshold1") {
				t1, _ := cmd.Flags().GetFloat64("threshold1")
				params.Threshold1 = &t1
			}
			if cmd.Flags().Changed("threshold2") {
				t2, _ := cmd.Flags().GetFloat64("threshold2")
				params.Threshold2 = &t2
			}

			data, err := readInput(cmd.InOrStdin(), inPath)
			if err != nil {
				return err
			}
			src, err := imaging.Decode(data)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", inPath, err)
			}

			res, err := proc.Apply(a.ctx, name, src, params)
			if err != nil {
				return err
			}
			encoded, err := imaging.Encode(res.Image)
			if err != nil {
				return err
			}
			if err := writeOutput(cmd.OutOrStdout(), outPath, encoded); err != nil {
				return err
			}

			a.log.InfoContext(a.ctx, "applied", "operation", name,
				"width", res.Image.Width, "height", res.Image.Height, "channels", res.Image.Channels)
			if showPalette, _ := cmd.Flags().GetBool("palette"); showPalette && res.Palette != nil {
				enc := json.NewEncoder(cmd.ErrOrStderr())
				enc.SetIndent("", "  ")
				return enc.Encode(res.Palette)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Int("k", 2, "Cluster count for kmeans")
	f.Float64("threshold1", 50, "Lower hysteresis threshold for canny")
	f.Float64("threshold2", 100, "Upper hysteresis threshold for canny")
	f.Bool("palette", false, "Print the kmeans palette as JSON to stderr")
	return cmd
}

func newDistanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "distance <x0> <y0> <x1> <y1>",
		Short: "print the distance between two points",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var v [4]float64
			for i, s := range args {
				f, err := strconv.ParseFloat(s, 64)
				if err != nil {
					return fmt.Errorf("invalid coordinate %q: %w", s, err)
				}
				v[i] = f
			}
			d, err := a.processor().Measure(a.ctx, []imaging.Point{{X: v[0], Y: v[1]}, {X: v[2], Y: v[3]}})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(d, 'f', -1, 64))
			return nil
		},
	}
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return data, nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
