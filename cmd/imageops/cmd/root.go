package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/imageops/internal/config"
	"github.com/ironsheep/imageops/internal/imaging"
	"github.com/ironsheep/imageops/internal/logging"
	"github.com/ironsheep/imageops/internal/ops"
)

// BuildInfo carries the ldflags build metadata.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildTime string
}

// app is the state shared by every subcommand once the root pre-run has
// loaded configuration.
type app struct {
	ctx      context.Context
	info     BuildInfo
	cfg      config.Config
	log      *slog.Logger
	closeLog func() error
}

func (a *app) processor() *ops.Processor {
	d := a.cfg.Defaults
	km := a.cfg.KMeans
	return ops.NewProcessor(ops.Defaults{
		K:            d.KMeansK,
		Threshold1:   d.CannyThreshold1,
		Threshold2:   d.CannyThreshold2,
		ClipLimit:    d.CLAHEClipLimit,
		TileGrid:     d.CLAHETileGrid,
		MedianKernel: d.MedianKernel,
	}, imaging.KMeansOptions{
		Attempts:      km.Attempts,
		MaxIterations: km.MaxIterations,
		Epsilon:       km.Epsilon,
		Seed:          km.Seed,
	})
}

// NewRoot builds the imageops command tree.
func NewRoot(ctx context.Context, info BuildInfo) *cobra.Command {
	a := &app{ctx: ctx, info: info, closeLog: func() error { return nil }}

	cmd := &cobra.Command{
		Use:           "imageops",
		Short:         "image-transform service and toolbox",
		Long:          "Grayscale, denoise, CLAHE, Otsu, k-means, watershed and Canny transforms over MCP, HTTP or the command line.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				logLevel, _ := cmd.Flags().GetString("log-level")
				if _, err := config.ParseLevel(logLevel); err != nil {
					return err
				}
				cfg.Log.Level = logLevel
			}

			level, _ := config.ParseLevel(cfg.Log.Level)
			a.cfg = cfg
			a.log, a.closeLog = logging.New(logging.Options{
				Level:      level,
				Format:     cfg.Log.Format,
				File:       cfg.Log.File,
				MaxSizeMB:  cfg.Log.MaxSizeMB,
				MaxBackups: cfg.Log.MaxBackups,
				MaxAgeDays: cfg.Log.MaxAgeDays,
				Writer:     cmd.ErrOrStderr(),
			})
			slog.SetDefault(a.log)
			a.ctx = logging.AppendCtx(ctx,
				slog.Group("imageops",
					slog.String("version", info.Version),
					slog.String("git", info.GitCommit),
				))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.closeLog()
		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd.OutOrStdout(), cmd, 0)
		},
	}
	cmd.AddCommand(
		newServeCmd(a),
		newApplyCmd(a),
		newDistanceCmd(a),
		newOperationsCmd(a),
		newVersionCmd(a),
	)
	pf := cmd.PersistentFlags()
	pf.String("config", "", "Path to a YAML config file")
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	return cmd
}

func printCommandTree(w io.Writer, cmd *cobra.Command, indent int) {
	fmt.Fprintln(w, strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(w, subCmd, indent+1)
	}
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "build metadata",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "imageops %s\n", a.info.Version)
			fmt.Fprintf(w, "  Build time: %s\n", a.info.BuildTime)
			fmt.Fprintf(w, "  Git commit: %s\n", a.info.GitCommit)
		},
	}
}
