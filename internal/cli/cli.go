// Package cli wires the svgcam commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"svgcam/internal/config"
	"svgcam/internal/job"
	"svgcam/internal/svgfile"
)

const version = "0.3.0"

type globalOptions struct {
	configFile string
	logLevel   string
}

func BuildCLI() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "svgcam",
		Short: "svgcam: SVG outlines to layered G-code",
		Long: `svgcam converts SVG path outlines into layered G-code for CNC milling:
- stroke colour selects profile, pocket or engraving operations
- operations are ordered to keep rapid travel short
- profiles get holding tabs and optional tool compensation`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(cmd.ErrOrStderr(), opts.logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file path (built-in defaults when empty)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn, error")

	rootCmd.AddCommand(buildGenerateCommand(opts))
	rootCmd.AddCommand(buildPlanCommand(opts))
	rootCmd.AddCommand(buildOffsetCommand())

	return rootCmd
}

func setupLogging(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// readPaths reads the SVG named by args, or standard input when there is
// none or it is "-".
func readPaths(cmd *cobra.Command, args []string) ([]svgfile.Path, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to open SVG: %w", err)
		}
		defer f.Close()
		r = f
	}
	paths, err := svgfile.Read(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read SVG: %w", err)
	}
	return paths, nil
}

// operation is a classified SVG path.
type operation struct {
	job.RawOperation
	id string
}

// classify turns SVG paths into operations, skipping construction strokes
// and strokes the config does not map.
func classify(cfg *config.Config, paths []svgfile.Path) []operation {
	log := slog.Default().With("component", "cli")
	var ops []operation
	for _, p := range paths {
		kind, props, ok := cfg.Classify(p.Stroke)
		if !ok {
			if cfg.ConstructionColor != "" && p.Stroke == cfg.ConstructionColor {
				log.Debug("Skipping construction path", "id", p.ID)
			} else {
				log.Warn("Stroke not mapped to an operation", "id", p.ID, "stroke", p.Stroke)
			}
			continue
		}
		ops = append(ops, operation{
			RawOperation: job.RawOperation{
				Kind:       kind,
				PathText:   p.D,
				Properties: props,
				Translate:  p.Translate,
			},
			id: p.ID,
		})
	}
	log.Debug("Classified paths", "operations", len(ops), "paths", len(paths))
	return ops
}
