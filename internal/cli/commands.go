package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"svgcam/internal/geom"
	"svgcam/internal/job"
	"svgcam/internal/metrics"
	"svgcam/internal/offset"
	"svgcam/internal/path"
	"svgcam/internal/tour"
)

func buildGenerateCommand(g *globalOptions) *cobra.Command {
	var (
		output      string
		metricsFile string
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "generate [file.svg]",
		Short: "Generate G-code from an SVG file",
		Long:  "Generate G-code for every classified path of an SVG file (standard input when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, g, output, metricsFile, strict)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, - for standard output")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when any operation fails")

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, g *globalOptions, output, metricsFile string, strict bool) error {
	log := slog.Default().With("component", "cli")

	cfg, err := loadConfig(g.configFile)
	if err != nil {
		return err
	}
	paths, err := readPaths(cmd, args)
	if err != nil {
		return err
	}

	var m *metrics.Collector
	if metricsFile != "" {
		m = metrics.NewCollector()
	}
	j := job.New(job.WithWorkers(cfg.Workers), job.WithMetrics(m), job.WithLogger(slog.Default()))
	for _, op := range classify(cfg, paths) {
		if err := j.Add(op.RawOperation); err != nil {
			return fmt.Errorf("failed to add operation %q: %w", op.id, err)
		}
	}

	start := time.Now()
	program, calcErr := j.CalculateContext(cmd.Context())
	log.Info("Job calculated",
		"operations", j.Len(),
		"cut", len(j.Order()),
		"duration", time.Since(start))

	if err := writeProgram(cmd.OutOrStdout(), output, program); err != nil {
		return err
	}
	if err := m.WriteTextfile(metricsFile); err != nil {
		return err
	}

	if calcErr != nil {
		if strict {
			return calcErr
		}
		var opErr *job.OperationError
		if !errors.As(calcErr, &opErr) {
			return calcErr
		}
	}
	return nil
}

func writeProgram(stdout io.Writer, output, program string) error {
	if output == "" || output == "-" {
		_, err := io.WriteString(stdout, program)
		return err
	}
	if err := os.WriteFile(output, []byte(program), 0o644); err != nil {
		return fmt.Errorf("failed to write G-code: %w", err)
	}
	return nil
}

func buildPlanCommand(g *globalOptions) *cobra.Command {
	var startX, startY float64

	cmd := &cobra.Command{
		Use:   "plan [file.svg]",
		Short: "Print the order operations would be cut in",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g.configFile)
			if err != nil {
				return err
			}
			paths, err := readPaths(cmd, args)
			if err != nil {
				return err
			}
			ops := classify(cfg, paths)
			return printPlan(cmd.OutOrStdout(), ops, geom.Pt(startX, startY))
		},
	}

	cmd.Flags().Float64Var(&startX, "start-x", 0, "initial head X")
	cmd.Flags().Float64Var(&startY, "start-y", 0, "initial head Y")

	return cmd
}

// printPlan writes one line per operation in visiting order with the
// vertex the cut starts from, then the total rapid travel.
func printPlan(w io.Writer, ops []operation, start geom.Point) error {
	raw := make([]job.RawOperation, len(ops))
	for i, op := range ops {
		raw[i] = op.RawOperation
	}
	parsed, errs := job.ParseOperations(raw)
	for _, err := range errs {
		slog.Default().Warn("Operation skipped", "error", err)
	}

	contours := make([]path.Contour, len(parsed))
	for i, p := range parsed {
		contours[i] = p.Contour
	}
	order := tour.Plan(contours, start)

	pos := start
	for step, i := range order {
		c := contours[i]
		if k := path.ClosestSegmentIndex(c, pos); k >= 0 {
			pos = c[k].End
		}
		op := ops[parsed[i].Index]
		if _, err := fmt.Fprintf(w, "%d\t%s\t%s\tX%s Y%s\n", step+1, label(op), op.Kind, num(pos.X()), num(pos.Y())); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "rapid travel: %s\n", num(tour.TravelDistance(contours, order, start)))
	return err
}

func label(op operation) string {
	if op.id != "" {
		return op.id
	}
	return "-"
}

func num(v float64) string {
	return strconv.FormatFloat(geom.Round6(v), 'f', -1, 64)
}

func buildOffsetCommand() *cobra.Command {
	var (
		distance  float64
		direction string
	)

	cmd := &cobra.Command{
		Use:   "offset <path data>",
		Short: "Offset a closed path and print the resulting loops",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := offset.ParseDirection(direction)
			if err != nil {
				return err
			}
			c, err := path.Parse(args[0])
			if err != nil {
				return err
			}
			loops, err := offset.Offset(c, distance, dir)
			if err != nil {
				return err
			}
			if len(loops) == 0 {
				slog.Default().Warn("Offset removed the whole contour", "distance", distance, "direction", dir)
			}
			for _, l := range loops {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), l.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Float64VarP(&distance, "distance", "d", 0, "offset distance")
	cmd.Flags().StringVar(&direction, "direction", "outside", "offset side: inside or outside")

	return cmd
}
