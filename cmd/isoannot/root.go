package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aria-lang/isoannot-go/internal/alignment"
	"github.com/aria-lang/isoannot-go/internal/config"
	"github.com/aria-lang/isoannot-go/internal/logging"
	"github.com/aria-lang/isoannot-go/internal/metrics"
	"github.com/aria-lang/isoannot-go/internal/report"
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	v          *viper.Viper
	configPath string
	summary    bool

	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
}

// flagKeys maps persistent flags to configuration keys.
var flagKeys = map[string]string{
	"window-size":  config.KeyWindowSize,
	"min-fraction": config.KeyMinPolyAFraction,
	"upstream-len": config.KeyUpstreamRegionLen,
	"workers":      config.KeyWorkers,
	"log-level":    config.KeyLogLevel,
	"redis-addr":   config.KeyRedisAddr,
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}
	d := config.Default()

	root := &cobra.Command{
		Use:           "isoannot",
		Short:         "Long-read tail and isoform boundary annotation",
		Long:          `isoannot locates poly(A) tails in the clipped ends of long-read alignments and measures how read boundaries and junctions agree with a reference transcript model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "YAML configuration file")
	pf.BoolVar(&a.summary, "summary", false, "Print summary statistics to stderr")
	pf.Int("window-size", d.WindowSize, "poly(A) window size")
	pf.Float64("min-fraction", d.MinPolyAFraction, "Minimum fraction of A in a poly(A) window")
	pf.Int("upstream-len", d.UpstreamRegionLen, "Genomic window after the read end checked for A content")
	pf.Int("workers", d.Workers, "Number of annotation workers")
	pf.String("log-level", d.LogLevel, "Log level (debug, info, warn, error)")
	pf.String("redis-addr", d.RedisAddr, "Redis address for a shared splice-site cache")
	for name, key := range flagKeys {
		if err := a.v.BindPFlag(key, pf.Lookup(name)); err != nil {
			panic(err)
		}
	}

	root.AddCommand(
		newTailsCmd(a),
		newAnnotateCmd(a),
		newScanCmd(a),
		newConfigCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads the configuration and builds the logger and collectors.
func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logging.NewWithWriter(stderr, level)
	a.registry = prometheus.NewRegistry()
	a.metrics = metrics.New(a.registry)
	return nil
}

// openAlignments opens a SAM/BAM file, or SAM on stdin for "-".
func openAlignments(path string, stdin io.Reader) (*alignment.Reader, error) {
	if path == "" || path == "-" {
		return alignment.NewSAMReader(stdin)
	}
	return alignment.Open(path)
}

// createOutput creates path, or returns stdout for "" and "-".
func createOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output: %w", err)
	}
	return f, f.Close, nil
}

// closeOnReturn closes an output and reports the close error through err
// unless the command already failed.
func closeOnReturn(closeFn func() error, err *error) {
	if cerr := closeFn(); cerr != nil && *err == nil {
		*err = fmt.Errorf("closing output: %w", cerr)
	}
}

// outputErr treats a closed downstream reader as success.
func (a *app) outputErr(err error) error {
	if err == nil {
		return nil
	}
	if report.IsBrokenPipe(err) {
		a.logger.Debug("output closed early", "error", err)
		return nil
	}
	return err
}
