// Command deedjoin joins deed-mapping tract files (MBL) with the KML
// placemarks drawn from them and writes tab-delimited tables for GIS use.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"deedjoin/internal/config"
	"deedjoin/internal/diag"
	"deedjoin/internal/logging"
)

const (
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorReset = "\033[0m"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// flagKeys binds command-line flags to configuration keys. A flag takes
// effect only on the commands that define it.
var flagKeys = map[string]string{
	"log-level":  config.KeyLogLevel,
	"log-format": config.KeyLogFormat,
	"log-output": config.KeyLogOutput,
	"verbose":    config.KeyVerbose,
	"quiet":      config.KeyQuiet,
	"policy":     config.KeyDuplicatePolicy,
	"ext":        config.KeyOutputExt,
	"centroid":   config.KeyKMLHasCentroid,
	"terms":      config.KeySearchTerms,
}

// app holds the state shared by all subcommands of one invocation.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	log        zerolog.Logger

	// issues collects every diagnostic reported during the run.
	issues diag.Diagnostics
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", colorRed, colorReset, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "deedjoin",
		Short: "Join MBL tract descriptions with KML placemarks",
		Long: `deedjoin reads a deed-mapping tract file (MBL) and the KML placemarks drawn
from it, matches parcels by their surveyed id and each course with the
placemark vertex it describes, and writes the joined courses as
tab-delimited tables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./deedjoin.yaml or $HOME/.deedjoin.yaml)")
	pf.String("log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")
	pf.BoolP("verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	pf.BoolP("quiet", "q", false, "only log warnings and errors")
	pf.String("log-format", "", "log format: auto, console or json")
	pf.String("log-output", "", "log destination: stderr, stdout, discard or a file path")

	root.AddCommand(
		newConvertCmd(a),
		newDuplicatesCmd(a),
		newStatsCmd(a),
		newBrowseCmd(a),
		newVersionCmd(),
	)
	return root
}

// load binds the flags of the running command, resolves the configuration
// and builds the logger.
func (a *app) load(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := a.v.BindPFlag(key, f); err != nil {
			return err
		}
	}

	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(logging.Config{
		Level:   cfg.LogLevel,
		Verbose: cfg.Verbose,
		Quiet:   cfg.Quiet,
		Format:  cfg.LogFormat,
		Output:  cfg.LogOutput,
	})
	if cfg.ConfigFile != "" {
		a.log.Debug().Str("file", cfg.ConfigFile).Msg("config loaded")
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the deedjoin version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deedjoin %s\n", version)
		},
	}
}
