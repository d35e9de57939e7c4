package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/sortid/config"
	"github.com/rustyeddy/sortid/internal/logging"
	"github.com/rustyeddy/sortid/uuid"
)

var rootCmd = &cobra.Command{
	Use:   "sortid",
	Short: "Generate and inspect sortable unique identifiers",
	Long: `Sortid generates UUIDs (versions 1, 3, 4, 5, 6 and 7), ULIDs, Nano IDs and
Cuid2 ids, and decodes existing ones.

Time-based ids never repeat within a process, and with persistence
configured they stay ordered across runs and across concurrent processes
sharing the same state file or database.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile   string
	logLevel  string
	logFormat string

	cfg     *config.Config
	cleanup func() error
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := teardown(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg = config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgFile); err != nil {
			return err
		}
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	slog.SetDefault(logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
		Output: cmd.ErrOrStderr(),
	}))

	switch cfg.Node.Mode {
	case "random":
		uuid.SetNodeMode(uuid.NodeRandom)
	case "fixed":
		id, err := cfg.Node.Fixed()
		if err != nil {
			return err
		}
		uuid.SetNodeID(id)
	default:
		uuid.SetNodeMode(uuid.NodeSystem)
	}

	var err error
	cleanup, err = attachPersistence(cfg.Persistence)
	if err != nil {
		return fmt.Errorf("persistence: %w", err)
	}
	return nil
}

// teardown detaches persistence so that every backend is closed.
func teardown() error {
	if cleanup == nil {
		return nil
	}
	err := cleanup()
	cleanup = nil
	return err
}
