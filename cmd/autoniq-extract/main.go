package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nhle/autoniq-extractor/internal/model"
)

var (
	cfgFile  string
	logLevel string
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfg        *model.AppConfig
	configPath string
	log        zerolog.Logger
}

func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return model.DefaultConfigPath()
}

// newLogger writes human-readable logs to stderr at the given level.
func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parsing log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// loadApp reads the configuration and builds the logger.
func loadApp() (*app, error) {
	path := resolveConfigPath()

	cfg, err := model.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}

	log, err := newLogger(level)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("config", path).Msg("configuration loaded")
	return &app{cfg: cfg, configPath: path, log: log}, nil
}

func main() {
	// A missing .env file is normal.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "autoniq-extract",
		Short: "Extract vehicle listings from Autoniq notification emails",
		Long: `autoniq-extract reads Autoniq watch-list notifications from an IMAP
mailbox, pulls VIN, mileage, color, year, make, model and listing link out
of each message, and appends them to cars.bought.csv, cars.sold.csv and
cars.backinstock.csv. Plain-text notifications carry no lifecycle and go to
cars.unclassified.csv unless reports.unclassified says otherwise.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.config/autoniq-extractor/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: trace, debug, info, warn, error (default from config)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(parseCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
