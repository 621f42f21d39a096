// relayd is the courier relay daemon. It holds the public-key directory
// and the per-identity mailboxes in memory and serves the wire protocol
// over TCP. Configuration comes from flags, COURIER_* environment
// variables, or an optional config file, in that precedence.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"courier/internal/relay"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "relayd",
		Short:         "Courier store-and-forward relay",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("listen", ":7600", "address to serve the relay protocol on")
	cmd.Flags().String("metrics", "", "address to serve prometheus metrics on (disabled if empty)")
	cmd.Flags().String("log-level", "info", "zerolog level (trace..panic)")
	cmd.Flags().Int("max-line-bytes", 0, "per-request size cap (codec default if 0)")
	cmd.Flags().String("config", "", "optional config file (yaml/toml/json)")
	return cmd
}

type config struct {
	Listen       string
	Metrics      string
	LogLevel     string
	MaxLineBytes int
}

// loadConfig merges flags over COURIER_* env vars over the config file.
func loadConfig(cmd *cobra.Command) (config, error) {
	v := viper.New()
	v.SetEnvPrefix("COURIER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return config{}, err
	}
	if file, _ := cmd.Flags().GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return config{}, err
		}
	}
	return config{
		Listen:       v.GetString("listen"),
		Metrics:      v.GetString("metrics"),
		LogLevel:     v.GetString("log-level"),
		MaxLineBytes: v.GetInt("max-line-bytes"),
	}, nil
}

func run(parent context.Context, cfg config) error {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			log.Info().Str("addr", cfg.Metrics).Msg("metrics listening")
			if err := http.ListenAndServe(cfg.Metrics, mux); err != nil {
				log.Error().Err(err).Msg("metrics listener failed")
			}
		}()
	}

	srv := &relay.Server{
		Dispatcher:   relay.NewDispatcher(relay.NewDirectory(), relay.NewMailbox(), log),
		Log:          log,
		MaxLineBytes: cfg.MaxLineBytes,
	}
	if err := srv.Run(ctx, cfg.Listen); err != nil {
		return err
	}
	log.Info().Msg("relay stopped")
	return nil
}
