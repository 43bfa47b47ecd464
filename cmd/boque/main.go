package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/viant/boque"
)

var (
	configURL string
	traceFile string
	tracing   bool
	flags     = boque.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "boque",
	Short: "Local job-scheduling daemon running named shell commands with bounded concurrency.",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		options := []boque.Option{boque.WithConfig(config)}
		if tracing {
			options = append(options, boque.WithTracing("boque", "", traceFile))
		}
		srv, err := boque.New(options...)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Serve(ctx)
	},
}

// loadConfig reads the optional config file, then applies explicitly set flags
func loadConfig(cmd *cobra.Command) (*boque.Config, error) {
	config := boque.DefaultConfig()
	if configURL != "" {
		var err error
		if config, err = boque.LoadConfig(cmd.Context(), configURL); err != nil {
			return nil, err
		}
	}
	changed := cmd.Flags().Changed
	if changed("host") {
		config.Host = flags.Host
	}
	if changed("port") {
		config.Port = flags.Port
	}
	if changed("num_jobs") {
		config.NumJobs = flags.NumJobs
	}
	if changed("log_folder") {
		config.LogFolder = flags.LogFolder
	}
	if changed("admission") {
		config.Admission = flags.Admission
	}
	if changed("retention") {
		config.NameRetention = flags.NameRetention
	}
	if changed("metrics_port") {
		config.MetricsPort = flags.MetricsPort
	}
	return config, config.Validate()
}

func init() {
	rootCmd.Flags().StringVar(&configURL, "config", "", "YAML or JSON config file URL")
	rootCmd.Flags().StringVar(&flags.Host, "host", flags.Host, "Host to bind to")
	rootCmd.Flags().IntVar(&flags.Port, "port", flags.Port, "Port to bind to")
	rootCmd.Flags().IntVar(&flags.NumJobs, "num_jobs", flags.NumJobs, "Max. number of tasks it should run at a time")
	rootCmd.Flags().StringVar(&flags.LogFolder, "log_folder", flags.LogFolder, "Path to the logs folder")
	rootCmd.Flags().StringVar(&flags.Admission, "admission", flags.Admission, "Admission order of pending tasks: fifo or lifo")
	rootCmd.Flags().DurationVar(&flags.NameRetention, "retention", flags.NameRetention, "Evict names of completed tasks after the duration (0 keeps them)")
	rootCmd.Flags().IntVar(&flags.MetricsPort, "metrics_port", flags.MetricsPort, "Port exposing Prometheus metrics (0 disables)")
	rootCmd.Flags().BoolVar(&tracing, "trace", false, "Enable OpenTelemetry tracing")
	rootCmd.Flags().StringVar(&traceFile, "trace_file", "", "Trace output file (stdout when empty)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
