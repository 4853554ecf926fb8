/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: utils.go
Description: Shared utilities for the stlstream commands. Provides configuration loading,
logging setup, parser construction and input handling used across all commands.
*/

package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kleascm/stlstream/pkg/logging"
	"github.com/kleascm/stlstream/pkg/sinks"
	"github.com/kleascm/stlstream/pkg/stl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// stdinPath selects standard input or output
const stdinPath = "-"

// LoadConfig loads configuration from files and environment
func LoadConfig() error {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("log_max_files", 10)
	viper.SetDefault("max_line_length", stl.DefaultMaxLineLength)
	viper.SetDefault("normal_epsilon", sinks.DefaultNormalEpsilon)
	viper.SetDefault("output_format", "text")
	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("max_body_bytes", 256<<20)
	viper.SetDefault("shutdown_timeout", 10*time.Second)

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetEnvPrefix("STLSTREAM")
	viper.AutomaticEnv()

	return nil
}

// SetupLogging builds the logger writing to the command's error stream
func SetupLogging(cmd *cobra.Command) (*logging.Logger, error) {
	logger, err := logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.LogLevel(viper.GetString("log_level")),
		Format:    logging.LogFormat(viper.GetString("log_format")),
		OutputDir: viper.GetString("log_dir"),
		MaxFiles:  viper.GetInt("log_max_files"),
		Timestamp: true,
		Colors:    viper.GetBool("log_colors"),
		Console:   cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}
	return logger, nil
}

// setup runs LoadConfig and SetupLogging
func setup(cmd *cobra.Command) (*logging.Logger, error) {
	if err := LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return SetupLogging(cmd)
}

// newParser creates a parser from the configured limits. A positive size
// enables the declared count check against the input size.
func newParser(logger *logging.Logger, size int64) *stl.Parser {
	opts := []stl.Option{
		stl.WithLogger(logger.GetLogger()),
		stl.WithMaxLineLength(viper.GetInt("max_line_length")),
	}
	if n := viper.GetUint32("max_triangles"); n > 0 {
		opts = append(opts, stl.WithMaxTriangles(n))
	}
	if size > 0 {
		opts = append(opts, stl.WithSizeHint(size))
	}
	return stl.New(opts...)
}

// openInput opens path, or standard input for "-", and returns its size when known
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, int64, error) {
	if path == stdinPath {
		return io.NopCloser(cmd.InOrStdin()), -1, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open input: %w", err)
	}

	size := int64(-1)
	if info, err := f.Stat(); err == nil && info.Mode().IsRegular() {
		size = info.Size()
	}
	return f, size, nil
}

// parseFile parses one input into h, logging the outcome. The returned report
// describes whatever was received before a failure.
func parseFile(cmd *cobra.Command, logger *logging.Logger, path string, h stl.Handler) (sinks.Report, error) {
	in, size, err := openInput(cmd, path)
	if err != nil {
		return sinks.Report{}, err
	}
	defer in.Close()

	stats := sinks.NewStats().WithEpsilon(viper.GetFloat64("normal_epsilon"))
	if h != nil {
		h = sinks.Tee(h, stats)
	} else {
		h = stats
	}

	start := time.Now()
	err = newParser(logger, size).Parse(in, h)
	report := stats.Report()
	logger.LogParse(path, report.Format, report.Facets, time.Since(start), err)

	if err != nil {
		return report, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return report, nil
}
