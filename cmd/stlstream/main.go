/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: main.go
Description: Command-line interface for stlstream. Dumps, inspects, validates and converts
ASCII and binary STL files as streams, and serves parse reports over HTTP.
*/

package main

import (
	"fmt"
	"os"

	"github.com/kleascm/stlstream/cmd/stlstream/commands"
	"github.com/kleascm/stlstream/pkg/sinks"
	"github.com/kleascm/stlstream/pkg/stl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "stlstream",
		Short: "stlstream - streaming ASCII and binary STL decoder",
		Long: `stlstream decodes STL files of either encoding as a stream of structural events.
Files are never loaded whole: every command consumes facets as they are read, so
arbitrarily large meshes run in constant memory.`,
		Version:           "1.0.0",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: commands.StartProfiling,
	}

	// Persistent flags
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Configuration file path")
	flags.String("log-level", "info", "Logging level (debug, info, warn, error)")
	flags.String("log-format", "text", "Log format (text, json, custom)")
	flags.String("log-dir", "", "Also write logs to timestamped files in this directory")
	flags.Int("log-max-files", 10, "Maximum number of log files to keep")
	flags.Bool("log-colors", false, "Colorize log output")
	flags.Uint32("max-triangles", 0, "Reject binary files declaring more triangles (0 = no limit)")
	flags.Int("max-line-length", stl.DefaultMaxLineLength, "Maximum ASCII line length in bytes")
	flags.Float64("normal-epsilon", sinks.DefaultNormalEpsilon, "Tolerance on |n|^2 - 1 for unit normals")
	flags.Bool("profile-cpu", false, "Write a CPU profile of the run")
	flags.Bool("profile-memory", false, "Write a heap profile at the end of the run")
	flags.String("profile-dir", "./profiles", "Profile output directory")

	viper.BindPFlag("config", flags.Lookup("config"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("log_dir", flags.Lookup("log-dir"))
	viper.BindPFlag("log_max_files", flags.Lookup("log-max-files"))
	viper.BindPFlag("log_colors", flags.Lookup("log-colors"))
	viper.BindPFlag("max_triangles", flags.Lookup("max-triangles"))
	viper.BindPFlag("max_line_length", flags.Lookup("max-line-length"))
	viper.BindPFlag("normal_epsilon", flags.Lookup("normal-epsilon"))
	viper.BindPFlag("profile_cpu", flags.Lookup("profile-cpu"))
	viper.BindPFlag("profile_memory", flags.Lookup("profile-memory"))
	viper.BindPFlag("profile_dir", flags.Lookup("profile-dir"))

	// dump
	rootCmd.AddCommand(&cobra.Command{
		Use:   "dump FILE",
		Short: "Print the decoder event trace of an STL file",
		Long: `Print every event the decoder delivers for FILE: the solid header, the declared
triangle count of binary files, each facet normal and its three vertices. Use - for stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: commands.RunDump,
	})

	// stats
	statsCmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Print facet count, bounds and surface area of an STL file",
		Args:  cobra.ExactArgs(1),
		RunE:  commands.RunStats,
	}
	statsCmd.Flags().StringP("output", "o", "text", "Report format (text, json, yaml)")
	statsCmd.Flags().String("save-dir", "", "Also save the JSON report to a timestamped file in this directory")
	viper.BindPFlag("output_format", statsCmd.Flags().Lookup("output"))
	viper.BindPFlag("report_dir", statsCmd.Flags().Lookup("save-dir"))
	rootCmd.AddCommand(statsCmd)

	// check
	checkCmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Validate STL files",
		Long: `Validate each FILE: it must decode completely, match its declared triangle count,
and carry unit normals and non-degenerate triangles. Exits non-zero if any file fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: commands.RunCheck,
	}
	checkCmd.Flags().Bool("allow-bad-normals", false, "Do not fail on non-unit normals")
	checkCmd.Flags().Bool("allow-degenerate", false, "Do not fail on zero-area triangles")
	viper.BindPFlag("allow_bad_normals", checkCmd.Flags().Lookup("allow-bad-normals"))
	viper.BindPFlag("allow_degenerate", checkCmd.Flags().Lookup("allow-degenerate"))
	rootCmd.AddCommand(checkCmd)

	// convert
	convertCmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "Convert an STL file to ASCII or binary encoding",
		Long: `Convert IN to OUT while streaming. Binary output from an ASCII source needs a
seekable OUT so the triangle count can be written once all facets are known.`,
		Args: cobra.ExactArgs(2),
		RunE: commands.RunConvert,
	}
	convertCmd.Flags().String("to", "binary", "Target encoding (ascii, binary)")
	viper.BindPFlag("convert_to", convertCmd.Flags().Lookup("to"))
	rootCmd.AddCommand(convertCmd)

	// serve
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve STL statistics over HTTP",
		Long: `Serve POST /v1/stats (request body is an STL file, response is a JSON report),
GET /healthz and GET /metrics.`,
		Args: cobra.NoArgs,
		RunE: commands.RunServe,
	}
	serveCmd.Flags().String("listen", ":8080", "Listen address")
	serveCmd.Flags().Int64("max-body-bytes", 256<<20, "Maximum request body size")
	serveCmd.Flags().Duration("shutdown-timeout", 0, "Graceful shutdown timeout (0 = default)")
	viper.BindPFlag("listen_addr", serveCmd.Flags().Lookup("listen"))
	viper.BindPFlag("max_body_bytes", serveCmd.Flags().Lookup("max-body-bytes"))
	viper.BindPFlag("shutdown_timeout", serveCmd.Flags().Lookup("shutdown-timeout"))
	rootCmd.AddCommand(serveCmd)

	err := rootCmd.Execute()
	if perr := commands.StopProfiling(); perr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", perr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
