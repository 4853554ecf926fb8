/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: stats.go
Description: Stats command. Streams an STL file through the statistics consumer and
prints the report as text, JSON or YAML.
*/

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kleascm/stlstream/pkg/sinks"
	"github.com/kleascm/stlstream/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// RunStats prints the statistics report of one STL file
func RunStats(cmd *cobra.Command, args []string) error {
	logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	report, err := parseFile(cmd, logger, args[0], nil)
	if err != nil {
		return err
	}

	if dir := viper.GetString("report_dir"); dir != "" {
		path, err := utils.WriteReport(dir, args[0], report)
		if err != nil {
			return err
		}
		logger.GetLogger().WithField("file", path).Debug("Report saved")
	}
	return writeReport(cmd.OutOrStdout(), viper.GetString("output_format"), report)
}

// writeReport encodes report in the requested format
func writeReport(w io.Writer, format string, report sinks.Report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)

	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()

	case "text":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Format:\t%s\n", report.Format)
		if report.Name != "" {
			fmt.Fprintf(tw, "Name:\t%s\n", report.Name)
		}
		if report.DeclaredTriangles != nil {
			fmt.Fprintf(tw, "Declared triangles:\t%d\n", *report.DeclaredTriangles)
		}
		fmt.Fprintf(tw, "Facets:\t%d\n", report.Facets)
		if report.Bounds != nil {
			fmt.Fprintf(tw, "Bounds min:\t%s\n", report.Bounds.Min)
			fmt.Fprintf(tw, "Bounds max:\t%s\n", report.Bounds.Max)
		}
		fmt.Fprintf(tw, "Surface area:\t%g\n", report.SurfaceArea)
		fmt.Fprintf(tw, "Non-unit normals:\t%d\n", report.NonUnitNormals)
		fmt.Fprintf(tw, "Degenerate triangles:\t%d\n", report.DegenerateTriangles)
		return tw.Flush()

	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
