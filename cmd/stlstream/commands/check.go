/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: check.go
Description: Check command. Validates STL files: the stream must decode, follow the event
order, match its declared triangle count and carry unit normals and non-degenerate
triangles.
*/

package commands

import (
	"fmt"
	"strings"

	"github.com/kleascm/stlstream/pkg/logging"
	"github.com/kleascm/stlstream/pkg/sinks"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RunCheck validates every file given and fails if any has problems
func RunCheck(cmd *cobra.Command, args []string) error {
	logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		problems, facets := checkFile(cmd, logger, path)
		if len(problems) == 0 {
			fmt.Fprintf(out, "✅ %s: ok (%d facets)\n", path, facets)
			continue
		}
		failed++
		fmt.Fprintf(out, "❌ %s: %s\n", path, strings.Join(problems, "; "))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed checks", failed, len(args))
	}
	return nil
}

// checkFile returns the problems found in one file and its facet count
func checkFile(cmd *cobra.Command, logger *logging.Logger, path string) ([]string, uint64) {
	validator := sinks.NewValidator(nil)
	report, err := parseFile(cmd, logger, path, validator)
	if err != nil {
		return []string{err.Error()}, report.Facets
	}

	var problems []string
	if err := validator.Err(); err != nil {
		problems = append(problems, err.Error())
	}
	if report.NonUnitNormals > 0 && !viper.GetBool("allow_bad_normals") {
		problems = append(problems, fmt.Sprintf("%d non-unit normals", report.NonUnitNormals))
	}
	if report.DegenerateTriangles > 0 && !viper.GetBool("allow_degenerate") {
		problems = append(problems, fmt.Sprintf("%d degenerate triangles", report.DegenerateTriangles))
	}
	return problems, report.Facets
}
