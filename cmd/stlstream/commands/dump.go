/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: dump.go
Description: Dump command. Prints every decoder event of an STL file as a readable trace.
*/

package commands

import (
	"fmt"

	"github.com/kleascm/stlstream/pkg/sinks"
	"github.com/spf13/cobra"
)

// RunDump prints the event trace of one STL file
func RunDump(cmd *cobra.Command, args []string) error {
	logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	printer := sinks.NewPrinter(cmd.OutOrStdout())
	if _, err := parseFile(cmd, logger, args[0], printer); err != nil {
		return err
	}
	if err := printer.Err(); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	return nil
}
