/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: convert.go
Description: Convert command. Re-encodes an STL file as ASCII or binary STL while it is
being decoded, without holding the mesh in memory.
*/

package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kleascm/stlstream/pkg/sinks"
	"github.com/kleascm/stlstream/pkg/stl"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// encoder is a Handler that reports its first write error
type encoder interface {
	stl.Handler
	Err() error
}

// RunConvert converts args[0] into args[1] in the format selected by --to
func RunConvert(cmd *cobra.Command, args []string) (err error) {
	logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Close()

	input, output := args[0], args[1]
	if input == output && input != stdinPath {
		return fmt.Errorf("input and output must differ: %s", input)
	}

	target := viper.GetString("convert_to")
	var newEncoder func(io.Writer) encoder
	switch target {
	case "ascii":
		newEncoder = func(w io.Writer) encoder { return sinks.NewASCIIWriter(w) }
	case "binary":
		newEncoder = func(w io.Writer) encoder { return sinks.NewBinaryWriter(w) }
	default:
		return fmt.Errorf("unsupported target format: %q (want ascii or binary)", target)
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != stdinPath {
		f, cerr := os.Create(output)
		if cerr != nil {
			return fmt.Errorf("failed to create output: %w", cerr)
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("failed to close output: %w", cerr)
			}
			if err != nil {
				os.Remove(output)
			}
		}()
		w = f
	}

	start := time.Now()
	enc := newEncoder(w)
	report, err := parseFile(cmd, logger, input, enc)
	if err != nil {
		return err
	}
	if err := enc.Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	logger.LogConversion(input, output, target, report.Facets, time.Since(start))
	return nil
}
