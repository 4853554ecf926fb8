/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report_writer.go
Description: Utility for archiving parse reports. Writes timestamped JSON files named
after the parsed source into a report directory, creating it when needed.
*/

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteReport writes report as JSON into dir and returns the file path.
// The name is <timestamp>_<source base name>.json.
func WriteReport(dir, source string, report interface{}) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "-" || base == "." {
		base = "stdin"
	}
	timestamp := time.Now().Format("2006-01-02_15-04-05.000")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", timestamp, base))

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}
