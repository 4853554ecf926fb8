/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Custom log formatter for stlstream. Compact single-line output with optional
ANSI colors, a short tag for parse events and stable field ordering.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CustomFormatter provides compact, colored logging output
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format formats a log entry on one line
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var output strings.Builder

	if f.Timestamp {
		f.write(&output, 36, entry.Time.Format("2006-01-02 15:04:05.000"))
		output.WriteString(" ")
	}

	f.write(&output, levelColor(entry.Level), strings.ToUpper(entry.Level.String()))
	output.WriteString(" ")

	if tag := eventTag(entry.Message); tag != "" {
		f.write(&output, 35, "["+tag+"]")
		output.WriteString(" ")
	}

	if f.Caller && entry.HasCaller() {
		f.write(&output, 33, fmt.Sprintf("[%s:%d]", entry.Caller.File, entry.Caller.Line))
		output.WriteString(" ")
	}

	output.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		output.WriteString(" ")
		output.WriteString(f.formatFields(entry.Data))
	}

	output.WriteString("\n")
	return []byte(output.String()), nil
}

func (f *CustomFormatter) write(b *strings.Builder, color int, s string) {
	if f.Colors {
		fmt.Fprintf(b, "\033[%dm%s\033[0m", color, s)
		return
	}
	b.WriteString(s)
}

// levelColor returns the ANSI color code for a log level
func levelColor(level logrus.Level) int {
	switch level {
	case logrus.InfoLevel:
		return 32
	case logrus.WarnLevel:
		return 33
	case logrus.ErrorLevel:
		return 31
	case logrus.FatalLevel, logrus.PanicLevel:
		return 35
	default:
		return 37
	}
}

// eventTag returns a short prefix for well-known messages
func eventTag(message string) string {
	switch {
	case strings.HasPrefix(message, "Parse"):
		return "PARSE"
	case strings.HasPrefix(message, "Format"):
		return "DETECT"
	case strings.HasPrefix(message, "Conversion"):
		return "CONVERT"
	case strings.HasPrefix(message, "Request"):
		return "HTTP"
	default:
		return ""
	}
}

// formatFields formats structured fields sorted by key
func (f *CustomFormatter) formatFields(fields logrus.Fields) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := formatValue(fields[key])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", key, value))
		} else {
			parts = append(parts, key+"="+value)
		}
	}
	return strings.Join(parts, " ")
}

// formatValue formats a field value appropriately
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case error:
		return fmt.Sprintf("%q", v.Error())
	case string:
		if len(v) > 60 {
			return v[:60] + "..."
		}
		return v
	case []byte:
		if len(v) > 20 {
			return fmt.Sprintf("[%d bytes]", len(v))
		}
		return fmt.Sprintf("%x", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
