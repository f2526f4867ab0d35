/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Custom log formatters for isadetect. Coloured levels, ordered fields and
detector prefixes for corpus, scan and window messages.
*/

package logging

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CustomFormatter provides compact, structured logging output
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format formats a log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.format(entry, ""), nil
}

func (f *CustomFormatter) format(entry *logrus.Entry, prefix string) []byte {
	var output strings.Builder

	if f.Timestamp {
		output.WriteString(f.paint(36, entry.Time.Format("2006-01-02 15:04:05.000")))
		output.WriteString(" ")
	}

	output.WriteString(f.paint(f.getLevelColor(entry.Level), strings.ToUpper(entry.Level.String())))
	output.WriteString(" ")

	if prefix != "" {
		output.WriteString(f.paint(35, "["+prefix+"]"))
		output.WriteString(" ")
	}

	if f.Caller && entry.HasCaller() {
		output.WriteString(f.paint(33, fmt.Sprintf("[%s:%d]", entry.Caller.File, entry.Caller.Line)))
		output.WriteString(" ")
	}

	output.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		output.WriteString(" ")
		output.WriteString(f.formatFields(entry.Data))
	}

	output.WriteString("\n")
	return []byte(output.String())
}

func (f *CustomFormatter) paint(color int, s string) string {
	if !f.Colors {
		return s
	}
	return fmt.Sprintf("\033[%dm%s\033[0m", color, s)
}

// getLevelColor returns the ANSI color code for a log level
func (f *CustomFormatter) getLevelColor(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return 37 // White
	case logrus.InfoLevel:
		return 32 // Green
	case logrus.WarnLevel:
		return 33 // Yellow
	case logrus.ErrorLevel:
		return 31 // Red
	default:
		return 35 // Magenta
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
		value := formatValue(key, fields[key])
		if f.Colors {
			parts = append(parts, fmt.Sprintf("\033[34m%s\033[0m=\033[32m%s\033[0m", key, value))
		} else {
			parts = append(parts, fmt.Sprintf("%s=%s", key, value))
		}
	}
	return strings.Join(parts, " ")
}

// formatValue formats a field value appropriately
func formatValue(key string, value interface{}) string {
	switch v := value.(type) {
	case time.Duration:
		return v.String()
	case time.Time:
		return v.Format("15:04:05.000")
	case float64:
		return fmt.Sprintf("%.6f", v)
	case int:
		if key == "window_size" {
			return fmt.Sprintf("0x%x", v)
		}
		return fmt.Sprintf("%d", v)
	case string:
		if len(v) > 80 {
			return v[:80] + "..."
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

// DetectorFormatter tags messages with the detector stage they come from
type DetectorFormatter struct {
	CustomFormatter
}

// Format formats a log entry with a stage prefix
func (f *DetectorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	return f.format(entry, stagePrefix(entry.Message)), nil
}

// stagePrefix returns a prefix based on the log message
func stagePrefix(message string) string {
	switch {
	case strings.HasPrefix(message, "Corpus"), strings.HasPrefix(message, "Loading corpus"),
		strings.HasPrefix(message, "Reference model"):
		return "CORPUS"
	case strings.HasPrefix(message, "Window"):
		return "WINDOW"
	case strings.HasPrefix(message, "Ranking"), strings.HasPrefix(message, "No match"):
		return "PREDICT"
	case strings.HasPrefix(message, "Scan"), strings.HasPrefix(message, "Detection"):
		return "SCAN"
	default:
		return ""
	}
}
