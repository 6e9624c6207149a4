package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/teamsmell/schema"
	"go.uber.org/zap"
)

// Color variables for console output.
var (
	SmellColor   = color.New(color.FgRed, color.Bold) // SmellColor marks a detected smell.
	HeaderColor  = color.New(color.FgCyan, color.Bold)
	NoSmellColor = color.New(color.FgGreen)
)

// GetPlainSmellLabel returns "CODE (Description)" for a smell.
func GetPlainSmellLabel(code schema.SmellCode) string {
	if desc, ok := schema.SmellDescriptions[code]; ok {
		return fmt.Sprintf("%s (%s)", code, desc)
	}
	return string(code)
}

// GetColorSmellLabel returns the smell label colored for console output.
func GetColorSmellLabel(code schema.SmellCode) string {
	return SmellColor.Sprint(GetPlainSmellLabel(code))
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	zap.S().Errorw("Fatal "+msg, "error", err)
	_ = zap.S().Sync()
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning through the process-wide logger.
func LogWarn(msg string, err error) {
	zap.S().Warnw(msg, "error", err)
}

// GetStoreDBFilePath returns the path to the SQLite DB file for the metrics store.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".teamsmell.db"
	}
	return filepath.Join(homeDir, ".teamsmell.db")
}

// TruncateText truncates text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to leave room for the "..." suffix and at least one character.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
