// Package present renders summaries for the terminal, the clipboard block and
// exported files.
package present

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Placeholder is shown when there are no bullets.
	Placeholder = "No summary could be produced."
	// DefaultExportName is used when no export path is given.
	DefaultExportName = "shortly-summary.txt"
	// DefaultPDFName is used when no PDF path is given.
	DefaultPDFName = "shortly-summary.pdf"
)

// ErrNothingToExport is returned by the export functions for an empty summary.
var ErrNothingToExport = errors.New("nothing to export")

// Render writes bullets as a list, or Placeholder when there are none.
func Render(w io.Writer, bullets []string) error {
	if len(bullets) == 0 {
		_, err := fmt.Fprintln(w, Placeholder)
		return err
	}
	var b strings.Builder
	for _, s := range bullets {
		b.WriteString("  • ")
		b.WriteString(s)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// CopyText is the clipboard form: every bullet on its own "- " line.
// An empty summary yields "".
func CopyText(bullets []string) string {
	if len(bullets) == 0 {
		return ""
	}
	return "- " + strings.Join(bullets, "\n- ")
}

// ExportText is the download form: "• " bullets separated by blank lines.
func ExportText(bullets []string) string {
	parts := make([]string, len(bullets))
	for i, s := range bullets {
		parts[i] = "• " + s
	}
	return strings.Join(parts, "\n\n")
}

// resolvePath applies the default file name to an empty path or a
// directory.
func resolvePath(path, def string) string {
	if strings.TrimSpace(path) == "" {
		return def
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return filepath.Join(path, def)
	}
	return path
}

// WriteExport writes ExportText(bullets) as UTF-8 and returns the path used.
func WriteExport(path string, bullets []string) (string, error) {
	if len(bullets) == 0 {
		return "", ErrNothingToExport
	}
	out := resolvePath(path, DefaultExportName)
	if err := os.WriteFile(out, []byte(ExportText(bullets)), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return out, nil
}
