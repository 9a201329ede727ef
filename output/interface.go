// Package output renders gardening reports and listings for the command line.
package output

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/ryclarke/gardener/config"
	"github.com/ryclarke/gardener/garden"
)

const (
	// Auto is the styled output on a terminal and plain output otherwise
	Auto = "auto"
	// Styled is the colored output style
	Styled = "styled"
	// Plain is the uncolored output style
	Plain = "plain"
	// JSON is the machine readable output style
	JSON = "json"

	defaultWidth = 100
)

// AvailableStyles lists all supported output styles
var AvailableStyles = []string{Auto, Styled, Plain, JSON}

// Handler renders a run report.
type Handler func(w io.Writer, report *garden.Report) error

// GetHandler returns a report Handler based on the configuration.
func GetHandler(ctx context.Context, w io.Writer) Handler {
	switch resolveStyle(ctx, w) {
	case JSON:
		return JSONSummary
	case Plain:
		return PlainSummary
	default:
		return StyledSummary
	}
}

// resolveStyle turns the configured style into a concrete one for w.
func resolveStyle(ctx context.Context, w io.Writer) string {
	style := config.Viper(ctx).GetString(config.OutputStyle)

	if style == Auto || style == "" {
		if IsTerminal(w) {
			return Styled
		}

		return Plain
	}

	return style
}

// IsTerminal reports whether w is attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

// Width returns the terminal width of w, or a default when it is not a terminal.
func Width(w io.Writer) int {
	if f, ok := w.(*os.File); ok {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}

	return defaultWidth
}

// ValidateStyle rejects unknown output styles.
func ValidateStyle(style string) error {
	for _, valid := range AvailableStyles {
		if style == valid {
			return nil
		}
	}

	return fmt.Errorf("invalid output style %q (valid styles: %v)", style, AvailableStyles)
}

// IsStyled reports whether listings written to w should be colored.
func IsStyled(ctx context.Context, w io.Writer) bool {
	return resolveStyle(ctx, w) == Styled
}
