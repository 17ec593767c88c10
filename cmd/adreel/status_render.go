package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"adreel/internal/preflight"
)

const checkLabelWidth = 24

var (
	colorOK      = text.Colors{text.FgGreen}
	colorWarn    = text.Colors{text.FgYellow}
	colorError   = text.Colors{text.FgRed}
	colorHeading = text.Colors{text.FgBlue, text.Bold}
)

// checkLine renders one preflight result as "  Label:   [STATUS] detail".
// Optional checks that fail are warnings; they only switch a feature off.
func checkLine(result preflight.Result, colorize bool) string {
	status, colors := "OK", colorOK
	switch {
	case result.Passed:
	case result.Optional:
		status, colors = "WARN", colorWarn
	default:
		status, colors = "ERROR", colorError
	}
	line := fmt.Sprintf("  %-*s [%s]", checkLabelWidth, result.Name+":", status)
	if detail := strings.TrimSpace(result.Detail); detail != "" {
		line += " " + detail
	}
	if colorize {
		return colors.Sprint(line)
	}
	return line
}

func sectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		return []string{colorHeading.Sprint(line), colorHeading.Sprint(rule)}
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
