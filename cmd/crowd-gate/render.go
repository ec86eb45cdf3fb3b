package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	crowdgate "github.com/e7canasta/crowd-gate"
	"github.com/e7canasta/crowd-gate/estimator"
)

// ANSI colors for the three signals; equal-length codes keep tabwriter
// columns aligned.
const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

// shouldUseColor reports whether ANSI colors should be used on stdout.
// It respects NO_COLOR, CLICOLOR_FORCE, CLICOLOR, and TTY detection.
func shouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func colorize(status crowdgate.GateStatus, s string, color bool) string {
	if !color {
		return s
	}
	code := ansiGreen
	switch status {
	case crowdgate.StatusYellow:
		code = ansiYellow
	case crowdgate.StatusRed:
		code = ansiRed
	}
	return code + s + ansiReset
}

// renderReport prints the report the way the dashboard lays it out:
// banner, mode, one row per gate, then the total.
func renderReport(w io.Writer, report crowdgate.Report, color bool) {
	fmt.Fprintln(w, report.Banner)
	fmt.Fprintf(w, "Mode: %s (%s)\n", report.Mode.Mode, report.Mode.Brightness)
	if report.Notice != "" {
		fmt.Fprintf(w, "Note: %s\n", report.Notice)
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "GATE\tLOAD\tSTATUS\tACTION\tADVICE")
	for _, g := range report.Evaluation.Gates {
		advice := "-"
		if g.Redirect != nil {
			advice = g.Redirect.Message
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			g.Name,
			g.Load,
			colorize(g.Status, g.Status.String(), color),
			g.Action,
			advice,
		)
	}
	tw.Flush()

	fmt.Fprintln(w)
	if color {
		fmt.Fprintln(w, ansiBold+report.Summary+ansiReset)
	} else {
		fmt.Fprintln(w, report.Summary)
	}
}

// renderEstimate prints a one-line estimate plus any notice
func renderEstimate(w io.Writer, result estimator.Result) {
	fmt.Fprintf(w, "Estimated crowd: %d (source: %s, frames: %d)\n", result.Count, result.Source, result.Frames)
	if result.Notice != "" {
		fmt.Fprintf(w, "Note: %s\n", result.Notice)
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}
