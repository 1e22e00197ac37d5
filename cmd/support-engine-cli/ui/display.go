// Package ui provides user interface components for the support engine CLI.
package ui

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// UI provides user-friendly output utilities.
type UI struct {
	noColor bool
}

// NewUI creates a new UI instance.
func NewUI(noColor bool) *UI {
	return &UI{noColor: noColor}
}

// Success prints a success message.
func (ui *UI) Success(format string, args ...interface{}) {
	if ui.noColor {
		fmt.Printf("✓ %s\n", fmt.Sprintf(format, args...))
		return
	}
	color.New(color.FgGreen).Printf("✓ %s\n", fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (ui *UI) Error(format string, args ...interface{}) {
	if ui.noColor {
		fmt.Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
		return
	}
	color.New(color.FgRed).Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (ui *UI) Warning(format string, args ...interface{}) {
	if ui.noColor {
		fmt.Printf("⚠ %s\n", fmt.Sprintf(format, args...))
		return
	}
	color.New(color.FgYellow).Printf("⚠ %s\n", fmt.Sprintf(format, args...))
}

// Info prints an info message.
func (ui *UI) Info(format string, args ...interface{}) {
	if ui.noColor {
		fmt.Printf("ℹ %s\n", fmt.Sprintf(format, args...))
		return
	}
	color.New(color.FgCyan).Printf("ℹ %s\n", fmt.Sprintf(format, args...))
}

// Step prints a step message.
func (ui *UI) Step(format string, args ...interface{}) {
	if ui.noColor {
		fmt.Printf("→ %s\n", fmt.Sprintf(format, args...))
		return
	}
	color.New(color.FgBlue).Printf("→ %s\n", fmt.Sprintf(format, args...))
}

// Result prints a query result block verbatim.
func (ui *UI) Result(text string) {
	fmt.Println(text)
}

// Table prints a box-drawing table.
func (ui *UI) Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, header := range headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && utf8.RuneCountInString(cell) > widths[i] {
				widths[i] = utf8.RuneCountInString(cell)
			}
		}
	}

	frame := fmt.Print
	if !ui.noColor {
		frame = color.New(color.FgCyan, color.Bold).Print
	}

	border := func(left, mid, right string) {
		frame(left)
		for i, width := range widths {
			frame(strings.Repeat("─", width+2))
			if i < len(widths)-1 {
				frame(mid)
			}
		}
		frame(right + "\n")
	}

	line := func(cells []string) {
		frame("│")
		for i, width := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := width - utf8.RuneCountInString(cell)
			fmt.Printf(" %s%s ", cell, strings.Repeat(" ", pad))
			frame("│")
		}
		fmt.Print("\n")
	}

	border("┌", "┬", "┐")
	line(headers)
	border("├", "┼", "┤")
	for _, row := range rows {
		line(row)
	}
	border("└", "┴", "┘")
}
