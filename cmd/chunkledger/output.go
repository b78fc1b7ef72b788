// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/chunkledger/lib/chunktrack"
	"github.com/bureau-foundation/chunkledger/lib/codec"
	"github.com/bureau-foundation/chunkledger/lib/config"
	"github.com/bureau-foundation/chunkledger/lib/scenario"
	"github.com/bureau-foundation/chunkledger/lib/upload"
)

// outputFlags holds --format and --color, defaulting to the config.
type outputFlags struct {
	format string
	color  string
}

func addOutputFlags(flagSet *pflag.FlagSet, defaults config.OutputConfig) *outputFlags {
	flags := &outputFlags{}
	flagSet.StringVar(&flags.format, "format", defaults.Format, "output format: text, json, cbor, or diag")
	flagSet.StringVar(&flags.color, "color", defaults.Color, "text styling: auto, always, or never")
	return flags
}

// printer renders results in one output format. JSON output is a
// stream of indented documents, CBOR output is a CBOR sequence, and
// diag output is one line of CBOR diagnostic notation per item.
type printer struct {
	format   string
	w        io.Writer
	styles   styles
	maxSpans int
	cbor     *codec.Encoder
}

func newPrinter(env *environment, flags *outputFlags) (*printer, error) {
	switch flags.format {
	case config.FormatText, config.FormatJSON, config.FormatCBOR, config.FormatDiag:
	default:
		return nil, Validation("--format must be text, json, cbor, or diag, got %q", flags.format)
	}
	switch flags.color {
	case config.ColorAuto, config.ColorAlways, config.ColorNever:
	default:
		return nil, Validation("--color must be auto, always, or never, got %q", flags.color)
	}

	p := &printer{
		format:   flags.format,
		w:        env.stdout,
		styles:   newStyles(newRenderer(env.stdout, flags.color)),
		maxSpans: env.config.Output.MissingSpans,
	}
	if p.format == config.FormatCBOR {
		p.cbor = codec.NewEncoder(env.stdout)
	}
	return p, nil
}

// newRenderer picks the color profile for w. Auto styles only
// terminals.
func newRenderer(w io.Writer, color string) *lipgloss.Renderer {
	profile := termenv.Ascii
	switch color {
	case config.ColorAlways:
		profile = termenv.ANSI256
	case config.ColorAuto:
		if isTerminal(w) {
			profile = termenv.ANSI256
		}
	}
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)
	return renderer
}

type styles struct {
	title  lipgloss.Style
	faint  lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	border lipgloss.Style
}

func newStyles(renderer *lipgloss.Renderer) styles {
	return styles{
		title:  renderer.NewStyle().Bold(true),
		faint:  renderer.NewStyle().Foreground(lipgloss.Color("245")),
		pass:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		fail:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		header: renderer.NewStyle().Bold(true).Padding(0, 1),
		cell:   renderer.NewStyle().Padding(0, 1),
		border: renderer.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

func (p *printer) newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.styles.border).
		Headers(headers...).
		StyleFunc(func(row, column int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.styles.header
			}
			return p.styles.cell
		})
}

// emit writes value as JSON, CBOR, or CBOR diagnostic notation. It
// reports false for text output, which the caller renders itself.
func (p *printer) emit(value any) (bool, error) {
	switch p.format {
	case config.FormatJSON:
		encoder := json.NewEncoder(p.w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(value); err != nil {
			return true, Internal("writing JSON: %w", err)
		}
		return true, nil
	case config.FormatCBOR:
		if err := p.cbor.Encode(value); err != nil {
			return true, Internal("writing CBOR: %w", err)
		}
		return true, nil
	case config.FormatDiag:
		data, err := codec.Marshal(value)
		if err != nil {
			return true, Internal("encoding CBOR: %w", err)
		}
		notation, err := codec.Diagnose(data)
		if err != nil {
			return true, Internal("rendering CBOR diagnostics: %w", err)
		}
		if _, err := fmt.Fprintln(p.w, notation); err != nil {
			return true, Internal("writing output: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// printResult renders one replay result.
func (p *printer) printResult(result *scenario.Result) error {
	if done, err := p.emit(result); done {
		return err
	}

	status := p.styles.pass.Render("PASS")
	if !result.Passed() {
		status = p.styles.fail.Render("FAIL")
	}
	var out strings.Builder
	fmt.Fprintf(&out, "%s  %s  %d steps  %s\n",
		p.styles.title.Render(result.Scenario),
		p.styles.faint.Render(scenario.ShortDigest(result.Digest)),
		result.Steps, status)

	failed := make(map[int]scenario.Mismatch, len(result.Mismatches))
	for _, mismatch := range result.Mismatches {
		failed[mismatch.Step] = mismatch
	}

	observations := p.newTable("STEP", "LOWEST MISSING", "EXPECT", "")
	for _, observation := range result.Observations {
		lowest := strconv.FormatInt(observation.LowestMissing, 10)
		if observation.Error != "" {
			lowest = observation.Error
		}
		expect, verdict := "", ""
		if observation.Expect != nil {
			expect = strconv.FormatInt(*observation.Expect, 10)
			verdict = p.styles.pass.Render("ok")
			if _, bad := failed[observation.Step]; bad {
				verdict = p.styles.fail.Render("mismatch")
			}
		}
		observations.Row(strconv.Itoa(observation.Step), lowest, expect, verdict)
	}
	if len(result.Observations) > 0 {
		out.WriteString(observations.String())
		out.WriteString("\n")
	}

	for _, mismatch := range result.Mismatches {
		fmt.Fprintf(&out, "%s %s\n", p.styles.fail.Render("mismatch"), mismatch.String())
	}
	fmt.Fprintf(&out, "%s %s\n", p.styles.faint.Render("gaps:   "), formatRanges(result.Gaps))
	fmt.Fprintf(&out, "%s %s\n", p.styles.faint.Render("missing:"), formatSpans(result.Missing, p.maxSpans))

	if _, err := io.WriteString(p.w, out.String()); err != nil {
		return Internal("writing output: %w", err)
	}
	return nil
}

// printProgress renders every upload as one table, or one JSON/CBOR
// item per upload.
func (p *printer) printProgress(uploads []upload.Progress) error {
	if p.format != config.FormatText {
		for _, progress := range uploads {
			if _, err := p.emit(progress); err != nil {
				return err
			}
		}
		return nil
	}

	uploadsTable := p.newTable("UPLOAD", "FIRST", "LAST", "LOWEST MISSING", "RECEIVED", "DUPLICATES", "STATUS", "MISSING")
	for _, progress := range uploads {
		last := "?"
		if progress.Last != nil {
			last = strconv.FormatInt(*progress.Last, 10)
		}
		status := p.styles.fail.Render("incomplete")
		if progress.Complete {
			status = p.styles.pass.Render("complete")
		}
		uploadsTable.Row(
			progress.Upload,
			strconv.FormatInt(progress.First, 10),
			last,
			formatLowest(progress),
			strconv.FormatInt(progress.Received, 10),
			strconv.FormatInt(progress.Duplicates, 10),
			status,
			formatSpans(progress.Missing, p.maxSpans),
		)
	}
	if _, err := fmt.Fprintln(p.w, uploadsTable.String()); err != nil {
		return Internal("writing output: %w", err)
	}
	return nil
}

// formatLowest renders "none" once every representable id arrived.
func formatLowest(progress upload.Progress) string {
	if progress.Exhausted {
		return "none"
	}
	return strconv.FormatInt(progress.LowestMissing, 10)
}

func formatRanges(ranges []chunktrack.Range) string {
	parts := make([]string, len(ranges))
	for index, entry := range ranges {
		parts[index] = entry.String()
	}
	return strings.Join(parts, " ")
}

// formatSpans joins at most limit spans, noting how many were cut.
func formatSpans(spans []chunktrack.Span, limit int) string {
	if len(spans) == 0 {
		return "none"
	}
	shown := spans
	if limit > 0 && len(spans) > limit {
		shown = spans[:limit]
	}
	parts := make([]string, len(shown))
	for index, span := range shown {
		parts[index] = span.String()
	}
	text := strings.Join(parts, ", ")
	if hidden := len(spans) - len(shown); hidden > 0 {
		text += fmt.Sprintf(", ... (%d more)", hidden)
	}
	return text
}
