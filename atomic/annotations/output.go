package annotations

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// OutputFormatter formats events for human-readable display.
type OutputFormatter struct {
	useColor bool
	writer   io.Writer
}

// NewOutputFormatter creates a formatter with color support detection.
func NewOutputFormatter(w io.Writer) *OutputFormatter {
	if w == nil {
		w = os.Stdout
	}

	// Auto-detect color support
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return &OutputFormatter{
		useColor: useColor,
		writer:   w,
	}
}

// NewPlainFormatter creates a formatter that never emits color codes.
func NewPlainFormatter(w io.Writer) *OutputFormatter {
	f := NewOutputFormatter(w)
	f.useColor = false
	return f
}

// Handle implements the Handler interface - prints events as they occur
func (f *OutputFormatter) Handle(event Event) {
	output := f.Format(event)
	if output != "" {
		fmt.Fprintln(f.writer, output)
	}
}

// Format converts an event to a human-readable string.
func (f *OutputFormatter) Format(event Event) string {
	latency := f.formatLatency(event.Latency)
	d := event.Data

	switch event.Name {
	case QueryInvoked:
		return fmt.Sprintf("%s Query %s: %s", latency, shortID(d), truncateQuery(str(d, "query")))

	case QuerySolution:
		return fmt.Sprintf("%s %s Solution %d: %s",
			latency,
			f.colorize("+", color.FgGreen),
			num(d, "solution.index"),
			str(d, "bindings"))

	case QueryComplete:
		if success, _ := d["success"].(bool); !success {
			return fmt.Sprintf("%s %s Query %s failed: %v",
				latency,
				f.colorize("✗", color.FgRed),
				shortID(d),
				d["error"])
		}
		return fmt.Sprintf("%s %s Query %s done with %s.",
			latency,
			f.colorize("===", color.FgGreen),
			shortID(d),
			f.colorizeCount("solutions", num(d, "solution.count")))

	case RuleEntered:
		return fmt.Sprintf("%s %s %s clause %d at depth %d",
			latency,
			f.colorize("→", color.FgYellow),
			f.relation(str(d, "relation")),
			num(d, "clause.index"),
			num(d, "depth"))

	case RuleSplitFailed:
		return fmt.Sprintf("%s %s %s clause %d does not match the call",
			latency,
			f.colorize("-", color.FgYellow),
			f.relation(str(d, "relation")),
			num(d, "clause.index"))

	case RuleDepthExceeded:
		return fmt.Sprintf("%s %s %s not entered: depth %d exceeds %d",
			latency,
			f.colorize("⚠️", color.FgYellow),
			f.relation(str(d, "relation")),
			num(d, "depth"),
			num(d, "max.depth"))

	case RelationFactsScanned:
		return fmt.Sprintf("%s Scan(%s) → %s, %s",
			latency,
			f.relation(str(d, "relation")),
			f.colorizeCount("facts", num(d, "facts.count")),
			f.colorizeCount("matches", num(d, "matches.count")))

	case StoreLoaded:
		return fmt.Sprintf("%s Loaded %s from %s: %s, %s, %s",
			latency,
			f.colorizeCount("entries", num(d, "entries.count")),
			str(d, "path"),
			f.colorizeCount("relations", num(d, "relations.count")),
			f.colorizeCount("facts", num(d, "facts.count")),
			f.colorizeCount("rules", num(d, "rules.count")))

	case ErrorStatement:
		return fmt.Sprintf("%s %s %s: %v",
			latency,
			f.colorize("✗", color.FgRed),
			truncateQuery(str(d, "statement")),
			d["error"])

	default:
		// Generic format for unknown events
		return fmt.Sprintf("%s %s %v", latency, event.Name, event.Data)
	}
}

// formatLatency formats a duration as [XXXms] or [XXXµs] with color coding.
func (f *OutputFormatter) formatLatency(d time.Duration) string {
	// Use microseconds for sub-millisecond durations
	if d < time.Millisecond {
		s := fmt.Sprintf("[%dµs]", d.Microseconds())
		if !f.useColor {
			return s
		}
		return color.GreenString(s)
	}

	ms := float64(d.Microseconds()) / 1000.0
	s := fmt.Sprintf("[%.1fms]", ms)

	if !f.useColor {
		return s
	}

	switch {
	case ms < 50:
		return color.GreenString(s)
	case ms < 200:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}

// colorizeCount formats a count with a label, using color based on the label type.
func (f *OutputFormatter) colorizeCount(label string, count int) string {
	text := fmt.Sprintf("%d %s", count, label)

	if !f.useColor {
		return text
	}

	switch strings.ToLower(label) {
	case "relations", "rules":
		return color.CyanString(text)
	case "facts", "entries":
		return color.BlueString(text)
	case "solutions", "matches":
		return color.MagentaString(text)
	default:
		return text
	}
}

func (f *OutputFormatter) relation(name string) string {
	if !f.useColor {
		return name
	}
	return color.CyanString(name)
}

// colorize applies color if enabled.
func (f *OutputFormatter) colorize(text string, attrs ...color.Attribute) string {
	if !f.useColor {
		return text
	}
	return color.New(attrs...).Sprint(text)
}

// truncateQuery shortens long queries for display.
func truncateQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")

	const maxLen = 80
	if len(query) <= maxLen {
		return query
	}

	return query[:maxLen-3] + "..."
}

// shortID abbreviates the query id to its first block
func shortID(d map[string]interface{}) string {
	id := str(d, "query.id")
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func str(d map[string]interface{}, key string) string {
	switch v := d[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func num(d map[string]interface{}, key string) int {
	n, _ := d[key].(int)
	return n
}

// ConsoleHandler creates a handler that prints formatted events to stderr.
func ConsoleHandler() Handler {
	return NewOutputFormatter(os.Stderr).Handle
}
