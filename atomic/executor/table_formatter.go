package executor

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/wbrown/atomicdb/atomic"
)

// TableFormatter renders query solutions as markdown tables
type TableFormatter struct {
	// MaxWidth is the maximum width for a column
	MaxWidth int
	// TruncateString is the string to append when truncating
	TruncateString string
}

// NewTableFormatter creates a new table formatter with default settings
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{
		MaxWidth:       50,
		TruncateString: "...",
	}
}

// FormatSolutions formats one row per solution with one column per variable
func (tf *TableFormatter) FormatSolutions(vars []atomic.Variable, solutions []atomic.Bindings) string {
	if len(vars) == 0 {
		if len(solutions) == 0 {
			return "_No rows_"
		}
		return fmt.Sprintf("_%d rows_", len(solutions))
	}
	if len(solutions) == 0 {
		return fmt.Sprintf("_Columns: %v_\n\n_No rows_", vars)
	}

	tableString := &strings.Builder{}

	alignment := make([]tw.Align, len(vars))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	table := tablewriter.NewTable(tableString,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)

	headers := make([]string, len(vars))
	for i, v := range vars {
		headers[i] = string(v)
	}
	table.Header(headers)

	for _, env := range solutions {
		projected := Project(env, vars)
		row := make([]string, len(projected))
		for j, b := range projected {
			row[j] = tf.formatTerm(b.Value)
		}
		table.Append(row)
	}

	table.Render()

	tableString.WriteString(fmt.Sprintf("\n_%d rows_\n", len(solutions)))

	return tableString.String()
}

// formatTerm renders a resolved term, truncating long values
func (tf *TableFormatter) formatTerm(t atomic.Term) string {
	if t == nil {
		return "nil"
	}
	s := t.String()
	if tf.MaxWidth > 0 && len(s) > tf.MaxWidth {
		cut := tf.MaxWidth - len(tf.TruncateString)
		if cut < 0 {
			cut = 0
		}
		s = s[:cut] + tf.TruncateString
	}
	return s
}

// SolutionsString is a shorthand for formatting with default settings
func SolutionsString(vars []atomic.Variable, solutions []atomic.Bindings) string {
	return NewTableFormatter().FormatSolutions(vars, solutions)
}
