package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/wbrown/atomicdb/atomic/executor"
	"github.com/wbrown/atomicdb/atomic/storage"
)

// printer writes REPL output, colored when enabled
type printer struct {
	w        io.Writer
	useColor bool
}

func newPrinter(w io.Writer, useColor bool) *printer {
	return &printer{w: w, useColor: useColor}
}

func (p *printer) paint(text string, attrs ...color.Attribute) string {
	if !p.useColor {
		return text
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(text)
}

func (p *printer) println(a ...interface{}) {
	fmt.Fprintln(p.w, a...)
}

func (p *printer) printf(format string, a ...interface{}) {
	fmt.Fprintf(p.w, format, a...)
}

func (p *printer) prompt() string {
	return p.paint(">> ", color.FgBlue, color.Bold)
}

func (p *printer) pagePrompt() string {
	return "(enter -> next, n -> stop, a -> all)>> "
}

func (p *printer) echo(stmt string) {
	p.println("=> " + p.paint(stmt, color.FgHiBlack))
}

func (p *printer) solution(index int, bindings []executor.Binding) {
	p.println(p.paint(fmt.Sprintf("Solution %d:", index), color.FgGreen, color.Bold))
	for _, b := range bindings {
		p.println("    " + b.String())
	}
}

func (p *printer) verdict(found bool) {
	p.println()
	if found {
		p.println(p.paint("Ok.", color.FgGreen, color.Bold))
		return
	}
	p.println(p.paint("No.", color.FgRed, color.Bold))
}

func (p *printer) error(err error) {
	p.println(p.paint("Error: "+err.Error(), color.FgRed, color.Bold))
}

func (p *printer) stats(s storage.Stats) {
	p.printf("%d relations in knowledge base schema\n", s.Relations)
	p.printf("%d facts loaded\n", s.Facts)
	p.printf("%d rules loaded (%d clauses)\n", s.Rules, s.Clauses)
}

const helpText = `REPL commands:

.exit                 --- exits the repl (CTRL-D also works)
.help                 --- this help message
.stats                --- counts of relations, facts and rules
.dump                 --- prints every stored fact and rule

Statements:

fact:       <literal> <relation-id> <any number of literals>.
rule:       <term> <relation-id> <terms> : <query>.

Query language:

All other inputs at the REPL are interpreted as queries. Queries have the
following syntax:

query:      <literal/variable> <relation-id> <any number of literals or variables>
either-or:  <query>; <query>; ..
both-and:   <query>, <query>, ..
unify:      <literals/variables> ~ <literals/variables>
not:        !<query>
comparison: <literal/variable> <operator> <literal/variable>
group:      (<query>)
operator: < > <= >= =
pattern:    {a b ..} {.. a b} {.. a b ..} {a b}
math:       $(X + 1) with + - * / ^ & | and : (cons)
`
