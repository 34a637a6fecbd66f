package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/wbrown/atomicdb/atomic"
	"github.com/wbrown/atomicdb/atomic/annotations"
	"github.com/wbrown/atomicdb/atomic/executor"
	"github.com/wbrown/atomicdb/atomic/parser"
	"github.com/wbrown/atomicdb/atomic/storage"
)

// pageAction is the user's answer to the paging prompt
type pageAction int

const (
	pageNext pageAction = iota
	pageStop
	pageAll
)

// pager is asked before every solution after the first. A nil pager shows
// all solutions.
type pager func() pageAction

// session is an open database plus the settings to query it with
type session struct {
	cfg     *Config
	db      *storage.Database
	out     *printer
	handler annotations.Handler
	env     atomic.Bindings
}

func openSession(cfg *Config, stdout, stderr io.Writer) (*session, error) {
	s := &session{
		cfg: cfg,
		out: newPrinter(stdout, cfg.Color),
	}
	if cfg.Verbose {
		formatter := annotations.NewOutputFormatter(stderr)
		if !cfg.Color {
			formatter = annotations.NewPlainFormatter(stderr)
		}
		s.handler = formatter.Handle
	}

	start := time.Now()
	if cfg.Store == "" {
		s.db = storage.NewDatabase()
		return s, nil
	}
	db, err := storage.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", cfg.Store, err)
	}
	s.db = db

	stats := db.Stats()
	annotations.NewCollector(s.handler).AddTiming(annotations.StoreLoaded, start, map[string]interface{}{
		"path":            cfg.Store,
		"entries.count":   stats.Facts + stats.Clauses,
		"relations.count": stats.Relations,
		"facts.count":     stats.Facts,
		"rules.count":     stats.Rules,
	})
	return s, nil
}

func (s *session) Close() error {
	return s.db.Close()
}

func (s *session) options() []executor.Option {
	return []executor.Option{
		executor.WithMaxDepth(s.cfg.MaxDepth),
		executor.WithHandler(s.handler),
	}
}

// loadFile evaluates every statement of a source file. Queries found in the
// file are answered without paging.
func (s *session) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	statements, err := parser.ParseFile(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	for _, stmt := range statements {
		if err := s.evaluate(stmt, nil, false); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// execute evaluates each statement of src in order, echoing each one first
// when echo is set. It stops at the first failing statement.
func (s *session) execute(src string, page pager, echo bool) error {
	statements, err := parser.ParseFile(src)
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if err := s.evaluate(stmt, page, echo); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) evaluate(stmt atomic.Statement, page pager, echo bool) error {
	if echo {
		s.out.echo(parser.FormatStatement(stmt))
	}
	q, err := executor.Evaluate(s.db, s.env, stmt, s.options()...)
	if err != nil {
		return err
	}
	if q == nil {
		return nil
	}
	defer q.Close()

	vars := atomic.Variables(stmt.(atomic.QueryStatement).Constraint)
	if s.cfg.Format == FormatTable {
		s.answerTable(q, vars)
	} else {
		s.answerBlocks(q, vars, page)
	}
	return nil
}

func (s *session) answerBlocks(q *executor.Query, vars []atomic.Variable, page pager) {
	found := false
	for q.Next() {
		if found && page != nil {
			switch page() {
			case pageStop:
				s.out.verdict(true)
				return
			case pageAll:
				page = nil
			}
		}
		found = true
		s.out.solution(q.Count()-1, executor.Project(q.Bindings(), vars))
	}
	s.out.verdict(found)
}

func (s *session) answerTable(q *executor.Query, vars []atomic.Variable) {
	solutions := q.All()
	if len(solutions) > 0 {
		s.out.println(executor.NewTableFormatter().FormatSolutions(vars, solutions))
	}
	s.out.verdict(len(solutions) > 0)
}

// dump prints every stored fact and rule in loadable syntax
func (s *session) dump() {
	for _, name := range s.db.Relations() {
		for _, tuple := range s.db.Facts(name) {
			s.out.println(parser.FormatFact(name, tuple))
		}
		for _, clause := range s.db.Clauses(name) {
			s.out.println(parser.FormatRule(name, clause))
		}
	}
}
