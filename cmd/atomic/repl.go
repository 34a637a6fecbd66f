package main

import (
	"bufio"
	"io"
	"strings"
)

// repl reads statements line by line until .exit or end of input
func (s *session) repl(in io.Reader) {
	scanner := bufio.NewScanner(in)
	out := s.out

	var page pager
	if s.cfg.Page {
		page = func() pageAction {
			out.printf("%s", out.pagePrompt())
			if !scanner.Scan() {
				return pageStop
			}
			answer := strings.ToLower(scanner.Text())
			switch {
			case strings.Contains(answer, "n"):
				return pageStop
			case strings.Contains(answer, "a"):
				return pageAll
			}
			return pageNext
		}
	}

	for {
		out.printf("%s", out.prompt())
		if !scanner.Scan() {
			out.println()
			out.println("Bye!")
			return
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue

		case line == ".exit":
			out.println("Bye!")
			return

		case line == ".help":
			out.printf("%s", helpText)

		case line == ".stats":
			out.stats(s.db.Stats())

		case line == ".dump":
			s.dump()

		case strings.HasPrefix(line, "."):
			out.println("Unrecognized repl command.")

		default:
			if err := s.execute(line, page, true); err != nil {
				out.error(err)
			}
		}
	}
}

func (s *session) banner() {
	s.out.printf("%s", `
     _  _____ ___  __  __ ___ ___   ___  ___
    /_\|_   _/ _ \|  \/  |_ _/ __| |   \| _ )
   / _ \ | || (_) | |\/| || | (__  | |) | _ \
  /_/ \_\|_| \___/|_|  |_|___\___| |___/|___/
`)
}
