package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Store      string
	Verbose    bool
	NoColor    bool
	Format     string
	MaxDepth   int
	NoPage     bool

	// Config is the merged result of the config file, the environment
	// and the flags. It is ready once PersistentPreRunE has run.
	Config *Config
}

// resolve loads the config file and lets explicitly set flags win
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	cfg, err := Load(o.ConfigPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store = o.Store
	}
	if flags.Changed("verbose") {
		cfg.Verbose = o.Verbose
	}
	if flags.Changed("no-color") {
		cfg.Color = !o.NoColor
	}
	if flags.Changed("format") {
		cfg.Format = o.Format
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = o.MaxDepth
	}
	if flags.Changed("no-page") {
		cfg.Page = !o.NoPage
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.Color {
		color.NoColor = true
	}
	o.Config = cfg
	return nil
}

func (o *RootOptions) open(cmd *cobra.Command) (*session, error) {
	return openSession(o.Config, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// NewRootCommand creates the root command for the atomic CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "atomic [files...]",
		Short: "Atomic - a deductive database",
		Long: `Atomic stores facts and rules and answers queries over them by
unification and backtracking search.

Without a subcommand the given files are loaded and the REPL starts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(opts, cmd, args)
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", DefaultConfigFile, "path to YAML config file")
	flags.StringVar(&opts.Store, "store", "", "BadgerDB directory journaling facts and rules (empty: in memory)")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "print search annotations to stderr")
	flags.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	flags.StringVar(&opts.Format, "format", FormatBlocks, "solution format (blocks|table)")
	flags.IntVar(&opts.MaxDepth, "max-depth", 0, "maximum rule call depth (0: unlimited)")
	flags.BoolVar(&opts.NoPage, "no-page", false, "show all solutions without prompting")

	// Add subcommands
	cmd.AddCommand(NewREPLCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// NewREPLCommand creates the repl command.
func NewREPLCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl [files...]",
		Short: "Load files and start the interactive prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(opts, cmd, args)
		},
	}
}

func runREPL(opts *RootOptions, cmd *cobra.Command, files []string) error {
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, path := range files {
		s.out.println("Reading from " + path + "...")
		if err := s.loadFile(path); err != nil {
			return err
		}
	}

	s.banner()
	s.out.stats(s.db.Stats())
	s.repl(cmd.InOrStdin())
	return nil
}

// NewQueryCommand creates the query command.
func NewQueryCommand(opts *RootOptions) *cobra.Command {
	var expr string

	cmd := &cobra.Command{
		Use:   "query -e <statements> [files...]",
		Short: "Load files and evaluate statements once",
		Long: `Load the given files, then evaluate the statements passed with -e and
print every solution.

Example:
  atomic query -e 'X ancestor_of "dave".' family.atom`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if expr == "" {
				return errors.New("nothing to evaluate: pass statements with -e")
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, path := range args {
				if err := s.loadFile(path); err != nil {
					return err
				}
			}
			return s.execute(expr, nil, false)
		},
	}

	cmd.Flags().StringVarP(&expr, "eval", "e", "", "statements to evaluate")
	return cmd
}

// NewLoadCommand creates the load command.
func NewLoadCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "load <files...>",
		Short: "Evaluate files into the store",
		Long: `Evaluate every statement of the given files. With --store the facts and
rules are journaled and available to later sessions.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			for _, path := range args {
				if err := s.loadFile(path); err != nil {
					return err
				}
			}
			s.out.stats(s.db.Stats())
			return nil
		},
	}
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print relation, fact and rule counts of the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Config.Store == "" {
				return fmt.Errorf("stats needs a store: pass --store or set ATOMIC_STORE")
			}
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			s.out.stats(s.db.Stats())
			return nil
		},
	}
}
