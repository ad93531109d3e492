package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/internal/logging"
	"github.com/aretw0/weave/internal/presentation/tui"
	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/nodes"
	"github.com/aretw0/weave/pkg/promptfile"
)

// defaultMaxExpansions stops runaway loops started from the command line.
const defaultMaxExpansions = 10000

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "weave",
		Short: "Weave resolves, validates and runs typed node graphs",
		Long: `Weave loads a prompt (a graph of typed nodes), resolves every socket type,
checks the wiring and runs it, expanding loops as they iterate.

A prompt is either a YAML/JSON file or a directory of frontmatter documents.`,
		SilenceUsage: true,
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().String("dir", ".", "Prompt file or directory containing the prompt nodes")
	root.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	root.PersistentFlags().Int("max-expansions", defaultMaxExpansions, "Abort a run after this many loop expansions (0 disables the limit)")

	root.AddCommand(
		newRunCmd(),
		newResolveCmd(),
		newValidateCmd(),
		newGraphCmd(),
		newClassesCmd(),
		newServeCmd(),
		newMCPCmd(),
		newPromptsCmd(),
		newVersionCmd(),
	)
	return root
}

func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	name, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// engineOptions collects the options every command shares. Print nodes
// write to the command output.
func engineOptions(cmd *cobra.Command, logger *slog.Logger) []weave.Option {
	limit, _ := cmd.Flags().GetInt("max-expansions")
	return []weave.Option{
		weave.WithLogger(logger),
		weave.WithMaxExpansions(limit),
		weave.WithNodeOptions(nodes.WithOutput(cmd.OutOrStdout())),
	}
}

// target is the --dir flag, or the first argument when the flag is unset.
func target(cmd *cobra.Command, args []string) string {
	path, _ := cmd.Flags().GetString("dir")
	if !cmd.Flags().Changed("dir") && len(args) > 0 {
		path = args[0]
	}
	return path
}

func isPromptFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// openPrompt builds an engine for the target and loads its prompt. Files
// are decoded directly; directories go through the document loader.
func openPrompt(cmd *cobra.Command, args []string, extra ...weave.Option) (*weave.Engine, *domain.Prompt, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, nil, err
	}
	opts := append(engineOptions(cmd, logger), extra...)
	path := target(cmd, args)

	if isPromptFile(path) {
		p, err := promptfile.Load(path)
		if err != nil {
			return nil, nil, err
		}
		eng, err := weave.New("", opts...)
		if err != nil {
			return nil, nil, err
		}
		return eng, p, nil
	}

	eng, err := weave.New(path, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init engine: %w", err)
	}
	p, err := eng.Load(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	return eng, p, nil
}

// render passes markdown through glamour when the output is a terminal.
func render(w io.Writer, markdown string) string {
	if f, ok := w.(*os.File); ok {
		return tui.Render(f, markdown)
	}
	return markdown
}

// profile picks the color profile for w. Anything but a terminal is plain.
func profile(w io.Writer) termenv.Profile {
	if f, ok := w.(*os.File); ok && tui.IsTerminal(f) {
		return termenv.ColorProfile()
	}
	return termenv.Ascii
}

// newEngine builds an engine without a prompt source, for commands that
// only need the class catalog.
func newEngine(cmd *cobra.Command, logger *slog.Logger, extra ...weave.Option) (*weave.Engine, error) {
	return weave.New("", append(engineOptions(cmd, logger), extra...)...)
}
