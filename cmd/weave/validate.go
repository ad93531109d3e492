package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/internal/presentation/tui"
)

var errInvalid = errors.New("validation failed")

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [prompt]",
		Short: "Check every node's wiring against its schema",
		Long: `Resolves the prompt and reports missing required inputs, dangling links and
type mismatches, one line per rejected socket.

With --watch, a prompt directory is validated again every time one of its
documents changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watch, _ := cmd.Flags().GetBool("watch")

			eng, p, err := openPrompt(cmd, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			verr := eng.Validate(p)
			fmt.Fprintln(out, tui.Verdict(profile(out), verr))
			if !watch {
				if verr != nil {
					return errInvalid
				}
				return nil
			}
			return watchValidate(cmd, eng)
		},
	}

	cmd.Flags().BoolP("watch", "w", false, "Validate again whenever a prompt document changes")
	return cmd
}

func watchValidate(cmd *cobra.Command, eng *weave.Engine) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	changes, err := eng.Watch(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Watching for changes...")
	for {
		select {
		case <-ctx.Done():
			return nil
		case id, ok := <-changes:
			if !ok {
				return nil
			}
			p, err := eng.Load(ctx)
			if err != nil {
				fmt.Fprintf(out, "%s changed: %v\n", id, err)
				continue
			}
			fmt.Fprintf(out, "%s changed\n%s\n", id, tui.Verdict(profile(out), eng.Validate(p)))
		}
	}
}
