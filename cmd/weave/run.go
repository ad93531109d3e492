package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/weave/pkg/domain"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [prompt]",
		Short: "Run a prompt to completion",
		Long:  `Resolves and validates the prompt, then executes it, splicing a fresh loop body every time a loop close node continues.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonMode, _ := cmd.Flags().GetBool("json")

			eng, p, err := openPrompt(cmd, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			report, runErr := eng.Run(ctx, p)
			out := cmd.OutOrStdout()
			if jsonMode {
				resp := struct {
					Report *domain.RunReport `json:"report"`
					Error  string            `json:"error,omitempty"`
				}{Report: report}
				if runErr != nil {
					resp.Error = runErr.Error()
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(resp); err != nil {
					return err
				}
				return runErr
			}

			if report != nil {
				printReport(out, p, report)
			}
			return runErr
		},
	}

	cmd.Flags().Bool("json", false, "Print the full run report as JSON")
	return cmd
}

// printReport lists the outputs of the submitted nodes. Clones spliced by
// loops are summarized by the execution counts.
func printReport(w io.Writer, p *domain.Prompt, report *domain.RunReport) {
	fmt.Fprintf(w, "status: %s\n", report.Status)
	fmt.Fprintf(w, "expansions: %d\n", report.Expansions)
	for _, id := range p.IDs() {
		values, ok := report.Outputs[id]
		if !ok {
			continue
		}
		n, _ := p.Node(id)
		line := fmt.Sprintf("%s %v", id, values)
		if runs := report.Executions[n.Display()]; runs > 1 {
			line += fmt.Sprintf(" (x%d)", runs)
		}
		fmt.Fprintln(w, line)
	}
}
