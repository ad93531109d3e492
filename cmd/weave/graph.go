package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/weave/internal/presentation/graph"
	"github.com/aretw0/weave/pkg/promptfile"
)

func newGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [prompt]",
		Short: "Export the prompt graph",
		Long: `Outputs the prompt as a Mermaid diagram (graph TD), loops drawn as subgraphs,
or re-encodes it as a YAML or JSON prompt file.

With --run, the prompt is executed first and the diagram shows the final
graph, every spliced loop body included, annotated with execution counts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			withRun, _ := cmd.Flags().GetBool("run")

			eng, p, err := openPrompt(cmd, args)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "mermaid":
				var overlay *graph.GraphOverlay
				if withRun {
					report, runErr := eng.Run(cmd.Context(), p)
					if report == nil {
						return runErr
					}
					p = report.Prompt
					overlay = &graph.GraphOverlay{Executions: report.Executions}
				}
				fmt.Fprint(out, graph.GenerateMermaid(p, overlay))
				return nil
			case "yaml", "json":
				data, err := promptfile.Encode(p, promptfile.Format(format))
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			default:
				return fmt.Errorf("unknown format: %s. Supported: mermaid, yaml, json", format)
			}
		},
	}

	cmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid, yaml or json")
	cmd.Flags().Bool("run", false, "Run the prompt and draw the expanded graph")
	return cmd
}
