package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/weave/internal/presentation/tui"
	"github.com/aretw0/weave/pkg/schema"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [prompt]",
		Short: "Print the resolved schema of every node",
		Long: `Runs type resolution over the whole prompt and prints each node's concrete sockets.

With --class, resolves a single node class against the types given by --input
and --output instead, e.g.:

  weave resolve --class MakeList --input value1=INT --input value2=INT`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			class, _ := cmd.Flags().GetString("class")
			if class != "" {
				return resolveClass(cmd, class)
			}

			eng, p, err := openPrompt(cmd, args)
			if err != nil {
				return err
			}
			schemas, err := eng.Resolve(p)
			if err != nil {
				return err
			}

			var sb strings.Builder
			for _, id := range p.IDs() {
				n, _ := p.Node(id)
				sb.WriteString(tui.SchemaMarkdown(fmt.Sprintf("%s (%s)", id, n.Class), schemas[id]))
				sb.WriteString("\n")
			}
			fmt.Fprint(cmd.OutOrStdout(), render(cmd.OutOrStdout(), sb.String()))
			return nil
		},
	}

	cmd.Flags().String("class", "", "Resolve one node class instead of a prompt")
	cmd.Flags().StringToString("input", nil, "Observed input type, as name=TYPE (with --class)")
	cmd.Flags().StringToString("output", nil, "Type a consumer accepts on an output, as name=TYPE (with --class)")
	return cmd
}

func resolveClass(cmd *cobra.Command, class string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	eng, err := newEngine(cmd, logger)
	if err != nil {
		return err
	}

	inputs, _ := cmd.Flags().GetStringToString("input")
	rawOutputs, _ := cmd.Flags().GetStringToString("output")
	outputs := make(map[string][]string, len(rawOutputs))
	for name, t := range rawOutputs {
		outputs[name] = []string{t}
	}

	resolved, err := eng.ResolveNode(class, schema.ObservationFromStrings(inputs, outputs))
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), render(cmd.OutOrStdout(), tui.SchemaMarkdown(class, resolved)))
	return nil
}

func newClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes [name]",
		Short: "List the registered node classes",
		Long:  `Without arguments lists every class. With a class name prints its declared schema.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			eng, err := newEngine(cmd, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				names := eng.Classes()
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintln(out, name)
				}
				return nil
			}

			class, err := eng.Class(args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(out, render(out, tui.SchemaMarkdown(args[0], class.DeclaredSchema())))
			return nil
		},
	}
}
