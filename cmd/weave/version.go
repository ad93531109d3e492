package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/weave"
	"github.com/aretw0/weave/internal/presentation/tui"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of weave",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if f, ok := out.(*os.File); ok && tui.IsTerminal(f) {
				tui.PrintBanner(out, weave.Version)
				return
			}
			fmt.Fprintf(out, "weave version %s\n", strings.TrimSpace(weave.Version))
		},
	}
}
