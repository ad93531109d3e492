package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/weave/pkg/promptfile"
)

func newPromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Manage stored prompts",
		Long:  `List, inspect, upload and remove the prompts a Weave server keeps in Redis.`,
	}
	addStoreFlags(cmd, true, "localhost:6379")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "ls",
			Short: "List stored prompts",
			RunE: func(cmd *cobra.Command, args []string) error {
				logger, err := newLogger(cmd)
				if err != nil {
					return err
				}
				sessions, closeStore, err := newSessions(cmd, logger)
				if err != nil {
					return err
				}
				defer closeStore()

				ids, err := sessions.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("error listing prompts: %w", err)
				}
				if len(ids) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No stored prompts found.")
					return nil
				}
				for _, id := range ids {
					fmt.Fprintln(cmd.OutOrStdout(), "- "+id)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Print a stored prompt as YAML",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				logger, err := newLogger(cmd)
				if err != nil {
					return err
				}
				sessions, closeStore, err := newSessions(cmd, logger)
				if err != nil {
					return err
				}
				defer closeStore()

				p, err := sessions.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				data, err := promptfile.Encode(p, promptfile.FormatYAML)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
		&cobra.Command{
			Use:   "put <file>",
			Short: "Store a prompt file under its id",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				logger, err := newLogger(cmd)
				if err != nil {
					return err
				}
				p, err := promptfile.Load(args[0])
				if err != nil {
					return err
				}
				// Reject what a run would reject.
				eng, err := newEngine(cmd, logger)
				if err != nil {
					return err
				}
				if err := eng.Validate(p); err != nil {
					return err
				}

				sessions, closeStore, err := newSessions(cmd, logger)
				if err != nil {
					return err
				}
				defer closeStore()

				if err := sessions.Save(cmd.Context(), p.ID, p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored prompt %s (%d nodes)\n", p.ID, p.Len())
				return nil
			},
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Remove a stored prompt",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				logger, err := newLogger(cmd)
				if err != nil {
					return err
				}
				sessions, closeStore, err := newSessions(cmd, logger)
				if err != nil {
					return err
				}
				defer closeStore()

				if err := sessions.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Prompt %s removed.\n", args[0])
				return nil
			},
		},
	)
	return cmd
}
