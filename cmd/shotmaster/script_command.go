package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newScriptCommand(ctx *commandContext) *cobra.Command {
	scriptCmd := &cobra.Command{
		Use:   "script",
		Short: "Work with the project script",
	}
	scriptCmd.AddCommand(newScriptScenesCommand(ctx))
	scriptCmd.AddCommand(newScriptMaterializeCommand(ctx))
	return scriptCmd
}

func newScriptScenesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List the scene chunks found in script.txt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				script := s.Project.Script()
				var rows [][]string
				for _, key := range script.SortedKeys() {
					label := key
					if label == "" {
						label = "(before first header)"
					}
					text := script.SceneText(key)
					lines := strings.Count(text, "\n")
					materialized := "-"
					if key != "" && s.Project.SceneByName(key) != nil {
						materialized = "yes"
					}
					rows = append(rows, []string{
						label,
						fmt.Sprintf("%d", lines),
						materialized,
					})
				}
				renderTable(cmd.OutOrStdout(), []string{"Scene", "Lines", "Created"}, rows)
				return nil
			})
		},
	}
}

func newScriptMaterializeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create-scenes",
		Short: "Create a project scene for every script header",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				if err := s.Project.Script().CreateScenes(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Project now has %d scenes\n",
					len(s.Project.Scenes()))
				return nil
			})
		},
	}
}
