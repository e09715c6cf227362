package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScenesCommand(ctx *commandContext) *cobra.Command {
	scenesCmd := &cobra.Command{
		Use:   "scenes",
		Short: "Inspect and manage scenes",
	}
	scenesCmd.AddCommand(newScenesListCommand(ctx))
	scenesCmd.AddCommand(newScenesCreateCommand(ctx))
	scenesCmd.AddCommand(newScenesDeleteCommand(ctx))
	return scenesCmd
}

func newScenesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scenes with shot progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				rows := make([][]string, 0, len(s.Project.Scenes()))
				for _, scene := range s.Project.Scenes() {
					script := "-"
					if scene.Script() != "" {
						script = "yes"
					}
					rows = append(rows, []string{
						scene.Name(),
						fmt.Sprintf("%d", len(scene.Shots())),
						fmt.Sprintf("%d", scene.FinishedShots()),
						script,
					})
				}
				renderTable(cmd.OutOrStdout(), []string{"Scene", "Shots", "Finished", "Script"}, rows)
				return nil
			})
		},
	}
}

func newScenesCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a scene (no-op when it already exists)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				scene, err := s.Project.CreateScene(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scene %s ready\n", scene.Name())
				return nil
			})
		},
	}
}

func newScenesDeleteCommand(ctx *commandContext) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a scene and everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				scene, err := findScene(s.Project, args[0])
				if err != nil {
					return err
				}
				if !force && len(scene.Shots()) > 0 {
					return fmt.Errorf("scene %s has %d shots; use --force to delete anyway",
						scene.Name(), len(scene.Shots()))
				}
				if err := scene.Delete(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted scene %s\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Delete even when the scene has shots")
	return cmd
}
