package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShotsCommand(ctx *commandContext) *cobra.Command {
	shotsCmd := &cobra.Command{
		Use:   "shots",
		Short: "Inspect and manage shots",
	}
	shotsCmd.AddCommand(newShotsListCommand(ctx))
	shotsCmd.AddCommand(newShotsCreateCommand(ctx))
	shotsCmd.AddCommand(newShotsBreakdownCommand(ctx))
	shotsCmd.AddCommand(newShotsStateCommand(ctx))
	return shotsCmd
}

func newShotsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <scene>",
		Short: "List a scene's shots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				scene, err := findScene(s.Project, args[0])
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(scene.Shots()))
				for _, shot := range scene.Shots() {
					picked := "-"
					if img := shot.PickedImage(); img != nil {
						picked = img.Name()
					}
					rows = append(rows, []string{
						shot.Name(),
						shot.State(),
						fmt.Sprintf("%d", len(shot.Results().Items())),
						fmt.Sprintf("%d", len(shot.GenVideo().Items())),
						fmt.Sprintf("%d", len(shot.Tasks())),
						picked,
					})
				}
				renderTable(cmd.OutOrStdout(),
					[]string{"Shot", "State", "Frames", "Videos", "Tasks", "Picked"}, rows)
				return nil
			})
		},
	}
}

func newShotsCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <scene> <shot>",
		Short: "Create a shot (no-op when it already exists)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				scene, err := findScene(s.Project, args[0])
				if err != nil {
					return err
				}
				shot, err := scene.CreateShot(args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Shot %s/%s ready\n", scene.Name(), shot.Name())
				return nil
			})
		},
	}
}

func newShotsBreakdownCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "breakdown <scene>",
		Short: "Create shots from the scene's stored shots breakdown JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				scene, err := findScene(s.Project, args[0])
				if err != nil {
					return err
				}
				if err := scene.CreateShotsFromJSON(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scene %s now has %d shots\n",
					scene.Name(), len(scene.Shots()))
				return nil
			})
		},
	}
}

func newShotsStateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "state <scene> <shot> <state>",
		Short: "Set a shot's pipeline state",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				shot, err := findShot(s.Project, args[0], args[1])
				if err != nil {
					return err
				}
				if err := shot.SetState(args[2]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Shot %s/%s is now %s\n", args[0], args[1], args[2])
				return nil
			})
		},
	}
}
