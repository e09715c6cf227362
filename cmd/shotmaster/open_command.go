package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOpenCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open the project and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				out := cmd.OutOrStdout()
				p := s.Project

				fmt.Fprintf(out, "Project: %s\n", p.Name())
				if title := p.Sidecar().GetString("title"); title != "" {
					fmt.Fprintf(out, "Title:   %s\n", title)
				}
				fmt.Fprintln(out)

				rows := make([][]string, 0, len(p.Scenes()))
				for _, scene := range p.Scenes() {
					rows = append(rows, []string{
						scene.Name(),
						fmt.Sprintf("%d", len(scene.Shots())),
						fmt.Sprintf("%d", scene.FinishedShots()),
						fmt.Sprintf("%d", len(scene.Tags())),
					})
				}
				renderTable(out, []string{"Scene", "Shots", "Finished", "Tags"}, rows)

				fmt.Fprintf(out, "\nArtbook types: %d\n", len(p.Artbook().Types()))
				fmt.Fprintf(out, "Script scenes: %d\n", len(p.Script().SortedKeys()))

				data, err := s.Settings.Load(cmd.Context())
				if err == nil && len(data.RecentFolders) > 0 {
					fmt.Fprintln(out, "\nRecent projects:")
					for _, recent := range data.RecentFolders {
						fmt.Fprintf(out, "  %s\n", recent)
					}
				}
				return nil
			})
		},
	}
}
