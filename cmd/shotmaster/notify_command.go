package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shotmaster/internal/notify"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "test-notify",
		Short:       "Exercise the notification center and print what it emits",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			center := notify.NewCenter()
			center.Subscribe(func() {
				fmt.Fprintf(out, "notification list now holds %d entries\n", center.Len())
			})

			id := center.Add("Test notification from shotmaster", notify.SeverityInfo,
				notify.WithOnClose(func() {
					fmt.Fprintln(out, "onClose fired")
				}))
			center.Add("A warning for good measure", notify.SeverityWarning)

			for _, n := range center.List() {
				fmt.Fprintf(out, "[%s] %s\n", n.Severity, n.Message)
			}
			center.Remove(id)
			center.Clear()
			return nil
		},
	}
}
