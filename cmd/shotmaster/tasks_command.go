package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shotmaster/internal/providers"
	"shotmaster/internal/tasks"
)

func newTasksCommand(ctx *commandContext) *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and drive generation tasks",
	}
	tasksCmd.AddCommand(newTasksListCommand(ctx))
	tasksCmd.AddCommand(newTasksSubmitCommand(ctx))
	tasksCmd.AddCommand(newTasksCheckCommand(ctx))
	tasksCmd.AddCommand(newTasksClearCommand(ctx))
	return tasksCmd
}

func newTasksSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		workflow string
		prompt   string
		negative string
		duration string
		mode     string
	)
	cmd := &cobra.Command{
		Use:   "submit <scene> <shot>",
		Short: "Submit a generation request for a shot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				shot, err := findShot(s.Project, args[0], args[1])
				if err != nil {
					return err
				}
				req := providers.Request{
					Workflow:       workflow,
					Prompt:         prompt,
					NegativePrompt: negative,
					Model:          s.Config.Provider.Model,
					Duration:       duration,
					Mode:           mode,
				}
				fields := map[string]any{
					"workflow": workflow,
					"prompt":   prompt,
					"model":    req.Model,
				}
				if workflow == "image2video" {
					picked := shot.PickedImage()
					if picked == nil {
						return fmt.Errorf("shot %s has no picked image to animate", shot.Name())
					}
					payload, _, err := picked.Base64()
					if err != nil {
						return err
					}
					req.Image = payload
					fields["source"] = picked.Path()
				}

				sub, err := s.Project.Provider().Submit(cmd.Context(), req)
				if err != nil {
					if providers.IsMissingCredential(err) {
						return recoverMissingCredential(cmd, s.Settings, s.Config.Provider.Name, err)
					}
					return err
				}
				shot.AddTask(sub.TaskID, fields)
				fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s (%s)\n", sub.TaskID, sub.Workflow)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&workflow, "workflow", "text2video", "Generation workflow (text2video or image2video)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Generation prompt")
	cmd.Flags().StringVar(&negative, "negative-prompt", "", "Negative prompt")
	cmd.Flags().StringVar(&duration, "duration", "", "Clip duration in seconds")
	cmd.Flags().StringVar(&mode, "mode", "", "Generation mode (std or pro)")
	return cmd
}

func newTasksListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <scene> <shot>",
		Short: "List a shot's generation tasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				shot, err := findShot(s.Project, args[0], args[1])
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(shot.Tasks()))
				for _, task := range shot.Tasks() {
					message := ""
					if data := task.Data(); data != nil {
						if msg, ok := data["status_msg"].(string); ok {
							message = msg
						}
					}
					rows = append(rows, []string{
						task.ID(),
						task.Workflow(),
						string(task.Status()),
						message,
					})
				}
				renderTable(cmd.OutOrStdout(),
					[]string{"Task", "Workflow", "Status", "Message"}, rows)
				return nil
			})
		},
	}
}

func newTasksCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check <scene> <shot> [task-id]",
		Short: "Poll task status until terminal or the retry budget runs out",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				shot, err := findShot(s.Project, args[0], args[1])
				if err != nil {
					return err
				}
				toCheck := shot.Tasks()
				if len(args) == 3 {
					task := shot.TaskByID(args[2])
					if task == nil {
						return fmt.Errorf("no task %q on shot %s", args[2], shot.Name())
					}
					toCheck = []*tasks.Task{task}
				}
				if len(toCheck) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks to check")
					return nil
				}

				maxRetries := s.Config.Polling.MaxRetries
				delay := time.Duration(s.Config.Polling.DelaySeconds) * time.Second
				for _, task := range toCheck {
					fmt.Fprintf(cmd.OutOrStdout(), "Checking %s...\n", task.ID())
					if err := task.CheckStatus(cmd.Context(), maxRetries, delay); err != nil {
						if providers.IsMissingCredential(err) {
							return recoverMissingCredential(cmd, s.Settings, s.Config.Provider.Name, err)
						}
						fmt.Fprintf(cmd.OutOrStdout(), "  %s failed: %v\n", task.ID(), err)
						continue
					}
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", task.ID(), task.Status())
				}
				printNotifications(cmd, s)
				return nil
			})
		},
	}
}

func newTasksClearCommand(ctx *commandContext) *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "clear <scene> <shot>",
		Short: "Remove tasks from a shot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				shot, err := findShot(s.Project, args[0], args[1])
				if err != nil {
					return err
				}
				state := providers.ParseState(status)
				if status == "all" {
					total := 0
					for _, st := range []providers.State{
						providers.StateSubmitted,
						providers.StateProcessing,
						providers.StateSucceed,
						providers.StateFailed,
					} {
						total += shot.RemoveTasksByStatus(st)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %d tasks\n", total)
					return nil
				}
				removed := shot.RemoveTasksByStatus(state)
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s tasks\n", removed, state)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "failed", "Task status to clear (or \"all\")")
	return cmd
}

func printNotifications(cmd *cobra.Command, s *session) {
	for _, n := range s.Notifier.List() {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", n.Severity, n.Message)
	}
}
