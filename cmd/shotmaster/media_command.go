package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"shotmaster/internal/media"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	mediaCmd := &cobra.Command{
		Use:   "media",
		Short: "Browse and manage shot media",
	}
	mediaCmd.AddCommand(newMediaListCommand(ctx))
	mediaCmd.AddCommand(newMediaImportCommand(ctx))
	mediaCmd.AddCommand(newMediaTagCommand(ctx))
	mediaCmd.AddCommand(newMediaDeleteCommand(ctx))
	return mediaCmd
}

func newMediaListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ls <scene> <shot> [folder]",
		Short: "List a shot's media with sizes and tags",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				shot, err := findShot(s.Project, args[0], args[1])
				if err != nil {
					return err
				}
				folders := []*media.Folder{shot.Results(), shot.GenVideo(), shot.RefVideo(), shot.Audio()}
				if len(args) == 3 {
					folder, err := mediaFolder(shot, args[2])
					if err != nil {
						return err
					}
					folders = []*media.Folder{folder}
				}

				var rows [][]string
				for _, folder := range folders {
					for _, item := range folder.Items() {
						size := "-"
						if n, _, err := item.Store().Stat(item.Dir(), item.Name()); err == nil {
							size = humanize.Bytes(uint64(n))
						}
						rows = append(rows, []string{
							folder.Name(),
							item.Name(),
							string(item.Kind()),
							size,
							strings.Join(item.Tags(), ","),
						})
					}
				}
				renderTable(cmd.OutOrStdout(),
					[]string{"Folder", "File", "Kind", "Size", "Tags"}, rows)
				return nil
			})
		},
	}
}

func newMediaImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <scene> <shot> <folder> <file>...",
		Short: "Import local files into a shot media folder",
		Args:  cobra.MinimumNArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				shot, err := findShot(s.Project, args[0], args[1])
				if err != nil {
					return err
				}
				folder, err := mediaFolder(shot, args[2])
				if err != nil {
					return err
				}

				var files []media.ImportFile
				for _, path := range args[3:] {
					data, err := os.ReadFile(path)
					if err != nil {
						return fmt.Errorf("read %s: %w", path, err)
					}
					files = append(files, media.ImportFile{
						Name: filepath.Base(path),
						Data: data,
					})
				}
				imported := folder.SaveFiles(files)
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d files into %s\n",
					len(imported), len(files), folder.Name())
				return nil
			})
		},
	}
}

func newMediaTagCommand(ctx *commandContext) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "tag <scene> <shot> <folder> <file> <tag>",
		Short: "Add or remove a tag on a media item",
		Args:  cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				shot, err := findShot(s.Project, args[0], args[1])
				if err != nil {
					return err
				}
				folder, err := mediaFolder(shot, args[2])
				if err != nil {
					return err
				}
				item := folder.ByName(args[3])
				if item == nil {
					return fmt.Errorf("no media named %q in %s", args[3], folder.Name())
				}
				tag := args[4]
				if remove {
					item.RemoveTag(tag)
					fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", tag, item.Name())
					return nil
				}
				item.AddTag(tag)
				fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s with %s\n", item.Name(), tag)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the tag instead of adding it")
	return cmd
}

func newMediaDeleteCommand(ctx *commandContext) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rm <scene> <shot> <folder> <file>",
		Short: "Delete a media item and its sidecar",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withProject(cmd.Context(), func(s *session) error {
				shot, err := findShot(s.Project, args[0], args[1])
				if err != nil {
					return err
				}
				folder, err := mediaFolder(shot, args[2])
				if err != nil {
					return err
				}
				item := folder.ByName(args[3])
				if item == nil {
					return fmt.Errorf("no media named %q in %s", args[3], folder.Name())
				}
				if !yes {
					return fmt.Errorf("refusing to delete %s without --yes", item.Name())
				}
				if err := folder.DeleteItem(item, nil); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[3])
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm the deletion")
	return cmd
}
