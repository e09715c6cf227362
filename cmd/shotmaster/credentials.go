package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"shotmaster/internal/providers/kling"
	"shotmaster/internal/settings"
)

// recoverMissingCredential asks for the provider's key pair on the
// command's input and stores it for the next run. The failed operation
// is not retried; the causing error comes back so the command still
// fails visibly.
func recoverMissingCredential(cmd *cobra.Command, store *settings.Store, provider string, cause error) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Credentials for %s are missing or were rejected.\n", provider)

	reader := bufio.NewReader(cmd.InOrStdin())
	access := promptLine(out, reader, "Access key: ")
	secret := promptLine(out, reader, "Secret key: ")
	if access == "" || secret == "" {
		fmt.Fprintln(out, "No keys entered; nothing saved.")
		return cause
	}

	err := store.Update(cmd.Context(), func(d *settings.Data) {
		if d.APIKeys == nil {
			d.APIKeys = map[string]map[string]string{}
		}
		d.APIKeys[provider] = map[string]string{
			kling.KeyAccess: access,
			kling.KeySecret: secret,
		}
	})
	if err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	fmt.Fprintln(out, "Credentials saved; run the command again.")
	return cause
}

func promptLine(out io.Writer, in *bufio.Reader, label string) string {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}
