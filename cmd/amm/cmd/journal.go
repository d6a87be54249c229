package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	amerrors "github.com/lugondev/go-amm/internal/errors"
	"github.com/lugondev/go-amm/internal/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the submission journal",
	Long: `Read back the submissions recorded by JOURNAL_DRIVER (memory, postgres,
mysql or mongodb). With the default driver "none" nothing is recorded.`,
}

func entryLine(e *journal.Entry) string {
	sig := e.Signature
	if sig == "" {
		sig = "-"
	}
	line := fmt.Sprintf("%s  %-9s  %-9s  %s", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Operation, e.Status, sig)
	if e.Error != "" {
		line += "  " + e.Error
	}
	return line
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent submissions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		repo, err := app.Journal(cmd.Context())
		if err != nil {
			return err
		}
		entries, err := repo.FindRecent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		lines := make([]string, 0, len(entries))
		for _, e := range entries {
			lines = append(lines, entryLine(e))
		}
		if len(lines) == 0 {
			lines = append(lines, "No journal entries")
		}
		if entries == nil {
			entries = []*journal.Entry{}
		}
		return app.print(lines, entries)
	},
}

var journalShowCmd = &cobra.Command{
	Use:   "show <signature>",
	Short: "Show the submission with a signature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := app.Journal(cmd.Context())
		if err != nil {
			return err
		}
		e, err := repo.FindBySignature(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if e == nil {
			return amerrors.Custom("no journal entry for " + args[0])
		}

		lines := []string{
			"ID:         " + e.ID,
			"Operation:  " + e.Operation,
			"Signature:  " + e.Signature,
			"Program:    " + e.ProgramID,
			"Status:     " + string(e.Status),
			"Created:    " + e.CreatedAt.Format("2006-01-02 15:04:05 MST"),
			fmt.Sprintf("Confirm ms: %d", e.ConfirmationMs),
		}
		if e.Error != "" {
			lines = append(lines, "Error:      "+e.Error)
		}
		for role, addr := range e.Addresses {
			lines = append(lines, fmt.Sprintf("  %-14s %s", role, addr))
		}
		return app.print(lines, e)
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalShowCmd)

	journalListCmd.Flags().Int("limit", 20, "maximum entries to show")
}
