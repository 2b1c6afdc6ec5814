package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/privacyguard/internal/config"
	"github.com/nao1215/privacyguard/internal/database"
	"github.com/nao1215/privacyguard/internal/model"
)

// idPrefixLen is how many characters of an entry ID are shown in lists.
// Any unique prefix is accepted as an ID argument.
const idPrefixLen = 8

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage stored detection runs",
		Long: `History lists, shows, labels, deletes and compares stored detection runs.

Completed runs are stored in the XDG data directory
(~/.local/share/privacyguard/privacyguard.db on Linux). Only the newest runs
are kept (20 by default, see history.limit in the configuration file).

Entry IDs can be abbreviated to any unique prefix.

Examples:
  # List stored runs, newest first
  privacyguard history list

  # Show the full report of a run
  privacyguard history show 3f2a9c1e

  # Compare the latest two runs
  privacyguard history compare

  # Label a run
  privacyguard history label 3f2a9c1e "home wifi, vpn on"`,
	}

	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .privacyguard in current or home directory)")

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryLabelCmd())
	cmd.AddCommand(newHistoryDeleteCmd())
	cmd.AddCommand(newHistoryClearCmd())
	cmd.AddCommand(NewCompareCmd())

	return cmd
}

// openHistory opens the history database named by the configuration.
func openHistory(cmd *cobra.Command) (*database.HistoryDB, *config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, err
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	db, err := database.Open(cfg.DBDir, database.Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		Limit:             cfg.HistoryLimit,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return db, cfg, nil
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}

			db, _, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			return listHistory(cmd.Context(), db, cmd.OutOrStdout(), asJSON)
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output the list in JSON format")
	return cmd
}

// listHistory prints every stored run.
func listHistory(ctx context.Context, db *database.HistoryDB, out io.Writer, asJSON bool) error {
	entries, err := db.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	if asJSON {
		if entries == nil {
			entries = []database.Entry{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No detection runs stored.")
		fmt.Fprintln(out, "\nUse 'privacyguard detect' to run the privacy checks.")
		return nil
	}

	fmt.Fprintf(out, "Detection history (%d runs):\n\n", len(entries))
	fmt.Fprintf(out, "  %-8s  %-19s  %-5s  %-6s  %-7s  %s\n", "ID", "Date", "Score", "Level", "Partial", "Label")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 66))

	for _, e := range entries {
		partial := "-"
		if e.Failed > 0 {
			partial = fmt.Sprintf("%d/%d", e.Failed, len(model.AllCategories))
		}
		fmt.Fprintf(out, "  %-8s  %-19s  %5d  %-6s  %-7s  %s\n",
			shortID(e.ID),
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Total,
			e.Level,
			partial,
			e.Label,
		)
	}

	fmt.Fprintln(out, "\nUse 'privacyguard history show <id>' to see a full report.")
	fmt.Fprintln(out, "Use 'privacyguard history compare' to compare the latest two runs.")
	return nil
}

// shortID returns the displayed prefix of an entry ID.
func shortID(id string) string {
	if len(id) > idPrefixLen {
		return id[:idPrefixLen]
	}
	return id
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the report of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOutput, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}
			markdownOutput, err := cmd.Flags().GetBool("markdown")
			if err != nil {
				return err
			}

			db, cfg, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			entry, err := db.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			cfg.JSONReport = jsonOutput
			cfg.MarkdownReport = markdownOutput
			cfg.ReportFile = ""
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			return outputReport(cfg, entry.Results, cmd.OutOrStdout(), false, false)
		},
	}
	cmd.Flags().BoolP("json", "j", false, "Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown report (mutually exclusive with --json)")
	return cmd
}

func newHistoryLabelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "label <id> <label>",
		Short: "Set or clear the label of a stored run",
		Long:  `Label attaches a name to a stored run. An empty label clears it.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.UpdateLabel(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated label of %s\n", args[0])
			return nil
		},
	}
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			if !force {
				return errors.New("refusing to delete all history without --force")
			}

			db, _, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d runs\n", n)
			return nil
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Confirm deleting all stored runs")
	return cmd
}
