package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stakeswap/internal/config"
	"stakeswap/internal/model"
	"stakeswap/internal/storage"
)

func runJournal(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	path := strings.TrimSpace(cfg.Journal)
	if path == "" || path == storage.JournalPostgres {
		return fmt.Errorf("journal %q is not a JSONL file", cfg.Journal)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	abortedOnly, _ := cmd.Flags().GetBool("aborted")

	entries, err := storage.ReadJournal(path)
	if err != nil {
		return err
	}
	out := make([]model.Invocation, 0, len(entries))
	for _, inv := range entries {
		if abortedOnly && inv.Status != model.InvocationAborted {
			continue
		}
		out = append(out, inv)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return printJSON(cmd.OutOrStdout(), out)
}
