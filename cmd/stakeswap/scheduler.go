package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stakeswap/internal/scheduler"
)

func runAdvance(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ticks, _ := cmd.Flags().GetUint64("ticks")
	fire, _ := cmd.Flags().GetBool("fire")

	tick, err := s.prog.Advance(cmd.Context(), ticks)
	if err != nil {
		return err
	}
	fired := 0
	if fire {
		fired, err = s.prog.FireDue(cmd.Context(), tick)
		if err != nil {
			return err
		}
	}
	return printJSON(cmd.OutOrStdout(), map[string]interface{}{
		"tick":  tick,
		"fired": fired,
	})
}

func runScheduler(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if s.cfg.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	maxPolls, _ := cmd.Flags().GetInt("max-polls")
	due, err := s.prog.Due(cmd.Context())
	if err != nil {
		return err
	}

	s.logger.Info("scheduler start",
		zap.String("clock", s.cfg.Clock),
		zap.Duration("poll_interval", s.cfg.PollInterval),
		zap.Int("tasks", len(s.prog.Tasks())),
		zap.Int("due", len(due)),
		zap.Int("max_polls", maxPolls),
	)

	return s.prog.RunScheduler(cmd.Context(), scheduler.RunConfig{
		PollInterval: s.cfg.PollInterval,
		MaxRetries:   s.cfg.MaxRetries,
		RetryBackoff: s.cfg.RetryBackoff,
		MaxPolls:     maxPolls,
	})
}
