package main

import (
	"github.com/spf13/cobra"
)

func runInitializeStaking(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	payer, err := keyFlag(cmd, "payer")
	if err != nil {
		return err
	}
	mint, err := keyFlag(cmd, "mint")
	if err != nil {
		return err
	}
	vault, err := s.prog.InitializeStaking(cmd.Context(), payer, mint)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]interface{}{
		"vault": vault.String(),
		"mint":  mint.String(),
	})
}

func runFundVault(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	admin, err := keyFlag(cmd, "admin")
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetUint64("amount")
	if err := s.prog.FundRewardVault(cmd.Context(), admin, amount); err != nil {
		return err
	}
	balance, err := s.prog.VaultBalance()
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]interface{}{
		"vault_balance": balance,
	})
}

func runStake(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	user, err := keyFlag(cmd, "user")
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetUint64("amount")
	taskID, _ := cmd.Flags().GetString("task-id")

	task, err := s.prog.Stake(cmd.Context(), user, amount, taskID)
	if err != nil {
		return err
	}
	staked, err := s.prog.StakeBalance(user)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]interface{}{
		"staked": staked,
		"task":   task,
	})
}

func runUnstake(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	user, err := keyFlag(cmd, "user")
	if err != nil {
		return err
	}
	payout, err := s.prog.Unstake(cmd.Context(), user)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), payout)
}
