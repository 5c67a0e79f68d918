package main

import (
	"github.com/spf13/cobra"
)

func runCreatePool(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	payer, err := keyFlag(cmd, "payer")
	if err != nil {
		return err
	}
	rec, err := s.prog.CreatePool(cmd.Context(), payer)
	if err != nil {
		return err
	}
	poolCap, err := s.prog.Deriver().Pool()
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]interface{}{
		"pool": poolCap.Address().String(),
		"bump": rec.Bump,
	})
}

func runFundPool(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	user, err := keyFlag(cmd, "user")
	if err != nil {
		return err
	}
	mint, err := keyFlag(cmd, "mint")
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetUint64("amount")
	if err := s.prog.FundPool(cmd.Context(), user, mint, amount); err != nil {
		return err
	}
	balances, err := s.prog.PoolBalances()
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), balances)
}

func runSwap(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	payer, err := keyFlag(cmd, "payer")
	if err != nil {
		return err
	}
	receive, err := keyFlag(cmd, "receive")
	if err != nil {
		return err
	}
	pay, err := keyFlag(cmd, "pay")
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetUint64("amount")

	res, err := s.prog.Swap(cmd.Context(), payer, receive, pay, amount)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), res)
}
