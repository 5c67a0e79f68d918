package main

import (
	"github.com/spf13/cobra"

	"stakeswap/internal/token"
)

func runAirdrop(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	to, err := keyFlag(cmd, "to")
	if err != nil {
		return err
	}
	lamports, _ := cmd.Flags().GetUint64("lamports")
	if err := s.prog.Airdrop(cmd.Context(), to, lamports); err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]interface{}{
		"key":      to.String(),
		"lamports": s.prog.Lamports(to),
	})
}

func runInitToken(cmd *cobra.Command, _ []string) error {
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
	name, _ := cmd.Flags().GetString("name")
	symbol, _ := cmd.Flags().GetString("symbol")
	uri, _ := cmd.Flags().GetString("uri")
	decimals, _ := cmd.Flags().GetUint8("decimals")

	metaAddr, err := s.prog.InitToken(cmd.Context(), payer, mint, token.Metadata{
		Name:     name,
		Symbol:   symbol,
		URI:      uri,
		Decimals: decimals,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]interface{}{
		"mint":     mint.String(),
		"metadata": metaAddr.String(),
		"decimals": decimals,
	})
}

func runMintTokens(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	authority, err := keyFlag(cmd, "authority")
	if err != nil {
		return err
	}
	to, err := keyFlag(cmd, "to")
	if err != nil {
		return err
	}
	mint, err := keyFlag(cmd, "mint")
	if err != nil {
		return err
	}
	quantity, _ := cmd.Flags().GetUint64("quantity")

	minted, err := s.prog.MintTokens(cmd.Context(), authority, to, mint, quantity)
	if err != nil {
		return err
	}
	balance, err := s.prog.Balance(to, mint)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), map[string]interface{}{
		"minted":  minted,
		"balance": balance,
	})
}
