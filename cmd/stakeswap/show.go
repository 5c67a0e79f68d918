package main

import (
	"github.com/spf13/cobra"

	"stakeswap/internal/address"
	"stakeswap/internal/model"
)

type ownerView struct {
	Lamports uint64             `json:"lamports"`
	Balances map[string]string  `json:"balances"`
	Stake    *model.StakeRecord `json:"stake,omitempty"`
	Staked   uint64             `json:"staked"`
}

type stateView struct {
	Tick         uint64                       `json:"tick"`
	Seq          uint64                       `json:"seq"`
	Pool         *model.PoolRecord            `json:"pool,omitempty"`
	PoolBalances map[string]uint64            `json:"pool_balances"`
	VaultBalance uint64                       `json:"vault_balance"`
	Stakes       map[string]model.StakeRecord `json:"stakes"`
	Tasks        []model.Task                 `json:"tasks"`
	Owners       map[string]ownerView         `json:"owners,omitempty"`
}

func runShow(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	rawOwners, _ := cmd.Flags().GetStringSlice("owner")
	owners, err := address.ParseKeys(rawOwners)
	if err != nil {
		return err
	}

	snap := s.prog.Snapshot()
	balances, err := s.prog.PoolBalances()
	if err != nil {
		return err
	}
	vault, err := s.prog.VaultBalance()
	if err != nil {
		return err
	}
	view := stateView{
		Tick:         snap.Tick,
		Seq:          snap.Seq,
		Pool:         snap.Pool,
		PoolBalances: balances,
		VaultBalance: vault,
		Stakes:       snap.Stakes,
		Tasks:        snap.Tasks,
	}

	if len(owners) > 0 {
		view.Owners = make(map[string]ownerView, len(owners))
	}
	for _, owner := range owners {
		ov := ownerView{
			Lamports: s.prog.Lamports(owner),
			Balances: make(map[string]string),
		}
		for _, mint := range snap.Ledger.Mints {
			bal, err := s.prog.Balance(owner, mint.Address)
			if err != nil {
				return err
			}
			if bal > 0 {
				ov.Balances[mint.Address.String()] = model.FormatAmount(bal, mint.Decimals)
			}
		}
		if rec, ok := s.prog.StakeRecord(owner); ok {
			ov.Stake = &rec
			if ov.Staked, err = s.prog.StakeBalance(owner); err != nil {
				return err
			}
		}
		view.Owners[owner.String()] = ov
	}
	return printJSON(cmd.OutOrStdout(), view)
}
