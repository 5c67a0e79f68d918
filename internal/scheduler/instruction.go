package scheduler

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gagliardetto/solana-go"
)

var ErrInvalidInstruction = errors.New("scheduler: invalid instruction")

// FundInstruction is the deferred pool deposit carried by an auto-fund task.
type FundInstruction struct {
	Pool   solana.PublicKey
	Mint   solana.PublicKey
	Source solana.PublicKey
	Payer  solana.PublicKey
	Amount uint64
}

// EncodeFund packs the instruction as ABI call data, hex encoded.
func EncodeFund(ix FundInstruction) (string, error) {
	parsed, err := InstructionABI()
	if err != nil {
		return "", fmt.Errorf("parse instruction abi: %w", err)
	}
	data, err := parsed.Pack(fundMethod,
		[32]byte(ix.Pool),
		[32]byte(ix.Mint),
		[32]byte(ix.Source),
		[32]byte(ix.Payer),
		ix.Amount,
	)
	if err != nil {
		return "", fmt.Errorf("pack fund: %w", err)
	}
	return hexutil.Encode(data), nil
}

// DecodeFund parses hex call data produced by EncodeFund.
func DecodeFund(encoded string) (FundInstruction, error) {
	data, err := hexutil.Decode(encoded)
	if err != nil {
		return FundInstruction{}, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
	}
	parsed, err := InstructionABI()
	if err != nil {
		return FundInstruction{}, fmt.Errorf("parse instruction abi: %w", err)
	}
	method, ok := parsed.Methods[fundMethod]
	if !ok {
		return FundInstruction{}, fmt.Errorf("abi method %s not found", fundMethod)
	}
	if len(data) < 4 || !bytes.Equal(data[:4], method.ID) {
		return FundInstruction{}, fmt.Errorf("%w: unknown selector", ErrInvalidInstruction)
	}

	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return FundInstruction{}, fmt.Errorf("%w: %v", ErrInvalidInstruction, err)
	}
	if len(values) != 5 {
		return FundInstruction{}, fmt.Errorf("%w: unexpected arguments", ErrInvalidInstruction)
	}

	var ix FundInstruction
	keys := []*solana.PublicKey{&ix.Pool, &ix.Mint, &ix.Source, &ix.Payer}
	for i, dst := range keys {
		raw, ok := values[i].([32]byte)
		if !ok {
			return FundInstruction{}, fmt.Errorf("%w: argument %d is %T", ErrInvalidInstruction, i, values[i])
		}
		*dst = solana.PublicKey(raw)
	}
	amount, ok := values[4].(uint64)
	if !ok {
		return FundInstruction{}, fmt.Errorf("%w: amount is %T", ErrInvalidInstruction, values[4])
	}
	ix.Amount = amount
	return ix, nil
}
