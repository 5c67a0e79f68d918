package scheduler

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const fundMethod = "fund"

const instructionABIJSON = `[
  {
    "inputs": [
      {"internalType": "bytes32", "name": "pool", "type": "bytes32"},
      {"internalType": "bytes32", "name": "mint", "type": "bytes32"},
      {"internalType": "bytes32", "name": "source", "type": "bytes32"},
      {"internalType": "bytes32", "name": "payer", "type": "bytes32"},
      {"internalType": "uint64", "name": "amount", "type": "uint64"}
    ],
    "name": "fund",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

var (
	instructionABI     abi.ABI
	instructionABIOnce sync.Once
	instructionABIErr  error
)

// InstructionABI returns the parsed ABI of deferred instructions.
func InstructionABI() (abi.ABI, error) {
	instructionABIOnce.Do(func() {
		instructionABI, instructionABIErr = abi.JSON(strings.NewReader(instructionABIJSON))
	})
	return instructionABI, instructionABIErr
}
