package address

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ParseKey converts a base58 string into a public key.
func ParseKey(input string) (solana.PublicKey, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return solana.PublicKey{}, fmt.Errorf("empty key")
	}
	key, err := solana.PublicKeyFromBase58(input)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid key: %s", input)
	}
	return key, nil
}

// ParseKeys converts base58 strings into public keys, skipping blanks.
func ParseKeys(inputs []string) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, 0, len(inputs))
	for _, input := range inputs {
		if strings.TrimSpace(input) == "" {
			continue
		}
		key, err := ParseKey(input)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
