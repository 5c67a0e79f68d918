package address

import "github.com/gagliardetto/solana-go"

// Authority authorizes a ledger operation: either a transaction signer or a
// derived-address capability.
type Authority struct {
	key        solana.PublicKey
	capability *Capability
}

// Signer builds the authority of a key that signed the invocation.
func Signer(key solana.PublicKey) Authority {
	return Authority{key: key}
}

// Key returns the authorizing address.
func (a Authority) Key() solana.PublicKey { return a.key }

// Capability returns the derivation proof when the authority is a derived address.
func (a Authority) Capability() (Capability, bool) {
	if a.capability == nil {
		return Capability{}, false
	}
	return *a.capability, true
}

// IsDerived reports whether the authority carries a derivation proof.
func (a Authority) IsDerived() bool { return a.capability != nil }
