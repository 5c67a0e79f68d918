package address

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// DefaultProgramID is the program id the derived addresses are computed under.
const DefaultProgramID = "iYKtp9m8Kf922xuDmNjLmJ1AQQYRCNJE99AHfY4NYRJ"

// MetadataProgramID owns token metadata accounts.
var MetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// Seed prefixes for every derived account the program owns.
var (
	PoolSeed      = []byte("liquidity_pool")
	VaultSeed     = []byte("vault")
	TokenSeed     = []byte("token")
	StakeInfoSeed = []byte("stake_info")
	ThreadSeed    = []byte("thread")
	MetadataSeed  = []byte("metadata")
)

var ErrInvalidCapability = errors.New("address: capability does not verify")

// Capability is proof that an address was derived from seeds under a program.
// It is the only way to authorize transfers out of derived-owned records.
type Capability struct {
	address solana.PublicKey
	program solana.PublicKey
	seeds   [][]byte
	bump    uint8
}

// Address returns the derived address.
func (c Capability) Address() solana.PublicKey { return c.address }

// Bump returns the derivation nonce.
func (c Capability) Bump() uint8 { return c.bump }

// Authority presents the capability as a transfer authority.
func (c Capability) Authority() Authority {
	cp := c
	return Authority{key: c.address, capability: &cp}
}

// Deriver computes program-derived addresses.
type Deriver struct {
	programID solana.PublicKey
}

func NewDeriver(programID solana.PublicKey) *Deriver {
	return &Deriver{programID: programID}
}

// NewDeriverFromBase58 parses the program id and builds a Deriver.
func NewDeriverFromBase58(programID string) (*Deriver, error) {
	key, err := ParseKey(programID)
	if err != nil {
		return nil, fmt.Errorf("program id: %w", err)
	}
	return NewDeriver(key), nil
}

// ProgramID returns the program the deriver computes addresses under.
func (d *Deriver) ProgramID() solana.PublicKey { return d.programID }

// Derive finds the canonical address and bump for the seeds.
func (d *Deriver) Derive(seeds ...[]byte) (Capability, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, d.programID)
	if err != nil {
		return Capability{}, fmt.Errorf("derive address: %w", err)
	}
	return Capability{
		address: addr,
		program: d.programID,
		seeds:   cloneSeeds(seeds),
		bump:    bump,
	}, nil
}

// Verify recomputes the capability's address from its seeds and bump.
func (d *Deriver) Verify(c Capability) error {
	if !c.program.Equals(d.programID) {
		return ErrInvalidCapability
	}
	seeds := append(cloneSeeds(c.seeds), []byte{c.bump})
	addr, err := solana.CreateProgramAddress(seeds, d.programID)
	if err != nil {
		return ErrInvalidCapability
	}
	if !addr.Equals(c.address) {
		return ErrInvalidCapability
	}
	return nil
}

// Pool derives the liquidity pool account.
func (d *Deriver) Pool() (Capability, error) {
	return d.Derive(PoolSeed)
}

// Vault derives the reward vault record.
func (d *Deriver) Vault() (Capability, error) {
	return d.Derive(VaultSeed)
}

// StakeBalance derives the record holding a user's locked principal.
func (d *Deriver) StakeBalance(user solana.PublicKey) (Capability, error) {
	return d.Derive(TokenSeed, user.Bytes())
}

// StakeInfo derives the account holding a user's stake record.
func (d *Deriver) StakeInfo(user solana.PublicKey) (Capability, error) {
	return d.Derive(StakeInfoSeed, user.Bytes())
}

// Thread derives the identity of a user's maintenance task.
func (d *Deriver) Thread(user solana.PublicKey) (Capability, error) {
	return d.Derive(ThreadSeed, user.Bytes())
}

// AssociatedRecord returns the canonical balance record of owner for mint.
func AssociatedRecord(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("associated record: %w", err)
	}
	return addr, nil
}

// MetadataAddress returns the metadata account of a mint.
func MetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{MetadataSeed, MetadataProgramID.Bytes(), mint.Bytes()},
		MetadataProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("metadata address: %w", err)
	}
	return addr, nil
}

// ThreadID is the default task label for a user.
func ThreadID(user solana.PublicKey) []byte {
	b := user.Bytes()
	return bytes.Clone(b[:16])
}

func cloneSeeds(seeds [][]byte) [][]byte {
	out := make([][]byte, 0, len(seeds)+1)
	for _, s := range seeds {
		out = append(out, bytes.Clone(s))
	}
	return out
}
