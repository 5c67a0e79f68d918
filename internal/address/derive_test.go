package address

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
)

func testDeriver(t *testing.T) *Deriver {
	t.Helper()
	d, err := NewDeriverFromBase58(DefaultProgramID)
	require.NoError(t, err)
	return d
}

func TestDeriveIsDeterministic(t *testing.T) {
	d := testDeriver(t)
	user := solana.NewWallet().PublicKey()

	first, err := d.StakeBalance(user)
	require.NoError(t, err)
	second, err := d.StakeBalance(user)
	require.NoError(t, err)

	require.True(t, first.Address().Equals(second.Address()))
	require.Equal(t, first.Bump(), second.Bump())
	require.NoError(t, d.Verify(first))
}

func TestDeriveSeedsAreDistinct(t *testing.T) {
	d := testDeriver(t)
	user := solana.NewWallet().PublicKey()

	stake, err := d.StakeBalance(user)
	require.NoError(t, err)
	info, err := d.StakeInfo(user)
	require.NoError(t, err)
	thread, err := d.Thread(user)
	require.NoError(t, err)
	pool, err := d.Pool()
	require.NoError(t, err)

	seen := map[solana.PublicKey]struct{}{}
	for _, c := range []Capability{stake, info, thread, pool} {
		_, dup := seen[c.Address()]
		require.False(t, dup, "duplicate derived address %s", c.Address())
		seen[c.Address()] = struct{}{}
	}
}

func TestVerifyRejectsForeignProgram(t *testing.T) {
	d := testDeriver(t)
	other := NewDeriver(solana.NewWallet().PublicKey())

	vault, err := other.Vault()
	require.NoError(t, err)

	require.ErrorIs(t, d.Verify(vault), ErrInvalidCapability)
	require.NoError(t, other.Verify(vault))
}

func TestVerifyRejectsTamperedBump(t *testing.T) {
	d := testDeriver(t)
	vault, err := d.Vault()
	require.NoError(t, err)

	vault.bump++
	require.ErrorIs(t, d.Verify(vault), ErrInvalidCapability)
}

func TestAuthorityKinds(t *testing.T) {
	d := testDeriver(t)
	key := solana.NewWallet().PublicKey()

	signer := Signer(key)
	require.False(t, signer.IsDerived())
	require.True(t, signer.Key().Equals(key))

	pool, err := d.Pool()
	require.NoError(t, err)
	auth := pool.Authority()
	require.True(t, auth.IsDerived())
	c, ok := auth.Capability()
	require.True(t, ok)
	require.True(t, c.Address().Equals(pool.Address()))
}

func TestThreadIDIsUserPrefix(t *testing.T) {
	user := solana.NewWallet().PublicKey()
	id := ThreadID(user)
	require.Len(t, id, 16)
	require.Equal(t, user.Bytes()[:16], id)
}

func TestParseKeys(t *testing.T) {
	a := solana.NewWallet().PublicKey()
	b := solana.NewWallet().PublicKey()

	keys, err := ParseKeys([]string{a.String(), " ", b.String()})
	require.NoError(t, err)
	require.Equal(t, []solana.PublicKey{a, b}, keys)

	_, err = ParseKeys([]string{"not-a-key"})
	require.Error(t, err)
}
