package ledger

const (
	accountStorageOverhead = 128
	lamportsPerByteYear    = 3480
	exemptionYears         = 2

	// RecordSpace is the data size of a balance record account.
	RecordSpace = 165
	// MetadataSpace is the data size of a token metadata account.
	MetadataSpace = 679
	// MintSpace is the data size of a mint account.
	MintSpace = 82
)

// MinimumBalance returns the lamports an account of space bytes must hold to be rent exempt.
func MinimumBalance(space int) uint64 {
	return uint64(accountStorageOverhead+space) * lamportsPerByteYear * exemptionYears
}
