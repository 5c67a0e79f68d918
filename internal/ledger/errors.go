package ledger

import "errors"

var (
	ErrUnauthorized      = errors.New("ledger: authority cannot authorize record")
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
	ErrInsufficientRent  = errors.New("ledger: insufficient lamports for rent")
	ErrRecordNotFound    = errors.New("ledger: balance record not found")
	ErrRecordMismatch    = errors.New("ledger: balance record owner or mint mismatch")
	ErrMintNotFound      = errors.New("ledger: mint not found")
	ErrMintExists        = errors.New("ledger: mint already exists")
	ErrMintMismatch      = errors.New("ledger: records hold different mints")
	ErrAccountExists     = errors.New("ledger: account already allocated")
	ErrAccountNotFound   = errors.New("ledger: account not allocated")
	ErrOverflow          = errors.New("ledger: balance overflow")
	ErrInvalidSpace      = errors.New("ledger: account space cannot shrink")
)
