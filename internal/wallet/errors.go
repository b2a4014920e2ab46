package wallet

import "errors"

var (
	ErrInvalidKeyFormat = errors.New("invalid private key format")
	ErrIndexOutOfRange  = errors.New("wallet index out of range")
	ErrWalletNotFound   = errors.New("wallet not found")
	ErrDuplicateWallet  = errors.New("wallet already imported")
	ErrNoActiveWallet   = errors.New("no active wallet")
	ErrWalletWiped      = errors.New("wallet key has been wiped")
)
