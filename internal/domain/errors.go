package domain

import "errors"

var (
	// Request errors
	ErrInvalidRequest = errors.New("invalid request")

	// Wallet errors
	ErrWalletNotFound   = errors.New("wallet not found")
	ErrInsufficientRays = errors.New("insufficient rays")

	// Ledger errors
	ErrNonTerminalEntry = errors.New("ledger entry must have a terminal status")

	// Infrastructure errors
	ErrStorageUnavailable = errors.New("storage unavailable")
)
