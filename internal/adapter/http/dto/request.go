package dto

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/computeledger/internal/domain"
	"github.com/iho/computeledger/internal/usecase"
)

// ComputeRequest is the body of POST /api/v1/compute/request.
// EstimatedRays accepts a JSON number or a numeric string.
type ComputeRequest struct {
	WalletID      string      `json:"walletId"`
	TaskType      string      `json:"taskType"`
	EstimatedRays json.Number `json:"estimatedRays"`
}

// ToUseCaseInput converts the request to use case input.
// A missing or null estimatedRays yields an invalid NullDecimal, which the use case rejects.
func (r *ComputeRequest) ToUseCaseInput() (usecase.AuthorizeDebitInput, error) {
	input := usecase.AuthorizeDebitInput{
		WalletID: r.WalletID,
		TaskType: r.TaskType,
	}

	if r.EstimatedRays == "" {
		return input, nil
	}

	amount, err := decimal.NewFromString(r.EstimatedRays.String())
	if err != nil {
		return input, fmt.Errorf("%w: estimatedRays must be a number", domain.ErrInvalidRequest)
	}
	input.EstimatedRays = decimal.NewNullDecimal(amount)

	return input, nil
}
