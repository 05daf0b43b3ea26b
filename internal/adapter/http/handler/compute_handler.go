package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iho/computeledger/internal/adapter/http/dto"
	"github.com/iho/computeledger/internal/domain"
	"github.com/iho/computeledger/internal/usecase"
)

// ComputeService defines the behavior needed by ComputeHandler.
type ComputeService interface {
	AuthorizeDebit(ctx context.Context, input usecase.AuthorizeDebitInput) (*domain.AuthorizationResult, error)
}

// ComputeHandler handles compute authorization requests.
type ComputeHandler struct {
	computeUC ComputeService
}

// NewComputeHandler creates a new ComputeHandler.
func NewComputeHandler(computeUC ComputeService) *ComputeHandler {
	return &ComputeHandler{computeUC: computeUC}
}

// Request authorizes a rays debit for a compute task.
// Accepted debits return 200, insufficient rays 400 with the recorded entry.
func (h *ComputeHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req dto.ComputeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.computeUC.AuthorizeDebit(r.Context(), input)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			writeError(w, http.StatusBadRequest, "wallet not found", err.Error())
			return
		}
		writeDomainError(w, err, "failed to authorize compute")
		return
	}

	status := http.StatusOK
	if !result.Accepted {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, dto.ComputeFromDomain(result))
}
