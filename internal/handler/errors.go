package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/iqbalbaharum/betting-market-client/internal/types"
)

const ErrTimeout = "request timed out"

func statusOf(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, types.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrMalformedAccount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, types.ErrAccountNotFound), errors.Is(err, types.ErrNoSnapshot) && !errors.Is(err, types.ErrConnectionFailure):
		return http.StatusNotFound
	case errors.Is(err, types.ErrConnectionFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)

	select {
	case <-r.Context().Done():
		status = http.StatusGatewayTimeout
	default:
	}

	if status == http.StatusGatewayTimeout {
		http.Error(w, ErrTimeout, status)
		return
	}
	http.Error(w, err.Error(), status)
}
