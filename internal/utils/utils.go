package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/iqbalbaharum/betting-market-client/internal/types"
)

type ArrayFlags []string

func (i *ArrayFlags) String() string {
	return strings.Join(*i, ",")
}

func (i *ArrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func (i *ArrayFlags) Type() string {
	return "stringArray"
}

func BoolPointer(b bool) *bool {
	return &b
}

func Uint64Pointer(v uint64) *uint64 {
	return &v
}

// Decode reads a JSON request body. Malformed bodies are ErrInvalidArgument.
func Decode[T any](r *http.Request) (T, error) {
	var v T
	if r.Body == nil {
		return v, fmt.Errorf("empty body: %w", types.ErrInvalidArgument)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return v, fmt.Errorf("empty body: %w", types.ErrInvalidArgument)
		}
		return v, fmt.Errorf("decode json: %w: %w", types.ErrInvalidArgument, err)
	}
	return v, nil
}

func Encode[T any](w http.ResponseWriter, r *http.Request, status int, v T) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
