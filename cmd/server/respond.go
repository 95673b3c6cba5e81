package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/Simplici0/cotiza3d/internal/store"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields validation.Errors `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeFailure maps an error to its HTTP status: validation errors are 400,
// missing entities 404 and everything else 500.
func writeFailure(w http.ResponseWriter, what string, err error) {
	var fields validation.Errors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid " + what, Fields: fields})
		return
	}
	var single validation.Error
	if errors.As(err, &single) {
		writeError(w, http.StatusBadRequest, "invalid "+what+": "+single.Error())
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, what+" not found")
		return
	}
	if errors.Is(err, errBadRequest) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if errors.Is(err, errRateUnavailable) {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	log.Printf("%s: %v", what, err)
	writeError(w, http.StatusInternalServerError, "failed to process "+what)
}

var (
	errBadRequest      = errors.New("bad request")
	errRateUnavailable = errors.New("exchange rate unavailable")
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
