package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/voteguard/voteguard-node/log"
	"github.com/voteguard/voteguard-node/types"
)

// Error is used by API handlers to wrap a message, error code and HTTP
// status code. Satisfies the error interface; the JSON form is what the
// client receives in the response body.
type Error struct {
	Err        error
	Code       int
	HTTPstatus int
}

func (e Error) Error() string {
	return e.Err.Error()
}

// MarshalJSON returns a JSON containing Err.Error() and Code. Satisfies the
// json.Marshaler interface.
func (e Error) MarshalJSON() ([]byte, error) {
	// This anon struct is needed to actually serialize the error as a JSON
	return json.Marshal(struct {
		Err  string `json:"error"`
		Code int    `json:"code"`
	}{
		Err:  e.Err.Error(),
		Code: e.Code,
	})
}

// Write serializes a JSON msg using Err.Error() and Code and passes that to
// the response writer, with the error's HTTP status code.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warnw("marshal failed", "error", err)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.HTTPstatus)
	if _, err := w.Write(msg); err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
}

// Withf returns a copy of Error with the Sprintf formatted string appended
// at the end of the Err message.
func (e Error) Withf(format string, args ...any) Error {
	return Error{
		Err:        fmt.Errorf("%w: %v", e.Err, fmt.Sprintf(format, args...)),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
	}
}

// WithErr returns a copy of Error with err appended at the end of the Err
// message.
func (e Error) WithErr(err error) Error {
	return Error{
		Err:        fmt.Errorf("%w: %v", e.Err, err.Error()),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
	}
}

// errorFor maps a domain error to its API error, preserving the domain
// error's message as the detail. Unrecognized errors become the generic
// internal server error.
func errorFor(err error) Error {
	switch {
	case errors.Is(err, types.ErrElectionNotFound):
		return ErrElectionNotFound.WithErr(err)
	case errors.Is(err, types.ErrVoterNotFound):
		return ErrVoterNotFound.WithErr(err)
	case errors.Is(err, types.ErrBallotNotFound):
		return ErrBallotNotFound.WithErr(err)
	case errors.Is(err, types.ErrAlreadyExists):
		return ErrAlreadyExists.WithErr(err)
	case errors.Is(err, types.ErrAlreadyVoted):
		return ErrAlreadyVoted.WithErr(err)
	case errors.Is(err, types.ErrInvalidSelection):
		return ErrInvalidSelection.WithErr(err)
	case errors.Is(err, types.ErrInvalidParams):
		return ErrInvalidParams.WithErr(err)
	case errors.Is(err, types.ErrInvalidState):
		return ErrInvalidElectionState.WithErr(err)
	case errors.Is(err, types.ErrCeremonyFailure):
		return ErrCeremonyFailed.WithErr(err)
	case errors.Is(err, types.ErrEncryptionFailure):
		return ErrEncryptionFailed.WithErr(err)
	case errors.Is(err, types.ErrTallyFailure):
		return ErrTallyFailed.WithErr(err)
	default:
		return ErrGenericInternalServerError.WithErr(err)
	}
}
