//nolint:lll
package api

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400, 404 or 409, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after the current last 4XXX or 5XXX.
// If you notice there's a gap, DON'T fill it in, that code was used in the past and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
var (
	ErrResourceNotFound     = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody        = Error{Code: 40002, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrMalformedElectionID  = Error{Code: 40003, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed election ID")}
	ErrElectionNotFound     = Error{Code: 40004, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("election not found")}
	ErrVoterNotFound        = Error{Code: 40005, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("voter not found")}
	ErrBallotNotFound       = Error{Code: 40006, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("ballot not found")}
	ErrAlreadyExists        = Error{Code: 40007, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("already exists")}
	ErrAlreadyVoted         = Error{Code: 40008, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("voter has already cast a ballot")}
	ErrInvalidSelection     = Error{Code: 40009, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid candidate selection")}
	ErrInvalidElectionState = Error{Code: 40010, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("invalid election state")}
	ErrMalformedParam       = Error{Code: 40011, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed parameter")}
	ErrInvalidParams        = Error{Code: 40012, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid parameters")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
	ErrCeremonyFailed             = Error{Code: 50003, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("key ceremony failed")}
	ErrEncryptionFailed           = Error{Code: 50004, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("ballot encryption failed")}
	ErrTallyFailed                = Error{Code: 50005, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("tally failed")}
)
