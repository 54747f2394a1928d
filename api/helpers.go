package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/voteguard/voteguard-node/log"
	"github.com/voteguard/voteguard-node/types"
)

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	n, err := w.Write(jdata)
	if err != nil {
		log.Warnw("failed to write http response", "error", err)
		return
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
		return
	}
	if !DisabledLogging && log.Level() == log.LogLevelDebug {
		log.Debugw("api response", "bytes", n, "data", strings.ReplaceAll(string(jdata), "\"", ""))
	}
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// urlElectionID extracts and decodes the election ID URL parameter. Writes
// the API error itself and returns false when the parameter is missing or
// not valid hex.
func urlElectionID(w http.ResponseWriter, r *http.Request) (types.HexBytes, bool) {
	raw := chi.URLParam(r, ElectionURLParam)
	if raw == "" {
		ErrMalformedElectionID.Withf("missing election ID").Write(w)
		return nil, false
	}
	id, err := types.HexStringToHexBytes(raw)
	if err != nil {
		ErrMalformedElectionID.Withf("could not decode election ID: %v", err).Write(w)
		return nil, false
	}
	return id, true
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent. A present but unparseable value returns an error.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return v, nil
}
