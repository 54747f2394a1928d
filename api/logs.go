package api

import (
	"net/http"

	"github.com/voteguard/voteguard-node/log"
)

const defaultLogLimit = 100

// recentLogs returns the most recent in-memory log entries, oldest first
// GET /logs?limit=&level=
func (a *API) recentLogs(w http.ResponseWriter, r *http.Request) {
	buf := log.CapturedLogs()
	if buf == nil {
		httpWriteJSON(w, &LogList{Entries: []log.Entry{}})
		return
	}
	limit, err := queryInt(r, LimitQueryParam, defaultLogLimit)
	if err != nil || limit < 1 {
		ErrMalformedParam.Withf("invalid limit").Write(w)
		return
	}
	entries := buf.Entries(limit, r.URL.Query().Get(LevelQueryParam))
	httpWriteJSON(w, &LogList{Entries: entries, Total: buf.Len()})
}
