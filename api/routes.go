package api

import (
	"fmt"
	"net/url"
	"strings"
)

// Route constants for the API endpoints

const (
	// Health endpoint
	PingEndpoint = "/ping" // GET: Health check

	// Election endpoints
	ElectionURLParam              = "electionId"                                                // URL parameter for election ID
	ElectionsEndpoint             = "/elections"                                                // GET: List elections, POST: Create election
	ElectionEndpoint              = ElectionsEndpoint + "/{" + ElectionURLParam + "}"           // GET: Get election detail
	ElectionCloseEndpoint         = ElectionEndpoint + "/close"                                 // POST: End voting
	ElectionTallyEndpoint         = ElectionEndpoint + "/tally"                                 // POST: Run the homomorphic tally
	ElectionRegistrationsEndpoint = ElectionEndpoint + "/registrations"                         // GET: List registrants, POST: Register voter
	ElectionBallotsEndpoint       = ElectionEndpoint + "/ballots"                               // GET: List cast ballots (admin view)

	// Voter endpoints
	VotersEndpoint = "/voters" // POST: Create a voter, returns the voter secret

	// Vote endpoints
	VotesEndpoint      = "/votes"             // POST: Cast a vote
	VoteVerifyEndpoint = "/votes/verify"      // POST: Verify a ballot by its ballot secret
	VoteDecodeEndpoint = "/votes/decode"      // POST: Decode a ballot by verification code, optionally with secret

	// Log viewer endpoint
	LogsEndpoint = "/logs" // GET: Recent in-memory log entries

	// Pagination query params
	PageQueryParam  = "page"
	LimitQueryParam = "limit"
	LevelQueryParam = "level"
)

// EndpointWithParam creates an endpoint URL by replacing the parameter
// placeholder with the actual value. Used to build fully qualified
// endpoint URLs.
func EndpointWithParam(path, key, param string) string {
	rawKey := fmt.Sprintf("{%s}", key)
	if strings.Contains(path, rawKey) {
		return strings.Replace(path, rawKey, url.PathEscape(param), 1)
	}

	// Fallback: add as query param
	escapedKey := url.QueryEscape(key)
	escapedVal := url.QueryEscape(param)

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s=%s", path, sep, escapedKey, escapedVal)
}

// LogExcludedPrefixes defines URL prefixes to exclude from request logging
var LogExcludedPrefixes = []string{
	PingEndpoint,
	LogsEndpoint,
}
