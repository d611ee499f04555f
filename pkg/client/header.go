package client

import "net/http"

// RequestIDHeader carries the per-request id. The same id is sent as
// metadata.client_request_id so a response can be matched to its request on
// both ends.
const RequestIDHeader = "X-Request-ID"

// skipExtra is the set of caller supplied headers that are never sent. The
// client owns these, or the transport manages them per connection.
var skipExtra = map[string]struct{}{
	// Hop-by-hop headers: only meaningful for a single transport-level connection.
	"Connection":        {},
	"Transfer-Encoding": {},

	// Rewritten by Go's http.Transport to match the endpoint URL.
	"Host": {},

	// Computed from the request body.
	"Content-Length": {},

	// Left to http.Transport so it adds "Accept-Encoding: gzip" and
	// transparently decompresses the response.
	"Accept-Encoding": {},

	// Set by the client for every request.
	"Authorization": {},
	"Content-Type":  {},
	"Accept":        {},
	RequestIDHeader: {},
}

// setExtraHeaders copies extra onto req, dropping the headers in skipExtra.
func setExtraHeaders(req *http.Request, extra http.Header) {
	for k, v := range extra {
		if _, skip := skipExtra[http.CanonicalHeaderKey(k)]; skip {
			continue
		}
		for _, value := range v {
			req.Header.Add(k, value)
		}
	}
}
