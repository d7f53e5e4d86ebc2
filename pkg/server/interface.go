/*
Package server implements msgpack IPC for nearest word lookups.

The server reads a stream of msgpack maps from stdin and writes one msgpack map per request to stdout.
Requests are handled one at a time, in order, and every response echoes the request ID.

# IPC

As soon as the loop starts the server announces itself:

	{"status": "ready"}

Lookups are the default action:

	{"id": "req_001", "q": "kiten", "l": 3}

The server responds with the closest keys first, with their distance and rank:

	{"id": "req_001", "m": [{"k": "kitten", "d": 1, "r": 1}, {"k": "mitten", "d": 2, "r": 2}], "c": 2, "t": 41}

Keys can be added while the server runs; cached lookups are dropped when one is:

	{"id": "add_001", "action": "add", "k": "bolt", "p": {"sku": 7}}

Tree statistics and a liveness check:

	{"id": "s_001", "action": "stats"}
	{"id": "h_001", "action": "health"}

Failures are reported with a code, 400 for bad requests and 500 for internal errors:

	{"id": "req_002", "e": "missing 'q' parameter", "c": 400}

# Message Types

Request carries the fields of every action; unused fields are omitted by clients.
LookupResponse holds the ranked matches and the search time in microseconds.
AddResponse, StatsResponse and StatusResponse answer the other actions.
*/
package server

// Actions understood by the server.
const (
	ActionLookup = "lookup"
	ActionAdd    = "add"
	ActionStats  = "stats"
	ActionHealth = "health"
)

// Request - any client request
type Request struct {
	ID      string `msgpack:"id"`
	Action  string `msgpack:"action,omitempty"` // defaults to "lookup"
	Query   string `msgpack:"q,omitempty"`      // for "lookup"
	Limit   int    `msgpack:"l,omitempty"`      // for "lookup"
	Key     string `msgpack:"k,omitempty"`      // for "add"
	Payload any    `msgpack:"p,omitempty"`      // for "add"
}

// LookupMatch - one ranked match
type LookupMatch struct {
	Key     string  `msgpack:"k"`
	Payload any     `msgpack:"p,omitempty"`
	Cost    float64 `msgpack:"d"`
	Rank    uint16  `msgpack:"r"`
}

// LookupResponse - lookup response
type LookupResponse struct {
	ID        string        `msgpack:"id"`
	Matches   []LookupMatch `msgpack:"m"`
	Count     int           `msgpack:"c"`
	TimeTaken int64         `msgpack:"t"`
	Cached    bool          `msgpack:"cached,omitempty"`
}

// AddResponse - add response
type AddResponse struct {
	ID      string `msgpack:"id"`
	Status  string `msgpack:"status"`
	Added   bool   `msgpack:"added"`
	Entries int    `msgpack:"entries"`
}

// StatsResponse - index statistics
type StatsResponse struct {
	ID       string `msgpack:"id"`
	Status   string `msgpack:"status"`
	Entries  int    `msgpack:"entries"`
	Lengths  int    `msgpack:"lengths"`
	Clusters int    `msgpack:"clusters"`
	Leaves   int    `msgpack:"leaves"`
	MaxDepth int    `msgpack:"max_depth"`
}

// StatusResponse - ready and health replies
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
