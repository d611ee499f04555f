// Package sse provides a minimal, purpose-built SSE (Server-Sent Events)
// line decoder for consuming LLM streaming responses on the client side.
// It turns arbitrarily sized byte chunks from an HTTP response body into
// complete lines, and classifies each line as a data record, the terminal
// sentinel, or noise.
//
// Only the "data:" field is meaningful to wellchat. Other SSE fields
// ("event:", "id:", "retry:") and comments are ignored.
//
// This package intentionally does NOT provide SSE writer or server
// capabilities.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import "strings"

const (
	// DataPrefix is the marker a line must start with to carry a payload.
	DataPrefix = "data: "

	// DoneSentinel is the payload that terminates the stream.
	DoneSentinel = "[DONE]"
)

// RecordKind classifies a single SSE line.
type RecordKind int

const (
	// RecordIgnored is a blank keep-alive line, a comment, or any line
	// without the data prefix.
	RecordIgnored RecordKind = iota

	// RecordData carries a payload, typically a JSON object.
	RecordData

	// RecordDone is the terminal sentinel. No record after it is processed.
	RecordDone
)

func (k RecordKind) String() string {
	switch k {
	case RecordData:
		return "data"
	case RecordDone:
		return "done"
	default:
		return "ignored"
	}
}

// Record is one logical SSE line.
type Record struct {
	Kind RecordKind

	// Payload is the line content after the data prefix, trimmed of
	// surrounding whitespace. Empty for ignored lines.
	Payload string
}

// ParseRecord classifies a single line (without its "\n" terminator).
func ParseRecord(line string) Record {
	rest, ok := strings.CutPrefix(line, DataPrefix)
	if !ok {
		return Record{Kind: RecordIgnored}
	}

	payload := strings.TrimSpace(rest)
	if payload == DoneSentinel {
		return Record{Kind: RecordDone, Payload: payload}
	}

	return Record{Kind: RecordData, Payload: payload}
}
