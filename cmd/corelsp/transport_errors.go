package main

import "strings"

// isTransportError reports whether err indicates the client end of the
// stdio transport went away, in which case the serve loop should exit
// quietly rather than logging it as a processing failure.
func isTransportError(err error) bool {
	msg := err.Error()
	switch msg {
	case "EOF", "io: read/write on closed pipe", "use of closed network connection":
		return true
	}
	return strings.Contains(msg, "broken pipe") || strings.Contains(msg, "connection reset")
}
