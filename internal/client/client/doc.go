// Package client is a Go client for the coordinator wire protocol.
//
// # Overview
//
// Every call opens a TCP connection, writes one request frame, reads the
// reply until the coordinator closes the connection and returns. Non-zero
// status bytes come back as the sentinel errors of internal/common, so
// callers match them with errors.Is:
//
//	err := c.Publish(ctx, "alice", "song.mp3", "demo")
//	if errors.Is(err, common.ErrorDuplicateFile) { ... }
//
// Transport failures (dial, timeout) are wrapped in ErrUnavailable.
//
// Requests carry a client timestamp in "02/01/2006 15:04:05" form, taken
// from the local clock or, with WithTimeService, from a remote time service.
package client
