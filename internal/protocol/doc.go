// Package protocol implements the coordinator's wire format.
//
// A request is a single buffer of NUL-terminated ASCII fields:
//
//	OP\0arg1\0...argN\0timestamp\0
//
// The number of arguments is fixed per operation (see Arity). A reply is one
// status byte, optionally followed by NUL-terminated fields for operations
// that return data. The connection is closed after the reply.
package protocol
