// Package common defines shared constants and sentinel errors used across
// the coordinator, the audit service and the client. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Registry errors.
	ErrorAlreadyExists    = errors.New("user already exists")
	ErrorNotFound         = errors.New("user not found")
	ErrorAlreadyConnected = errors.New("user already connected")
	ErrorNotConnected     = errors.New("user not connected")
	ErrorAllocation       = errors.New("registry capacity exhausted")

	// Catalog errors.
	ErrorDuplicateFile = errors.New("file already published")
	ErrorFileNotFound  = errors.New("file not found")

	// Two-party lookups distinguish the acting user from the remote one.
	ErrorRequesterNotFound     = errors.New("requester not found")
	ErrorRequesterNotConnected = errors.New("requester not connected")
	ErrorTargetNotFound        = errors.New("remote user not found")
	ErrorTargetNotConnected    = errors.New("remote user not connected")

	ErrorInsufficientSpace = errors.New("reply does not fit")

	// Protocol errors.
	ErrorMalformedRequest = errors.New("malformed request")
	ErrorUnknownOperation = errors.New("unknown operation")
	ErrorInvalidPort      = errors.New("invalid port")
	ErrorInvalidAddress   = errors.New("invalid address")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)
