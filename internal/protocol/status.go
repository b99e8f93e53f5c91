package protocol

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/peerdir/internal/common"
)

// Status is the first byte of every reply.
type Status byte

const (
	StatusOK Status = 0

	// Reserved values outside every operation's own result space.
	StatusUnknownOperation Status = 0xFE
	StatusError            Status = 0xFF
)

type statusEntry struct {
	status Status
	err    error
}

// statusTable lists, per operation, the failure statuses in the order they
// are checked. Values are only unique within one operation.
var statusTable = map[Operation][]statusEntry{
	OpRegister: {
		{1, common.ErrorAlreadyExists},
		{2, common.ErrorAllocation},
	},
	OpUnregister: {
		{1, common.ErrorNotFound},
	},
	OpConnect: {
		{1, common.ErrorNotFound},
		{2, common.ErrorAlreadyConnected},
		{3, common.ErrorInvalidPort},
		{3, common.ErrorInvalidAddress},
	},
	OpDisconnect: {
		{1, common.ErrorNotFound},
		{2, common.ErrorNotConnected},
	},
	OpListUsers: {
		{1, common.ErrorRequesterNotFound},
		{2, common.ErrorRequesterNotConnected},
		{3, common.ErrorInsufficientSpace},
	},
	OpPublish: {
		{1, common.ErrorNotFound},
		{2, common.ErrorNotConnected},
		{3, common.ErrorDuplicateFile},
		{4, common.ErrorAllocation},
	},
	OpDelete: {
		{1, common.ErrorNotFound},
		{2, common.ErrorNotConnected},
		{3, common.ErrorFileNotFound},
	},
	OpListContent: {
		{1, common.ErrorRequesterNotFound},
		{2, common.ErrorRequesterNotConnected},
		{3, common.ErrorTargetNotFound},
		{4, common.ErrorInsufficientSpace},
	},
	OpGetFile: {
		{1, common.ErrorFileNotFound},
		{2, common.ErrorRequesterNotFound},
		{3, common.ErrorRequesterNotConnected},
		{4, common.ErrorTargetNotFound},
		{5, common.ErrorTargetNotConnected},
	},
}

// StatusFor maps the outcome of op to its status byte. Errors the table does
// not know about become StatusError.
func StatusFor(op Operation, err error) Status {
	if err == nil {
		return StatusOK
	}
	if errors.Is(err, common.ErrorMalformedRequest) {
		return StatusError
	}
	if errors.Is(err, common.ErrorUnknownOperation) {
		return StatusUnknownOperation
	}
	for _, e := range statusTable[op] {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return StatusError
}

// ErrorFor is the client-side inverse of StatusFor.
func ErrorFor(op Operation, st Status) error {
	switch st {
	case StatusOK:
		return nil
	case StatusError:
		return common.ErrorMalformedRequest
	case StatusUnknownOperation:
		return common.ErrorUnknownOperation
	}
	for _, e := range statusTable[op] {
		if e.status == st {
			return e.err
		}
	}
	return fmt.Errorf("%w: status %d for %s", common.ErrorInternal, st, op)
}
