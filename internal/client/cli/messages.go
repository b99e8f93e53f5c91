package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/peerdir/internal/common"
	"github.com/dmitrijs2005/peerdir/internal/protocol"
)

// reasons are the outcomes worth spelling out to the user, in match order.
var reasons = []error{
	common.ErrorAlreadyExists,
	common.ErrorNotFound,
	common.ErrorAlreadyConnected,
	common.ErrorNotConnected,
	common.ErrorAllocation,
	common.ErrorDuplicateFile,
	common.ErrorFileNotFound,
	common.ErrorRequesterNotFound,
	common.ErrorRequesterNotConnected,
	common.ErrorTargetNotFound,
	common.ErrorTargetNotConnected,
	common.ErrorInsufficientSpace,
	common.ErrorInvalidPort,
	errNoSession,
}

var errNoSession = errors.New("not connected")

func describe(op protocol.Operation, err error) string {
	if err == nil {
		return fmt.Sprintf("%s OK", op)
	}
	for _, r := range reasons {
		if errors.Is(err, r) {
			return fmt.Sprintf("%s FAIL, %s", op, strings.ToUpper(r.Error()))
		}
	}
	return fmt.Sprintf("%s FAIL", op)
}
