package protocol

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dmitrijs2005/peerdir/internal/common"
)

// EncodeReply builds a reply frame: the status byte followed by each field
// and its NUL terminator.
func EncodeReply(st Status, fields ...string) []byte {
	var b bytes.Buffer
	b.WriteByte(byte(st))
	for _, f := range fields {
		writeField(&b, f)
	}
	return b.Bytes()
}

// ParseReply splits a complete reply frame into status and fields.
func ParseReply(frame []byte) (Status, []string, error) {
	if len(frame) == 0 {
		return 0, nil, fmt.Errorf("%w: empty reply", common.ErrorMalformedRequest)
	}

	st := Status(frame[0])
	d := fieldReader{buf: frame[1:]}

	var fields []string
	for d.pos < len(d.buf) {
		f, err := d.next()
		if err != nil {
			return st, fields, err
		}
		fields = append(fields, f)
	}
	return st, fields, nil
}

// ReadReply reads r until EOF and parses the result with ParseReply. The
// coordinator closes the connection after every reply, so EOF marks the end
// of the frame.
func ReadReply(r io.Reader) (Status, []string, error) {
	frame, err := io.ReadAll(r)
	if err != nil {
		return 0, nil, err
	}
	return ParseReply(frame)
}
