package protocol

import (
	"bytes"
	"fmt"

	"github.com/dmitrijs2005/peerdir/internal/common"
)

// Request is a decoded request frame.
type Request struct {
	Op        Operation
	Args      []string
	Timestamp string
}

// User is the acting user, always the first argument.
func (r Request) User() string {
	return r.Arg(0)
}

// Arg returns the i-th argument or "" when absent.
func (r Request) Arg(i int) string {
	if i < 0 || i >= len(r.Args) {
		return ""
	}
	return r.Args[i]
}

// Decode parses buf into a Request. Fields are read strictly in order and
// each must be NUL-terminated inside buf; anything else is
// common.ErrorMalformedRequest. Bytes after the timestamp are ignored.
func Decode(buf []byte) (Request, error) {
	d := fieldReader{buf: buf}

	op, err := d.next()
	if err != nil {
		return Request{}, fmt.Errorf("operation: %w", err)
	}
	if op == "" {
		return Request{}, fmt.Errorf("%w: empty operation", common.ErrorMalformedRequest)
	}

	req := Request{Op: Operation(op)}
	n, _ := Arity(req.Op)

	req.Args = make([]string, 0, n)
	for i := 0; i < n; i++ {
		arg, err := d.next()
		if err != nil {
			return Request{}, fmt.Errorf("%s argument %d: %w", op, i+1, err)
		}
		req.Args = append(req.Args, arg)
	}

	req.Timestamp, err = d.next()
	if err != nil {
		return Request{}, fmt.Errorf("%s timestamp: %w", op, err)
	}

	return req, nil
}

type fieldReader struct {
	buf []byte
	pos int
}

func (d *fieldReader) next() (string, error) {
	if d.pos >= len(d.buf) {
		return "", fmt.Errorf("%w: field past end of %d bytes", common.ErrorMalformedRequest, len(d.buf))
	}
	end := bytes.IndexByte(d.buf[d.pos:], 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated field at offset %d", common.ErrorMalformedRequest, d.pos)
	}
	field := string(d.buf[d.pos : d.pos+end])
	d.pos += end + 1
	return field, nil
}

// Encode frames a request. Fields must not contain NUL bytes.
func Encode(op Operation, timestamp string, args ...string) []byte {
	var b bytes.Buffer
	writeField(&b, string(op))
	for _, a := range args {
		writeField(&b, a)
	}
	writeField(&b, timestamp)
	return b.Bytes()
}

func writeField(b *bytes.Buffer, s string) {
	b.WriteString(s)
	b.WriteByte(0)
}
