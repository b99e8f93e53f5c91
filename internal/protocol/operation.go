package protocol

// Operation is a request mnemonic.
type Operation string

const (
	OpRegister    Operation = "REGISTER"
	OpUnregister  Operation = "UNREGISTER"
	OpConnect     Operation = "CONNECT"
	OpDisconnect  Operation = "DISCONNECT"
	OpListUsers   Operation = "LIST_USERS"
	OpPublish     Operation = "PUBLISH"
	OpDelete      Operation = "DELETE"
	OpListContent Operation = "LIST_CONTENT"
	OpGetFile     Operation = "GET_FILE"
)

// MaxRequestSize is the size of the single read performed per connection.
const MaxRequestSize = 1024

// arity is the number of argument fields between the mnemonic and the
// trailing timestamp.
var arity = map[Operation]int{
	OpRegister:    1, // user
	OpUnregister:  1, // user
	OpDisconnect:  1, // user
	OpListUsers:   1, // user
	OpConnect:     2, // user, port
	OpDelete:      2, // user, filename
	OpListContent: 2, // user, target
	OpPublish:     3, // user, filename, description
	OpGetFile:     3, // user, target, filename
}

// defaultArity is applied to unknown mnemonics so they can still be framed
// and answered with StatusUnknownOperation.
const defaultArity = 1

// Arity reports the argument count of op and whether op is known.
func Arity(op Operation) (int, bool) {
	n, ok := arity[op]
	if !ok {
		return defaultArity, false
	}
	return n, true
}

// Known reports whether op is part of the protocol.
func (op Operation) Known() bool {
	_, ok := arity[op]
	return ok
}
