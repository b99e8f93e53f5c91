// Package registry is the coordinator's single source of truth: the set of
// registered users, their connection state and the catalog of files each
// of them publishes.
//
// Every exported method is atomic. One mutex, owned by the Registry and
// never exposed, serializes all operations; it is never held across I/O.
// Results are copied out, so callers never see internal records.
package registry

import (
	"fmt"
	"sync"

	"github.com/dmitrijs2005/peerdir/internal/common"
	"golang.org/x/exp/slices"
)

// Peer is a connected user as reported by ListConnected.
type Peer struct {
	Name string
	IP   string
	Port int
}

// Address is the rendezvous point returned by LocateFile.
type Address struct {
	IP   string
	Port int
}

// Options bound the registry size. Zero means unlimited.
type Options struct {
	MaxUsers        int
	MaxFilesPerUser int
}

type user struct {
	name      string
	seq       uint64
	connected bool
	ip        string
	port      int
	files     map[string]*fileEntry
}

type fileEntry struct {
	description string
	seq         uint64
}

// Registry stores users and their catalogs in memory.
type Registry struct {
	mu    sync.Mutex
	users map[string]*user
	seq   uint64
	opts  Options
}

func New(opts Options) *Registry {
	return &Registry{
		users: make(map[string]*user),
		opts:  opts,
	}
}

func (r *Registry) nextSeq() uint64 {
	r.seq++
	return r.seq
}

// Len returns the number of registered users.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// Register adds a disconnected user with an empty catalog.
func (r *Registry) Register(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[name]; ok {
		return common.ErrorAlreadyExists
	}
	if r.opts.MaxUsers > 0 && len(r.users) >= r.opts.MaxUsers {
		return fmt.Errorf("%w: %d users", common.ErrorAllocation, len(r.users))
	}

	r.users[name] = &user{
		name:  name,
		seq:   r.nextSeq(),
		files: make(map[string]*fileEntry),
	}
	return nil
}

// Unregister removes the user together with its whole catalog.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[name]; !ok {
		return common.ErrorNotFound
	}
	delete(r.users, name)
	return nil
}

// Connect marks the user as reachable at ip:port. Unknown and already
// connected users are reported before a bad address.
func (r *Registry) Connect(name, ip string, port int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[name]
	if !ok {
		return common.ErrorNotFound
	}
	if u.connected {
		return common.ErrorAlreadyConnected
	}
	if ip == "" {
		return common.ErrorInvalidAddress
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%w: %d", common.ErrorInvalidPort, port)
	}

	u.connected = true
	u.ip = ip
	u.port = port
	return nil
}

// Disconnect marks the user unreachable and forgets its address. The
// catalog is kept.
func (r *Registry) Disconnect(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[name]
	if !ok {
		return common.ErrorNotFound
	}
	if !u.connected {
		return common.ErrorNotConnected
	}

	u.connected = false
	u.ip = ""
	u.port = 0
	return nil
}

// ListConnected returns every connected user, most recently registered first.
func (r *Registry) ListConnected() []Peer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connectedLocked()
}

// ListConnectedAs is ListConnected on behalf of requester, who must be
// registered and connected.
func (r *Registry) ListConnectedAs(requester string) ([]Peer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.requesterLocked(requester); err != nil {
		return nil, err
	}
	return r.connectedLocked(), nil
}

func (r *Registry) connectedLocked() []Peer {
	online := make([]*user, 0, len(r.users))
	for _, u := range r.users {
		if u.connected {
			online = append(online, u)
		}
	}
	slices.SortFunc(online, func(a, b *user) int { return compareSeqDesc(a.seq, b.seq) })

	peers := make([]Peer, 0, len(online))
	for _, u := range online {
		peers = append(peers, Peer{Name: u.name, IP: u.ip, Port: u.port})
	}
	return peers
}

// PublishFile adds filename to the user's catalog.
func (r *Registry) PublishFile(name, filename, description string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, err := r.actingLocked(name)
	if err != nil {
		return err
	}
	if _, ok := u.files[filename]; ok {
		return common.ErrorDuplicateFile
	}
	if r.opts.MaxFilesPerUser > 0 && len(u.files) >= r.opts.MaxFilesPerUser {
		return fmt.Errorf("%w: %d files", common.ErrorAllocation, len(u.files))
	}

	u.files[filename] = &fileEntry{description: description, seq: r.nextSeq()}
	return nil
}

// DeleteFile removes filename from the user's catalog.
func (r *Registry) DeleteFile(name, filename string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, err := r.actingLocked(name)
	if err != nil {
		return err
	}
	if _, ok := u.files[filename]; !ok {
		return common.ErrorFileNotFound
	}

	delete(u.files, filename)
	return nil
}

// ListFiles returns the target's catalog, most recently published first.
// The target does not need to be connected.
func (r *Registry) ListFiles(requester, target string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.requesterLocked(requester); err != nil {
		return nil, err
	}
	t, ok := r.users[target]
	if !ok {
		return nil, common.ErrorTargetNotFound
	}

	type named struct {
		name string
		seq  uint64
	}
	entries := make([]named, 0, len(t.files))
	for fn, f := range t.files {
		entries = append(entries, named{name: fn, seq: f.seq})
	}
	slices.SortFunc(entries, func(a, b named) int { return compareSeqDesc(a.seq, b.seq) })

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.name)
	}
	return names, nil
}

// LocateFile returns the address of target if it is connected and
// publishes filename.
func (r *Registry) LocateFile(requester, target, filename string) (Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.requesterLocked(requester); err != nil {
		return Address{}, err
	}
	t, ok := r.users[target]
	if !ok {
		return Address{}, common.ErrorTargetNotFound
	}
	if !t.connected {
		return Address{}, common.ErrorTargetNotConnected
	}
	if _, ok := t.files[filename]; !ok {
		return Address{}, common.ErrorFileNotFound
	}

	return Address{IP: t.ip, Port: t.port}, nil
}

// actingLocked resolves the user mutating its own catalog.
func (r *Registry) actingLocked(name string) (*user, error) {
	u, ok := r.users[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if !u.connected {
		return nil, common.ErrorNotConnected
	}
	return u, nil
}

// requesterLocked resolves the user asking about someone else.
func (r *Registry) requesterLocked(name string) (*user, error) {
	u, ok := r.users[name]
	if !ok {
		return nil, common.ErrorRequesterNotFound
	}
	if !u.connected {
		return nil, common.ErrorRequesterNotConnected
	}
	return u, nil
}

func compareSeqDesc(a, b uint64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
