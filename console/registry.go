package console

import (
	"errors"
	"sync"

	"lpcbsp/core"
)

var ErrUnknownCommand = errors.New("console: unknown command")

// Handler decodes its own arguments from the front of args.
type Handler func(args *[]byte) error

// Command is one dictionary entry. Responses have no handler.
type Command struct {
	ID      uint16
	Name    string
	Format  string // e.g. "addr=%c reg=%c"
	Handler Handler
}

// Registry numbers commands in registration order.
type Registry struct {
	mu     sync.RWMutex
	byID   []*Command
	byName map[string]*Command
	dict   []byte
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Command)}
}

// Register adds a command, or returns the id of an existing one with the
// same name.
func (r *Registry) Register(name, format string, h Handler) uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.byName[name]; ok {
		return c.ID
	}
	c := &Command{ID: uint16(len(r.byID)), Name: name, Format: format, Handler: h}
	r.byID = append(r.byID, c)
	r.byName[name] = c

	r.dict = append(r.dict, name...)
	if format != "" {
		r.dict = append(r.dict, ' ')
		r.dict = append(r.dict, format...)
	}
	r.dict = append(r.dict, '\n')
	return c.ID
}

// Response registers a board-to-host message.
func (r *Registry) Response(name, format string) uint16 {
	return r.Register(name, format, nil)
}

// Lookup finds a command by name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// Command finds a command by id.
func (r *Registry) Command(id uint16) (*Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if int(id) >= len(r.byID) {
		return nil, false
	}
	return r.byID[id], true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// Dispatch runs the handler for id.
func (r *Registry) Dispatch(id uint16, args *[]byte) error {
	c, ok := r.Command(id)
	if !ok || c.Handler == nil {
		core.DebugPrintln("console: unknown command " + core.Itoa(int(id)))
		return ErrUnknownCommand
	}
	return c.Handler(args)
}

// Dictionary is the "name format" list, one command per line, in id order.
func (r *Registry) Dictionary() []byte {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dict
}

// Chunk returns up to count bytes of the dictionary from offset. The result
// aliases the dictionary.
func (r *Registry) Chunk(offset uint32, count uint8) []byte {
	d := r.Dictionary()
	if offset >= uint32(len(d)) {
		return nil
	}
	end := offset + uint32(count)
	if end > uint32(len(d)) {
		end = uint32(len(d))
	}
	return d[offset:end]
}
