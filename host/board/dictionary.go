package board

import (
	"bytes"
	"fmt"
	"strings"

	"lpcbsp/protocol"
)

// Kind is the wire encoding of one parameter.
type Kind uint8

const (
	KindUint   Kind = iota // %u %c %hu
	KindInt                // %i %hi
	KindBytes              // %*s %.*s
	KindString             // %s
)

// Param is one "name=%x" field of a command format.
type Param struct {
	Name string
	Kind Kind
}

// Entry is one dictionary line.
type Entry struct {
	ID     uint16
	Name   string
	Params []Param
}

// Dictionary maps command names to ids and formats.
type Dictionary struct {
	raw    []byte
	byID   []*Entry
	byName map[string]*Entry
}

// bootstrap holds the two entries a host needs to fetch the rest.
const bootstrap = "identify_response offset=%u data=%.*s\nidentify offset=%u count=%c\n"

func parseKind(f string) (Kind, error) {
	switch f {
	case "%u", "%c", "%hu":
		return KindUint, nil
	case "%i", "%hi":
		return KindInt, nil
	case "%*s", "%.*s":
		return KindBytes, nil
	case "%s":
		return KindString, nil
	}
	return 0, fmt.Errorf("unsupported format %q", f)
}

// ParseDictionary reads "name format" lines; a command's id is its line
// number.
func ParseDictionary(raw []byte) (*Dictionary, error) {
	d := &Dictionary{raw: raw, byName: make(map[string]*Entry)}
	lines := bytes.Split(raw, []byte{'\n'})
	for i, line := range lines {
		if len(line) == 0 {
			if i == len(lines)-1 {
				break
			}
			return nil, fmt.Errorf("dictionary line %d: empty", i)
		}
		fields := strings.Fields(string(line))
		e := &Entry{ID: uint16(len(d.byID)), Name: fields[0]}
		for _, f := range fields[1:] {
			name, format, ok := strings.Cut(f, "=")
			if !ok {
				return nil, fmt.Errorf("dictionary line %d: bad parameter %q", i, f)
			}
			k, err := parseKind(format)
			if err != nil {
				return nil, fmt.Errorf("dictionary line %d: %w", i, err)
			}
			e.Params = append(e.Params, Param{Name: name, Kind: k})
		}
		if _, dup := d.byName[e.Name]; dup {
			return nil, fmt.Errorf("dictionary line %d: duplicate command %s", i, e.Name)
		}
		d.byID = append(d.byID, e)
		d.byName[e.Name] = e
	}
	return d, nil
}

func (d *Dictionary) Lookup(name string) (*Entry, bool) {
	e, ok := d.byName[name]
	return e, ok
}

func (d *Dictionary) Entry(id uint16) (*Entry, bool) {
	if int(id) >= len(d.byID) {
		return nil, false
	}
	return d.byID[id], true
}

// Entries returns every command in id order.
func (d *Dictionary) Entries() []*Entry {
	return d.byID
}

func (d *Dictionary) Raw() []byte {
	return d.raw
}

// Format renders the entry as a dictionary line using canonical codes
// (%c prints as %u).
func (e *Entry) Format() string {
	var b strings.Builder
	b.WriteString(e.Name)
	for _, p := range e.Params {
		b.WriteByte(' ')
		b.WriteString(p.Name)
		switch p.Kind {
		case KindUint:
			b.WriteString("=%u")
		case KindInt:
			b.WriteString("=%i")
		case KindBytes:
			b.WriteString("=%*s")
		case KindString:
			b.WriteString("=%s")
		}
	}
	return b.String()
}

// Encode writes the command id followed by args, which must match the
// entry's parameters in number and kind.
func (e *Entry) Encode(out protocol.OutputBuffer, args ...any) error {
	if len(args) != len(e.Params) {
		return fmt.Errorf("%s: want %d arguments, got %d", e.Name, len(e.Params), len(args))
	}
	protocol.EncodeVLQUint(out, uint32(e.ID))
	for i, p := range e.Params {
		if err := encodeArg(out, p, args[i]); err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
	}
	return nil
}

func encodeArg(out protocol.OutputBuffer, p Param, a any) error {
	switch p.Kind {
	case KindUint, KindInt:
		var v int64
		switch x := a.(type) {
		case int:
			v = int64(x)
		case int32:
			v = int64(x)
		case uint8:
			v = int64(x)
		case uint16:
			v = int64(x)
		case uint32:
			v = int64(x)
		default:
			return fmt.Errorf("%s: want integer, got %T", p.Name, a)
		}
		if p.Kind == KindInt {
			protocol.EncodeVLQInt(out, int32(v))
		} else {
			protocol.EncodeVLQUint(out, uint32(v))
		}
	case KindBytes, KindString:
		switch x := a.(type) {
		case []byte:
			protocol.EncodeVLQBytes(out, x)
		case string:
			protocol.EncodeVLQString(out, x)
		default:
			return fmt.Errorf("%s: want bytes, got %T", p.Name, a)
		}
	}
	return nil
}

// Message is a decoded reply.
type Message struct {
	Name   string
	Params map[string]any
}

// Decode consumes the entry's parameters from args; the command id has
// already been read.
func (e *Entry) Decode(args *[]byte) (Message, error) {
	m := Message{Name: e.Name, Params: make(map[string]any, len(e.Params))}
	for _, p := range e.Params {
		var (
			v   any
			err error
		)
		switch p.Kind {
		case KindUint:
			v, err = protocol.DecodeVLQUint(args)
		case KindInt:
			v, err = protocol.DecodeVLQInt(args)
		case KindBytes:
			var b []byte
			b, err = protocol.DecodeVLQBytes(args)
			v = append([]byte(nil), b...)
		case KindString:
			v, err = protocol.DecodeVLQString(args)
		}
		if err != nil {
			return m, fmt.Errorf("%s.%s: %w", e.Name, p.Name, err)
		}
		m.Params[p.Name] = v
	}
	return m, nil
}

func (m Message) Uint(name string) uint32 {
	v, _ := m.Params[name].(uint32)
	return v
}

func (m Message) Int(name string) int32 {
	v, _ := m.Params[name].(int32)
	return v
}

func (m Message) Bytes(name string) []byte {
	v, _ := m.Params[name].([]byte)
	return v
}

func (m Message) Text(name string) string {
	v, _ := m.Params[name].(string)
	return v
}
