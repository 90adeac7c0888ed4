package protocol

// InputBuffer is received data waiting to be framed.
type InputBuffer interface {
	Data() []byte
	Available() int
	Pop(n int)
}

// OutputBuffer collects outgoing frames. Positions let a frame's length be
// patched after its payload is written.
type OutputBuffer interface {
	Output(data []byte)
	CurPosition() int
	Update(pos int, val byte)
	DataSince(pos int) []byte
}

// SliceInput is an InputBuffer over a fixed slice.
type SliceInput struct {
	data []byte
}

func NewSliceInput(data []byte) *SliceInput {
	return &SliceInput{data: data}
}

func (s *SliceInput) Data() []byte   { return s.data }
func (s *SliceInput) Available() int { return len(s.data) }

func (s *SliceInput) Pop(n int) {
	if n > len(s.data) {
		n = len(s.data)
	}
	s.data = s.data[n:]
}

// Scratch is an OutputBuffer with fixed storage. Output past OutputMax is
// truncated.
type Scratch struct {
	buf [OutputMax]byte
	pos int
}

func NewScratch() *Scratch {
	return &Scratch{}
}

func (s *Scratch) Output(data []byte) {
	s.pos += copy(s.buf[s.pos:], data)
}

func (s *Scratch) CurPosition() int { return s.pos }

func (s *Scratch) Update(pos int, val byte) {
	if pos < s.pos {
		s.buf[pos] = val
	}
}

func (s *Scratch) DataSince(pos int) []byte {
	if pos > s.pos {
		return nil
	}
	return s.buf[pos:s.pos]
}

// Bytes returns everything written since the last Reset.
func (s *Scratch) Bytes() []byte { return s.buf[:s.pos] }

func (s *Scratch) Reset() { s.pos = 0 }

// Ring is a byte ring used as the board's receive buffer. One slot stays
// free to tell full from empty.
type Ring struct {
	buf []byte
	rd  int
	wr  int
}

func NewRing(size int) *Ring {
	return &Ring{buf: make([]byte, size)}
}

// Write stores as much of data as fits and returns the count.
func (r *Ring) Write(data []byte) int {
	for i, b := range data {
		if !r.Put(b) {
			return i
		}
	}
	return len(data)
}

// Put stores b, reporting false when the ring is full.
func (r *Ring) Put(b byte) bool {
	next := (r.wr + 1) % len(r.buf)
	if next == r.rd {
		return false
	}
	r.buf[r.wr] = b
	r.wr = next
	return true
}

func (r *Ring) Read(data []byte) int {
	n := 0
	for n < len(data) && r.rd != r.wr {
		data[n] = r.buf[r.rd]
		r.rd = (r.rd + 1) % len(r.buf)
		n++
	}
	return n
}

func (r *Ring) Available() int {
	if r.wr >= r.rd {
		return r.wr - r.rd
	}
	return len(r.buf) - r.rd + r.wr
}

func (r *Ring) Free() int {
	return len(r.buf) - r.Available() - 1
}

// Data returns the buffered bytes as one slice. A wrapped ring is rotated
// in place first, so Data never allocates.
func (r *Ring) Data() []byte {
	if r.rd > r.wr {
		n := r.Available()
		rotate(r.buf, r.rd)
		r.rd, r.wr = 0, n
	}
	return r.buf[r.rd:r.wr]
}

func (r *Ring) Pop(n int) {
	if a := r.Available(); n > a {
		n = a
	}
	r.rd = (r.rd + n) % len(r.buf)
}

func (r *Ring) Empty() bool { return r.rd == r.wr }

func (r *Ring) Reset() { r.rd, r.wr = 0, 0 }

// rotate moves b[k] to b[0] by three reversals.
func rotate(b []byte, k int) {
	reverse(b[:k])
	reverse(b[k:])
	reverse(b)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
