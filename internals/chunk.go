package internals

import (
	"io"
	"os"
)

// Rolling polynomial chunk hash parameters. Fixed by design, not configurable:
// changing them invalidates every previously persisted state/database file.
const (
	chunkWindow = 7
	chunkBase   = uint64(255)
	chunkMod    = uint64(801385653117583579)
)

// chunkBaseToWindow is A^W mod M, precomputed for the incremental update formula.
var chunkBaseToWindow = func() uint64 {
	p := uint64(1)
	for i := 0; i < chunkWindow; i++ {
		p = (p * chunkBase) % chunkMod
	}
	return p
}()

// digestOf computes the direct polynomial hash of a length-chunkWindow window,
// with window[0] the oldest byte. Used both for the very first window and as
// a reference implementation that the incremental update must agree with.
func digestOf(window [chunkWindow]byte) uint64 {
	h := uint64(0)
	for i := 0; i < chunkWindow; i++ {
		power := chunkWindow - 1 - i
		a := uint64(1)
		for p := 0; p < power; p++ {
			a = (a * chunkBase) % chunkMod
		}
		h = (h + uint64(window[i])*a) % chunkMod
	}
	return h
}

// rollDigest computes the digest of the window obtained by dropping oldByte
// from the front and appending newByte at the back, given the digest of the
// previous window. Arithmetic is unsigned 64-bit with wrapping subtraction,
// reduced mod chunkMod as the final step.
func rollDigest(previous uint64, oldByte, newByte byte) uint64 {
	term := (chunkBase*previous - uint64(oldByte)*chunkBaseToWindow%chunkMod) % chunkMod
	return (term + uint64(newByte)) % chunkMod
}

// Chunker produces the ordered sequence of rolling chunk digests for a file.
// It is lazy, finite and non-restartable: once exhausted (or once a read
// error is encountered) it yields no further chunks. Read errors terminate
// the sequence silently, a known limitation inherited from the reference
// implementation (spec §4.1).
type Chunker struct {
	r        io.Reader
	window   [chunkWindow]byte
	started  bool
	done     bool
	lastHash uint64
}

// NewChunker wraps r (typically a *os.File) in a Chunker.
func NewChunker(r io.Reader) *Chunker {
	return &Chunker{r: r}
}

// Next returns the next chunk digest and true, or (0, false) once the
// sequence is exhausted.
func (c *Chunker) Next() (uint64, bool) {
	if c.done {
		return 0, false
	}

	if !c.started {
		c.started = true

		var buf [chunkWindow]byte
		n, err := io.ReadFull(c.r, buf[:])
		switch {
		case err == nil:
			c.window = buf
			c.lastHash = digestOf(c.window)
			return c.lastHash, true
		case err == io.ErrUnexpectedEOF || err == io.EOF:
			// Fewer than chunkWindow bytes (including zero): zero-pad and
			// emit exactly one chunk, then stop (spec §4.1 step 1).
			var padded [chunkWindow]byte
			copy(padded[:], buf[:n])
			c.window = padded
			c.lastHash = digestOf(c.window)
			c.done = true
			return c.lastHash, true
		default:
			c.done = true
			return 0, false
		}
	}

	var b [1]byte
	_, err := io.ReadFull(c.r, b[:])
	if err != nil {
		c.done = true
		return 0, false
	}

	old := c.window[0]
	copy(c.window[0:chunkWindow-1], c.window[1:chunkWindow])
	c.window[chunkWindow-1] = b[0]
	c.lastHash = rollDigest(c.lastHash, old, b[0])
	return c.lastHash, true
}

// ChunkSequence drains r's Chunker fully into a slice, preserving emission order.
func ChunkSequence(r io.Reader) []uint64 {
	c := NewChunker(r)
	chunks := make([]uint64, 0, 64)
	for {
		digest, ok := c.Next()
		if !ok {
			return chunks
		}
		chunks = append(chunks, digest)
	}
}

// ChunkFile opens path and returns its chunk sequence. An open failure is
// returned as a FileError so callers can distinguish it from an empty file
// (which legitimately yields one zero chunk, spec §3). A read error after
// the file is open is not returned: it ends the sequence early, as in
// Chunker.
func ChunkFile(path string) ([]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Kind: FileOpen, Path: path, Cause: err}
	}
	defer f.Close()
	return ChunkSequence(f), nil
}
