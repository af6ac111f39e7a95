package internals

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
)

// MarshalJSON renders a DigestEntry as the two-element array
// [chunk_u64, weight_f64] required by the database file's textual schema
// (spec §6), rather than the default object-of-fields representation. The
// chunk digest is written as a bare integer literal via strconv, not
// through float64: a uint64 chunk key routed through float64 loses
// precision above 2^53, which chunk digests modulo M routinely exceed.
func (e DigestEntry) MarshalJSON() ([]byte, error) {
	weight, err := json.Marshal(e.Weight)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	buf.WriteString(strconv.FormatUint(e.Chunk, 10))
	buf.WriteByte(',')
	buf.Write(weight)
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses the two-element array form back into a DigestEntry.
// The chunk element is parsed with strconv.ParseUint straight from its raw
// JSON token, never through float64, so it survives the round trip exactly.
func (e *DigestEntry) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	chunk, err := strconv.ParseUint(string(bytes.TrimSpace(pair[0])), 10, 64)
	if err != nil {
		return fmt.Errorf("decoding chunk digest: %w", err)
	}
	var weight float64
	if err := json.Unmarshal(pair[1], &weight); err != nil {
		return err
	}
	e.Chunk = chunk
	e.Weight = weight
	return nil
}

// jsonDocument is the textual wire shape of one database line (spec §6):
// {"file": path, "chunks": [], "digest": [[chunk, weight], ...]}.
type jsonDocument struct {
	File   string        `json:"file"`
	Chunks []uint64      `json:"chunks"`
	Digest []DigestEntry `json:"digest"`
}

func toJSONDocument(d *Document) jsonDocument {
	chunks := d.Chunks
	if chunks == nil {
		chunks = []uint64{}
	}
	digest := d.Digest
	if digest == nil {
		digest = []DigestEntry{}
	}
	return jsonDocument{File: d.File, Chunks: chunks, Digest: digest}
}

// WriteDatabase persists documents to path. The textual form is one JSON
// object per line (spec §6); the binary form is a sequence of
// length-prefixed gob records. Document.Chunks is expected to already be
// empty by this point (finalization clears it, spec §4.6 phase 5), but
// WriteDatabase does not itself enforce that.
func WriteDatabase(path string, documents []*Document, format OutputFormat) error {
	f, err := os.Create(path)
	if err != nil {
		return &FileError{Kind: FileOpen, Path: path, Cause: err}
	}
	defer f.Close()

	switch format {
	case FormatBinary:
		return writeDatabaseBinary(f, documents)
	default:
		return writeDatabaseText(f, documents)
	}
}

func writeDatabaseText(w io.Writer, documents []*Document) error {
	enc := json.NewEncoder(w)
	for _, d := range documents {
		if err := enc.Encode(toJSONDocument(d)); err != nil {
			return err
		}
	}
	return nil
}

func writeDatabaseBinary(w io.Writer, documents []*Document) error {
	for _, d := range documents {
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(d); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint64(buf.Len())); err != nil {
			return err
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// ReadDatabase loads documents previously written by WriteDatabase. The
// textual form is streamed line-by-line; the binary form is decoded
// record-by-record following its length prefixes. Mismatched formats fail
// loudly as a DeserializeError (spec §6, §7): JSON fed a binary stream (or
// vice versa) will not parse as a structurally valid record.
func ReadDatabase(path string, format OutputFormat) ([]*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Kind: FileOpen, Path: path, Cause: err}
	}
	defer f.Close()

	switch format {
	case FormatBinary:
		return readDatabaseBinary(path, f)
	default:
		return readDatabaseText(path, f)
	}
}

func readDatabaseText(path string, r io.Reader) ([]*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	documents := make([]*Document, 0, 64)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var jd jsonDocument
		if err := json.Unmarshal(line, &jd); err != nil {
			return nil, &DeserializeError{Path: path, Cause: err}
		}
		documents = append(documents, &Document{File: jd.File, Chunks: jd.Chunks, Digest: jd.Digest})
	}
	if err := scanner.Err(); err != nil {
		return nil, &DeserializeError{Path: path, Cause: err}
	}
	return documents, nil
}

const maxDatabaseRecordSize = 1 << 30 // 1 GiB; guards against format-mismatch garbage length prefixes

func readDatabaseBinary(path string, r io.Reader) ([]*Document, error) {
	documents := make([]*Document, 0, 64)
	for {
		var size uint64
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			if err == io.EOF {
				return documents, nil
			}
			return nil, &DeserializeError{Path: path, Cause: err}
		}
		if size > maxDatabaseRecordSize {
			return nil, &DeserializeError{Path: path, Cause: fmt.Errorf("implausible record length %d, file is likely not in binary format", size)}
		}

		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, &DeserializeError{Path: path, Cause: err}
		}

		var d Document
		if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&d); err != nil {
			return nil, &DeserializeError{Path: path, Cause: err}
		}
		documents = append(documents, &d)
	}
}
