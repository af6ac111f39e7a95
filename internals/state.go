package internals

import (
	"encoding/gob"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

// OutputFormat selects the on-disk encoding of both the state file and the
// database file (spec §6). The logical schema is identical across formats;
// only the concrete encoding differs, matching the "tagged variant at the
// boundary" design note (spec §9).
type OutputFormat int

const (
	// FormatText is a human-readable encoding: pretty-printed YAML for the
	// state file, one JSON object per line for the database file.
	FormatText OutputFormat = iota
	// FormatBinary is a compact machine encoding.
	FormatBinary
)

// chunkCountEntry is the wire shape of one chunk_counts entry. A slice of
// these (rather than a native map) is used so both the YAML and gob
// encoders can be made to preserve ascending chunk order on write without
// leaning on encoder-specific map-ordering behavior (spec §4.3, §6).
type chunkCountEntry struct {
	Chunk uint64 `yaml:"chunk" json:"chunk"`
	Count uint64 `yaml:"count" json:"count"`
}

// stateSchema is the logical schema of the state file (spec §6):
// { files: [...], chunk_counts: [...] }.
type stateSchema struct {
	Files       []string          `yaml:"files"`
	ChunkCounts []chunkCountEntry `yaml:"chunk_counts"`
}

func toStateSchema(dc *DocumentCollection) stateSchema {
	counts := dc.SortedChunkCounts()
	entries := make([]chunkCountEntry, len(counts))
	for i, c := range counts {
		entries[i] = chunkCountEntry{Chunk: c.Chunk, Count: c.Count}
	}
	return stateSchema{Files: dc.Files(), ChunkCounts: entries}
}

func (s stateSchema) toCollection() *DocumentCollection {
	counts := make([]ChunkCount, len(s.ChunkCounts))
	for i, e := range s.ChunkCounts {
		counts[i] = ChunkCount{Chunk: e.Chunk, Count: e.Count}
	}
	return NewDocumentCollectionFrom(s.Files, counts)
}

// WriteState persists the corpus model to path in the requested format.
// The textual form is pretty-printed YAML (an "object of sorted entries",
// spec §6); the binary form is gob-encoded. Both preserve ascending
// chunk-key order because toStateSchema always sorts before encoding.
func WriteState(path string, dc *DocumentCollection, format OutputFormat) error {
	f, err := os.Create(path)
	if err != nil {
		return &FileError{Kind: FileOpen, Path: path, Cause: err}
	}
	defer f.Close()

	schema := toStateSchema(dc)

	switch format {
	case FormatBinary:
		if err := gob.NewEncoder(f).Encode(schema); err != nil {
			return err
		}
	default:
		out, err := yaml.Marshal(schema)
		if err != nil {
			return err
		}
		if _, err := f.Write(out); err != nil {
			return err
		}
	}
	return nil
}

// ReadState loads a corpus model previously written by WriteState. A
// state file written with a different format will fail here with a
// DeserializeError (spec §6: mixing formats is a user error).
func ReadState(path string, format OutputFormat) (*DocumentCollection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Kind: FileOpen, Path: path, Cause: err}
	}
	defer f.Close()

	var schema stateSchema
	switch format {
	case FormatBinary:
		if err := gob.NewDecoder(f).Decode(&schema); err != nil {
			return nil, &DeserializeError{Path: path, Cause: err}
		}
	default:
		raw, err := io.ReadAll(f)
		if err != nil {
			return nil, &DeserializeError{Path: path, Cause: err}
		}
		if err := yaml.Unmarshal(raw, &schema); err != nil {
			return nil, &DeserializeError{Path: path, Cause: err}
		}
	}

	return schema.toCollection(), nil
}
