// Package snapshot serializes resolved program models with msgpack. The
// frontend writes a snapshot per program; the CLI decodes it, binds the
// element tables, and hands the model to the compiler.
package snapshot

import (
	"bytes"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"coral/internal/program"
	"coral/internal/types"
)

// Current schema version - increment when the wire format changes.
const schemaVersion uint16 = 1

type wireSource struct {
	Path       string      `msgpack:"p"`
	IsEntry    bool        `msgpack:"e,omitempty"`
	Statements []*wireStmt `msgpack:"s,omitempty"`
}

type payload struct {
	Schema  uint16        `msgpack:"schema"`
	Target  uint8         `msgpack:"target"`
	Sources []*wireSource `msgpack:"sources"`

	// Digest guards against torn or hand-edited files.
	Digest uint64 `msgpack:"digest"`
}

// Encode writes a program model snapshot.
func Encode(w io.Writer, prg *program.Program) error {
	p := &payload{
		Schema: schemaVersion,
		Target: uint8(prg.Target),
	}
	for _, src := range prg.Sources {
		ws := &wireSource{Path: src.NormalizedPath, IsEntry: src.IsEntry}
		for _, stmt := range src.Statements {
			ws.Statements = append(ws.Statements, stmtToWire(stmt))
		}
		p.Sources = append(p.Sources, ws)
	}
	body, err := msgpack.Marshal(p.Sources)
	if err != nil {
		return fmt.Errorf("snapshot: encoding sources: %w", err)
	}
	p.Digest = xxhash.Sum64(body)
	return msgpack.NewEncoder(w).Encode(p)
}

// Decode reads a snapshot and rebuilds the bound program model.
func Decode(r io.Reader) (*program.Program, error) {
	var p payload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("snapshot: decoding: %w", err)
	}
	if p.Schema != schemaVersion {
		return nil, fmt.Errorf("snapshot: schema %d is not supported (want %d)", p.Schema, schemaVersion)
	}
	body, err := msgpack.Marshal(p.Sources)
	if err != nil {
		return nil, fmt.Errorf("snapshot: re-encoding sources: %w", err)
	}
	if got := xxhash.Sum64(body); got != p.Digest {
		return nil, fmt.Errorf("snapshot: digest mismatch: file is corrupt")
	}

	prg := program.NewProgram(types.Target(p.Target))
	for _, ws := range p.Sources {
		src := prg.AddSource(ws.Path, ws.IsEntry, nil)
		for _, stmt := range ws.Statements {
			src.Statements = append(src.Statements, stmt.stmt())
		}
		prg.Bind(src)
	}
	return prg, nil
}

// EncodeToBytes is a convenience wrapper over Encode.
func EncodeToBytes(prg *program.Program) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, prg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
