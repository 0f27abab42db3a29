// Package state implements frozen-state persistence: serializing a
// symbol table to a file and reloading it later (GNU m4's `-F`/`-R`
// freeze/reload flags), per SPEC_FULL.md §3's domain-stack entries for
// fxamacker/cbor/v2, golang.org/x/crypto/blake2b, and golang.org/x/mod/semver.
//
// Only Text and Procedure values are freezable; Composite and Placeholder
// values are transient results of one expansion run (spec.md §9) and are
// silently dropped from a stack on Save rather than carried through.
package state

import (
	"bytes"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/mod/semver"

	"github.com/m4go/m4/core/value"
	"github.com/m4go/m4/runtime/symtab"
)

// FormatVersion is the frozen-state format this engine writes, and the
// newest format it will load (semver.Compare gates anything newer).
const FormatVersion = "v1.0.0"

// digestKey keys the BLAKE2b digest so a file produced by some unrelated
// CBOR-emitting tool is rejected as foreign rather than silently loaded.
var digestKey = []byte("m4go-frozen-state-v1")

type valueKind uint8

const (
	valueText valueKind = iota
	valueProc
)

type valueRecord struct {
	Kind     valueKind `cbor:"k"`
	Text     []byte    `cbor:"t,omitempty"`
	ProcName string    `cbor:"p,omitempty"`
}

type entryRecord struct {
	Name   string         `cbor:"n"`
	Stack  []valueRecord  `cbor:"s"`
	Traced bool           `cbor:"tr,omitempty"`
	Params map[string]int `cbor:"pr,omitempty"`
}

type document struct {
	Version string        `cbor:"v"`
	Entries []entryRecord `cbor:"e"`
}

// header wraps the encoded document with an integrity digest, so a
// truncated, corrupted, or unrelated file is rejected before the CBOR
// payload is ever decoded into live symbol values.
type header struct {
	Digest  [blake2b.Size256]byte `cbor:"d"`
	Payload []byte                `cbor:"pl"`
}

// Save writes every freezable symbol in t to w.
func Save(t *symtab.Table, w io.Writer) error {
	doc := document{Version: FormatVersion}
	for _, name := range t.Names() {
		rec := entryRecord{
			Name:   name,
			Traced: t.IsTraced(name),
			Params: t.Params(name),
		}
		for _, v := range t.Stack(name) {
			vr, ok := encodeValue(v)
			if !ok {
				continue
			}
			rec.Stack = append(rec.Stack, vr)
		}
		if len(rec.Stack) == 0 {
			continue
		}
		doc.Entries = append(doc.Entries, rec)
	}

	payload, err := cbor.Marshal(doc)
	if err != nil {
		return fmt.Errorf("state: encode: %w", err)
	}

	h, err := blake2b.New256(digestKey)
	if err != nil {
		return fmt.Errorf("state: digest: %w", err)
	}
	h.Write(payload)

	hdr := header{Payload: payload}
	copy(hdr.Digest[:], h.Sum(nil))

	out, err := cbor.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("state: encode header: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func encodeValue(v *value.SymbolValue) (valueRecord, bool) {
	switch {
	case v.IsText():
		return valueRecord{Kind: valueText, Text: v.Text}, true
	case v.IsProcedure():
		return valueRecord{Kind: valueProc, ProcName: v.Proc.Name}, true
	default:
		return valueRecord{}, false
	}
}

// Load reads a frozen-state file previously written by Save, verifies its
// digest and format version, and installs its entries into t. builtins
// resolves a frozen Procedure's name back to a live *value.Procedure —
// typically runtime/primitives' own registry; a name builtins does not
// recognize becomes a value.Placeholder (spec.md §3, §9), so a state file
// written with primitives this process lacks degrades gracefully instead
// of failing the whole load.
func Load(t *symtab.Table, r io.Reader, builtins func(name string) (*value.Procedure, bool)) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("state: read: %w", err)
	}

	var hdr header
	if err := cbor.Unmarshal(raw, &hdr); err != nil {
		return fmt.Errorf("state: decode header: %w", err)
	}

	h, err := blake2b.New256(digestKey)
	if err != nil {
		return fmt.Errorf("state: digest: %w", err)
	}
	h.Write(hdr.Payload)
	if !bytes.Equal(h.Sum(nil), hdr.Digest[:]) {
		return fmt.Errorf("state: digest mismatch: corrupted or foreign file")
	}

	var doc document
	if err := cbor.Unmarshal(hdr.Payload, &doc); err != nil {
		return fmt.Errorf("state: decode: %w", err)
	}

	if !semver.IsValid(doc.Version) {
		return fmt.Errorf("state: invalid format version %q", doc.Version)
	}
	if semver.Compare(doc.Version, FormatVersion) > 0 {
		return fmt.Errorf("state: file format %s is newer than this engine understands (%s)", doc.Version, FormatVersion)
	}

	for _, rec := range doc.Entries {
		stack := make([]*value.SymbolValue, 0, len(rec.Stack))
		for _, vr := range rec.Stack {
			stack = append(stack, decodeValue(vr, builtins))
		}
		t.Restore(rec.Name, stack, rec.Traced, rec.Params)
	}
	return nil
}

func decodeValue(vr valueRecord, builtins func(name string) (*value.Procedure, bool)) *value.SymbolValue {
	switch vr.Kind {
	case valueText:
		return value.NewText(vr.Text, 0)
	case valueProc:
		if p, ok := builtins(vr.ProcName); ok {
			return value.NewProcedure(p)
		}
		return value.NewPlaceholder(vr.ProcName)
	default:
		return value.Empty
	}
}
