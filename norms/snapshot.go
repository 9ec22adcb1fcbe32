package norms

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/botirk38/ranksim/similarity"
	"github.com/botirk38/ranksim/types"
	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// snapshotVersion is the current snapshot format version.
const snapshotVersion = 1

// snapshotMagic prefixes every serialized snapshot.
var snapshotMagic = []byte("RSNM")

// Snapshot holds the norm bytes of one field. DocIDs[i] owns Norms[i].
type Snapshot struct {
	Version  int      `cbor:"1,keyasint"`
	Encoding string   `cbor:"2,keyasint"`
	Field    string   `cbor:"3,keyasint"`
	DocIDs   []string `cbor:"4,keyasint"`
	Norms    []byte   `cbor:"5,keyasint"`
}

// encMode uses Core Deterministic Encoding so the same snapshot always
// serializes to identical bytes.
var encMode cbor.EncMode

var decMode cbor.DecMode

// zstdEncoder and zstdDecoder are reused across calls. Both are safe for
// concurrent EncodeAll/DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("norms: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("norms: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("norms: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("norms: zstd decoder initialization failed: " + err.Error())
	}
}

// Export copies the norms of field from store into a snapshot. Documents
// evicted from the store while exporting are skipped.
func Export(ctx context.Context, store types.NormStore, field string) (*Snapshot, error) {
	if field == "" {
		return nil, ErrEmptyField
	}

	docIDs, err := store.Docs(ctx, field)
	if err != nil {
		return nil, fmt.Errorf("list documents of %s: %w", field, err)
	}
	stored, err := store.GetNorms(ctx, field, docIDs)
	if err != nil {
		return nil, fmt.Errorf("read norms of %s: %w", field, err)
	}

	snap := &Snapshot{
		Version:  snapshotVersion,
		Encoding: similarity.SmallFloatEncoding,
		Field:    field,
		DocIDs:   make([]string, 0, len(stored)),
		Norms:    make([]byte, 0, len(stored)),
	}
	for _, id := range docIDs {
		norm, ok := stored[id]
		if !ok {
			continue
		}
		snap.DocIDs = append(snap.DocIDs, id)
		snap.Norms = append(snap.Norms, norm)
	}
	return snap, nil
}

// Restore writes every norm of the snapshot into store.
func (s *Snapshot) Restore(ctx context.Context, store types.NormStore) error {
	if err := s.validate(); err != nil {
		return err
	}
	for i, id := range s.DocIDs {
		if err := store.SetNorm(ctx, s.Field, id, s.Norms[i]); err != nil {
			return fmt.Errorf("restore %s/%s: %w", s.Field, id, err)
		}
	}
	return nil
}

func (s *Snapshot) validate() error {
	if s.Version != snapshotVersion {
		return fmt.Errorf("%w: version %d", ErrIncompatibleSnapshot, s.Version)
	}
	if s.Encoding != similarity.SmallFloatEncoding {
		return fmt.Errorf("%w: encoding %q", ErrIncompatibleSnapshot, s.Encoding)
	}
	if s.Field == "" {
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, ErrEmptyField)
	}
	if len(s.DocIDs) != len(s.Norms) {
		return fmt.Errorf("%w: %d documents but %d norms", ErrCorruptSnapshot, len(s.DocIDs), len(s.Norms))
	}
	return nil
}

// WriteSnapshot serializes s as zstd-compressed CBOR.
func WriteSnapshot(w io.Writer, s *Snapshot) error {
	data, err := encMode.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	out := make([]byte, 0, len(snapshotMagic)+len(data)/2)
	out = append(out, snapshotMagic...)
	out = zstdEncoder.EncodeAll(data, out)

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot reads a snapshot written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if !bytes.HasPrefix(raw, snapshotMagic) {
		return nil, fmt.Errorf("%w: missing header", ErrCorruptSnapshot)
	}

	data, err := zstdDecoder.DecodeAll(raw[len(snapshotMagic):], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd decompress: %v", ErrCorruptSnapshot, err)
	}

	var s Snapshot
	if err := decMode.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
