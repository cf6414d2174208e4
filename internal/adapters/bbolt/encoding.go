// Binary encoding for corpus snapshot blobs.
//
// The snapshot is the dominant blob (thousands of records with long free-text
// fields). It is stored as a small fixed header followed by a gob payload:
//
//	magic:    [4]byte "SHYK"
//	version:  uint8
//	loadedAt: int64  (unix seconds, little-endian)
//	payload:  gob(snapshotBody)
//
// The header lets LoadCorpus check freshness without decoding the payload.
package bbolt

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"github.com/corey/sahayak/internal/ports"
)

const (
	snapshotVersion = 1
	headerSize      = 4 + 1 + 8
)

var snapshotMagic = [4]byte{'S', 'H', 'Y', 'K'}

// snapshotBody is the gob-encoded part of a snapshot.
type snapshotBody struct {
	Source  string
	Schemes []*ports.SchemeRecord
}

// encodeSnapshot encodes a snapshot to header + gob payload.
func encodeSnapshot(snap *ports.CorpusSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(headerSize)

	var hdr [headerSize]byte
	copy(hdr[:4], snapshotMagic[:])
	hdr[4] = snapshotVersion
	binary.LittleEndian.PutUint64(hdr[5:], uint64(snap.LoadedAt))
	buf.Write(hdr[:])

	if err := gob.NewEncoder(&buf).Encode(snapshotBody{Source: snap.Source, Schemes: snap.Schemes}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeSnapshotTime reads only the header and returns the save time.
func decodeSnapshotTime(data []byte) (int64, error) {
	if len(data) < headerSize {
		return 0, fmt.Errorf("snapshot too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[:4], snapshotMagic[:]) {
		return 0, fmt.Errorf("bad snapshot magic %q", data[:4])
	}
	if v := data[4]; v != snapshotVersion {
		return 0, fmt.Errorf("unsupported snapshot version %d", v)
	}
	return int64(binary.LittleEndian.Uint64(data[5:])), nil
}

// decodeSnapshot decodes a full snapshot blob.
func decodeSnapshot(data []byte) (*ports.CorpusSnapshot, error) {
	loadedAt, err := decodeSnapshotTime(data)
	if err != nil {
		return nil, err
	}
	var body snapshotBody
	if err := gob.NewDecoder(bytes.NewReader(data[headerSize:])).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode snapshot payload: %w", err)
	}
	return &ports.CorpusSnapshot{
		Source:   body.Source,
		LoadedAt: loadedAt,
		Schemes:  body.Schemes,
	}, nil
}
