// Package weights reads and writes network parameters in the PWTS binary
// format.
//
// Layout:
//
//	[4]byte   magic "PWTS"
//	uint32    format version (little-endian)
//	uint32    header length in bytes
//	[]byte    JSON header: ordered list of {name, shape, offset}
//	[]byte    payload: little-endian float32 data, densely packed
//	[32]byte  SHA-256 of the payload bytes
//
// Offsets in the header are element offsets into the payload. Entries are
// written in header order, so the payload length is the sum of all entry
// sizes. The trailing checksum catches truncated or corrupted files before
// garbage weights reach the network.
package weights

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/painterly-ml/painterly/internal/tensor"
)

// FormatVersion is the current PWTS format version.
const FormatVersion uint32 = 1

// ErrResourceUnavailable wraps failures to read or parse a weights file.
var ErrResourceUnavailable = errors.New("weights: resource unavailable")

// ErrChecksumMismatch is returned when the payload does not match the
// stored SHA-256 checksum.
var ErrChecksumMismatch = errors.New("weights: checksum mismatch")

var magic = [4]byte{'P', 'W', 'T', 'S'}

// Entry describes one named tensor in the header.
type Entry struct {
	Name   string `json:"name"`
	Shape  []int  `json:"shape"`
	Offset int    `json:"offset"` // element offset into the payload
}

type header struct {
	Entries []Entry `json:"entries"`
}

// Store is an in-memory collection of named tensors.
type Store struct {
	entries []Entry
	tensors map[string]*tensor.RawTensor
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{tensors: make(map[string]*tensor.RawTensor)}
}

// Put adds a named tensor to the store. Re-using a name overwrites the
// previous tensor but keeps its position in the write order.
func (s *Store) Put(name string, t *tensor.RawTensor) {
	if _, exists := s.tensors[name]; !exists {
		s.entries = append(s.entries, Entry{Name: name, Shape: t.Shape().Clone()})
	}
	s.tensors[name] = t
}

// Get returns the tensor stored under name.
func (s *Store) Get(name string) (*tensor.RawTensor, bool) {
	t, ok := s.tensors[name]
	return t, ok
}

// Names returns all tensor names in write order.
func (s *Store) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of tensors in the store.
func (s *Store) Len() int { return len(s.entries) }

// WriteTo serializes the store in PWTS format.
func (s *Store) WriteTo(w io.Writer) (int64, error) {
	var written int64

	hdr := header{Entries: make([]Entry, len(s.entries))}
	offset := 0
	for i, e := range s.entries {
		t := s.tensors[e.Name]
		hdr.Entries[i] = Entry{Name: e.Name, Shape: t.Shape().Clone(), Offset: offset}
		offset += t.NumElements()
	}

	hdrJSON, err := json.Marshal(hdr)
	if err != nil {
		return written, fmt.Errorf("encoding header: %w", err)
	}

	n, err := w.Write(magic[:])
	written += int64(n)
	if err != nil {
		return written, err
	}

	var u32 [4]byte
	binary.LittleEndian.PutUint32(u32[:], FormatVersion)
	n, err = w.Write(u32[:])
	written += int64(n)
	if err != nil {
		return written, err
	}

	binary.LittleEndian.PutUint32(u32[:], uint32(len(hdrJSON)))
	n, err = w.Write(u32[:])
	written += int64(n)
	if err != nil {
		return written, err
	}

	n, err = w.Write(hdrJSON)
	written += int64(n)
	if err != nil {
		return written, err
	}

	hash := sha256.New()
	for _, e := range s.entries {
		data := s.tensors[e.Name].Data()
		buf := make([]byte, 4*len(data))
		for i, v := range data {
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
		}
		hash.Write(buf)
		n, err = w.Write(buf)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}

	n, err = w.Write(hash.Sum(nil))
	written += int64(n)
	if err != nil {
		return written, err
	}

	return written, nil
}

// ReadFrom deserializes a PWTS stream into the store, replacing its contents.
func (s *Store) ReadFrom(r io.Reader) (int64, error) {
	var read int64

	var gotMagic [4]byte
	n, err := io.ReadFull(r, gotMagic[:])
	read += int64(n)
	if err != nil {
		return read, fmt.Errorf("reading magic: %w", err)
	}
	if gotMagic != magic {
		return read, fmt.Errorf("bad magic %q, want %q", gotMagic[:], magic[:])
	}

	var u32 [4]byte
	n, err = io.ReadFull(r, u32[:])
	read += int64(n)
	if err != nil {
		return read, fmt.Errorf("reading version: %w", err)
	}
	if v := binary.LittleEndian.Uint32(u32[:]); v != FormatVersion {
		return read, fmt.Errorf("unsupported format version %d", v)
	}

	n, err = io.ReadFull(r, u32[:])
	read += int64(n)
	if err != nil {
		return read, fmt.Errorf("reading header length: %w", err)
	}
	hdrLen := binary.LittleEndian.Uint32(u32[:])

	hdrJSON := make([]byte, hdrLen)
	n, err = io.ReadFull(r, hdrJSON)
	read += int64(n)
	if err != nil {
		return read, fmt.Errorf("reading header: %w", err)
	}

	var hdr header
	if err := json.Unmarshal(hdrJSON, &hdr); err != nil {
		return read, fmt.Errorf("decoding header: %w", err)
	}

	s.entries = s.entries[:0]
	s.tensors = make(map[string]*tensor.RawTensor, len(hdr.Entries))

	hash := sha256.New()
	for _, e := range hdr.Entries {
		t, err := tensor.NewRaw(tensor.Shape(e.Shape))
		if err != nil {
			return read, fmt.Errorf("entry %s: %w", e.Name, err)
		}
		data := t.Data()
		buf := make([]byte, 4*len(data))
		n, err = io.ReadFull(r, buf)
		read += int64(n)
		if err != nil {
			return read, fmt.Errorf("entry %s payload: %w", e.Name, err)
		}
		hash.Write(buf)
		for i := range data {
			data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
		}
		s.entries = append(s.entries, Entry{Name: e.Name, Shape: e.Shape, Offset: e.Offset})
		s.tensors[e.Name] = t
	}

	var stored [sha256.Size]byte
	n, err = io.ReadFull(r, stored[:])
	read += int64(n)
	if err != nil {
		return read, fmt.Errorf("reading checksum: %w", err)
	}
	var computed [sha256.Size]byte
	hash.Sum(computed[:0])
	if computed != stored {
		return read, ErrChecksumMismatch
	}

	return read, nil
}

// Save writes the store to a file in PWTS format.
func (s *Store) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating weights file: %w", err)
	}
	defer f.Close()

	if _, err := s.WriteTo(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// Load reads a PWTS file into a new store. Errors wrap
// ErrResourceUnavailable.
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResourceUnavailable, err)
	}
	defer f.Close()

	s := NewStore()
	if _, err := s.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrResourceUnavailable, path, err)
	}
	return s, nil
}
