// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package capture

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pierrec/lz4"
	"golang.org/x/exp/mmap"
)

// Archive layout: magic, the gob encoded Header length as a little endian
// int64, the Header itself, then every snapshot as its own lz4 stream of JSON.
// Index offsets are relative to the end of the Header, so an entry can be
// decompressed in place without reading any other.
const (
	MagicLength      = 4
	HeaderSizeLength = 8
	FormatVersion    = 1
)

var magic = [MagicLength]byte{'K', 'C', 'A', 'P'}

// package errors
var (
	ErrFileFormat = errors.New("corrupted or not a snapshot archive")
	ErrNotFound   = errors.New("snapshot not found in archive")
	ErrDuplicate  = errors.New("snapshot already in archive")
)

// IndexEntry locates one snapshot in the archive.
type IndexEntry struct {
	ID             string
	Label          string
	Taken          int64
	Offset         int64
	Size           int64
	CompressedSize int64
}

// Header is written once, in front of all entries.
type Header struct {
	Author      string
	DateCreated int64
	Version     int64
	Index       []IndexEntry
}

type entry struct {
	index IndexEntry
	data  []byte
}

// Builder collects snapshots and writes them out as one archive.
// Add may be called from several goroutines.
type Builder struct {
	author string

	mutex   sync.Mutex
	entries []entry
}

// NewBuilder returns an empty Builder.
func NewBuilder(author string) *Builder {
	return &Builder{author: author}
}

// Add compresses s and queues it for writing. Snapshots are keyed by ID.
func (b *Builder) Add(s *Snapshot) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return errors.Wrapf(err, "encode snapshot %s", s.ID)
	}

	var compressed bytes.Buffer
	w := lz4.NewWriter(&compressed)
	if _, err := w.Write(raw); err != nil {
		return errors.Wrapf(err, "compress snapshot %s", s.ID)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "compress snapshot %s", s.ID)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, e := range b.entries {
		if e.index.ID == s.ID {
			return errors.Wrap(ErrDuplicate, s.ID)
		}
	}
	b.entries = append(b.entries, entry{
		index: IndexEntry{
			ID:             s.ID,
			Label:          s.Label,
			Taken:          s.Taken,
			Size:           int64(len(raw)),
			CompressedSize: int64(compressed.Len()),
		},
		data: compressed.Bytes(),
	})
	return nil
}

// Len is the number of snapshots added so far.
func (b *Builder) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.entries)
}

// WriteTo writes the archive to w, in the order snapshots were added.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	header := Header{
		Author:      b.author,
		DateCreated: time.Now().Unix(),
		Version:     FormatVersion,
	}
	var offset int64
	for _, e := range b.entries {
		idx := e.index
		idx.Offset = offset
		offset += idx.CompressedSize
		header.Index = append(header.Index, idx)
	}

	var rawHeader bytes.Buffer
	if err := gob.NewEncoder(&rawHeader).Encode(header); err != nil {
		return 0, errors.Wrap(err, "encode archive header")
	}

	var prefix [MagicLength + HeaderSizeLength]byte
	copy(prefix[:], magic[:])
	binary.LittleEndian.PutUint64(prefix[MagicLength:], uint64(rawHeader.Len()))

	var written int64
	chunks := [][]byte{prefix[:], rawHeader.Bytes()}
	for _, e := range b.entries {
		chunks = append(chunks, e.data)
	}
	for _, chunk := range chunks {
		n, err := w.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, errors.Wrap(err, "write archive")
		}
	}
	return written, nil
}

// Archive reads snapshots out of an archive. Safe for concurrent use.
type Archive struct {
	reader io.ReaderAt
	closer io.Closer
	header Header
	data   int64
}

// Open reads the header of the archive in r, failing with ErrFileFormat
// when r does not hold one.
func Open(r io.ReaderAt) (*Archive, error) {
	var prefix [MagicLength + HeaderSizeLength]byte
	if _, err := r.ReadAt(prefix[:], 0); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrFileFormat
		}
		return nil, err
	}
	if !bytes.Equal(prefix[:MagicLength], magic[:]) {
		return nil, ErrFileFormat
	}

	headerSize := int64(binary.LittleEndian.Uint64(prefix[MagicLength:]))
	if headerSize <= 0 {
		return nil, ErrFileFormat
	}
	section := io.NewSectionReader(r, int64(len(prefix)), headerSize)

	var header Header
	if err := gob.NewDecoder(section).Decode(&header); err != nil {
		return nil, errors.WithSecondaryError(errors.Wrap(ErrFileFormat, "decode archive header"), err)
	}
	if header.Version != FormatVersion {
		return nil, errors.Wrapf(ErrFileFormat, "unsupported version %d", header.Version)
	}

	return &Archive{
		reader: r,
		header: header,
		data:   int64(len(prefix)) + headerSize,
	}, nil
}

// OpenFile memory maps the archive at path. Close releases the mapping.
func OpenFile(path string) (*Archive, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "map %s", path)
	}
	a, err := Open(m)
	if err != nil {
		m.Close()
		return nil, errors.Wrap(err, path)
	}
	a.closer = m
	return a, nil
}

// Header returns the archive header.
func (a *Archive) Header() Header {
	return a.header
}

// Entries lists the snapshots in the archive.
func (a *Archive) Entries() []IndexEntry {
	return a.header.Index
}

// Load decompresses the snapshot with the given ID.
func (a *Archive) Load(id string) (*Snapshot, error) {
	for _, idx := range a.header.Index {
		if idx.ID == id {
			return a.load(idx)
		}
	}
	return nil, errors.Wrap(ErrNotFound, id)
}

// Latest loads the most recently taken snapshot.
func (a *Archive) Latest() (*Snapshot, error) {
	if len(a.header.Index) == 0 {
		return nil, errors.Wrap(ErrNotFound, "archive is empty")
	}
	latest := a.header.Index[0]
	for _, idx := range a.header.Index[1:] {
		if idx.Taken > latest.Taken {
			latest = idx
		}
	}
	return a.load(latest)
}

func (a *Archive) load(idx IndexEntry) (*Snapshot, error) {
	section := io.NewSectionReader(a.reader, a.data+idx.Offset, idx.CompressedSize)
	raw, err := io.ReadAll(lz4.NewReader(section))
	if err != nil {
		return nil, errors.Wrapf(err, "decompress snapshot %s", idx.ID)
	}
	if int64(len(raw)) != idx.Size {
		return nil, errors.Wrapf(ErrFileFormat, "snapshot %s is %d bytes, index says %d", idx.ID, len(raw), idx.Size)
	}

	var s Snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errors.Wrapf(err, "decode snapshot %s", idx.ID)
	}
	return &s, nil
}

// Close releases the memory mapping of an archive from OpenFile.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

// Append adds s to the archive at path, creating it when missing.
// Archives cannot be grown in place, so the file is rewritten.
func Append(path, author string, s *Snapshot) error {
	b := NewBuilder(author)

	if _, err := os.Stat(path); err == nil {
		a, err := OpenFile(path)
		if err != nil {
			return err
		}
		for _, idx := range a.Entries() {
			existing, err := a.load(idx)
			if err != nil {
				a.Close()
				return err
			}
			if err := b.Add(existing); err != nil {
				a.Close()
				return err
			}
		}
		if err := a.Close(); err != nil {
			return errors.Wrapf(err, "unmap %s", path)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "stat %s", path)
	}

	if err := b.Add(s); err != nil {
		return err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmp)
	}
	if _, err := b.WriteTo(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, "close %s", tmp)
	}
	return errors.Wrapf(os.Rename(tmp, path), "rename %s", tmp)
}
