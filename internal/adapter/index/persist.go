package index

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"math"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// File layout (little-endian):
//
//	header   32 bytes  magic "VIDX", version, flags, dimension, count,
//	                   snapshot length, payload length
//	snapshot           UTF-8 snapshot ID
//	payload            count*dimension float32 values, zstd when flagCompressed
//	checksum 4 bytes   CRC32 (IEEE) of everything above
const (
	fileVersion    = 1
	headerSize     = 32
	checksumSize   = 4
	flagCompressed = 1 << 0

	// maxDecodedPayload bounds the decompressed vector section.
	maxDecodedPayload = 1 << 32
)

var fileMagic = [4]byte{'V', 'I', 'D', 'X'}

var (
	ErrIndexMissing = errors.New("index file not found")
	ErrIndexEmpty   = errors.New("index file is empty")
	ErrIndexCorrupt = errors.New("index file is corrupt")
)

type fileHeader struct {
	Magic       [4]byte
	Version     uint16
	Flags       uint16
	Dimension   uint32
	Count       uint64
	SnapshotLen uint32
	PayloadLen  uint64
}

// SaveOptions controls the on-disk encoding.
type SaveOptions struct {
	Compress bool
}

// Save writes the index to path atomically: the file is written next to
// path and renamed into place.
func (f *Flat) Save(path string, opts SaveOptions) error {
	data, err := f.encode(opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move index into place: %w", err)
	}
	return nil
}

func (f *Flat) encode(opts SaveOptions) ([]byte, error) {
	raw := make([]byte, 4*len(f.data))
	for i, v := range f.data {
		binary.LittleEndian.PutUint32(raw[4*i:], math.Float32bits(v))
	}

	var flags uint16
	payload := raw
	if opts.Compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		payload = enc.EncodeAll(raw, nil)
		enc.Close()
		flags |= flagCompressed
	}

	hdr := fileHeader{
		Magic:       fileMagic,
		Version:     fileVersion,
		Flags:       flags,
		Dimension:   uint32(f.dimension),
		Count:       uint64(f.count),
		SnapshotLen: uint32(len(f.snapshot)),
		PayloadLen:  uint64(len(payload)),
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + len(f.snapshot) + len(payload) + checksumSize)
	if err := binary.Write(&buf, binary.LittleEndian, hdr); err != nil {
		return nil, err
	}
	buf.WriteString(f.snapshot)
	buf.Write(payload)

	sum := crc32.ChecksumIEEE(buf.Bytes())
	if err := binary.Write(&buf, binary.LittleEndian, sum); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads an index written by Save. Missing, empty and malformed files
// are reported as ErrIndexMissing, ErrIndexEmpty and ErrIndexCorrupt.
func Load(path string) (*Flat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrIndexMissing, path)
		}
		return nil, fmt.Errorf("failed to read index: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrIndexEmpty, path)
	}
	return decode(data)
}

func decode(data []byte) (*Flat, error) {
	if len(data) < headerSize+checksumSize {
		return nil, fmt.Errorf("%w: truncated header", ErrIndexCorrupt)
	}

	var hdr fileHeader
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
	}
	if hdr.Magic != fileMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrIndexCorrupt, hdr.Magic[:])
	}
	if hdr.Version != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrIndexCorrupt, hdr.Version)
	}

	body := data[:len(data)-checksumSize]
	want := binary.LittleEndian.Uint32(data[len(data)-checksumSize:])
	if got := crc32.ChecksumIEEE(body); got != want {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrIndexCorrupt)
	}

	size := uint64(len(body))
	if uint64(hdr.SnapshotLen) > size || hdr.PayloadLen > size ||
		size != headerSize+uint64(hdr.SnapshotLen)+hdr.PayloadLen {
		return nil, fmt.Errorf("%w: section lengths do not match file size", ErrIndexCorrupt)
	}
	if hdr.Count == 0 {
		return nil, ErrIndexEmpty
	}
	if hdr.Dimension == 0 {
		return nil, fmt.Errorf("%w: zero dimension", ErrIndexCorrupt)
	}

	snapshot := string(body[headerSize : headerSize+hdr.SnapshotLen])
	payload := body[headerSize+hdr.SnapshotLen:]

	raw := payload
	if hdr.Flags&flagCompressed != 0 {
		dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecodedPayload))
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
		}
		raw, err = dec.DecodeAll(payload, nil)
		dec.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIndexCorrupt, err)
		}
	}

	floats := uint64(len(raw)) / 4
	if uint64(len(raw))%4 != 0 || floats%uint64(hdr.Dimension) != 0 || floats/uint64(hdr.Dimension) != hdr.Count {
		return nil, fmt.Errorf("%w: %d vector bytes do not hold %d vectors of dimension %d",
			ErrIndexCorrupt, len(raw), hdr.Count, hdr.Dimension)
	}
	vectors := make([]float32, floats)
	for i := range vectors {
		vectors[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}

	return &Flat{
		data:      vectors,
		dimension: int(hdr.Dimension),
		count:     int(hdr.Count),
		snapshot:  snapshot,
	}, nil
}
