// Package snapshot implements the owner-id buffer persistence format
// used to diff a render against a prior one for the change-overlay
// stripe (spec.md §4.7): a raw fixed-width encoding and an optional
// run-length compressed variant.
package snapshot

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

var magic = [4]byte{'O', 'W', 'N', '1'}

const flagCompressed = 1 << 0

// InvalidFormatError reports a header that isn't a recognizable
// snapshot (bad magic).
type InvalidFormatError struct {
	Got [4]byte
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("snapshot: invalid format, magic %q", e.Got)
}

// ShapeMismatchError reports a snapshot whose dimensions don't match
// the map it's being loaded into.
type ShapeMismatchError struct {
	Width, Height         int
	WantWidth, WantHeight int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("snapshot: dimension mismatch: got %dx%d, want %dx%d", e.Width, e.Height, e.WantWidth, e.WantHeight)
}

// TruncatedError reports input that ended before the header or body
// promised.
type TruncatedError struct {
	Context string
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("snapshot: truncated input: %s", e.Context)
}

// Encode writes buf (width*height owner ids, mapmodel.NoOwner for
// unset) to w, optionally run-length compressed.
func Encode(w io.Writer, buf []int32, width, height int, compressed bool) error {
	if len(buf) != width*height {
		return fmt.Errorf("snapshot: encode: buffer length %d does not match %dx%d", len(buf), width, height)
	}
	var flags uint32
	if compressed {
		flags = flagCompressed
	}
	header := make([]byte, 0, 16)
	header = append(header, magic[:]...)
	header = binary.BigEndian.AppendUint32(header, uint32(width))
	header = binary.BigEndian.AppendUint32(header, uint32(height))
	header = binary.BigEndian.AppendUint32(header, flags)
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("snapshot: write header: %w", err)
	}

	if !compressed {
		body := make([]byte, len(buf)*4)
		for i, v := range buf {
			binary.BigEndian.PutUint32(body[i*4:], uint32(v))
		}
		if _, err := w.Write(body); err != nil {
			return fmt.Errorf("snapshot: write body: %w", err)
		}
		return nil
	}

	return encodeRuns(w, buf)
}

func encodeRuns(w io.Writer, buf []int32) error {
	i := 0
	for i < len(buf) {
		v := buf[i]
		count := 1
		for i+count < len(buf) && buf[i+count] == v {
			count++
		}
		run := make([]byte, 8)
		binary.BigEndian.PutUint32(run[0:4], uint32(v))
		binary.BigEndian.PutUint32(run[4:8], uint32(count))
		if _, err := w.Write(run); err != nil {
			return fmt.Errorf("snapshot: write run: %w", err)
		}
		i += count
	}
	return nil
}

// Decode reads a snapshot from r and returns the owner-id buffer
// along with its declared width/height. If wantWidth/wantHeight are
// both positive, the decoded dimensions must match or a
// *ShapeMismatchError is returned.
func Decode(r io.Reader, wantWidth, wantHeight int) (buf []int32, width, height int, err error) {
	header := make([]byte, 16)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, 0, 0, &TruncatedError{Context: "header"}
	}
	var got [4]byte
	copy(got[:], header[:4])
	if got != magic {
		return nil, 0, 0, &InvalidFormatError{Got: got}
	}
	width = int(binary.BigEndian.Uint32(header[4:8]))
	height = int(binary.BigEndian.Uint32(header[8:12]))
	flags := binary.BigEndian.Uint32(header[12:16])

	if wantWidth > 0 && wantHeight > 0 && (width != wantWidth || height != wantHeight) {
		return nil, width, height, &ShapeMismatchError{Width: width, Height: height, WantWidth: wantWidth, WantHeight: wantHeight}
	}

	total := width * height
	buf = make([]int32, total)

	if flags&flagCompressed == 0 {
		body := make([]byte, total*4)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, width, height, &TruncatedError{Context: "raw body"}
		}
		for i := range buf {
			buf[i] = int32(binary.BigEndian.Uint32(body[i*4:]))
		}
		return buf, width, height, nil
	}

	filled := 0
	run := make([]byte, 8)
	for filled < total {
		if _, err := io.ReadFull(r, run); err != nil {
			return nil, width, height, &TruncatedError{Context: "run"}
		}
		v := int32(binary.BigEndian.Uint32(run[0:4]))
		count := int(binary.BigEndian.Uint32(run[4:8]))
		if count <= 0 || filled+count > total {
			return nil, width, height, &TruncatedError{Context: "run count overflows pixel total"}
		}
		for i := 0; i < count; i++ {
			buf[filled+i] = v
		}
		filled += count
	}
	return buf, width, height, nil
}

// SaveFile atomically writes a snapshot to path via a temp-file
// rename, so a crash mid-write never leaves a corrupt file in place.
func SaveFile(path string, buf []int32, width, height int, compressed bool) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("snapshot: create temp file: %w", err)
	}
	if err := Encode(f, buf, width, height, compressed); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("snapshot: close temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("snapshot: rename temp file: %w", err)
	}
	return nil
}

// LoadFile reads a snapshot previously written by SaveFile.
func LoadFile(path string, wantWidth, wantHeight int) ([]int32, int, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("snapshot: read file: %w", err)
	}
	return Decode(bytes.NewReader(data), wantWidth, wantHeight)
}
