package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func sampleBuffer() ([]int32, int, int) {
	width, height := 4, 2
	return []int32{1, 1, 1, -1, 2, 2, 2, 2}, width, height
}

func TestEncodeDecodeRoundTripRaw(t *testing.T) {
	buf, w, h := sampleBuffer()
	var out bytes.Buffer
	if err := Encode(&out, buf, w, h, false); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, gw, gh, err := Decode(&out, w, h)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if gw != w || gh != h {
		t.Errorf("want %dx%d, got %dx%d", w, h, gw, gh)
	}
	if !int32SliceEqual(got, buf) {
		t.Errorf("round trip mismatch: got %v, want %v", got, buf)
	}
}

func TestEncodeDecodeRoundTripCompressed(t *testing.T) {
	buf, w, h := sampleBuffer()
	var out bytes.Buffer
	if err := Encode(&out, buf, w, h, true); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, _, _, err := Decode(&out, w, h)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !int32SliceEqual(got, buf) {
		t.Errorf("round trip mismatch: got %v, want %v", got, buf)
	}
}

func TestCompressedNoLargerThanRawForRunnyBuffer(t *testing.T) {
	buf, w, h := sampleBuffer() // has runs of 3, 1, and 4 equal values
	var raw, comp bytes.Buffer
	if err := Encode(&raw, buf, w, h, false); err != nil {
		t.Fatalf("Encode raw: %v", err)
	}
	if err := Encode(&comp, buf, w, h, true); err != nil {
		t.Fatalf("Encode compressed: %v", err)
	}
	if comp.Len() > raw.Len() {
		t.Errorf("compressed form (%d bytes) should not exceed raw form (%d bytes) for a run-heavy buffer", comp.Len(), raw.Len())
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	bad := bytes.NewReader([]byte("XXXX\x00\x00\x00\x01\x00\x00\x00\x01\x00\x00\x00\x00"))
	_, _, _, err := Decode(bad, 0, 0)
	if _, ok := err.(*InvalidFormatError); !ok {
		t.Fatalf("want *InvalidFormatError, got %T: %v", err, err)
	}
}

func TestDecodeRejectsShapeMismatch(t *testing.T) {
	buf, w, h := sampleBuffer()
	var out bytes.Buffer
	if err := Encode(&out, buf, w, h, false); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, _, _, err := Decode(&out, w+1, h)
	if _, ok := err.(*ShapeMismatchError); !ok {
		t.Fatalf("want *ShapeMismatchError, got %T: %v", err, err)
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	buf, w, h := sampleBuffer()
	var out bytes.Buffer
	if err := Encode(&out, buf, w, h, false); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	truncated := bytes.NewReader(out.Bytes()[:out.Len()-2])
	_, _, _, err := Decode(truncated, w, h)
	if _, ok := err.(*TruncatedError); !ok {
		t.Fatalf("want *TruncatedError, got %T: %v", err, err)
	}
}

func TestDecodeRejectsOverflowingRunCount(t *testing.T) {
	// header for a 2x2 buffer, compressed, with one run claiming 100 pixels.
	var out bytes.Buffer
	out.Write(magic[:])
	out.Write([]byte{0, 0, 0, 2})
	out.Write([]byte{0, 0, 0, 2})
	out.Write([]byte{0, 0, 0, 1}) // flags = compressed
	out.Write([]byte{0, 0, 0, 1}) // value 1
	out.Write([]byte{0, 0, 0, 100})
	_, _, _, err := Decode(&out, 0, 0)
	if _, ok := err.(*TruncatedError); !ok {
		t.Fatalf("want *TruncatedError for an overflowing run, got %T: %v", err, err)
	}
}

func TestSaveLoadFileRoundTrip(t *testing.T) {
	buf, w, h := sampleBuffer()
	path := filepath.Join(t.TempDir(), "sov.snap")
	if err := SaveFile(path, buf, w, h, true); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	got, gw, gh, err := LoadFile(path, w, h)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if gw != w || gh != h || !int32SliceEqual(got, buf) {
		t.Errorf("round trip mismatch: got %v %dx%d, want %v %dx%d", got, gw, gh, buf, w, h)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file should not remain after a successful save")
	}
}

func int32SliceEqual(a, b []int32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
