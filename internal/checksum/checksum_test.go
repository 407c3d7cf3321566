package checksum

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSum_Deterministic(t *testing.T) {
	data := []byte("the same bytes every time")

	a, err := Sum(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Sum(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != b {
		t.Errorf("same input produced different digests: %s vs %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("expected 32 hex chars (128-bit digest), got %d: %s", len(a), a)
	}
}

func TestSum_KnownValue(t *testing.T) {
	// md5("hello") is a stable reference value.
	got, err := Sum(strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "5d41402abc4b2a76b9719d911017c592"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestSum_DifferentInputsDiffer(t *testing.T) {
	a, _ := Sum(strings.NewReader("document one"))
	b, _ := Sum(strings.NewReader("document two"))
	if a == b {
		t.Errorf("distinct inputs produced identical digest %s", a)
	}
}

func TestSum_LargeInputStreams(t *testing.T) {
	// Larger than several read blocks; must match the in-memory variant.
	data := bytes.Repeat([]byte("abcdefgh"), 10000)
	streamed, err := Sum(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if streamed != SumBytes(data) {
		t.Errorf("streamed digest differs from in-memory digest")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk gone")
}

func TestSum_ReadErrorSurfaces(t *testing.T) {
	if _, err := Sum(failingReader{}); err == nil {
		t.Fatal("expected error from failing reader")
	}
}
