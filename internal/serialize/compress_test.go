package serialize

import (
	"bytes"
	"sync"
	"testing"
)

func newPair(t *testing.T) (*Compressor, *Decompressor) {
	t.Helper()
	c, err := NewCompressor()
	if err != nil {
		t.Fatalf("NewCompressor failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	d, err := NewDecompressor(0)
	if err != nil {
		t.Fatalf("NewDecompressor failed: %v", err)
	}
	t.Cleanup(d.Close)
	return c, d
}

func TestCompressRoundTrip(t *testing.T) {
	c, d := newPair(t)

	data := bytes.Repeat([]byte(`{"filter":{"name":{"like":"B%"}}}`), 64)
	compressed := c.Compress(data)
	if len(compressed) >= len(data) {
		t.Errorf("expected compression, got %d >= %d bytes", len(compressed), len(data))
	}

	got, err := d.Decompress(compressed)
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(data, got) {
		t.Error("round trip mismatch")
	}
}

func TestCompressEmpty(t *testing.T) {
	c, d := newPair(t)

	if got := c.Compress(nil); len(got) != 0 {
		t.Errorf("expected empty output, got %d bytes", len(got))
	}
	got, err := d.Decompress(nil)
	if err != nil || len(got) != 0 {
		t.Errorf("expected empty output, got %d bytes, err %v", len(got), err)
	}
}

func TestDecompressGarbage(t *testing.T) {
	_, d := newPair(t)
	if _, err := d.Decompress([]byte("not zstd")); err == nil {
		t.Error("expected error for invalid frame")
	}
}

func TestConcurrentUse(t *testing.T) {
	c, d := newPair(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data := bytes.Repeat([]byte{byte(i)}, 256)
			got, err := d.Decompress(c.Compress(data))
			if err != nil || !bytes.Equal(data, got) {
				t.Errorf("goroutine %d: round trip failed: %v", i, err)
			}
		}(i)
	}
	wg.Wait()
}
