package core

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"
)

func TestSkipBOM(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "table with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("instrument,x")...),
			expected: "instrument,x",
		},
		{
			name:     "table without BOM",
			input:    []byte("instrument,x"),
			expected: "instrument,x",
		},
		{
			name:     "empty",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM kept",
			input:    []byte{0xEF, 0xBB, 'a'},
			expected: string([]byte{0xEF, 0xBB, 'a'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(skipBOM(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestUTF8Sanitizer(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "ascii",
			input:    []byte("a,b"),
			expected: "a,b",
		},
		{
			name:     "multibyte kept",
			input:    []byte("gain,µ"),
			expected: "gain,µ",
		},
		{
			name:     "invalid byte replaced",
			input:    []byte{'a', 0x80, 'b'},
			expected: "a?b",
		},
		{
			name:     "truncated sequence at EOF",
			input:    []byte{'a', 0xE2, 0x82},
			expected: "a??",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := io.ReadAll(newUTF8Sanitizer(bytes.NewReader(tt.input)))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestUTF8Sanitizer_SplitAcrossReads(t *testing.T) {
	// OneByteReader delivers each byte of "€" in its own Read.
	input := "x=€,y=µ"
	result, err := io.ReadAll(newUTF8Sanitizer(iotest.OneByteReader(strings.NewReader(input))))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != input {
		t.Errorf("got %q, want %q", string(result), input)
	}
}

func TestCountingReader(t *testing.T) {
	data := strings.Repeat("instrument,x\n", 100)
	cr := &countingReader{r: strings.NewReader(data)}

	if _, err := io.Copy(io.Discard, cr); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cr.n != int64(len(data)) {
		t.Errorf("counted %d bytes, want %d", cr.n, len(data))
	}
}

func TestWrapTableReader(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte{'i', 'd', 0xFF, '\n'}...)
	r := wrapTableReader(bytes.NewReader(input))

	result, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(result) != "id?\n" {
		t.Errorf("got %q, want %q", string(result), "id?\n")
	}
	if r.n != 4 {
		t.Errorf("counted %d bytes, want 4", r.n)
	}
}
