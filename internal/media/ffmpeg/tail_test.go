package ffmpeg

import (
	"slices"
	"testing"
)

func TestTailSplitsCarriageReturns(t *testing.T) {
	tail := NewTail(3)
	_, _ = tail.Write([]byte("one\ntwo\rthree\r\n"))
	_, _ = tail.Write([]byte("four\nfi"))
	_, _ = tail.Write([]byte("ve"))

	want := []string{"three", "four", "five"}
	if got := tail.Lines(); !slices.Equal(got, want) {
		t.Fatalf("Lines() = %v, want %v", got, want)
	}
	if tail.String() != "three\nfour\nfive" {
		t.Fatalf("String() = %q", tail.String())
	}
}

func TestTailDefaultLimit(t *testing.T) {
	tail := NewTail(0)
	for i := 0; i < 50; i++ {
		_, _ = tail.Write([]byte("line\n"))
	}
	if got := len(tail.Lines()); got != 20 {
		t.Fatalf("retained %d lines, want 20", got)
	}
}
