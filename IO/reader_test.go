package IO

import (
	"errors"
	"strings"
	"testing"
)

func corpusOf(s string) *Corpus { return NewCorpus([]string{s}) }

func TestCorpusBuildsFirstSeenBijection(t *testing.T) {
	c := corpusOf("abac")
	if c.VocabSize() != 3 {
		t.Fatalf("vocab size = %d, want 3", c.VocabSize())
	}
	// First-seen order: a=0, b=1, c=2.
	for i, ch := range []rune{'a', 'b', 'c'} {
		id, err := c.Encode(ch)
		if err != nil {
			t.Fatal(err)
		}
		if id != i {
			t.Fatalf("Encode(%q) = %d, want %d", ch, id, i)
		}
		back, err := c.Decode(id)
		if err != nil {
			t.Fatal(err)
		}
		if back != ch {
			t.Fatalf("Decode(%d) = %q, want %q", id, back, ch)
		}
	}
}

func TestCorpusJoinsRecords(t *testing.T) {
	c := NewCorpus([]string{"ab", "ba"})
	if c.Len() != 4 {
		t.Fatalf("corpus length = %d, want 4", c.Len())
	}
	text, err := c.DecodeAll(c.IDs)
	if err != nil {
		t.Fatal(err)
	}
	if text != "abba" {
		t.Fatalf("decoded stream = %q, want %q", text, "abba")
	}
}

func TestEncodeUnknownSymbol(t *testing.T) {
	c := corpusOf("abc")
	_, err := c.Encode('z')
	var unknown *UnknownSymbolError
	if !errors.As(err, &unknown) {
		t.Fatalf("want *UnknownSymbolError, got %v", err)
	}
	if unknown.Symbol != 'z' {
		t.Fatalf("error names %q, want 'z'", unknown.Symbol)
	}
	if _, err := c.EncodeString("abz"); !errors.As(err, &unknown) {
		t.Fatalf("EncodeString: want *UnknownSymbolError, got %v", err)
	}
}

func TestDecodeOutOfRange(t *testing.T) {
	c := corpusOf("abc")
	if _, err := c.Decode(3); err == nil {
		t.Fatal("want error for out-of-range id")
	}
	if _, err := c.Decode(-1); err == nil {
		t.Fatal("want error for negative id")
	}
}

func TestReaderRejectsShortCorpus(t *testing.T) {
	c := corpusOf("abc") // 3 symbols, need seqLength+1
	if _, err := NewReader(c, 3); !errors.Is(err, ErrCorpusTooShort) {
		t.Fatalf("want ErrCorpusTooShort, got %v", err)
	}
	if _, err := NewReader(c, 2); err != nil {
		t.Fatalf("length 3 corpus should support seqLength 2: %v", err)
	}
}

func TestReaderTargetsAreInputsShiftedByOne(t *testing.T) {
	for _, tc := range []struct {
		n, l int
	}{
		{10, 3}, {11, 3}, {12, 5}, {50, 7}, {8, 7},
	} {
		c := corpusOf(strings.Repeat("abcdefghij", (tc.n+9)/10)[:tc.n])
		r, err := NewReader(c, tc.l)
		if err != nil {
			t.Fatalf("N=%d L=%d: %v", tc.n, tc.l, err)
		}
		for w := 0; w < 25; w++ {
			in, tg := r.NextWindow()
			if len(in) != tc.l || len(tg) != tc.l {
				t.Fatalf("N=%d L=%d window %d: partial window len(in)=%d len(tg)=%d",
					tc.n, tc.l, w, len(in), len(tg))
			}
			for i := 0; i < tc.l-1; i++ {
				if tg[i] != in[i+1] {
					t.Fatalf("N=%d L=%d window %d: target[%d]=%d, want input[%d]=%d",
						tc.n, tc.l, w, i, tg[i], i+1, in[i+1])
				}
			}
		}
	}
}

func TestReaderWrapsBeforeShortWindow(t *testing.T) {
	// 10 symbols, window 3: cursor 0 -> 3 -> wrap (6+3+1 >= 10).
	c := corpusOf("abcdefghij")
	r, err := NewReader(c, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !r.AtPassStart() {
		t.Fatal("fresh reader not at pass start")
	}
	in, _ := r.NextWindow()
	if in[0] != c.IDs[0] {
		t.Fatal("first window not at offset 0")
	}
	if r.AtPassStart() {
		t.Fatal("mid-pass reader claims pass start")
	}
	in, _ = r.NextWindow()
	if in[0] != c.IDs[3] {
		t.Fatalf("second window starts at id %d, want offset 3", in[0])
	}
	// Tail "ghij" is too short for another full window; the reader must have
	// wrapped instead of emitting a partial one.
	if !r.AtPassStart() {
		t.Fatal("reader did not wrap before the short tail")
	}
	in, _ = r.NextWindow()
	if in[0] != c.IDs[0] {
		t.Fatal("post-wrap window not at offset 0")
	}
}
