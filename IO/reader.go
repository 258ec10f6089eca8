package IO

import (
	"errors"
	"fmt"
)

// ErrCorpusTooShort means the corpus cannot supply even one full window.
var ErrCorpusTooShort = errors.New("corpus shorter than seqLength+1")

// Reader yields fixed-length consecutive (input, target) windows over the
// corpus. Targets are the inputs shifted one position forward. The cursor
// wraps to 0 whenever the remaining stream is too short for another full
// window, so the tail of each pass is skipped rather than truncated — a full
// window is always emitted, never a partial one.
type Reader struct {
	corpus    *Corpus
	seqLength int
	pointer   int
}

func NewReader(corpus *Corpus, seqLength int) (*Reader, error) {
	if seqLength <= 0 {
		return nil, fmt.Errorf("seqLength must be positive, got %d", seqLength)
	}
	if corpus.Len() < seqLength+1 {
		return nil, fmt.Errorf("%w: have %d symbols, need %d",
			ErrCorpusTooShort, corpus.Len(), seqLength+1)
	}
	return &Reader{corpus: corpus, seqLength: seqLength}, nil
}

// NextWindow returns the next (inputs, targets) pair and advances the cursor.
func (r *Reader) NextWindow() (inputs, targets []int) {
	start := r.pointer
	inputs = r.corpus.IDs[start : start+r.seqLength]
	targets = r.corpus.IDs[start+1 : start+r.seqLength+1]
	r.pointer += r.seqLength
	if r.pointer+r.seqLength+1 >= r.corpus.Len() {
		r.pointer = 0
	}
	return inputs, targets
}

// AtPassStart reports whether the cursor sits at the beginning of a pass.
// The trainer uses this to reset its recurrent state.
func (r *Reader) AtPassStart() bool { return r.pointer == 0 }

func (r *Reader) VocabSize() int { return r.corpus.VocabSize() }

func (r *Reader) Decode(id int) (rune, error) { return r.corpus.Decode(id) }
