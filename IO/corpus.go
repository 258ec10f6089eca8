package IO

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/manningwu07/charRNN/params"
)

// UnknownSymbolError reports a character that is not part of the learned
// alphabet. There is no out-of-vocabulary policy: the caller must treat this
// as fatal for the current run.
type UnknownSymbolError struct {
	Symbol rune
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("unknown symbol %q: not in the corpus alphabet", e.Symbol)
}

// Corpus is the flattened character stream plus its alphabet. It is built once
// and read-only afterwards; the id assignment is first-seen order and stays
// fixed for the lifetime of the run.
type Corpus struct {
	Vocab params.Vocabulary
	IDs   []int
}

// LoadRecords reads a single-column CSV (one logical document per record).
func LoadRecords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}
	records := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) > 0 {
			records = append(records, row[0])
		}
	}
	return records, nil
}

// NewCorpus joins the records into one logical stream and builds the alphabet.
func NewCorpus(records []string) *Corpus {
	c := &Corpus{
		Vocab: params.Vocabulary{TokenToID: make(map[rune]int)},
	}
	for _, rec := range records {
		for _, ch := range rec {
			id, ok := c.Vocab.TokenToID[ch]
			if !ok {
				id = len(c.Vocab.IDToToken)
				c.Vocab.TokenToID[ch] = id
				c.Vocab.IDToToken = append(c.Vocab.IDToToken, ch)
			}
			c.IDs = append(c.IDs, id)
		}
	}
	return c
}

func (c *Corpus) Len() int       { return len(c.IDs) }
func (c *Corpus) VocabSize() int { return len(c.Vocab.IDToToken) }

func (c *Corpus) Encode(ch rune) (int, error) {
	id, ok := c.Vocab.TokenToID[ch]
	if !ok {
		return 0, &UnknownSymbolError{Symbol: ch}
	}
	return id, nil
}

// EncodeString maps every character of s to its id, failing on the first
// character outside the alphabet.
func (c *Corpus) EncodeString(s string) ([]int, error) {
	ids := make([]int, 0, len(s))
	for _, ch := range s {
		id, err := c.Encode(ch)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (c *Corpus) Decode(id int) (rune, error) {
	if id < 0 || id >= len(c.Vocab.IDToToken) {
		return 0, fmt.Errorf("id %d outside vocabulary of size %d", id, len(c.Vocab.IDToToken))
	}
	return c.Vocab.IDToToken[id], nil
}

// DecodeAll renders ids as text, skipping nothing; ids must all be in range.
func (c *Corpus) DecodeAll(ids []int) (string, error) {
	out := make([]rune, len(ids))
	for i, id := range ids {
		ch, err := c.Decode(id)
		if err != nil {
			return "", err
		}
		out[i] = ch
	}
	return string(out), nil
}
