package rnn

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/charRNN/utils"
)

// SequenceReader is the seam between the data-loading collaborator and the
// model core. Anything that can hand out consecutive (input, target) windows
// and decode ids back to characters can drive training.
type SequenceReader interface {
	NextWindow() (inputs, targets []int)
	AtPassStart() bool
	VocabSize() int
	Decode(id int) (rune, error)
}

// Codec encodes seed text for Predict and decodes generated ids.
type Codec interface {
	EncodeString(s string) ([]int, error)
	Decode(id int) (rune, error)
}

// TrainOptions tunes the loop without touching model hyperparameters.
type TrainOptions struct {
	Threshold   float64 // stop once smoothed loss <= Threshold
	MaxIters    int     // 0 = no cap
	SampleEvery int     // emit a sample + progress entry every N iterations
	SampleLen   int
}

// Train drives the Reader → Forward → Backward → Update cycle until the
// smoothed loss reaches opts.Threshold (or MaxIters, when set). When logW is
// non-nil, one (iteration, smoothed_loss) CSV row is appended per progress
// interval.
//
// The smoothed loss warm-starts at −ln(1/V)·L, the expected loss of a
// uniform-random predictor; starting from zero would make early readings look
// misleadingly good. The hidden state is zeroed whenever the reader is at a
// pass boundary — recurrent memory is deliberately discarded at wraps — and
// otherwise carried from window to window.
func (r *RNN) Train(reader SequenceReader, opts TrainOptions, logW io.Writer) error {
	var trainLog *csv.Writer
	if logW != nil {
		trainLog = csv.NewWriter(logW)
		trainLog.Write([]string{"iteration", "smoothed_loss"})
		defer trainLog.Flush()
	}

	smoothLoss := -math.Log(1.0/float64(reader.VocabSize())) * float64(r.SeqLen)
	hprev := r.ZeroState()

	for iter := 0; ; iter++ {
		if reader.AtPassStart() {
			hprev = r.ZeroState()
		}
		inputs, targets := reader.NextWindow()

		pass := r.Forward(inputs, hprev)
		grads, err := r.Backward(pass, targets)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", iter, err)
		}
		loss := r.Loss(pass, targets)
		if math.IsNaN(loss) || math.IsInf(loss, 0) {
			return fmt.Errorf("iteration %d: non-finite loss", iter)
		}
		r.Update(grads)

		smoothLoss = smoothLoss*0.999 + loss*0.001
		hprev = pass.Hs[len(pass.Hs)-1]

		if opts.SampleEvery > 0 && iter%opts.SampleEvery == 0 {
			r.emitProgress(reader, trainLog, iter, smoothLoss, hprev, inputs[0], opts.SampleLen)
		}

		if smoothLoss <= opts.Threshold {
			r.Log.WithFields(logrus.Fields{
				"iteration":     iter,
				"smoothed_loss": smoothLoss,
			}).Info("loss threshold reached, stopping")
			return nil
		}
		if opts.MaxIters > 0 && iter+1 >= opts.MaxIters {
			r.Log.WithFields(logrus.Fields{
				"iteration":     iter,
				"smoothed_loss": smoothLoss,
			}).Warn("iteration cap reached before loss threshold")
			return nil
		}
	}
}

// emitProgress is observational only: it never changes model state. Sampling
// copies the hidden state, so the carried hprev is unaffected.
func (r *RNN) emitProgress(reader SequenceReader, trainLog *csv.Writer,
	iter int, smoothLoss float64, hprev *mat.Dense, seedIx, sampleLen int) {

	sampled := r.Sample(hprev, seedIx, sampleLen)
	text := make([]rune, 0, len(sampled))
	for _, ix := range sampled {
		ch, err := reader.Decode(ix)
		if err != nil {
			r.Log.WithError(err).Warn("could not decode sampled id")
			continue
		}
		text = append(text, ch)
	}
	r.Log.WithFields(logrus.Fields{
		"iteration":     iter,
		"smoothed_loss": smoothLoss,
		"sample":        string(text),
	}).Info("training progress")

	if trainLog != nil {
		trainLog.Write([]string{
			strconv.Itoa(iter),
			strconv.FormatFloat(smoothLoss, 'f', 6, 64),
		})
		trainLog.Flush()
	}
}

// Predict continues seedText with n freshly sampled characters. The hidden
// state is seeded by feeding every seed symbol through the recurrence from a
// zero state, then generation proceeds exactly as Sample. The returned text
// includes the seed.
func (r *RNN) Predict(codec Codec, seedText string, n int) (string, error) {
	seedIDs, err := codec.EncodeString(seedText)
	if err != nil {
		return "", err
	}
	if len(seedIDs) == 0 {
		return "", fmt.Errorf("empty seed text")
	}

	h := r.ZeroState()
	for _, ix := range seedIDs[:len(seedIDs)-1] {
		h, _ = r.step(utils.OneHot(r.VocabSize, ix), h)
	}
	generated := r.Sample(h, seedIDs[len(seedIDs)-1], n)

	out := make([]rune, 0, len(seedIDs)+n)
	for _, ix := range append(seedIDs, generated...) {
		ch, err := codec.Decode(ix)
		if err != nil {
			return "", err
		}
		out = append(out, ch)
	}
	return string(out), nil
}
