package rnn

import (
	"fmt"
	"math"
	randv2 "math/rand/v2"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/manningwu07/charRNN/utils"
)

// GradClip bounds every gradient element after BPTT accumulation. Clamping is
// silent: it limits magnitude instead of reporting instability.
const GradClip = 5.0

const adagradEps = 1e-8

// RNN is a single-layer tanh recurrent model over a character vocabulary.
// It exclusively owns its parameters and Adagrad accumulators; only Update
// mutates them. Not safe for concurrent use — training, sampling and updates
// all run on one goroutine.
type RNN struct {
	HiddenSize   int
	VocabSize    int
	SeqLen       int
	LearningRate float64

	// Parameters
	U *mat.Dense // input -> hidden  (hidden x vocab)
	V *mat.Dense // hidden -> output (vocab x hidden)
	W *mat.Dense // hidden -> hidden (hidden x hidden)
	B *mat.Dense // hidden bias      (hidden x 1)
	C *mat.Dense // output bias      (vocab x 1)

	// Adagrad memories, same shapes as their parameters. They only grow and
	// are never reset during a run.
	MU, MV, MW, MB, MC *mat.Dense

	// Src drives stochastic generation; swap it for a fixed seed in tests.
	Src randv2.Source

	Log *logrus.Logger
}

// ForwardPass is the per-step value bundle captured during Forward and
// consumed intact by Backward: one-hot inputs, hidden states, probabilities,
// plus the hidden state the window started from.
type ForwardPass struct {
	Xs    []*mat.Dense // (vocab x 1) one-hot inputs
	Hs    []*mat.Dense // (hidden x 1) hidden states
	Ps    []*mat.Dense // (vocab x 1) output distributions
	HPrev *mat.Dense   // (hidden x 1) state before step 0
}

// Gradients holds one tensor per parameter, shaped like its parameter.
type Gradients struct {
	DU, DV, DW, DB, DC *mat.Dense
}

// Initialization

func CreateRNN(hiddenSize, vocabSize, seqLen int, learningRate float64) *RNN {
	r := &RNN{
		HiddenSize:   hiddenSize,
		VocabSize:    vocabSize,
		SeqLen:       seqLen,
		LearningRate: learningRate,

		U: mat.NewDense(hiddenSize, vocabSize, utils.RandomArray(hiddenSize*vocabSize, float64(vocabSize))),
		V: mat.NewDense(vocabSize, hiddenSize, utils.RandomArray(vocabSize*hiddenSize, float64(hiddenSize))),
		W: mat.NewDense(hiddenSize, hiddenSize, utils.RandomArray(hiddenSize*hiddenSize, float64(hiddenSize))),
		B: mat.NewDense(hiddenSize, 1, nil),
		C: mat.NewDense(vocabSize, 1, nil),

		MU: mat.NewDense(hiddenSize, vocabSize, nil),
		MV: mat.NewDense(vocabSize, hiddenSize, nil),
		MW: mat.NewDense(hiddenSize, hiddenSize, nil),
		MB: mat.NewDense(hiddenSize, 1, nil),
		MC: mat.NewDense(vocabSize, 1, nil),

		Src: randv2.NewPCG(randv2.Uint64(), randv2.Uint64()),
		Log: logrus.New(),
	}
	return r
}

// ZeroState returns a fresh all-zero hidden state.
func (r *RNN) ZeroState() *mat.Dense {
	return mat.NewDense(r.HiddenSize, 1, nil)
}

// step advances the recurrence by one symbol:
// h' = tanh(U·x + W·h + B), probs = softmax(V·h' + C).
// Shared by Forward and by the two generation paths so they cannot drift.
func (r *RNN) step(x, h *mat.Dense) (hNext, probs *mat.Dense) {
	raw := utils.Add(utils.Add(utils.Dot(r.U, x), utils.Dot(r.W, h)), r.B)
	hNext = utils.ToDense(utils.Apply(func(_, _ int, v float64) float64 {
		return math.Tanh(v)
	}, raw))
	logits := utils.ToDense(utils.Add(utils.Dot(r.V, hNext), r.C))
	return hNext, utils.ColVectorSoftmax(logits)
}

// Forward runs the window through the recurrence, starting from hprev.
// It captures every intermediate value Backward will need and touches no
// parameters.
func (r *RNN) Forward(inputs []int, hprev *mat.Dense) *ForwardPass {
	pass := &ForwardPass{
		Xs:    make([]*mat.Dense, len(inputs)),
		Hs:    make([]*mat.Dense, len(inputs)),
		Ps:    make([]*mat.Dense, len(inputs)),
		HPrev: mat.DenseCopyOf(hprev),
	}
	h := pass.HPrev
	for t, ix := range inputs {
		pass.Xs[t] = utils.OneHot(r.VocabSize, ix)
		h, pass.Ps[t] = r.step(pass.Xs[t], h)
		pass.Hs[t] = h
	}
	return pass
}

// Backward computes exact gradients through time by walking the window in
// reverse, carrying the hidden gradient between steps. Gradients are clamped
// elementwise to ±GradClip; a non-finite gradient (NaN/Inf, detected before
// clamping can hide it) aborts with an error. Parameters are not touched.
func (r *RNN) Backward(pass *ForwardPass, targets []int) (*Gradients, error) {
	g := &Gradients{
		DU: utils.ZerosLike(r.U),
		DV: utils.ZerosLike(r.V),
		DW: utils.ZerosLike(r.W),
		DB: utils.ZerosLike(r.B),
		DC: utils.ZerosLike(r.C),
	}
	dhNext := r.ZeroState()

	for t := len(targets) - 1; t >= 0; t-- {
		// Combined softmax + cross-entropy gradient: dy = p, dy[target] -= 1.
		dy := mat.DenseCopyOf(pass.Ps[t])
		dy.Set(targets[t], 0, dy.At(targets[t], 0)-1)

		g.DV.Add(g.DV, utils.ToDense(utils.Dot(dy, pass.Hs[t].T())))
		g.DC.Add(g.DC, dy)

		// Hidden gradient from the output layer plus the step after this one.
		dh := utils.ToDense(utils.Add(utils.Dot(r.V.T(), dy), dhNext))

		// Through the tanh: (1 - h^2) ⊙ dh.
		one := utils.Apply(func(_, _ int, v float64) float64 { return 1 - v*v }, pass.Hs[t])
		dhRaw := utils.ToDense(utils.Multiply(one, dh))

		hPrev := pass.HPrev
		if t > 0 {
			hPrev = pass.Hs[t-1]
		}
		g.DB.Add(g.DB, dhRaw)
		g.DU.Add(g.DU, utils.ToDense(utils.Dot(dhRaw, pass.Xs[t].T())))
		g.DW.Add(g.DW, utils.ToDense(utils.Dot(dhRaw, hPrev.T())))

		dhNext = utils.ToDense(utils.Dot(r.W.T(), dhRaw))
	}

	for _, d := range []*mat.Dense{g.DU, g.DV, g.DW, g.DB, g.DC} {
		if utils.HasNonFinite(d) {
			return nil, fmt.Errorf("non-finite gradient after BPTT accumulation")
		}
		utils.ClampInPlace(d, GradClip)
	}
	return g, nil
}

// Loss is the summed cross-entropy of the window: Σ_t −log p_t[target_t].
func (r *RNN) Loss(pass *ForwardPass, targets []int) float64 {
	loss := 0.0
	for t, target := range targets {
		loss -= math.Log(pass.Ps[t].At(target, 0) + 1e-12)
	}
	return loss
}

// Update applies one Adagrad step in place:
// mem += g⊙g; param -= lr · g / sqrt(mem + eps).
// The five tensors are independent, so update order does not matter.
func (r *RNN) Update(g *Gradients) {
	triples := []struct {
		param, grad, mem *mat.Dense
	}{
		{r.U, g.DU, r.MU},
		{r.V, g.DV, r.MV},
		{r.W, g.DW, r.MW},
		{r.B, g.DB, r.MB},
		{r.C, g.DC, r.MC},
	}
	for _, tr := range triples {
		pr, pc := tr.param.Dims()
		if gr, gc := tr.grad.Dims(); gr != pr || gc != pc {
			panic("Update: grad shape mismatch")
		}
		for i := 0; i < pr; i++ {
			for j := 0; j < pc; j++ {
				gij := tr.grad.At(i, j)
				mij := tr.mem.At(i, j) + gij*gij
				tr.mem.Set(i, j, mij)
				tr.param.Set(i, j, tr.param.At(i, j)-r.LearningRate*gij/math.Sqrt(mij+adagradEps))
			}
		}
	}
}

// Sample generates n indices starting from hidden state h and seed symbol
// seedIx. Each next symbol is drawn from the full output distribution — the
// whole probability vector weights the draw, never an arg-max. h is copied;
// the caller's state is untouched.
func (r *RNN) Sample(h *mat.Dense, seedIx, n int) []int {
	x := utils.OneHot(r.VocabSize, seedIx)
	hs := mat.DenseCopyOf(h)
	out := make([]int, 0, n)
	for t := 0; t < n; t++ {
		var probs *mat.Dense
		hs, probs = r.step(x, hs)
		ix := utils.SampleFromProbs(probs, r.Src)
		x = utils.OneHot(r.VocabSize, ix)
		out = append(out, ix)
	}
	return out
}
