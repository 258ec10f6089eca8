package utils

import (
	"math"
	"math/rand"
	randv2 "math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestColVectorSoftmaxSumsToOne(t *testing.T) {
	rand.Seed(123)
	for trial := 0; trial < 10; trial++ {
		n := 2 + rand.Intn(20)
		v := mat.NewDense(n, 1, RandomArray(n, 1))
		p := ColVectorSoftmax(v)
		sum := 0.0
		for i := 0; i < n; i++ {
			pi := p.At(i, 0)
			if pi < 0 || pi > 1 {
				t.Fatalf("p[%d]=%g outside [0,1]", i, pi)
			}
			sum += pi
		}
		if math.Abs(sum-1.0) > 1e-12 {
			t.Fatalf("softmax sum = %.15g, want 1", sum)
		}
	}
}

func TestColVectorSoftmaxShiftInvariant(t *testing.T) {
	v := mat.NewDense(4, 1, []float64{0.3, -1.2, 2.5, 0.0})
	shifted := ToDense(Apply(func(_, _ int, x float64) float64 { return x + 739.25 }, v))

	p := ColVectorSoftmax(v)
	q := ColVectorSoftmax(shifted)
	for i := 0; i < 4; i++ {
		if math.Abs(p.At(i, 0)-q.At(i, 0)) > 1e-12 {
			t.Fatalf("softmax not shift invariant at %d: %.15g vs %.15g",
				i, p.At(i, 0), q.At(i, 0))
		}
	}
}

func TestColVectorSoftmaxLargeLogits(t *testing.T) {
	// Without max subtraction these would overflow exp.
	v := mat.NewDense(3, 1, []float64{1000, 1001, 999})
	p := ColVectorSoftmax(v)
	if HasNonFinite(p) {
		t.Fatal("softmax produced non-finite output for large logits")
	}
	if p.At(1, 0) <= p.At(0, 0) || p.At(0, 0) <= p.At(2, 0) {
		t.Fatal("softmax did not preserve logit ordering")
	}
}

func TestClampInPlace(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{-12, 4.9, 5.1, 700, -5.0, 0})
	ClampInPlace(m, 5)
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if math.Abs(m.At(i, j)) > 5 {
				t.Fatalf("element (%d,%d)=%g exceeds clamp", i, j, m.At(i, j))
			}
		}
	}
	if m.At(0, 1) != 4.9 {
		t.Fatalf("in-range value changed: got %g", m.At(0, 1))
	}
}

func TestHasNonFinite(t *testing.T) {
	ok := mat.NewDense(2, 2, []float64{1, -2, 0, 3})
	if HasNonFinite(ok) {
		t.Fatal("finite matrix flagged")
	}
	bad := mat.NewDense(2, 2, []float64{1, math.NaN(), 0, 3})
	if !HasNonFinite(bad) {
		t.Fatal("NaN not detected")
	}
	bad.Set(0, 1, math.Inf(-1))
	if !HasNonFinite(bad) {
		t.Fatal("Inf not detected")
	}
}

func TestSampleFromProbsDegenerate(t *testing.T) {
	// A one-hot distribution must always sample its hot index.
	probs := OneHot(6, 4)
	src := randv2.NewPCG(1, 2)
	for i := 0; i < 50; i++ {
		if ix := SampleFromProbs(probs, src); ix != 4 {
			t.Fatalf("draw %d: got %d, want 4", i, ix)
		}
	}
}

func TestSampleFromProbsCoversSupport(t *testing.T) {
	probs := mat.NewDense(3, 1, []float64{0.2, 0.5, 0.3})
	src := randv2.NewPCG(99, 0)
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		ix := SampleFromProbs(probs, src)
		if ix < 0 || ix > 2 {
			t.Fatalf("index %d outside support", ix)
		}
		seen[ix] = true
	}
	for i := 0; i < 3; i++ {
		if !seen[i] {
			t.Fatalf("index %d never drawn in 2000 samples", i)
		}
	}
}

func TestRandomArrayRange(t *testing.T) {
	rand.Seed(123)
	limit := 1.0 / math.Sqrt(50)
	for _, v := range RandomArray(1000, 50) {
		if math.Abs(v) > limit {
			t.Fatalf("value %g outside ±1/sqrt(50)", v)
		}
	}
}
