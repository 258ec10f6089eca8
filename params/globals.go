package params

// Vocabulary maps between characters and their dense ids.
// The mapping is built once per run from the training corpus; rebuilding it
// reassigns every id and invalidates any parameters trained against it.
type Vocabulary struct {
	TokenToID map[rune]int
	IDToToken []rune
}

type TrainingConfig struct {
	// Core model parameters
	HiddenSize   int     // recurrent state width
	SeqLen       int     // truncated BPTT window length
	LearningRate float64 // Adagrad step size

	// Stopping
	Threshold float64 // stop once smoothed loss <= Threshold
	MaxIters  int     // hard cap on iterations; 0 = run to Threshold

	// Diagnostics
	SampleEvery int // emit a generated sample every N iterations
	SampleLen   int // length of that sample
}

// Reasonable defaults for small experiments
var Config = TrainingConfig{
	HiddenSize:   100,
	SeqLen:       100,
	LearningRate: 0.1,

	Threshold: 0.01,
	MaxIters:  0,

	SampleEvery: 500,
	SampleLen:   100,
}
