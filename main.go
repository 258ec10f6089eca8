package main

import (
	"flag"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/manningwu07/charRNN/IO"
	"github.com/manningwu07/charRNN/params"
	"github.com/manningwu07/charRNN/rnn"
)

var (
	corpusPath string
	logPath    string
	seedText   string
	genCount   int
	cliFlag    bool
)

func init() {
	flag.StringVar(&corpusPath, "corpus", "myDataset.csv", "Single-column CSV of training documents")
	flag.StringVar(&logPath, "log", "training_log.csv", "CSV training log path (empty to disable)")
	flag.StringVar(&seedText, "seed", "get", "Seed text for generation after training")
	flag.IntVar(&genCount, "n", 10, "Characters to generate from the seed")
	flag.BoolVar(&cliFlag, "cli", false, "Drop into an interactive generation shell after training")

	flag.IntVar(&params.Config.HiddenSize, "hidden", params.Config.HiddenSize, "Hidden state width")
	flag.IntVar(&params.Config.SeqLen, "seq", params.Config.SeqLen, "Truncated BPTT window length")
	flag.Float64Var(&params.Config.LearningRate, "lr", params.Config.LearningRate, "Adagrad learning rate")
	flag.Float64Var(&params.Config.Threshold, "threshold", params.Config.Threshold, "Smoothed-loss stop threshold")
	flag.IntVar(&params.Config.MaxIters, "iters", params.Config.MaxIters, "Iteration cap (0 = run to threshold)")
	flag.IntVar(&params.Config.SampleEvery, "sample-every", params.Config.SampleEvery, "Progress/sample interval")
	flag.IntVar(&params.Config.SampleLen, "sample-len", params.Config.SampleLen, "Length of periodic samples")
}

func main() {
	flag.Parse()
	rand.Seed(time.Now().UTC().UnixNano())

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	records, err := IO.LoadRecords(corpusPath)
	if err != nil {
		log.WithError(err).Fatal("could not load corpus")
	}
	corpus := IO.NewCorpus(records)
	log.WithFields(logrus.Fields{
		"symbols":    corpus.Len(),
		"vocab_size": corpus.VocabSize(),
	}).Info("corpus loaded")

	reader, err := IO.NewReader(corpus, params.Config.SeqLen)
	if err != nil {
		log.WithError(err).Fatal("could not build sequence reader")
	}

	model := rnn.CreateRNN(
		params.Config.HiddenSize,
		corpus.VocabSize(),
		params.Config.SeqLen,
		params.Config.LearningRate,
	)
	model.Log = log

	var logW io.Writer
	if logPath != "" {
		f, err := os.Create(logPath)
		if err != nil {
			log.WithError(err).Fatal("could not create training log")
		}
		defer f.Close()
		logW = f
	}

	t1 := time.Now()
	opts := rnn.TrainOptions{
		Threshold:   params.Config.Threshold,
		MaxIters:    params.Config.MaxIters,
		SampleEvery: params.Config.SampleEvery,
		SampleLen:   params.Config.SampleLen,
	}
	if err := model.Train(reader, opts, logW); err != nil {
		log.WithError(err).Fatal("training aborted")
	}
	log.WithField("elapsed", time.Since(t1).String()).Info("training finished")

	if seedText != "" {
		out, err := model.Predict(corpus, seedText, genCount)
		if err != nil {
			log.WithError(err).Fatal("generation failed")
		}
		log.WithField("text", out).Info("generated continuation")
	}

	if cliFlag {
		ChatCLI(model, corpus)
	}
}
