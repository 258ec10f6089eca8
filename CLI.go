package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manningwu07/charRNN/IO"
	"github.com/manningwu07/charRNN/rnn"
)

// ChatCLI is an interactive generation shell: each line is a seed string and
// the reply is the model's sampled continuation. Type 'exit' to quit.
func ChatCLI(model *rnn.RNN, corpus *IO.Corpus) {
	reader := bufio.NewReader(os.Stdin)
	fmt.Println("charRNN shell. Type 'exit' to quit.")
	for {
		fmt.Print("seed> ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		input = strings.TrimSpace(input)
		if input == "exit" {
			break
		}
		if input == "" {
			continue
		}
		out, err := model.Predict(corpus, input, 100)
		if err != nil {
			var unknown *IO.UnknownSymbolError
			if errors.As(err, &unknown) {
				fmt.Printf("seed contains a character the model never saw: %q\n", unknown.Symbol)
				continue
			}
			fmt.Println("generation failed:", err)
			continue
		}
		fmt.Println(out)
	}
}
