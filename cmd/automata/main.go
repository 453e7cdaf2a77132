// Command automata запускает клеточный автомат на трёхмерной сетке.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
