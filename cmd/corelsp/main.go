package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
