package main

import (
	"os"

	"github.com/bz888/cafeteira/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
