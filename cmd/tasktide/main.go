package main

import (
	"os"

	"tasktide/cmd/tasktide/commands"
)

func main() {
	os.Exit(commands.Execute())
}
