package main

import (
	"github.com/migrata/migrata/cmd/migrata/command"
)

func main() {
	command.Execute()
}
