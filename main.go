package main

import "github.com/agentic-research/nestly/cmd"

func main() {
	cmd.Execute()
}
