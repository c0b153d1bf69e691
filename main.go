package main

import "github.com/brogergvhs/pollsmooth/cmd"

func main() {
	cmd.Execute()
}
