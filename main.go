package main

import "github.com/cine-cli/cine/cmd"

func main() {
	cmd.Execute()
}
