package main

import "github.com/tychedelia/bitwig-monome/cmd"

func main() {
	cmd.Execute()
}
