package main

import "github.com/nectime/nectime/cmd"

func main() {
	cmd.Execute()
}
