package main

import "github.com/gnames/gnlca/cmd"

func main() {
	cmd.Execute()
}
