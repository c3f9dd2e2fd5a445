package main

import "github.com/progkeep/progkeep/cmd"

func main() {
	cmd.Execute()
}
