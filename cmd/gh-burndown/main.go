package main

import "github.com/goblinsan/gh-burndown/cmd/gh-burndown/commands"

func main() {
	commands.Execute()
}
