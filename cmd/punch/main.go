// Package main is the entry point for the punch command-line time tracker.
package main

import "punch/cmd/punch/commands"

func main() {
	commands.Execute()
}
