// Package main is the entry point for the updatecheck CLI application.
//
// This file bootstraps the application by invoking the command execution
// logic defined in the cmd package. The updatecheck tool reports which
// releases a core application and its plugins may update to.
package main

import "github.com/ajxudir/updatecheck/cmd"

// main initializes and runs the updatecheck CLI application.
//
// It delegates all command parsing and execution to the cmd package,
// which handles subcommands like resolve, releases, classify and changelog.
func main() {
	cmd.Execute()
}
