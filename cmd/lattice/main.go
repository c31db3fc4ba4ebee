package main

import (
	"fmt"
	"os"

	"github.com/agiangrant/lattice/cmd/lattice/commands"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "run":
		err = commands.Run(args)
	case "init":
		err = commands.Init(args)
	case "version", "-v", "--version":
		fmt.Printf("lattice version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`lattice - retained-mode UI runtime

Usage: lattice <command> [options]

Commands:
  run             Run the demo app in this terminal
  init            Write a lattice.toml for a new project
  version         Print version information
  help            Show this help message

Examples:
  lattice init --name counter     Create lattice.toml for "counter"
  lattice run                     Run the demo with ./lattice.toml
  lattice run --wireframe         Outline the node under the mouse

Environment:
  LATTICE_LOG_LEVEL               trace, debug, info, warn, error or off
  LATTICE_LOG_FILE                Write logs to this file
  LATTICE_LOG_NOCOLOR             Disable colored log output`)
}
