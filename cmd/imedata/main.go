// Command imedata builds, inspects and publishes imecore data sets.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	errUsage = errors.New("usage")
	errHelp  = errors.New("help requested")
)

type command struct {
	name    string
	summary string
	run     func(args []string, stdout io.Writer) error
}

var commands = []command{
	{"pack", "Pack a directory of section files into a data set", runPack},
	{"unpack", "Extract every section of a data set into a directory", runUnpack},
	{"info", "Show the sections and version of a data set", runInfo},
	{"cost", "Print the transition cost between two POS ids", runCost},
	{"boundary", "Print the segment boundary decision and penalties", runBoundary},
	{"suggest", "Check words against the suggestion filter", runSuggest},
	{"collocation", "Check a pair against the collocation filters", runCollocation},
	{"gen-filter", "Build a suggestion filter from a word list", runGenFilter},
	{"gen-connector", "Build connector data from a cost matrix", runGenConnector},
	{"fixture", "Write a small synthetic data set", runFixture},
	{"push", "Upload a data set to the configured blob store", runPush},
	{"ls", "List data sets in the configured blob store", runList},
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "imedata: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stderr)
		return errUsage
	}

	name := args[0]
	switch name {
	case "help", "--help", "-h":
		printUsage(stdout)
		return nil
	}
	for _, c := range commands {
		if c.name == name {
			err := c.run(args[1:], stdout)
			if errors.Is(err, errHelp) {
				return nil
			}
			return err
		}
	}

	fmt.Fprintf(stderr, "Unknown command: %s\n\n", name)
	printUsage(stderr)
	return errUsage
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `imedata - tools for imecore data sets

Usage:
  imedata <command> [options]

Available Commands:
`)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-14s %s\n", c.name, c.summary)
	}
	fmt.Fprint(w, `
Use "imedata <command> -h" for more information about a command.
`)
}
