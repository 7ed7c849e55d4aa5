//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Fetch runs the fetch stage with the project configuration.
func Fetch() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "fetch")
}

// Combine merges the paper and patent tables.
func Combine() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "combine")
}

// Annotate derives problem/solution pairs, recording outcomes in the ledger.
func Annotate() error {
	mg.Deps(Build, Init)
	return sh.RunV(binPath, "annotate", "--ledger")
}

// List prints the annotated table.
func List() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "list")
}
