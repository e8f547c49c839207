// Package main is the entry point of the gaussql CLI.
package main

import (
	"os"

	"github.com/pangpang20/gaussdb-django/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
