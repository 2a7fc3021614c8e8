// Package main is the entry point of the Authlete sample servers.
package main

import (
	"os"

	"github.com/authlete/authlete-go-samples/cmd/authlete-samples/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
