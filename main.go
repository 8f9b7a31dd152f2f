package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0
	ExitError   = 1 // runtime failure: network, API, bad input
	ExitConfig  = 2 // configuration or credentials
)

// ConfigError marks failures that happen before any work is attempted.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			os.Exit(ExitConfig)
		}
		os.Exit(ExitError)
	}
}
