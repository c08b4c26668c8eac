package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the operator a yes/no question before destructive work.
// It is injected into commands so nothing engine-side ever blocks on a
// terminal, and tests can answer programmatically.
type Confirmer func(prompt string) bool

// stdinConfirmer prompts on out and accepts "y"/"yes" from in.
func stdinConfirmer(in io.Reader, out io.Writer) Confirmer {
	reader := bufio.NewReader(in)
	return func(prompt string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

// autoConfirm answers yes to everything (--yes).
func autoConfirm() Confirmer {
	return func(string) bool { return true }
}
