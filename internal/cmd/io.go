package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// confirmOverwrite asks before clobbering an existing file, but only
// when stdin is an interactive terminal; piped/scripted invocations
// proceed without blocking.
func confirmOverwrite(path string) (bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return true, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return true, nil
	}

	fmt.Fprintf(os.Stderr, "%s already exists, overwrite? [y/N] ", path)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	ok, err := confirmOverwrite(path)
	if err != nil {
		return fmt.Errorf("reading confirmation: %w", err)
	}
	if !ok {
		return fmt.Errorf("not overwriting %s", path)
	}

	return os.WriteFile(path, data, 0o600)
}
