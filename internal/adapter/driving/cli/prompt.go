package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// prompt lê uma linha da entrada do comando.
func (app *CLIApp) prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := readLine(app.scanner(cmd))
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword lê a senha sem eco quando a entrada é um terminal.
func (app *CLIApp) promptPassword(cmd *cobra.Command, label string) (string, error) {
	out := cmd.OutOrStdout()
	fmt.Fprint(out, label)

	var (
		password string
		err      error
	)
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		var bytePassword []byte
		bytePassword, err = term.ReadPassword(int(f.Fd()))
		password = string(bytePassword)
	} else {
		// Fallback for non-terminal input (pipes, tests)
		password, err = readLine(app.scanner(cmd))
	}
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(out)
	return password, nil
}

// scanner keeps one scanner per run so consecutive prompts share buffered input.
func (app *CLIApp) scanner(cmd *cobra.Command) *bufio.Scanner {
	if app.input == nil {
		app.input = bufio.NewScanner(cmd.InOrStdin())
	}
	return app.input
}

func readLine(scanner *bufio.Scanner) (string, error) {
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
