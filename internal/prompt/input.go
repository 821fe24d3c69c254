// Package prompt reads operator input for the command-line tools.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// isTerminal and readPassword are test seams for golang.org/x/term.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// Line prints prompt to w and reads a single line from reader. The trailing
// newline is trimmed. If EOF occurs after some input was read, the partial
// line is returned.
func Line(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Password prints a password prompt to w and reads a password. On a terminal
// the input is not echoed; otherwise one line is read from reader, so the
// password can be piped in.
//
// The returned byte slice should be wiped by the caller when no longer needed.
func Password(stdin io.Reader, reader *bufio.Reader, w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return nil, err
	}

	if f, ok := stdin.(*os.File); ok && isTerminal(int(f.Fd())) {
		pw, err := readPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return nil, err
		}
		return pw, nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
