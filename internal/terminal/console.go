// Package terminal is the toolshelf front-end for an interactive shell:
// alerts, prompts, the browser opener and the card listing.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/browser"
	"golang.org/x/term"
)

// test seams
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
	openBrowser  = browser.OpenURL
)

// Console reads answers from in and writes prompts and alerts to out.
// Secrets are read without echo when in is a terminal.
type Console struct {
	in    *bufio.Reader
	out   io.Writer
	fd    int
	isTTY bool
}

// NewConsole creates a console on stdin and stderr
func NewConsole() *Console {
	fd := int(os.Stdin.Fd())
	return &Console{
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stderr,
		fd:    fd,
		isTTY: isTerminal(fd),
	}
}

// NewConsoleWithIO creates a console on arbitrary streams. Secrets are
// echoed since in is not a terminal.
func NewConsoleWithIO(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:  bufio.NewReader(in),
		out: out,
		fd:  -1,
	}
}

// Alert prints a message the user has to see
func (c *Console) Alert(message string) {
	fmt.Fprintf(c.out, "! %s\n", message)
}

// Prompt asks for a secret. ok is false when input ends before an answer.
func (c *Console) Prompt(message string) (string, bool) {
	fmt.Fprintf(c.out, "%s ", message)

	if c.isTTY {
		secret, err := readPassword(c.fd)
		fmt.Fprintln(c.out)
		if err != nil {
			return "", false
		}
		return string(secret), true
	}

	line, err := c.readLine()
	if err != nil {
		return "", false
	}
	return line, true
}

// Ask prints label and reads one line. An empty answer returns current.
func (c *Console) Ask(label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(c.out, "%s: ", label)
	}

	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return current, nil
	}
	return line, nil
}

// OpenURL opens url in the default browser
func (c *Console) OpenURL(url string) error {
	if err := openBrowser(url); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

// readLine returns the next line without its line ending. A final line
// without a newline is returned before io.EOF.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
