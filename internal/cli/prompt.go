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

// Terminal hooks, replaced in tests
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// prompter reads answers from the command's input
type prompter struct {
	in   *bufio.Reader
	file *os.File
	out  io.Writer
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	p := &prompter{
		in:  bufio.NewReader(in),
		out: cmd.OutOrStdout(),
	}
	if f, ok := in.(*os.File); ok {
		p.file = f
	}
	return p
}

// Line prints label and reads one line without its newline.
// io.EOF is returned only when the input ends before any text.
func (p *prompter) Line(label string) (string, error) {
	if label != "" {
		fmt.Fprint(p.out, label)
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Password reads a secret without echo when the input is a terminal
func (p *prompter) Password(label string) (string, error) {
	if p.file == nil || !isTerminal(int(p.file.Fd())) {
		return p.Line(label)
	}

	fmt.Fprint(p.out, label)
	secret, err := readPassword(int(p.file.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
