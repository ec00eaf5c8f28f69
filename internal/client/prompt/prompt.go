// Package prompt reads line-oriented answers from the terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrClosed is returned once the input is exhausted.
var ErrClosed = errors.New("input closed")

// Prompter writes questions to out and reads answers from in.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// New returns a Prompter over in and out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Ask prints label and returns the trimmed answer.
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", ErrClosed
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// Choose prints a numbered menu and returns the index of the picked option.
// Invalid answers are asked again.
func (p *Prompter) Choose(title string, options []string) (int, error) {
	for {
		fmt.Fprintln(p.out, title)
		for i, o := range options {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, o)
		}
		answer, err := p.Ask("> ")
		if err != nil {
			return 0, err
		}
		var n int
		if _, err := fmt.Sscanf(answer, "%d", &n); err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintln(p.out, "Please pick one of the listed options.")
	}
}

// Println writes a line to the output.
func (p *Prompter) Println(a ...any) {
	fmt.Fprintln(p.out, a...)
}
