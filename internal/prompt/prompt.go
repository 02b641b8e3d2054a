// Package prompt reads run parameters from an interactive terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/okian/roboscout/internal/report"
	"golang.org/x/term"
)

// ErrNoInput is returned when input ends before an answer was given.
var ErrNoInput = errors.New("no input")

// Prompter asks questions on out and reads answers from in.
type Prompter struct {
	in     *bufio.Reader
	out    io.Writer
	secret func() (string, error)
}

// New creates a Prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) ask(question string) (string, error) {
	if _, err := fmt.Fprint(p.out, question); err != nil {
		return "", err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// WithSecretInput reads the API key through read instead of the line
// reader. A nil read keeps the line reader.
func (p *Prompter) WithSecretInput(read func() (string, error)) *Prompter {
	p.secret = read
	return p
}

// HiddenInput returns a reader that disables echo when f is a terminal, or
// nil when it is not.
func HiddenInput(f *os.File) func() (string, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	return func() (string, error) {
		b, err := term.ReadPassword(fd)
		return string(b), err
	}
}

func (p *Prompter) askSecret(question string) (string, error) {
	if p.secret == nil {
		return p.ask(question)
	}
	if _, err := fmt.Fprint(p.out, question); err != nil {
		return "", err
	}
	answer, err := p.secret()
	_, _ = fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// Token asks for the API key. It is not validated.
func (p *Prompter) Token() (string, error) {
	for {
		answer, err := p.askSecret("Enter your RobotEvents API key: ")
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
}

// Season asks for the season identifier until a positive integer is given.
func (p *Prompter) Season() (int, error) {
	for {
		answer, err := p.ask("Enter the season ID (e.g., 191 for 2024-2025): ")
		if err != nil {
			return 0, err
		}
		season, convErr := strconv.Atoi(answer)
		if convErr == nil && season > 0 {
			return season, nil
		}
		_, _ = fmt.Fprintf(p.out, "Invalid season %q.\n", answer)
	}
}

// Codes asks for comma-separated team codes until at least one is given.
func (p *Prompter) Codes() ([]string, error) {
	for {
		answer, err := p.ask("Enter comma-separated team codes: ")
		if err != nil {
			return nil, err
		}
		if codes := SplitCodes(answer); len(codes) > 0 {
			return codes, nil
		}
	}
}

// SortKey shows the sort menu. An empty answer picks the first entry.
func (p *Prompter) SortKey() (report.SortKey, error) {
	_, _ = fmt.Fprintln(p.out, "Sort teams by:")
	for i, k := range report.SortKeys {
		_, _ = fmt.Fprintf(p.out, "  %d. %s\n", i+1, k.Label())
	}
	for {
		answer, err := p.ask(fmt.Sprintf("Enter choice (1-%d) [Default: 1]: ", len(report.SortKeys)))
		if err != nil {
			return "", err
		}
		if answer == "" {
			return report.SortKeys[0], nil
		}
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(report.SortKeys) {
			return report.SortKeys[n-1], nil
		}
		if k, parseErr := report.ParseSortKey(answer); parseErr == nil {
			return k, nil
		}
		_, _ = fmt.Fprintf(p.out, "Invalid choice %q.\n", answer)
	}
}

// SplitCodes splits a comma-separated list, trimming blanks.
func SplitCodes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
