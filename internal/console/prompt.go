package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

var (
	ErrClosed       = errors.New("prompt closed")
	ErrInvalidInput = errors.New("too many invalid answers")
)

const maxAttempts = 3

// Prompt is the interactive input/output handle. Flows receive it
// explicitly; the owner closes it once when the flow ends.
type Prompt struct {
	in  *bufio.Reader
	out io.Writer

	closer    io.Closer
	closeOnce sync.Once
	closed    bool
}

// New wraps in and out. If in is an io.Closer it is closed by Close.
func New(in io.Reader, out io.Writer) *Prompt {
	p := &Prompt{in: bufio.NewReader(in), out: out}
	if c, ok := in.(io.Closer); ok {
		p.closer = c
	}
	return p
}

func (p *Prompt) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *Prompt) Writer() io.Writer {
	return p.out
}

// Ask prints question and returns one trimmed line of input
func (p *Prompt) Ask(question string) (string, error) {
	if p.closed {
		return "", ErrClosed
	}
	fmt.Fprint(p.out, question)

	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Choose prints a numbered menu and returns the 0-based index of the picked
// option. Out-of-range answers are re-asked a few times before giving up.
func (p *Prompt) Choose(title string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, errors.New("no options to choose from")
	}

	fmt.Fprintln(p.out, title)
	for i, opt := range options {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, opt)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		answer, err := p.Ask(fmt.Sprintf("Enter your choice (1-%d): ", len(options)))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "Invalid choice %q.\n", answer)
	}
	return 0, ErrInvalidInput
}

// Close releases the input handle. Safe to call more than once.
func (p *Prompt) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.closed = true
		if p.closer != nil {
			err = p.closer.Close()
		}
	})
	return err
}
