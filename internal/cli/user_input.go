package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// lineReader is the prompt used when readline cannot take over the
// terminal (piped stdin, dumb terminals). A single goroutine feeds lines so
// a cancelled read does not leave a second reader racing on the input.
type lineReader struct {
	out   io.Writer
	lines chan lineResult
}

type lineResult struct {
	text string
	err  error
}

func newLineReader(in io.Reader, out io.Writer) *lineReader {
	r := &lineReader{out: out, lines: make(chan lineResult)}
	go r.feed(bufio.NewScanner(in))
	return r
}

func (r *lineReader) feed(sc *bufio.Scanner) {
	for sc.Scan() {
		r.lines <- lineResult{text: strings.TrimSpace(sc.Text())}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	r.lines <- lineResult{err: err}
	close(r.lines)
}

func (r *lineReader) ReadLine(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}
