package cliutil

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ReadFile reads path whole, adapted from the teacher's util.ReadSource but
// dropping its channel/goroutine stdin-with-timeout dance entirely: this
// compiler runs single-threaded (spec §5), so a bare file read or reading
// stdin through a bufio.Reader to EOF is all either caller needs.
func ReadFile(path string) (string, error) {
	if path == "" || path == "-" {
		var sb strings.Builder
		r := bufio.NewReader(os.Stdin)
		if _, err := sb.ReadFrom(r); err != nil {
			return "", errors.Wrap(err, "reading stdin")
		}
		return sb.String(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", path)
	}
	return string(b), nil
}

// WriteLines writes lines to path, one per line, or to stdout if path is
// empty or "-".
func WriteLines(path string, lines []string) error {
	var w *os.File
	if path == "" || path == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "creating %s", path)
		}
		defer f.Close()
		w = f
	}
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			return errors.Wrap(err, "writing output")
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return errors.Wrap(err, "writing output")
		}
	}
	return errors.Wrap(bw.Flush(), "flushing output")
}
