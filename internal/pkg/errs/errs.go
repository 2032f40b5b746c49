package errs

import (
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func New(msg string) error {
	return cr.New(msg)
}

// Mark ties markErr into err's chain. The fmt wrap keeps the mark visible
// to stdlib errors.Is; cr.Mark keeps it visible to the cockroachdb marker
// machinery across redaction.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return cr.Mark(fmt.Errorf("%w: %w", markErr, err), markErr)
}

func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
