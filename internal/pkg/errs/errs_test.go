//go:build unit

package errs_test

import (
	"errors"
	"testing"

	"airdine/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	sentinel := errs.New("usage limit exceeded")
	cause := errs.New("ledger count 3 >= cap 3")

	t.Run("mark is matched by errors.Is", func(t *testing.T) {
		err := errs.Mark(cause, sentinel)

		assert.ErrorIs(t, err, sentinel)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("nil cause yields the mark itself", func(t *testing.T) {
		err := errs.Mark(nil, sentinel)

		assert.ErrorIs(t, err, sentinel)
	})

	t.Run("wrapped marks stay matchable", func(t *testing.T) {
		err := errs.Wrap(errs.Mark(cause, sentinel), "redeem failed")

		assert.ErrorIs(t, err, sentinel)
	})
}
