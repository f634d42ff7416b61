package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steve-blackdove/nft-extractor/internal/core/domain"
	"github.com/steve-blackdove/nft-extractor/internal/core/ports/driving"
)

// stubRunner drains refs and counts them as processed.
type stubRunner struct {
	refs []domain.TokenRef
}

func (s *stubRunner) Run(_ context.Context, refs <-chan domain.TokenRef, errs <-chan error) driving.BatchSummary {
	for ref := range refs {
		s.refs = append(s.refs, ref)
	}
	if errs != nil {
		for range errs {
		}
	}
	return driving.BatchSummary{Processed: len(s.refs)}
}

func TestRangeCmd(t *testing.T) {
	const contract = "0xb932a70a57673d89f4acffbe830e8ed7f75fb9e0"

	t.Run("feeds the inclusive range", func(t *testing.T) {
		stub := &stubRunner{}
		original := batchRunner
		batchRunner = stub
		defer func() { batchRunner = original }()

		out, _, err := execute(t, "range", contract, "3", "5")

		require.NoError(t, err)
		require.Len(t, stub.refs, 3)
		assert.Equal(t, "3", stub.refs[0].TokenID)
		assert.Equal(t, "5", stub.refs[2].TokenID)
		assert.Contains(t, out, "Processed 3")
	})

	t.Run("accepts hex bounds", func(t *testing.T) {
		stub := &stubRunner{}
		original := batchRunner
		batchRunner = stub
		defer func() { batchRunner = original }()

		_, _, err := execute(t, "range", contract, "0x0a", "0x0a")

		require.NoError(t, err)
		require.Len(t, stub.refs, 1)
		assert.Equal(t, "10", stub.refs[0].TokenID)
	})

	t.Run("rejects malformed bounds", func(t *testing.T) {
		stub := &stubRunner{}
		original := batchRunner
		batchRunner = stub
		defer func() { batchRunner = original }()

		_, _, err := execute(t, "range", contract, "abc", "5")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
