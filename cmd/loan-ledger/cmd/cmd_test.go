package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-ledger/internal/app/runtime"
	"loan-ledger/internal/service"
)

type scriptedDrainer struct {
	batches []service.DrainResult
	err     error
	calls   int
}

func (s *scriptedDrainer) Drain(context.Context) (service.DrainResult, error) {
	s.calls++
	if s.err != nil {
		return service.DrainResult{}, s.err
	}
	if s.calls > len(s.batches) {
		return service.DrainResult{}, nil
	}
	return s.batches[s.calls-1], nil
}

func TestDrain(t *testing.T) {
	batches := []service.DrainResult{
		{Loans: 2, Delivered: 3, Failed: 0},
		{Loans: 1, Delivered: 1, Failed: 1},
	}

	t.Run("single batch", func(t *testing.T) {
		d := &scriptedDrainer{batches: batches}
		total, err := drain(context.Background(), d, false)
		require.NoError(t, err)
		assert.Equal(t, batches[0], total)
		assert.Equal(t, 1, d.calls)
	})

	t.Run("until empty", func(t *testing.T) {
		d := &scriptedDrainer{batches: batches}
		total, err := drain(context.Background(), d, true)
		require.NoError(t, err)
		assert.Equal(t, service.DrainResult{Loans: 3, Delivered: 4, Failed: 1}, total)
		assert.Equal(t, 3, d.calls)
	})

	t.Run("stops when a batch makes no progress", func(t *testing.T) {
		d := &scriptedDrainer{batches: []service.DrainResult{{Loans: 4, Failed: 4}, {Loans: 4, Delivered: 4}}}
		total, err := drain(context.Background(), d, true)
		require.NoError(t, err)
		assert.Equal(t, 4, total.Failed)
		assert.Equal(t, 1, d.calls)
	})

	t.Run("error", func(t *testing.T) {
		d := &scriptedDrainer{err: errors.New("mongo down")}
		_, err := drain(context.Background(), d, true)
		assert.EqualError(t, err, "mongo down")
	})
}

func TestRootCommand(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["outbox"])
	assert.True(t, names["migrate"])

	found, _, err := rootCmd.Find([]string{"outbox", "drain"})
	require.NoError(t, err)
	assert.Equal(t, "drain", found.Name())
	assert.NotNil(t, found.Flags().Lookup("until-empty"))
}

func TestOneShotCommands_PropagateStartupFailure(t *testing.T) {
	orig := newApp
	t.Cleanup(func() { newApp = orig })
	newApp = func(context.Context) (*runtime.App, error) { return nil, errors.New("no config") }

	for _, args := range [][]string{
		{"outbox", "drain"},
		{"migrate", "normalize-status"},
		{"serve"},
	} {
		out := &bytes.Buffer{}
		rootCmd.SetOut(out)
		rootCmd.SetErr(out)
		rootCmd.SetArgs(args)
		assert.EqualError(t, rootCmd.ExecuteContext(context.Background()), "no config", "args %v", args)
	}
}
