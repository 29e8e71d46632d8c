package main

import (
	"context"
	"fmt"
	"testing"

	"github.com/FerroO2000/circbuf"
	"github.com/FerroO2000/circbuf/connector"
	"github.com/FerroO2000/circbuf/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseFlags(t *testing.T) {
	assert := assert.New(t)

	opts, err := parseFlags([]string{"-capacity", "64", "-kind", "locked", "-producers", "4"})
	require.NoError(t, err)
	assert.Equal(64, opts.capacity)
	assert.Equal("locked", opts.kind)
	assert.Equal(4, opts.producers)
	assert.Equal(1, opts.consumers)
	assert.Equal("block", opts.policy)
	assert.Empty(opts.otlp)

	_, err = parseFlags([]string{"-items", "0"})
	assert.Error(err)

	_, err = parseFlags([]string{"-consumers", "-1"})
	assert.Error(err)
}

func Test_parseEnum(t *testing.T) {
	assert := assert.New(t)

	kind, err := parseEnum("kind", "spsc", circbuf.BufferKindSingle, circbuf.BufferKindLocked, circbuf.BufferKindSPSC)
	assert.NoError(err)
	assert.Equal(circbuf.BufferKindSPSC, kind)

	mode, err := parseEnum("mode", "full-flag", circbuf.ModeReservedSlot, circbuf.ModeFullFlag)
	assert.NoError(err)
	assert.Equal(circbuf.ModeFullFlag, mode)

	_, err = parseEnum("policy", "drop", connector.PolicyBlock, connector.PolicyOverwrite, connector.PolicyReject)
	assert.EqualError(err, `invalid -policy value "drop"`)
}

func Test_runSingle(t *testing.T) {
	suite := []struct {
		slots    int
		items    int
		mode     circbuf.Mode
		policy   connector.Policy
		expected result
	}{
		{4, 100, circbuf.ModeReservedSlot, connector.PolicyBlock, result{written: 100, read: 100}},
		{4, 100, circbuf.ModeFullFlag, connector.PolicyBlock, result{written: 100, read: 100}},
		{4, 10, circbuf.ModeFullFlag, connector.PolicyOverwrite, result{written: 10, read: 4, overwritten: 6}},
		{4, 10, circbuf.ModeReservedSlot, connector.PolicyReject, result{written: 8, read: 8, rejected: 2}},
	}

	tel := internal.NewTelemetry("bench", "test")

	for _, tCase := range suite {
		tName := fmt.Sprintf("%s-%s-%d", tCase.mode, tCase.policy, tCase.items)

		t.Run(tName, func(t *testing.T) {
			res := runSingle(t.Context(), tel, tCase.slots, tCase.items, tCase.mode, tCase.policy)

			res.duration = 0
			assert.Equal(t, tCase.expected, *res)
		})
	}
}

func Test_runConcurrent(t *testing.T) {
	suite := []struct {
		kind                 circbuf.BufferKind
		mode                 circbuf.Mode
		producers, consumers int
	}{
		{circbuf.BufferKindSPSC, circbuf.ModeReservedSlot, 1, 1},
		{circbuf.BufferKindSPSC, circbuf.ModeReservedSlot, 3, 2},
		{circbuf.BufferKindLocked, circbuf.ModeFullFlag, 4, 2},
		{circbuf.BufferKindLocked, circbuf.ModeReservedSlot, 2, 4},
	}

	const items = 10_001

	tel := internal.NewTelemetry("bench", "test")

	for _, tCase := range suite {
		tName := fmt.Sprintf("%s-%s-P%d-C%d", tCase.kind, tCase.mode, tCase.producers, tCase.consumers)

		t.Run(tName, func(t *testing.T) {
			assert := assert.New(t)

			cfg := connector.NewConfig()
			cfg.Capacity = 32
			cfg.Mode = tCase.mode
			cfg.Kind = tCase.kind

			res, err := runConcurrent(t.Context(), tel, cfg, items, tCase.producers, tCase.consumers)
			require.NoError(t, err)

			assert.Equal(int64(items), res.written)
			assert.Equal(int64(items), res.read)
			assert.Zero(res.overwritten)
			assert.Zero(res.rejected)
		})
	}
}

func Test_run(t *testing.T) {
	tel := internal.NewTelemetry("bench", "test")

	opts, err := parseFlags([]string{"-items", "1000", "-kind", "single", "-policy", "overwrite"})
	require.NoError(t, err)
	assert.NoError(t, run(t.Context(), tel, opts))

	opts, err = parseFlags([]string{"-capacity", "1", "-mode", "reserved-slot"})
	require.NoError(t, err)
	assert.Error(t, run(t.Context(), tel, opts))

	opts, err = parseFlags([]string{"-kind", "mpmc"})
	require.NoError(t, err)
	assert.Error(t, run(t.Context(), tel, opts))
}

func Test_realMain(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(0, realMain([]string{"-items", "100", "-kind", "single"}))
	assert.Equal(0, realMain([]string{"-h"}))
	assert.Equal(2, realMain([]string{"-items", "0"}))
	assert.Equal(1, realMain([]string{"-kind", "mpmc"}))
}

func Test_realMain_flushesTelemetryOnFailure(t *testing.T) {
	assert := assert.New(t)

	shutdowns := 0
	setupTelemetry = func(_ context.Context, endpoint string, _ float64) (shutdownFunc, error) {
		assert.Equal("collector:4317", endpoint)
		return func(context.Context) error {
			shutdowns++
			return nil
		}, nil
	}
	t.Cleanup(func() { setupTelemetry = initTelemetry })

	assert.Equal(1, realMain([]string{"-otlp", "collector:4317", "-kind", "mpmc"}))
	assert.Equal(1, shutdowns)

	assert.Equal(0, realMain([]string{"-otlp", "collector:4317", "-kind", "single", "-items", "10"}))
	assert.Equal(2, shutdowns)
}
