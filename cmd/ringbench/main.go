// Command ringbench drives a producer/consumer load through a ring buffer
// and reports the throughput together with the overwritten and rejected items.
//
// With -kind single the buffer is driven by one goroutine, otherwise the
// producers and the consumers are joined by a ring connector.
// When -otlp is set, the telemetry is exported to an OTLP collector.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/FerroO2000/circbuf"
	"github.com/FerroO2000/circbuf/connector"
	"github.com/FerroO2000/circbuf/internal"
	"golang.org/x/sync/errgroup"
)

type options struct {
	capacity  int
	items     int
	producers int
	consumers int

	kind   string
	mode   string
	policy string

	otlp       string
	traceRatio float64
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}

	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.IntVar(&opts.capacity, "capacity", connector.DefaultCapacity, "number of slots of the ring buffer")
	fs.IntVar(&opts.items, "items", 1_000_000, "number of items to write")
	fs.IntVar(&opts.producers, "producers", 1, "number of producers (locked kind only)")
	fs.IntVar(&opts.consumers, "consumers", 1, "number of consumers (locked kind only)")
	fs.StringVar(&opts.kind, "kind", "spsc", "buffer kind: single|locked|spsc")
	fs.StringVar(&opts.mode, "mode", "reserved-slot", "buffer mode: reserved-slot|full-flag")
	fs.StringVar(&opts.policy, "policy", "block", "write policy: block|overwrite|reject")
	fs.StringVar(&opts.otlp, "otlp", "", "OTLP gRPC collector endpoint, empty disables the export")
	fs.Float64Var(&opts.traceRatio, "trace-ratio", 1, "sampling ratio of the traces")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if opts.items <= 0 {
		return nil, fmt.Errorf("invalid -items value %d", opts.items)
	}
	if opts.producers <= 0 || opts.consumers <= 0 {
		return nil, errors.New("at least one producer and one consumer are needed")
	}

	return opts, nil
}

func parseEnum[T fmt.Stringer](flagName, value string, values ...T) (T, error) {
	for _, val := range values {
		if strings.EqualFold(val.String(), value) {
			return val, nil
		}
	}

	var zero T
	return zero, fmt.Errorf("invalid -%s value %q", flagName, value)
}

type result struct {
	written     int64
	read        int64
	overwritten int64
	rejected    int64
	duration    time.Duration
}

// setupTelemetry is swapped in tests to avoid a collector.
var setupTelemetry = initTelemetry

func main() {
	os.Exit(realMain(os.Args[1:]))
}

// realMain runs the command and returns its exit code.
// Deferred calls, like the telemetry flush, run before the process exits.
func realMain(args []string) int {
	opts, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var telErr error
	if opts.otlp != "" {
		var shutdown shutdownFunc
		shutdown, telErr = setupTelemetry(ctx, opts.otlp, opts.traceRatio)
		if telErr == nil {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := shutdown(shutdownCtx); err != nil {
					fmt.Fprintln(os.Stderr, "failed to shutdown telemetry:", err)
				}
			}()
		}
	}

	tel := internal.NewTelemetry("bench", serviceName)
	if telErr != nil {
		tel.LogWarn("telemetry export disabled", "endpoint", opts.otlp, "reason", telErr.Error())
	}

	if err := run(ctx, tel, opts); err != nil {
		tel.LogError("benchmark failed", err)
		return 1
	}

	return 0
}

func run(ctx context.Context, tel *internal.Telemetry, opts *options) error {
	mode, err := parseEnum("mode", opts.mode, circbuf.ModeReservedSlot, circbuf.ModeFullFlag)
	if err != nil {
		return err
	}

	kind, err := parseEnum("kind", opts.kind, circbuf.BufferKindSingle, circbuf.BufferKindLocked, circbuf.BufferKindSPSC)
	if err != nil {
		return err
	}

	policy, err := parseEnum("policy", opts.policy, connector.PolicyBlock, connector.PolicyOverwrite, connector.PolicyReject)
	if err != nil {
		return err
	}

	if opts.capacity < mode.MinSlots() {
		return fmt.Errorf("a %s buffer needs at least %d slots", mode, mode.MinSlots())
	}

	tel.LogInfo("starting benchmark",
		"capacity", opts.capacity, "items", opts.items,
		"kind", kind.String(), "mode", mode.String(), "policy", policy.String())

	var res *result
	if kind == circbuf.BufferKindSingle {
		res = runSingle(ctx, tel, opts.capacity, opts.items, mode, policy)
	} else {
		cfg := connector.NewConfig()
		cfg.Name = serviceName
		cfg.Capacity = opts.capacity
		cfg.Mode = mode
		cfg.Kind = kind
		cfg.Policy = policy

		res, err = runConcurrent(ctx, tel, cfg, opts.items, opts.producers, opts.consumers)
		if err != nil {
			return err
		}
	}

	itemsPerSec := int64(float64(res.read) / res.duration.Seconds())
	tel.LogInfo("benchmark completed",
		"duration", res.duration, "items_per_sec", itemsPerSec,
		"written", res.written, "read", res.read,
		"overwritten", res.overwritten, "rejected", res.rejected)

	return nil
}

// runSingle drives the buffer from a single goroutine.
// A full buffer is drained in batches, except for the overwrite policy
// which lets the oldest items go.
func runSingle(ctx context.Context, tel *internal.Telemetry, slots, items int, mode circbuf.Mode, policy connector.Policy) *result {
	_, span := tel.NewTrace(ctx, "run single")
	defer span.End()

	batchSize := tel.NewHistogram("drained_batch_size")

	buf := circbuf.New[int64](slots, mode, circbuf.BufferKindSingle)
	batch := make([]int64, buf.Capacity())

	res := &result{}
	drain := func() {
		n := buf.GetRange(batch)
		res.read += int64(n)
		batchSize.Record(ctx, int64(n))
	}

	startTime := time.Now()

	for i := range items {
		item := int64(i)

		switch policy {
		case connector.PolicyOverwrite:
			if buf.Overwrite(item) {
				res.overwritten++
			}

		case connector.PolicyReject:
			if err := buf.TryPut(item); err != nil {
				res.rejected++
				drain()
				continue
			}

		default:
			if err := buf.TryPut(item); err != nil {
				drain()
				buf.Put(item)
			}
		}

		res.written++
	}

	for !buf.Empty() {
		drain()
	}

	res.duration = time.Since(startTime)

	return res
}

// runConcurrent joins the producers and the consumers with a ring connector.
// Each item carries its write time, so consumers can record the latency.
func runConcurrent(ctx context.Context, tel *internal.Telemetry, cfg *connector.Config, items, producers, consumers int) (*result, error) {
	conn := connector.NewRingConnector[int64](cfg)

	if cfg.Kind == circbuf.BufferKindSPSC && (producers > 1 || consumers > 1) {
		tel.LogWarn("SPSC buffer supports one producer and one consumer",
			"producers", producers, "consumers", consumers)
		producers, consumers = 1, 1
	}

	latency := tel.NewHistogram("item_latency")

	// Wake up the blocked producers and consumers on interrupt
	stopClose := context.AfterFunc(ctx, conn.Close)
	defer stopClose()

	startTime := time.Now()

	var consGroup errgroup.Group
	for range consumers {
		consGroup.Go(func() error {
			consCtx, span := tel.NewTrace(ctx, "consume")
			defer span.End()

			for {
				sentAt, err := conn.Read(consCtx)
				if errors.Is(err, connector.ErrClosed) {
					return nil
				}
				if err != nil {
					return err
				}

				latency.Record(consCtx, time.Since(time.Unix(0, sentAt)).Microseconds())
			}
		})
	}

	var prodGroup errgroup.Group
	for p := range producers {
		count := items / producers
		if p == 0 {
			count += items % producers
		}

		prodGroup.Go(func() error {
			_, span := tel.NewTrace(ctx, "produce")
			defer span.End()

			for range count {
				if err := ctx.Err(); err != nil {
					return err
				}

				err := conn.Write(time.Now().UnixNano())
				if errors.Is(err, connector.ErrFull) {
					continue
				}
				if err != nil {
					return err
				}
			}

			return nil
		})
	}

	prodErr := prodGroup.Wait()
	conn.Close()
	consErr := consGroup.Wait()

	if err := errors.Join(prodErr, consErr); err != nil {
		return nil, err
	}

	stats := conn.Stats()
	return &result{
		written:     stats.Written,
		read:        stats.Read,
		overwritten: stats.Overwritten,
		rejected:    stats.Rejected,
		duration:    time.Since(startTime),
	}, nil
}
