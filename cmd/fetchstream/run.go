package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/Egham-7/fetchstream/internal/config"
	"github.com/Egham-7/fetchstream/internal/models"
	"github.com/Egham-7/fetchstream/internal/services/stream/handlers"
	"github.com/Egham-7/fetchstream/internal/services/stream/processors"
	"github.com/Egham-7/fetchstream/internal/services/stream/transport"
	"github.com/Egham-7/fetchstream/internal/services/stream/writers"
	"github.com/Egham-7/fetchstream/pkg/fetchstream"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"
)

// selectStreams returns all configured streams or only the one called name
func selectStreams(cfg *config.Config, name string) ([]models.StreamConfig, error) {
	if name == "" {
		if len(cfg.Streams) == 0 {
			return nil, fmt.Errorf("no streams configured")
		}
		return cfg.Streams, nil
	}
	stream, ok := cfg.Stream(name)
	if !ok {
		return nil, fmt.Errorf("stream %q is not configured", name)
	}
	return []models.StreamConfig{stream}, nil
}

// run streams every configured URL concurrently until all of them ended.
// Cancelling ctx closes the streams, which then end gracefully.
func run(ctx context.Context, transportCfg models.TransportConfig, streams []models.StreamConfig, out io.Writer, registry *transport.Registry) error {
	tr, err := registry.Resolve(transportCfg)
	if err != nil {
		return err
	}

	buf := bufio.NewWriter(out)
	var outMu sync.Mutex
	defer func() {
		outMu.Lock()
		defer outMu.Unlock()
		_ = buf.Flush()
	}()

	sinks := make([]*handlers.Sink, len(streams))
	for i, streamCfg := range streams {
		processor, err := processors.New(streamCfg)
		if err != nil {
			return err
		}
		sinks[i] = handlers.NewSink(streamCfg.Name, processor, writers.NewConsoleStreamWriter(buf, &outMu, streamCfg.Name))
	}

	g := new(errgroup.Group)
	for i, streamCfg := range streams {
		g.Go(func() error {
			return runStream(ctx, tr, streamCfg, sinks[i])
		})
	}
	return g.Wait()
}

func runStream(ctx context.Context, tr fetchstream.Transport, streamCfg models.StreamConfig, sink *handlers.Sink) error {
	opts := &models.FetchOptions{
		Headers:        streamCfg.Headers,
		ReadBufferSize: streamCfg.ReadBufferSize,
		FailOnStatus:   streamCfg.FailOnStatus,
	}
	if streamCfg.Timeout > 0 {
		timeoutCtx, cancel := context.WithTimeout(context.Background(), streamCfg.Timeout)
		defer cancel()
		opts.Context = timeoutCtx
	}

	cb := sink.Callbacks()
	fiberlog.Infof("[%s] Streaming %s", streamCfg.Name, streamCfg.URL)
	stream := fetchstream.UseStream(streamCfg.URL, fetchstream.Options{
		OnNext:      cb.OnNext,
		OnError:     cb.OnError,
		OnDone:      cb.OnDone,
		FetchParams: opts,
		Transport:   tr,
	})

	select {
	case <-sink.Done():
	case <-ctx.Done():
		fiberlog.Infof("[%s] Shutting down stream", streamCfg.Name)
		stream.Close()
		<-sink.Done()
	}

	if err := sink.Err(); err != nil {
		return fmt.Errorf("stream %s: %w", streamCfg.Name, err)
	}
	return nil
}
