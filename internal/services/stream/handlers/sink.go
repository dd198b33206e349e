package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/Egham-7/fetchstream/internal/models"
	"github.com/Egham-7/fetchstream/internal/services/stream/contracts"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Sink feeds the chunks of a stream through a processor into a writer and
// records how the stream ended
type Sink struct {
	name      string
	processor contracts.ChunkProcessor
	writer    contracts.StreamWriter
	startTime time.Time

	mu          sync.Mutex
	totalChunks int64
	totalBytes  int64
	err         error
	done        chan struct{}
	doneOnce    sync.Once
}

// NewSink creates a sink for the stream called name
func NewSink(name string, processor contracts.ChunkProcessor, writer contracts.StreamWriter) *Sink {
	return &Sink{
		name:      name,
		processor: processor,
		writer:    writer,
		startTime: time.Now(),
		done:      make(chan struct{}),
	}
}

// Callbacks returns the stream callbacks that drive the sink
func (s *Sink) Callbacks() contracts.Callbacks {
	return contracts.Callbacks{
		OnNext:  s.onNext,
		OnError: s.onError,
		OnDone:  s.onDone,
	}
}

// Done is closed once the stream reported its terminal event
func (s *Sink) Done() <-chan struct{} {
	return s.done
}

// Err returns the failure the stream ended with, if any
func (s *Sink) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stats returns the number of chunks and processed bytes written so far
func (s *Sink) Stats() (chunks, bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalChunks, s.totalBytes
}

func (s *Sink) onNext(chunk *models.Chunk) {
	processed, err := s.processor.Process(context.Background(), chunk)
	if err != nil {
		fiberlog.Warnf("[%s] Chunk %d processing failed: %v", s.name, chunk.Seq(), err)
		return
	}
	if len(processed) == 0 {
		return
	}

	if err := s.writer.Write(processed); err != nil {
		fiberlog.Errorf("[%s] Write failed: %v", s.name, err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		fiberlog.Errorf("[%s] Flush failed: %v", s.name, err)
		return
	}

	s.mu.Lock()
	s.totalChunks++
	s.totalBytes += int64(len(processed))
	chunks, bytes := s.totalChunks, s.totalBytes
	s.mu.Unlock()

	if chunks%100 == 0 {
		duration := time.Since(s.startTime)
		fiberlog.Debugf("[%s] Stream progress: %d chunks, %d bytes, %.2f KB/s",
			s.name, chunks, bytes, float64(bytes)/duration.Seconds()/1024)
	}
}

func (s *Sink) onError(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()
	fiberlog.Errorf("[%s] Stream failed: %v", s.name, err)
	s.finish()
}

func (s *Sink) onDone() {
	fiberlog.Infof("[%s] Stream completed", s.name)
	s.finish()
}

func (s *Sink) finish() {
	s.doneOnce.Do(func() {
		chunks, bytes := s.Stats()
		duration := time.Since(s.startTime)
		fiberlog.Infof("[%s] Stream summary: %d chunks, %d bytes in %v", s.name, chunks, bytes, duration)
		if err := s.writer.Close(); err != nil {
			fiberlog.Errorf("[%s] Error closing writer: %v", s.name, err)
		}
		close(s.done)
	})
}
