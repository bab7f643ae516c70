package logger

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ObjectPutter is the slice of the storage backend the shipper needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, bucket, key string, body []byte, contentType string) error
}

// Shipper buffers structured log lines and periodically flushes the batch to
// object storage as one file per flush. Shipping is best-effort: a failed
// flush keeps the batch for the next interval.
type Shipper struct {
	putter   ObjectPutter
	bucket   string
	interval time.Duration

	mu  sync.Mutex
	buf bytes.Buffer

	stop chan struct{}
	once sync.Once
}

func NewShipper(putter ObjectPutter, bucket string, interval time.Duration) *Shipper {
	if interval <= 0 {
		interval = time.Minute
	}
	s := &Shipper{
		putter:   putter,
		bucket:   bucket,
		interval: interval,
		stop:     make(chan struct{}),
	}
	go s.run()
	return s
}

// Write implements io.Writer; zerolog hands it one JSON line per entry.
func (s *Shipper) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *Shipper) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.Flush()
		case <-s.stop:
			s.Flush()
			return
		}
	}
}

// Flush uploads the pending batch, if any.
func (s *Shipper) Flush() {
	s.mu.Lock()
	if s.buf.Len() == 0 {
		s.mu.Unlock()
		return
	}
	batch := make([]byte, s.buf.Len())
	copy(batch, s.buf.Bytes())
	s.buf.Reset()
	s.mu.Unlock()

	key := fmt.Sprintf("logs/app-logs-%s-%s.log", time.Now().Format("2006-01-02"), uuid.New())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.putter.PutObject(ctx, s.bucket, key, batch, "application/json"); err != nil {
		log.Printf("Failed to ship logs to object storage: %v", err)
		// put the batch back so it is retried on the next flush
		s.mu.Lock()
		old := make([]byte, s.buf.Len())
		copy(old, s.buf.Bytes())
		s.buf.Reset()
		s.buf.Write(batch)
		s.buf.Write(old)
		s.mu.Unlock()
	}
}

// Close flushes once more and stops the background loop.
func (s *Shipper) Close() {
	s.once.Do(func() { close(s.stop) })
}
