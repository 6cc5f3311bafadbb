package store

import (
	"sync"
	"testing"
	"time"
)

// collectHandler records every operation it processes.
type collectHandler struct {
	mu  sync.Mutex
	ops []WriteOperation
}

func (c *collectHandler) handle(op WriteOperation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, op)
	return nil
}

func (c *collectHandler) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ops)
}

func TestAsyncWriter_ProcessesWrites(t *testing.T) {
	handler := &collectHandler{}
	writer := NewAsyncWriter(handler.handle)
	writer.Start()

	for i := 0; i < 5; i++ {
		if !writer.Write(i) {
			t.Fatalf("Write(%d) returned false", i)
		}
	}

	writer.Stop()

	if got := handler.count(); got != 5 {
		t.Errorf("processed %d operations, want 5", got)
	}
}

func TestAsyncWriter_WriteBeforeStartQueues(t *testing.T) {
	handler := &collectHandler{}
	writer := NewAsyncWriter(handler.handle)

	if !writer.Write("queued") {
		t.Fatal("Write before Start should queue into the buffer")
	}
	if writer.Pending() != 1 {
		t.Errorf("Pending() = %d, want 1", writer.Pending())
	}

	writer.Start()
	writer.Stop()

	if got := handler.count(); got != 1 {
		t.Errorf("processed %d operations, want 1", got)
	}
}

func TestAsyncWriter_FullChannelRejects(t *testing.T) {
	handler := &collectHandler{}
	writer := NewAsyncWriterWithConfig(handler.handle, AsyncWriterConfig{
		ChannelCapacity: 2,
		DrainTimeout:    time.Second,
	})
	// Not started, so the buffer fills up

	if !writer.Write(1) || !writer.Write(2) {
		t.Fatal("first two writes should succeed")
	}
	if writer.Write(3) {
		t.Error("Write into a full channel should return false")
	}
}

func TestAsyncWriter_StopDrainsPending(t *testing.T) {
	handler := &collectHandler{}
	writer := NewAsyncWriterWithConfig(handler.handle, AsyncWriterConfig{
		ChannelCapacity: 10,
		DrainTimeout:    time.Second,
	})

	for i := 0; i < 7; i++ {
		writer.Write(i)
	}

	writer.Start()
	writer.Stop()

	if got := handler.count(); got != 7 {
		t.Errorf("processed %d operations after drain, want 7", got)
	}
}

func TestAsyncWriter_StartIdempotent(t *testing.T) {
	handler := &collectHandler{}
	writer := NewAsyncWriter(handler.handle)

	writer.Start()
	writer.Start() // Second call is a no-op

	if !writer.IsStarted() {
		t.Error("IsStarted() = false after Start")
	}
	writer.Stop()
}

func TestAsyncWriter_WriteWithTimeout(t *testing.T) {
	handler := &collectHandler{}
	writer := NewAsyncWriterWithConfig(handler.handle, AsyncWriterConfig{
		ChannelCapacity: 1,
		DrainTimeout:    time.Second,
	})

	if !writer.WriteWithTimeout("first", 50*time.Millisecond) {
		t.Fatal("first timed write should succeed")
	}
	// Buffer full and no consumer: the second write must time out
	if writer.WriteWithTimeout("second", 50*time.Millisecond) {
		t.Error("timed write into a full channel should return false")
	}
}

func TestDefaultAsyncWriterConfig(t *testing.T) {
	config := DefaultAsyncWriterConfig()
	if config.ChannelCapacity != DefaultChannelCapacity {
		t.Errorf("ChannelCapacity = %d, want %d", config.ChannelCapacity, DefaultChannelCapacity)
	}
	if config.DrainTimeout != DefaultDrainTimeout {
		t.Errorf("DrainTimeout = %v, want %v", config.DrainTimeout, DefaultDrainTimeout)
	}
}
