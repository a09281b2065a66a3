package share

import (
	"sync"
	"testing"
)

func TestCell_TakeConsumesOnce(t *testing.T) {
	c := NewCell()

	if _, ok := c.Take(); ok {
		t.Fatal("new cell should be empty")
	}

	c.Offer("hello")
	text, ok := c.Take()
	if !ok || text != "hello" {
		t.Fatalf("Take() = %q, %v; want hello, true", text, ok)
	}
	if text, ok := c.Take(); ok {
		t.Errorf("second Take() = %q, true; want empty", text)
	}
}

func TestCell_LastWriteWins(t *testing.T) {
	var c Cell

	if replaced := c.Offer("first"); replaced {
		t.Error("first Offer should not report a replacement")
	}
	if replaced := c.Offer("second"); !replaced {
		t.Error("second Offer should report a replacement")
	}

	if text, _ := c.Take(); text != "second" {
		t.Errorf("Take() = %q, want second", text)
	}
}

func TestCell_EmptyStringIsAValue(t *testing.T) {
	c := NewCell()
	c.Offer("")

	text, ok := c.Take()
	if !ok || text != "" {
		t.Errorf("Take() = %q, %v; want \"\", true", text, ok)
	}
}

func TestCell_PeekAndReset(t *testing.T) {
	c := NewCell()
	c.Offer("kept")

	if text, ok := c.Peek(); !ok || text != "kept" {
		t.Errorf("Peek() = %q, %v", text, ok)
	}
	if _, ok := c.Peek(); !ok {
		t.Error("Peek must not consume")
	}

	c.Reset()
	if _, ok := c.Take(); ok {
		t.Error("Reset should empty the cell")
	}
}

func TestCell_ConcurrentTakeDeliversOnce(t *testing.T) {
	c := NewCell()
	c.Offer("payload")

	const readers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		hits int
	)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := c.Take(); ok {
				mu.Lock()
				hits++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if hits != 1 {
		t.Errorf("payload delivered %d times, want 1", hits)
	}
}
