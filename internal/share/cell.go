package share

import "sync"

// Cell is a single-slot, consume-once holder for shared text. The zero
// value is an empty cell ready for use.
type Cell struct {
	mu   sync.Mutex
	text string
	set  bool
}

// NewCell returns an empty cell.
func NewCell() *Cell {
	return &Cell{}
}

// Offer stores text, overwriting any unread value. It reports whether an
// unread value was replaced.
func (c *Cell) Offer(text string) (replaced bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	replaced = c.set
	c.text, c.set = text, true
	return replaced
}

// Take returns the pending text and empties the cell.
func (c *Cell) Take() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text, ok := c.text, c.set
	c.text, c.set = "", false
	return text, ok
}

// Peek returns the pending text without consuming it.
func (c *Cell) Peek() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, c.set
}

// Reset empties the cell.
func (c *Cell) Reset() {
	c.mu.Lock()
	c.text, c.set = "", false
	c.mu.Unlock()
}
