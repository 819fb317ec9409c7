package catalog

import (
	"context"
	"sync"
	"time"
)

// Carousel is the rotating slide index behind the home banner and the featured strip.
type Carousel struct {
	mu    sync.Mutex
	size  int
	index int
}

// NewCarousel creates a carousel over size slides.
func NewCarousel(size int) *Carousel {
	if size < 0 {
		size = 0
	}
	return &Carousel{size: size}
}

// Index is the current slide.
func (c *Carousel) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Resize changes the slide count, wrapping the current index into range.
func (c *Carousel) Resize(size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if size < 0 {
		size = 0
	}
	c.size = size
	if size == 0 {
		c.index = 0
		return
	}
	c.index %= size
}

// Next advances one slide, wrapping to the first. It is a no-op without slides.
func (c *Carousel) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.size > 0 {
		c.index = (c.index + 1) % c.size
	}
	return c.index
}

// Prev goes back one slide, wrapping to the last.
func (c *Carousel) Prev() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.size > 0 {
		c.index = (c.index - 1 + c.size) % c.size
	}
	return c.index
}

// Run advances every interval until ctx is done, calling onAdvance with the new
// index when it is not nil. Cancel ctx when the view goes away.
func (c *Carousel) Run(ctx context.Context, interval time.Duration, onAdvance func(index int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i := c.Next()
			if onAdvance != nil {
				onAdvance(i)
			}
		}
	}
}
