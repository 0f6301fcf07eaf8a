package audio

import (
	"sync"

	"github.com/gopxl/beep"
)

// clipCache stores rendered unity-gain buffers per clip
type clipCache struct {
	mu     sync.RWMutex
	format beep.Format
	store  map[Clip]*beep.Buffer
}

func newClipCache(format beep.Format) *clipCache {
	return &clipCache{
		format: format,
		store:  make(map[Clip]*beep.Buffer),
	}
}

// get returns cached buffer or renders on demand
func (c *clipCache) get(clip Clip) (*beep.Buffer, error) {
	c.mu.RLock()
	if buf, ok := c.store[clip]; ok {
		c.mu.RUnlock()
		return buf, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Double-check after acquiring write lock
	if buf, ok := c.store[clip]; ok {
		return buf, nil
	}

	s, err := renderClip(clip, c.format.SampleRate)
	if err != nil {
		return nil, err
	}
	buf := beep.NewBuffer(c.format)
	buf.Append(s)
	c.store[clip] = buf
	return buf, nil
}

func (c *clipCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}
