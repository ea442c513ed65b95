package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool recycles *image.RGBA snapshot buffers, one sync.Pool per frame size.
type ImagePool struct {
	mu    sync.RWMutex
	sizes map[image.Rectangle]*sync.Pool

	allocs atomic.Int64
	gets   atomic.Int64
	puts   atomic.Int64
}

// PoolStats counts buffer traffic. Gets minus Allocs is the number of reuses.
type PoolStats struct {
	Allocs int64
	Gets   int64
	Puts   int64
}

func (s PoolStats) Reused() int64 {
	return s.Gets - s.Allocs
}

var snapshots = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{sizes: make(map[image.Rectangle]*sync.Pool)}
}

// GetImage takes a snapshot buffer from the shared pool. Its pixels are stale.
func GetImage(rect image.Rectangle) *image.RGBA {
	return snapshots.Get(rect)
}

// PutImage returns a snapshot buffer to the shared pool.
func PutImage(img *image.RGBA) {
	snapshots.Put(img)
}

// SnapshotPoolStats reports the shared pool counters.
func SnapshotPoolStats() PoolStats {
	return snapshots.Stats()
}

func (p *ImagePool) poolFor(rect image.Rectangle) *sync.Pool {
	p.mu.RLock()
	pool := p.sizes[rect]
	p.mu.RUnlock()
	if pool != nil {
		return pool
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if pool = p.sizes[rect]; pool == nil {
		pool = &sync.Pool{New: func() any {
			p.allocs.Add(1)
			return image.NewRGBA(rect)
		}}
		p.sizes[rect] = pool
	}
	return pool
}

func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	p.gets.Add(1)
	return p.poolFor(rect).Get().(*image.RGBA)
}

// Put accepts only sizes the pool has handed out before.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool := p.sizes[img.Rect]
	p.mu.RUnlock()
	if pool == nil {
		return
	}
	p.puts.Add(1)
	pool.Put(img)
}

func (p *ImagePool) Stats() PoolStats {
	return PoolStats{
		Allocs: p.allocs.Load(),
		Gets:   p.gets.Load(),
		Puts:   p.puts.Load(),
	}
}
