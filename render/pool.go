package render

import "sync"

// ============================================================================
// Traversal Slice Pooling
// ============================================================================
//
// Traverse runs every frame and builds two scratch slices proportional to the
// tree size. They are pooled so steady-state frames do not allocate them.
//
// Usage:
//   items := acquireItems()
//   ... append to *items ...
//   releaseItems(items)

// maxPooledCap keeps one huge frame from pinning its buffers forever.
const maxPooledCap = 1 << 14

var itemPool = sync.Pool{
	New: func() any {
		s := make([]item, 0, 64)
		return &s
	},
}

var framePool = sync.Pool{
	New: func() any {
		s := make([]frame, 0, 32)
		return &s
	},
}

func acquireItems() *[]item {
	return itemPool.Get().(*[]item)
}

// releaseItems returns s to the pool. Node pointers are cleared so pooled
// buffers do not keep removed nodes alive.
func releaseItems(s *[]item) {
	if cap(*s) > maxPooledCap {
		return
	}
	clear(*s)
	*s = (*s)[:0]
	itemPool.Put(s)
}

func acquireFrames() *[]frame {
	return framePool.Get().(*[]frame)
}

func releaseFrames(s *[]frame) {
	if cap(*s) > maxPooledCap {
		return
	}
	*s = (*s)[:0]
	framePool.Put(s)
}
