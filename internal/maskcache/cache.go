// Package maskcache fetches and memoizes per-annotation segmentation masks.
//
// Masks arrive as grayscale rasters referenced by annotation records. Each
// mask is fetched at most once per cache lifetime: a failure is terminal for
// that id until the caller explicitly invalidates it, and there is no
// eviction. Fetches complete on background goroutines; a resolution arriving
// after Close, or after its entry was invalidated, is discarded without
// touching the cache.
package maskcache

import (
	"context"
	"image"
	"image/draw"
	"log/slog"
	"sync"

	"github.com/disintegration/imaging"

	"detection-viewer/internal/annotation"
	"detection-viewer/internal/resource"
)

// State describes a cache entry.
type State int

const (
	// StateNone means the mask was never requested.
	StateNone State = iota
	// StatePending means a fetch is in flight.
	StatePending
	// StateLoaded means the decoded raster is available.
	StateLoaded
	// StateFailed means the fetch or decode failed; terminal until Invalidate.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return "none"
	}
}

type entry struct {
	state State
	mask  *image.Gray
	err   error
}

// Cache memoizes segmentation masks keyed by annotation id.
type Cache struct {
	mu       sync.Mutex
	fetcher  resource.Fetcher
	logger   *slog.Logger
	onChange func()
	entries  map[string]*entry
	nativeW  int
	nativeH  int
	closed   bool
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates an empty cache fetching masks through the given fetcher.
func New(fetcher resource.Fetcher, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		fetcher: fetcher,
		logger:  logger,
		entries: make(map[string]*entry),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// OnChange registers fn, invoked (possibly from a background goroutine)
// whenever an entry resolves to Loaded or Failed.
func (c *Cache) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// SetNativeSize records the native frame dimensions. Masks whose raster does
// not match are resized on load so the renderer can assume 1:1 alignment
// with the frame.
func (c *Cache) SetNativeSize(w, h int) {
	c.mu.Lock()
	c.nativeW, c.nativeH = w, h
	c.mu.Unlock()
}

// Ensure begins fetching the mask for a. It is a no-op when a has no mask
// reference or when an entry for its id already exists in any state, so
// concurrent calls before resolution never issue duplicate fetches.
func (c *Cache) Ensure(a annotation.Annotation) {
	if !a.HasMask() {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if _, ok := c.entries[a.ID]; ok {
		c.mu.Unlock()
		return
	}
	e := &entry{state: StatePending}
	c.entries[a.ID] = e
	ctx := c.ctx
	c.mu.Unlock()

	go c.fetch(ctx, e, a.ID, a.MaskRef)
}

// EnsureAll calls Ensure for every annotation in the list.
func (c *Cache) EnsureAll(list []annotation.Annotation) {
	for _, a := range list {
		c.Ensure(a)
	}
}

// Mask returns the loaded raster for id, or nil while it is missing,
// pending, or failed.
func (c *Cache) Mask(id string) *image.Gray {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok && e.state == StateLoaded {
		return e.mask
	}
	return nil
}

// State returns the entry state for id.
func (c *Cache) State(id string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[id]; ok {
		return e.state
	}
	return StateNone
}

// Invalidate removes the entry for id. A subsequent Ensure fetches again;
// an in-flight resolution for the removed entry is discarded.
func (c *Cache) Invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Close tears the cache down. In-flight fetches are canceled and any late
// resolutions are dropped.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
	c.cancel()
}

func (c *Cache) fetch(ctx context.Context, e *entry, id, ref string) {
	img, err := c.fetcher.Fetch(ctx, ref)
	if err != nil {
		c.resolve(id, e, nil, err)
		return
	}

	c.mu.Lock()
	w, h := c.nativeW, c.nativeH
	live := !c.closed && c.entries[id] == e
	c.mu.Unlock()
	if !live {
		c.logger.Debug("dropping stale mask resolution", "id", id)
		return
	}

	c.resolve(id, e, Normalize(img, w, h), nil)
}

func (c *Cache) resolve(id string, e *entry, mask *image.Gray, err error) {
	c.mu.Lock()
	if c.closed || c.entries[id] != e {
		c.mu.Unlock()
		c.logger.Debug("dropping stale mask resolution", "id", id)
		return
	}
	if err != nil {
		e.state = StateFailed
		e.err = err
	} else {
		e.state = StateLoaded
		e.mask = mask
	}
	fn := c.onChange
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("mask fetch failed", "id", id, "error", err)
	}
	if fn != nil {
		fn()
	}
}

// Normalize converts an arbitrary decoded raster into the grayscale form the
// renderer consumes. When w and h are positive and disagree with the raster
// size, the mask is resized with nearest-neighbour sampling to keep its
// membership edges hard.
func Normalize(img image.Image, w, h int) *image.Gray {
	b := img.Bounds()
	if w > 0 && h > 0 && (b.Dx() != w || b.Dy() != h) {
		img = imaging.Resize(img, w, h, imaging.NearestNeighbor)
	}
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	g := image.NewGray(img.Bounds())
	draw.Draw(g, g.Bounds(), img, img.Bounds().Min, draw.Src)
	return g
}

// Static is a fixed, fully resolved mask set for one annotation list. It
// serves the renderer the same way Cache does, without any asynchrony.
type Static struct {
	masks map[string]*image.Gray
}

// Mask returns the raster for id, or nil.
func (s *Static) Mask(id string) *image.Gray {
	return s.masks[id]
}

// FetchAll synchronously resolves every mask referenced by the list.
// Per-id failures are collected in the returned map; masks that did resolve
// are usable regardless.
func FetchAll(ctx context.Context, fetcher resource.Fetcher, list []annotation.Annotation, nativeW, nativeH int) (*Static, map[string]error) {
	s := &Static{masks: make(map[string]*image.Gray)}
	errs := make(map[string]error)
	for _, a := range list {
		if !a.HasMask() {
			continue
		}
		img, err := fetcher.Fetch(ctx, a.MaskRef)
		if err != nil {
			errs[a.ID] = err
			continue
		}
		s.masks[a.ID] = Normalize(img, nativeW, nativeH)
	}
	return s, errs
}
