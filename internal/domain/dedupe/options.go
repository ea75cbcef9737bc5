package dedupe

// defaultMaxSize bounds the seen-ID cache when no option is given.
const defaultMaxSize = 50000

// Option applies a configuration option to the memory deduper.
type Option func(*memoryDeduper)

// WithMaxSize sets the maximum number of IDs kept in memory. Sizes <= 0
// switch to unbounded mode (no eviction).
func WithMaxSize(maxSize int) Option {
	return func(d *memoryDeduper) {
		d.maxSize = maxSize
	}
}
