package graph

// DefaultHistorySize is the default number of samples retained per device.
const DefaultHistorySize = 240

// Buffer is a fixed-capacity ring buffer of percentage samples for one
// device metric. The oldest sample is evicted once capacity is reached, so
// the chart history is bounded regardless of how long the loop runs.
type Buffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewBuffer creates a ring buffer with the specified capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &Buffer{
		data: make([]float64, capacity),
		size: capacity,
	}
}

// Push appends a sample, evicting the oldest if the buffer is full.
// Values are clamped to the valid percentage range rather than rejected.
func (b *Buffer) Push(value float64) {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	b.data[b.head] = value
	b.head = (b.head + 1) % b.size
	if b.count < b.size {
		b.count++
	}
}

// Snapshot returns all stored samples in arrival order without mutating
// the buffer.
func (b *Buffer) Snapshot() []float64 {
	return b.Last(b.count)
}

// Last returns up to count of the most recent samples in arrival order.
func (b *Buffer) Last(count int) []float64 {
	if count <= 0 || b.count == 0 {
		return nil
	}

	if count > b.count {
		count = b.count
	}

	result := make([]float64, count)

	// head points at the next write slot, so the newest sample sits at
	// head-1 and the window of count samples ends there.
	start := (b.head - count + b.size) % b.size

	for i := 0; i < count; i++ {
		result[i] = b.data[(start+i)%b.size]
	}

	return result
}

// Len returns the number of stored samples.
func (b *Buffer) Len() int {
	return b.count
}

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int {
	return b.size
}
