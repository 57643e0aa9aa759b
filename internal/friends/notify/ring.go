package notify

// ring is a bounded FIFO of notices. When full, the oldest notice is dropped
// to make room. Callers hold the outbox lock.
type ring struct {
	notices []Notice
	head    int // next write position
	tail    int // next read position
	count   int
	dropped int64
}

func newRing(capacity int) *ring {
	return &ring{notices: make([]Notice, capacity)}
}

func (r *ring) push(n Notice) {
	capacity := len(r.notices)
	if r.count >= capacity {
		r.tail = (r.tail + 1) % capacity
		r.count--
		r.dropped++
	}
	r.notices[r.head] = n
	r.head = (r.head + 1) % capacity
	r.count++
}

func (r *ring) drain() []Notice {
	if r.count == 0 {
		return nil
	}
	out := make([]Notice, r.count)
	for i := range out {
		out[i] = r.notices[r.tail]
		r.notices[r.tail] = Notice{}
		r.tail = (r.tail + 1) % len(r.notices)
	}
	r.count = 0
	return out
}
