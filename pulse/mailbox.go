package pulse

import "sync"

// mailbox is an unbounded FIFO queue owned by one worker. push never blocks.
type mailbox struct {
	mu     sync.Mutex
	items  []*job
	closed bool
	// notify holds at most one wakeup for the consumer
	notify chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{notify: make(chan struct{}, 1)}
}

// push enqueues j. It returns false if the mailbox is closed.
func (m *mailbox) push(j *job) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.items = append(m.items, j)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return true
}

// pop blocks until a job is available or the mailbox is closed
func (m *mailbox) pop() (*job, bool) {
	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return nil, false
		}
		if len(m.items) > 0 {
			j := m.items[0]
			m.items[0] = nil
			m.items = m.items[1:]
			m.mu.Unlock()
			return j, true
		}
		m.mu.Unlock()
		<-m.notify
	}
}

// close rejects further pushes and returns the jobs that were never popped
func (m *mailbox) close() []*job {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	pending := m.items
	m.items = nil
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
	return pending
}

// len is the number of queued jobs
func (m *mailbox) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
