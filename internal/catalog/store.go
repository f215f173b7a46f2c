package catalog

import "sync"

// Store owns the session's entry list. A single goroutine applies every
// read and mutation in the order they were posted, so callers on other
// goroutines never touch the list directly.
//
// Every applied mutation publishes a full snapshot to subscribers.
type Store struct {
	ops  chan func()
	quit chan struct{}
	done chan struct{}
	once sync.Once

	// Owned by the loop goroutine.
	entries []Entry
	subs    map[int]chan []Entry
	nextSub int
}

// NewStore starts a store seeded with entries. Call Close to stop it.
func NewStore(entries []Entry) *Store {
	s := &Store{
		ops:     make(chan func(), 64),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		entries: make([]Entry, len(entries)),
		subs:    make(map[int]chan []Entry),
	}
	for i, e := range entries {
		s.entries[i] = e.clone()
	}
	go s.loop()
	return s
}

func (s *Store) loop() {
	defer close(s.done)
	for {
		select {
		case op := <-s.ops:
			op()
		case <-s.quit:
			for id, ch := range s.subs {
				close(ch)
				delete(s.subs, id)
			}
			return
		}
	}
}

// Close stops the store and closes all subscriber channels.
func (s *Store) Close() {
	s.once.Do(func() { close(s.quit) })
	<-s.done
}

// post queues fn for the owning goroutine. It reports false once the
// store is closed.
func (s *Store) post(fn func()) bool {
	select {
	case s.ops <- fn:
		return true
	case <-s.quit:
		return false
	}
}

// call runs fn on the owning goroutine and waits for it.
func (s *Store) call(fn func()) bool {
	applied := make(chan struct{})
	if !s.post(func() { fn(); close(applied) }) {
		return false
	}
	select {
	case <-applied:
		return true
	case <-s.done:
		return false
	}
}

// Entries returns a copy of the current entry list. It observes every
// update posted before the call.
func (s *Store) Entries() []Entry {
	var out []Entry
	s.call(func() { out = s.snapshot() })
	return out
}

// Get returns a copy of the entry with the given ID.
func (s *Store) Get(id string) (Entry, bool) {
	var (
		e     Entry
		found bool
	)
	s.call(func() {
		if i := s.index(id); i >= 0 {
			e, found = s.entries[i].clone(), true
		}
	})
	return e, found
}

// Update posts an asynchronous mutation of the entry with the given ID.
// fn receives a copy and returns the replacement. If the ID no longer
// resolves when the update is applied, it is dropped.
func (s *Store) Update(id string, fn func(Entry) Entry) {
	s.post(func() {
		i := s.index(id)
		if i < 0 {
			return
		}
		prev := s.entries[i]
		s.entries[i] = merge(prev, fn(prev.clone()))
		s.publish()
	})
}

// Remove deletes the entry with the given ID and reports whether it existed.
func (s *Store) Remove(id string) bool {
	var removed bool
	s.call(func() {
		i := s.index(id)
		if i < 0 {
			return
		}
		s.entries = append(s.entries[:i], s.entries[i+1:]...)
		removed = true
		s.publish()
	})
	return removed
}

// Subscribe returns a channel receiving a snapshot after every applied
// mutation, starting with the current state. When a subscriber falls
// behind, older snapshots are discarded in favour of the newest. The
// cancel func detaches the subscriber and closes the channel.
func (s *Store) Subscribe(buf int) (<-chan []Entry, func()) {
	if buf < 1 {
		buf = 1
	}
	ch := make(chan []Entry, buf)
	var id int
	if !s.call(func() {
		id = s.nextSub
		s.nextSub++
		s.subs[id] = ch
		deliver(ch, s.snapshot())
	}) {
		close(ch)
		return ch, func() {}
	}
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.call(func() {
				if c, ok := s.subs[id]; ok {
					close(c)
					delete(s.subs, id)
				}
			})
		})
	}
	return ch, cancel
}

func (s *Store) publish() {
	for _, ch := range s.subs {
		deliver(ch, s.snapshot())
	}
}

// deliver sends snap, evicting the oldest queued snapshot if ch is full.
// Only the loop goroutine sends, so the second send cannot block.
func deliver(ch chan []Entry, snap []Entry) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	default:
	}
}

func (s *Store) snapshot() []Entry {
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

func (s *Store) index(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}
