/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"sync"
)

// ChangeKind is the kind of a mutation made to a note
type ChangeKind int

const (
	// ChangeInsert is published when a note is inserted
	ChangeInsert ChangeKind = iota + 1
	// ChangeUpdate is published when a note is updated or soft-deleted
	ChangeUpdate
	// ChangeDelete is published when a note is purged
	ChangeDelete
)

// Change describes a committed mutation of a note
type Change struct {
	UserID int
	NoteID int
	Kind   ChangeKind
}

// subscriberBuffer is the number of changes a subscriber can fall behind by
// before it starts missing them
const subscriberBuffer = 64

// Broker fans out note changes to the subscribers of the owning user
type Broker struct {
	mu     sync.Mutex
	subs   map[int]map[chan Change]struct{}
	closed bool
}

// NewBroker returns a new broker
func NewBroker() *Broker {
	return &Broker{
		subs: map[int]map[chan Change]struct{}{},
	}
}

// Subscribe returns a channel receiving the changes to the notes of the given
// user, and a function that cancels the subscription and closes the channel.
func (b *Broker) Subscribe(userID int) (<-chan Change, func()) {
	ch := make(chan Change, subscriberBuffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch, func() {}
	}

	if b.subs[userID] == nil {
		b.subs[userID] = map[chan Change]struct{}{}
	}
	b.subs[userID][ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			if _, ok := b.subs[userID][ch]; ok {
				delete(b.subs[userID], ch)
				close(ch)
			}
		})
	}

	return ch, cancel
}

// Publish delivers the change to the subscribers of its user without blocking
func (b *Broker) Publish(c Change) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[c.UserID] {
		select {
		case ch <- c:
		default:
			// subscriber is behind; it re-reads the store anyway
		}
	}
}

// Close closes every subscription
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for userID, chans := range b.subs {
		for ch := range chans {
			close(ch)
		}
		delete(b.subs, userID)
	}
}
