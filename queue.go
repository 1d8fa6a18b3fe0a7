// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hounds

import (
	"strings"

	"github.com/agentberlin/hounds/storage"
	"github.com/cespare/xxhash/v2"
)

// CrawlQueue holds the pending URLs of a hunt in discovery order and the set
// of URLs already visited. A URL and its trailing-slash-stripped form share one
// visited identity.
//
// CrawlQueue is not safe for concurrent use; only the engine touches it.
type CrawlQueue struct {
	pending []string
	queued  map[string]struct{}
	visited storage.Storage
	count   int
}

// NewCrawlQueue creates a queue seeded with url. A nil store gets an
// in-memory visited set.
func NewCrawlQueue(url string, store storage.Storage) (*CrawlQueue, error) {
	if store == nil {
		store = &storage.InMemoryStorage{}
	}
	if err := store.Init(); err != nil {
		return nil, err
	}
	q := &CrawlQueue{
		queued:  make(map[string]struct{}),
		visited: store,
	}
	q.pending = append(q.pending, url)
	q.queued[url] = struct{}{}
	return q, nil
}

// Enqueue appends url unless it is already pending or visited.
func (q *CrawlQueue) Enqueue(url string) {
	if q.Known(url) {
		return
	}
	q.pending = append(q.pending, url)
	q.queued[url] = struct{}{}
}

// Known reports whether url is pending or has been visited, in either its
// own or its trailing-slash-stripped form.
func (q *CrawlQueue) Known(url string) bool {
	if _, ok := q.queued[url]; ok {
		return true
	}
	return q.isVisited(url) || q.isVisited(stripTrailingSlash(url))
}

// Dequeue removes and returns the head of the queue. ok is false once the
// queue is exhausted.
func (q *CrawlQueue) Dequeue() (url string, ok bool) {
	if len(q.pending) == 0 {
		return "", false
	}
	url = q.pending[0]
	q.pending[0] = ""
	q.pending = q.pending[1:]
	delete(q.queued, url)
	return url, true
}

// MarkVisited records url and its trailing-slash-stripped form as visited.
func (q *CrawlQueue) MarkVisited(url string) {
	q.count++
	q.visited.Visited(urlHash(url))
	q.visited.Visited(urlHash(stripTrailingSlash(url)))
}

// VisitedCount is the number of MarkVisited calls, the hunt's follow count.
func (q *CrawlQueue) VisitedCount() int {
	return q.count
}

// Len returns the number of pending URLs.
func (q *CrawlQueue) Len() int {
	return len(q.pending)
}

func (q *CrawlQueue) isVisited(url string) bool {
	visited, err := q.visited.IsVisited(urlHash(url))
	return err == nil && visited
}

func urlHash(url string) uint64 {
	return xxhash.Sum64String(url)
}

func stripTrailingSlash(url string) string {
	return strings.TrimSuffix(url, "/")
}
