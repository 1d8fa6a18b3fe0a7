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
	"reflect"
	"testing"
)

func TestCrawlQueue_Order(t *testing.T) {
	q, err := NewCrawlQueue("http://a.test/", nil)
	if err != nil {
		t.Fatal(err)
	}
	q.Enqueue("http://a.test/1")
	q.Enqueue("http://a.test/2")
	q.Enqueue("http://a.test/1")
	if q.Len() != 3 {
		t.Fatalf("Len() = %d", q.Len())
	}
	var got []string
	for {
		url, ok := q.Dequeue()
		if !ok {
			break
		}
		q.MarkVisited(url)
		got = append(got, url)
	}
	want := []string{"http://a.test/", "http://a.test/1", "http://a.test/2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dequeued %q, want %q", got, want)
	}
	if q.VisitedCount() != 3 {
		t.Fatalf("VisitedCount() = %d", q.VisitedCount())
	}
}

func TestCrawlQueue_TrailingSlashIdentity(t *testing.T) {
	q, err := NewCrawlQueue("http://a.test/docs/", nil)
	if err != nil {
		t.Fatal(err)
	}
	url, _ := q.Dequeue()
	q.MarkVisited(url)

	for _, u := range []string{"http://a.test/docs/", "http://a.test/docs"} {
		if !q.Known(u) {
			t.Errorf("%s should be known", u)
		}
	}
	if q.Known("http://a.test/docs/x") {
		t.Error("unrelated URL known")
	}
	q.Enqueue("http://a.test/docs")
	if q.Len() != 0 {
		t.Fatal("slash variant of a visited URL was queued")
	}
}
