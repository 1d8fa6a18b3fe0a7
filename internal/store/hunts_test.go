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

package store

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := newStoreWithPath(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateHunt(t *testing.T) {
	store := newTestStore(t)

	project, err := store.GetOrCreateProject("https://example.com", "example.com")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	t.Run("CreateHunt_AssignsPublicID", func(t *testing.T) {
		hunt, err := store.CreateHunt(project.ID, "https://example.com", time.Now().Unix())
		if err != nil {
			t.Fatalf("CreateHunt() failed: %v", err)
		}
		if hunt.PublicID == "" {
			t.Error("Expected a public ID")
		}
		if hunt.State != HuntStateRunning {
			t.Errorf("Expected state %q, got %q", HuntStateRunning, hunt.State)
		}

		got, err := store.GetHuntByPublicID(hunt.PublicID)
		if err != nil {
			t.Fatalf("GetHuntByPublicID() failed: %v", err)
		}
		if got.ID != hunt.ID {
			t.Errorf("Expected hunt %d, got %d", hunt.ID, got.ID)
		}
	})

	t.Run("PublicIDsAreUnique", func(t *testing.T) {
		a, err := store.CreateHunt(project.ID, "https://example.com", time.Now().Unix())
		if err != nil {
			t.Fatalf("CreateHunt() failed: %v", err)
		}
		b, err := store.CreateHunt(project.ID, "https://example.com", time.Now().Unix())
		if err != nil {
			t.Fatalf("CreateHunt() failed: %v", err)
		}
		if a.PublicID == b.PublicID {
			t.Errorf("Expected distinct public IDs, both were %s", a.PublicID)
		}
	})
}

func TestFinishHunt(t *testing.T) {
	store := newTestStore(t)

	project, err := store.GetOrCreateProject("https://example.com", "example.com")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	hunt, err := store.CreateHunt(project.ID, "https://example.com", time.Now().Unix())
	if err != nil {
		t.Fatalf("CreateHunt() failed: %v", err)
	}

	stats := HuntStats{Duration: 1500, PagesVisited: 4, ErrorCount: 2, ConsoleCount: 1}
	if err := store.FinishHunt(hunt.ID, HuntStateFailed, stats, "navigating to x: boom"); err != nil {
		t.Fatalf("FinishHunt() failed: %v", err)
	}

	got, err := store.GetHuntByID(hunt.ID)
	if err != nil {
		t.Fatalf("GetHuntByID() failed: %v", err)
	}
	if got.State != HuntStateFailed || got.PagesVisited != 4 || got.ErrorCount != 2 || got.ConsoleCount != 1 || got.Duration != 1500 {
		t.Errorf("Unexpected hunt after finish: %+v", got)
	}
	if got.Error != "navigating to x: boom" {
		t.Errorf("Expected error to be stored, got %q", got.Error)
	}

	t.Run("FinishNonExistentHunt_ReturnsError", func(t *testing.T) {
		err := store.FinishHunt(999999, HuntStateCompleted, HuntStats{}, "")
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("Expected not found error, got: %v", err)
		}
	})
}

func TestListHuntsNewestFirst(t *testing.T) {
	store := newTestStore(t)

	project, err := store.GetOrCreateProject("https://example.com", "example.com")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := store.CreateHunt(project.ID, "https://example.com", int64(1000+i)); err != nil {
			t.Fatalf("CreateHunt() failed: %v", err)
		}
	}

	hunts, err := store.ListHunts(2)
	if err != nil {
		t.Fatalf("ListHunts() failed: %v", err)
	}
	if len(hunts) != 2 {
		t.Fatalf("Expected 2 hunts, got %d", len(hunts))
	}
	if hunts[0].StartedAt != 1002 || hunts[1].StartedAt != 1001 {
		t.Errorf("Expected newest first, got %d then %d", hunts[0].StartedAt, hunts[1].StartedAt)
	}
}

func TestMarkInterruptedHunts(t *testing.T) {
	store := newTestStore(t)

	project, _ := store.GetOrCreateProject("https://example.com", "example.com")
	running, _ := store.CreateHunt(project.ID, "https://example.com", 1)
	done, _ := store.CreateHunt(project.ID, "https://example.com", 2)
	if err := store.FinishHunt(done.ID, HuntStateCompleted, HuntStats{}, ""); err != nil {
		t.Fatalf("FinishHunt() failed: %v", err)
	}

	n, err := store.MarkInterruptedHunts()
	if err != nil {
		t.Fatalf("MarkInterruptedHunts() failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 interrupted hunt, got %d", n)
	}

	got, _ := store.GetHuntByID(running.ID)
	if got.State != HuntStateFailed || got.Error != "interrupted" {
		t.Errorf("Expected running hunt to be failed, got %+v", got)
	}
	got, _ = store.GetHuntByID(done.ID)
	if got.State != HuntStateCompleted {
		t.Errorf("Completed hunt should be untouched, got %q", got.State)
	}
}

func TestDeleteHunt(t *testing.T) {
	store := newTestStore(t)

	project, _ := store.GetOrCreateProject("https://example.com", "example.com")

	t.Run("DeleteExistingHunt_RemovesFindings", func(t *testing.T) {
		hunt, err := store.CreateHunt(project.ID, "https://example.com", time.Now().Unix())
		if err != nil {
			t.Fatalf("CreateHunt() failed: %v", err)
		}
		if err := store.SaveFindings(hunt.ID, []Finding{{Kind: FindingError, PageURL: "https://example.com", Message: "boom"}}); err != nil {
			t.Fatalf("SaveFindings() failed: %v", err)
		}

		if err := store.DeleteHunt(hunt.ID); err != nil {
			t.Fatalf("DeleteHunt() failed: %v", err)
		}

		findings, err := store.GetFindings(hunt.ID, FindingFilter{})
		if err != nil {
			t.Fatalf("GetFindings() failed: %v", err)
		}
		if len(findings) != 0 {
			t.Errorf("Expected findings to be deleted, got %d", len(findings))
		}
	})

	t.Run("DeleteNonExistentHunt_ReturnsError", func(t *testing.T) {
		err := store.DeleteHunt(999999)
		if err == nil {
			t.Fatal("DeleteHunt() should return error for non-existent hunt, but got nil")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("Expected error message to contain 'not found', got: %v", err)
		}
	})
}
