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
	"testing"
)

func TestFindings(t *testing.T) {
	store := newTestStore(t)

	project, err := store.GetOrCreateProject("http://localhost:8080", "localhost:8080")
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}
	hunt, err := store.CreateHunt(project.ID, "http://localhost:8080", 1)
	if err != nil {
		t.Fatalf("CreateHunt() failed: %v", err)
	}

	findings := []Finding{
		{Seq: 0, Kind: FindingError, PageURL: "http://localhost:8080/", Message: "Uncaught Error: inline", StackTrace: "Error: inline\nat http://localhost:8080/:3:9"},
		{Seq: 1, Kind: FindingConsole, PageURL: "http://localhost:8080/", Message: "deprecated", ConsoleType: "warn"},
		{Seq: 2, Kind: FindingError, PageURL: "http://localhost:8080/about", Message: "Uncaught TypeError: x is undefined"},
	}
	if err := store.SaveFindings(hunt.ID, findings); err != nil {
		t.Fatalf("SaveFindings() failed: %v", err)
	}

	tests := []struct {
		name     string
		filter   FindingFilter
		expected []string
	}{
		{"All", FindingFilter{}, []string{"Uncaught Error: inline", "deprecated", "Uncaught TypeError: x is undefined"}},
		{"ErrorsOnly", FindingFilter{Kind: FindingError}, []string{"Uncaught Error: inline", "Uncaught TypeError: x is undefined"}},
		{"ConsoleOnly", FindingFilter{Kind: FindingConsole}, []string{"deprecated"}},
		{"QueryMatchesURL", FindingFilter{Query: "/about"}, []string{"Uncaught TypeError: x is undefined"}},
		{"QueryMatchesMessage", FindingFilter{Query: "inline"}, []string{"Uncaught Error: inline"}},
		{"Limit", FindingFilter{Limit: 1}, []string{"Uncaught Error: inline"}},
		{"LimitOffset", FindingFilter{Limit: 1, Offset: 1}, []string{"deprecated"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.GetFindings(hunt.ID, tt.filter)
			if err != nil {
				t.Fatalf("GetFindings() failed: %v", err)
			}
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected %d findings, got %d", len(tt.expected), len(got))
			}
			for i, f := range got {
				if f.Message != tt.expected[i] {
					t.Errorf("Finding %d: expected %q, got %q", i, tt.expected[i], f.Message)
				}
			}
		})
	}

	t.Run("StackLines", func(t *testing.T) {
		got, _ := store.GetFindings(hunt.ID, FindingFilter{Kind: FindingError, Limit: 1})
		lines := got[0].StackLines()
		if len(lines) != 2 || lines[1] != "at http://localhost:8080/:3:9" {
			t.Errorf("Unexpected stack lines: %v", lines)
		}
	})

	t.Run("CountFindings", func(t *testing.T) {
		errs, console, err := store.CountFindings(hunt.ID)
		if err != nil {
			t.Fatalf("CountFindings() failed: %v", err)
		}
		if errs != 2 || console != 1 {
			t.Errorf("Expected 2 errors and 1 console finding, got %d and %d", errs, console)
		}
	})
}
