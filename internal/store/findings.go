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
	"fmt"
)

// SaveFindings appends findings to a hunt
func (s *Store) SaveFindings(huntID uint, findings []Finding) error {
	if len(findings) == 0 {
		return nil
	}
	for i := range findings {
		findings[i].HuntID = huntID
	}
	if err := s.db.CreateInBatches(findings, 100).Error; err != nil {
		return fmt.Errorf("failed to save findings: %v", err)
	}
	return nil
}

// FindingFilter narrows GetFindings
type FindingFilter struct {
	Kind   string // "error", "console" or "" for both
	Query  string // substring of the page URL or message
	Limit  int
	Offset int
}

// GetFindings returns the findings of a hunt in delivery order
func (s *Store) GetFindings(huntID uint, f FindingFilter) ([]Finding, error) {
	var findings []Finding
	db := s.db.Where("hunt_id = ?", huntID)
	if f.Kind != "" && f.Kind != "all" {
		db = db.Where("kind = ?", f.Kind)
	}
	if f.Query != "" {
		pattern := "%" + f.Query + "%"
		db = db.Where("(page_url LIKE ? OR message LIKE ?)", pattern, pattern)
	}
	if f.Limit > 0 {
		db = db.Limit(f.Limit)
	}
	if f.Offset > 0 {
		db = db.Offset(f.Offset)
	}
	if err := db.Order("seq ASC, id ASC").Find(&findings).Error; err != nil {
		return nil, fmt.Errorf("failed to get findings: %v", err)
	}
	return findings, nil
}

// CountFindings returns the number of error and console findings of a hunt
func (s *Store) CountFindings(huntID uint) (errors int64, console int64, err error) {
	if err = s.db.Model(&Finding{}).Where("hunt_id = ? AND kind = ?", huntID, FindingError).Count(&errors).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count findings: %v", err)
	}
	if err = s.db.Model(&Finding{}).Where("hunt_id = ? AND kind = ?", huntID, FindingConsole).Count(&console).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count findings: %v", err)
	}
	return errors, console, nil
}
