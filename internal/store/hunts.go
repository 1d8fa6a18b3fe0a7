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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateHunt records a new running hunt for a project
func (s *Store) CreateHunt(projectID uint, seedURL string, startedAt int64) (*Hunt, error) {
	hunt := Hunt{
		PublicID:  uuid.NewString(),
		ProjectID: projectID,
		SeedURL:   seedURL,
		State:     HuntStateRunning,
		StartedAt: startedAt,
	}

	if err := s.db.Create(&hunt).Error; err != nil {
		return nil, fmt.Errorf("failed to create hunt: %v", err)
	}

	return &hunt, nil
}

// HuntStats are the counters of a hunt in progress
type HuntStats struct {
	Duration     int64
	PagesVisited int
	ErrorCount   int
	ConsoleCount int
}

// UpdateHuntStats updates the counters of a hunt
func (s *Store) UpdateHuntStats(huntID uint, stats HuntStats) error {
	return s.db.Model(&Hunt{}).Where("id = ?", huntID).Updates(map[string]interface{}{
		"duration":      stats.Duration,
		"pages_visited": stats.PagesVisited,
		"error_count":   stats.ErrorCount,
		"console_count": stats.ConsoleCount,
	}).Error
}

// FinishHunt stores the final state and counters of a hunt
func (s *Store) FinishHunt(huntID uint, state string, stats HuntStats, errMsg string) error {
	result := s.db.Model(&Hunt{}).Where("id = ?", huntID).Updates(map[string]interface{}{
		"state":         state,
		"duration":      stats.Duration,
		"pages_visited": stats.PagesVisited,
		"error_count":   stats.ErrorCount,
		"console_count": stats.ConsoleCount,
		"error":         errMsg,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to finish hunt: %v", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("hunt with ID %d not found", huntID)
	}
	return nil
}

// UpdateHuntState changes only the state of a hunt
func (s *Store) UpdateHuntState(huntID uint, state string) error {
	return s.db.Model(&Hunt{}).Where("id = ?", huntID).Update("state", state).Error
}

// GetHuntByID gets a hunt by its database ID
func (s *Store) GetHuntByID(id uint) (*Hunt, error) {
	var hunt Hunt
	if err := s.db.First(&hunt, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get hunt: %v", err)
	}
	return &hunt, nil
}

// GetHuntByPublicID gets a hunt by its UUID
func (s *Store) GetHuntByPublicID(publicID string) (*Hunt, error) {
	var hunt Hunt
	if err := s.db.Where("public_id = ?", publicID).First(&hunt).Error; err != nil {
		return nil, fmt.Errorf("failed to get hunt: %v", err)
	}
	return &hunt, nil
}

// GetProjectHunts returns all hunts of a project, newest first
func (s *Store) GetProjectHunts(projectID uint) ([]Hunt, error) {
	var hunts []Hunt
	result := s.db.Where("project_id = ?", projectID).Order("started_at DESC, id DESC").Find(&hunts)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get hunts: %v", result.Error)
	}
	return hunts, nil
}

// ListHunts returns the most recent hunts across projects. limit <= 0 means all.
func (s *Store) ListHunts(limit int) ([]Hunt, error) {
	var hunts []Hunt
	db := s.db.Order("started_at DESC, id DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&hunts).Error; err != nil {
		return nil, fmt.Errorf("failed to list hunts: %v", err)
	}
	return hunts, nil
}

// MarkInterruptedHunts fails every hunt left running by a previous process
func (s *Store) MarkInterruptedHunts() (int64, error) {
	result := s.db.Model(&Hunt{}).
		Where("state = ?", HuntStateRunning).
		Updates(map[string]interface{}{"state": HuntStateFailed, "error": "interrupted"})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark interrupted hunts: %v", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteHunt deletes a hunt and its findings
func (s *Store) DeleteHunt(huntID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hunt_id = ?", huntID).Delete(&Finding{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Hunt{}, huntID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("hunt with ID %d not found", huntID)
		}
		return nil
	})
}
