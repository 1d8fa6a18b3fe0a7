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

	"gorm.io/gorm"
)

// GetOrCreateConfig retrieves the hunt defaults of a project or creates them
func (s *Store) GetOrCreateConfig(projectID uint, domain string) (*Config, error) {
	var config Config

	result := s.db.Where("project_id = ?", projectID).First(&config)

	if result.Error == gorm.ErrRecordNotFound {
		config = Config{
			ProjectID:    projectID,
			Domain:       domain,
			Backend:      "chrome",
			ConsoleLevel: "error",
			MaxFollows:   -1,
		}
		if err := s.db.Create(&config).Error; err != nil {
			return nil, fmt.Errorf("failed to create config: %v", err)
		}
		return &config, nil
	}

	if result.Error != nil {
		return nil, fmt.Errorf("failed to get config: %v", result.Error)
	}

	return &config, nil
}

// ConfigUpdate carries new hunt defaults for a project
type ConfigUpdate struct {
	Backend              string
	ConsoleLevel         string
	MaxFollows           int
	TimeoutMs            int64
	WaitAfterLoadedForMs int64
	UserAgent            string
	Include              []string
	Exclude              []string
}

// UpdateConfig replaces the hunt defaults of a project
func (s *Store) UpdateConfig(projectID uint, u ConfigUpdate) error {
	var config Config

	if err := s.db.Where("project_id = ?", projectID).First(&config).Error; err != nil {
		return fmt.Errorf("failed to get config: %v", err)
	}

	config.Backend = u.Backend
	config.ConsoleLevel = u.ConsoleLevel
	config.MaxFollows = u.MaxFollows
	config.TimeoutMs = u.TimeoutMs
	config.WaitAfterLoadedForMs = u.WaitAfterLoadedForMs
	config.UserAgent = u.UserAgent
	if err := config.SetPatterns(u.Include, u.Exclude); err != nil {
		return fmt.Errorf("failed to set patterns: %v", err)
	}

	return s.db.Save(&config).Error
}
