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
	"encoding/json"
	"strings"
)

// Project is a site that has been hunted, identified by its host
type Project struct {
	ID        uint   `gorm:"primaryKey"`
	URL       string `gorm:"not null"`             // Seed URL of the most recent hunt
	Domain    string `gorm:"uniqueIndex;not null"` // Host, including subdomain and port
	Hunts     []Hunt `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt int64  `gorm:"autoCreateTime"`
	UpdatedAt int64  `gorm:"autoUpdateTime"`
}

// Config holds the hunt defaults of a project
type Config struct {
	ID                   uint     `gorm:"primaryKey"`
	ProjectID            uint     `gorm:"uniqueIndex;not null"`
	Domain               string   `gorm:"not null"`
	Backend              string   `gorm:"default:'chrome'"` // chrome or http
	ConsoleLevel         string   `gorm:"default:'error'"`  // error, warn or log
	MaxFollows           int      `gorm:"default:-1"`       // -1 = unbounded
	TimeoutMs            int64    `gorm:"default:0"`
	WaitAfterLoadedForMs int64    `gorm:"default:0"`
	UserAgent            string   `gorm:"type:text"`
	IncludePatterns      string   `gorm:"type:text"` // JSON array of glob patterns
	ExcludePatterns      string   `gorm:"type:text"` // JSON array of glob patterns
	Project              *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	CreatedAt            int64    `gorm:"autoCreateTime"`
	UpdatedAt            int64    `gorm:"autoUpdateTime"`
}

// GetIncludePatterns deserializes IncludePatterns
func (c *Config) GetIncludePatterns() []string {
	return decodePatterns(c.IncludePatterns)
}

// GetExcludePatterns deserializes ExcludePatterns
func (c *Config) GetExcludePatterns() []string {
	return decodePatterns(c.ExcludePatterns)
}

// SetPatterns serializes the include and exclude patterns
func (c *Config) SetPatterns(include, exclude []string) error {
	inc, err := encodePatterns(include)
	if err != nil {
		return err
	}
	exc, err := encodePatterns(exclude)
	if err != nil {
		return err
	}
	c.IncludePatterns, c.ExcludePatterns = inc, exc
	return nil
}

func decodePatterns(s string) []string {
	if s == "" || s == "null" {
		return nil
	}
	var patterns []string
	if err := json.Unmarshal([]byte(s), &patterns); err != nil {
		return nil
	}
	return patterns
}

func encodePatterns(patterns []string) (string, error) {
	if len(patterns) == 0 {
		return "", nil
	}
	data, err := json.Marshal(patterns)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Hunt state constants
const (
	HuntStateRunning   = "running"
	HuntStateCompleted = "completed"
	HuntStateFailed    = "failed"
	HuntStateStopped   = "stopped"
)

// Hunt is one recorded crawl of a project
type Hunt struct {
	ID           uint      `gorm:"primaryKey"`
	PublicID     string    `gorm:"uniqueIndex;not null"` // UUID exposed by the API
	ProjectID    uint      `gorm:"not null;index"`
	SeedURL      string    `gorm:"not null"`
	State        string    `gorm:"not null;default:'running'"`
	StartedAt    int64     `gorm:"not null"`
	Duration     int64     `gorm:"not null;default:0"` // milliseconds
	PagesVisited int       `gorm:"not null;default:0"`
	ErrorCount   int       `gorm:"not null;default:0"`
	ConsoleCount int       `gorm:"not null;default:0"`
	Error        string    `gorm:"type:text"` // terminal error of a failed hunt
	Findings     []Finding `gorm:"foreignKey:HuntID;constraint:OnDelete:CASCADE"`
	Project      *Project  `gorm:"foreignKey:ProjectID"`
	CreatedAt    int64     `gorm:"autoCreateTime"`
	UpdatedAt    int64     `gorm:"autoUpdateTime"`
}

// Finding kinds
const (
	FindingError   = "error"
	FindingConsole = "console"
)

// Finding is a single event captured during a hunt
type Finding struct {
	ID          uint   `gorm:"primaryKey"`
	HuntID      uint   `gorm:"not null;index"`
	Seq         int    `gorm:"not null"` // delivery order within the hunt
	Kind        string `gorm:"not null;index"`
	PageURL     string `gorm:"not null"`
	Message     string `gorm:"type:text"`
	ConsoleType string `gorm:"type:text"` // error, warn or log for console findings
	StackTrace  string `gorm:"type:text"` // newline separated
	CreatedAt   int64  `gorm:"autoCreateTime"`
}

// StackLines splits StackTrace back into lines
func (f *Finding) StackLines() []string {
	if f.StackTrace == "" {
		return []string{}
	}
	return strings.Split(f.StackTrace, "\n")
}
