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

package app

import (
	"github.com/agentberlin/hounds/internal/types"
)

// GetProjects returns all projects with their latest hunt info
func (a *App) GetProjects() ([]types.ProjectInfo, error) {
	projects, err := a.store.GetAllProjects()
	if err != nil {
		return nil, err
	}

	projectInfos := make([]types.ProjectInfo, 0, len(projects))
	for _, p := range projects {
		info := types.ProjectInfo{
			ID:     p.ID,
			URL:    p.URL,
			Domain: p.Domain,
		}
		if len(p.Hunts) > 0 {
			latest := p.Hunts[0]
			info.LatestHuntID = latest.PublicID
			info.LastHuntAt = latest.StartedAt
			info.LastState = latest.State
			info.ErrorCount = latest.ErrorCount
		}
		projectInfos = append(projectInfos, info)
	}

	return projectInfos, nil
}

// DeleteProjectByID deletes a project and all its hunts. A project that is
// being hunted is stopped first.
func (a *App) DeleteProjectByID(projectID uint) error {
	a.huntsMutex.RLock()
	ah, active := a.activeHunts[projectID]
	a.huntsMutex.RUnlock()
	if active {
		ah.stop()
		<-ah.done
	}
	return a.store.DeleteProject(projectID)
}
