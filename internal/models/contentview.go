package models

import (
	"fmt"
	"time"
)

// ContentView is the mutable definition a version is published from.
// RepositoryIDs is only ever populated on non-composite views, ComponentIDs only on composite ones.
type ContentView struct {
	ID             int
	OrganizationID int
	Name           string
	Label          string
	Description    string
	Composite      bool
	NextVersion    int
	RepositoryIDs  []int
	ComponentIDs   []int
	PuppetModules  []ContentViewPuppetModule
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ContentViewPuppetModule struct {
	ID             int
	ContentViewID  int
	PuppetModuleID int
	Name           string
	Author         string
}

// ContentViewVersion is an immutable snapshot of a content view. It only changes when
// promoted to another environment.
type ContentViewVersion struct {
	ID              int
	ContentViewID   int
	Major           int
	Minor           int
	Description     string
	PackageCount    int
	EnvironmentIDs  []int
	RepositoryIDs   []int
	ComponentIDs    []int
	PuppetModuleIDs []int
	CreatedAt       time.Time
}

func (v ContentViewVersion) Version() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func (v ContentViewVersion) InEnvironment(envID int) bool {
	for _, id := range v.EnvironmentIDs {
		if id == envID {
			return true
		}
	}
	return false
}
