package models

import "time"

type RepositoryType string

const (
	RepositoryTypeYum    RepositoryType = "yum"
	RepositoryTypePuppet RepositoryType = "puppet"
)

func (r RepositoryType) Valid() bool {
	return r == RepositoryTypeYum || r == RepositoryTypePuppet
}

type Product struct {
	ID             int
	OrganizationID int
	Name           string
	Label          string
	Description    string
}

type Repository struct {
	ID             int
	ProductID      int
	OrganizationID int
	Name           string
	Label          string
	ContentType    RepositoryType
	URL            string
	PackageCount   int
	LastSync       *time.Time
}

// PuppetModule is a module found in a synced puppet repository.
type PuppetModule struct {
	ID           int
	RepositoryID int
	Name         string
	Author       string
	Version      string
}
