package models

import "time"

// LibraryEnvironmentName is the root lifecycle environment every organization owns.
const LibraryEnvironmentName = "Library"

type Organization struct {
	ID          int
	Name        string
	Label       string
	Description string
	CreatedAt   time.Time
}

// LifecycleEnvironment is one stage of an organization's promotion path.
// PriorID is nil only for Library.
type LifecycleEnvironment struct {
	ID             int
	OrganizationID int
	Name           string
	Label          string
	Description    string
	PriorID        *int
	Library        bool
	CreatedAt      time.Time
}

type User struct {
	ID                    int
	Login                 string
	Password              string
	Firstname             string
	Lastname              string
	Mail                  string
	Admin                 bool
	DefaultOrganizationID *int
	CreatedAt             time.Time
}
