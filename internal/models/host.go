package models

import "time"

// ConnectByIPParameter makes remote execution reach a host by its address instead of its name.
const ConnectByIPParameter = "remote_execution_connect_by_ip"

type Host struct {
	ID                     int
	Name                   string
	OrganizationID         int
	IP                     string
	ContentViewID          *int
	LifecycleEnvironmentID *int
	Parameters             map[string]string
	CreatedAt              time.Time
}

// Address is what remote execution connects to.
func (h Host) Address() string {
	if h.IP != "" && h.Parameters[ConnectByIPParameter] == "true" {
		return h.IP
	}
	return h.Name
}
