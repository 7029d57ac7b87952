package infra

import "context"

// InfraManager abstracts the lifecycle of the product under test.
// Fake: serves the in-process product on a random local port.
// Remote: no-op, the product is managed externally.
type InfraManager interface {
	StartProduct(ctx context.Context) error
	StopProduct(ctx context.Context) error
	// BaseURL is only meaningful after StartProduct.
	BaseURL() string
}

const (
	ModeFake   = "fake"
	ModeRemote = "remote"
)
