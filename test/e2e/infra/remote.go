package infra

import (
	"context"

	"go.uber.org/zap"
)

// RemoteInfraManager is a no-op manager for a product deployed outside the suite.
type RemoteInfraManager struct {
	url string
}

func NewRemoteInfraManager(url string) *RemoteInfraManager {
	return &RemoteInfraManager{url: url}
}

func (m *RemoteInfraManager) StartProduct(_ context.Context) error {
	zap.S().Named("infra").Infow("using externally managed product", "url", m.url)
	return nil
}

func (m *RemoteInfraManager) StopProduct(_ context.Context) error {
	return nil
}

func (m *RemoteInfraManager) BaseURL() string {
	return m.url
}
