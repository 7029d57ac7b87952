package infra

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/renzon/robottelo/internal/config"
	"github.com/renzon/robottelo/internal/fake"
)

// FakeInfraManager runs the fake product inside the suite process. The database is
// in memory and the listener binds a random loopback port.
type FakeInfraManager struct {
	cfg     config.Configuration
	product *fake.Product
}

func NewFakeInfraManager(cfg *config.Configuration) *FakeInfraManager {
	c := *cfg
	c.Fake.ListenAddress = "127.0.0.1:0"
	c.Fake.DatabasePath = ":memory:"
	return &FakeInfraManager{cfg: c}
}

func (m *FakeInfraManager) StartProduct(ctx context.Context) error {
	if m.product != nil {
		return fmt.Errorf("fake product already started at %s", m.product.URL())
	}
	p, err := fake.New(ctx, &m.cfg)
	if err != nil {
		return fmt.Errorf("creating fake product: %w", err)
	}
	p.Start(ctx)
	m.product = p
	zap.S().Named("infra").Infow("fake product started", "url", p.URL())
	return nil
}

func (m *FakeInfraManager) StopProduct(ctx context.Context) error {
	if m.product == nil {
		return nil
	}
	err := m.product.Stop(ctx)
	m.product = nil
	zap.S().Named("infra").Infow("fake product stopped", "error", err)
	return err
}

func (m *FakeInfraManager) BaseURL() string {
	if m.product == nil {
		return ""
	}
	return m.product.URL()
}
