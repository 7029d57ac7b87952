package main

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/renzon/robottelo/pkg/satellite"
	"github.com/renzon/robottelo/test/e2e/fixtures"
)

var _ = BeforeSuite(func(ctx SpecContext) {
	Expect(infraManager.StartProduct(ctx)).To(Succeed())

	controller = fixtures.NewSessionController(cfg, infraManager.BaseURL(), satellite.WithObserver(recorder.Record))
	var err error
	session, err = controller.Setup(ctx)
	Expect(err).NotTo(HaveOccurred())
}, NodeTimeout(5*time.Minute))

var _ = AfterSuite(func(ctx SpecContext) {
	if controller != nil {
		Expect(controller.Teardown(ctx)).To(Succeed())
	}
	Expect(infraManager.StopProduct(ctx)).To(Succeed())
}, NodeTimeout(5*time.Minute))

// Failed specs leave a screenshot when a browser is configured.
var _ = JustAfterEach(func(ctx SpecContext) {
	if !CurrentSpecReport().Failed() || session == nil || session.Browser == nil {
		return
	}
	if _, err := session.Browser.Screenshot(ctx, CurrentSpecReport().FullText()); err != nil {
		zap.S().Named("e2e").Warnw("failed to take screenshot", "error", err)
	}
})

// specContext bounds one spec by the configured poll budget. It outlives the setup node
// that builds it and is cancelled when the spec's cleanup runs.
func specContext(sctx SpecContext) context.Context {
	ctx, cancel := session.Deadline(context.WithoutCancel(sctx))
	DeferCleanup(cancel)
	return ctx
}

// requireBrowser skips UI specs when no browser is configured.
func requireBrowser() {
	if session.Browser == nil {
		Skip("UI specs need --browser=chrome")
	}
}

// localOrg creates an organization that DeferCleanup removes.
func localOrg(ctx context.Context) int {
	org, cleanup, err := fixtures.LocalOrganization(ctx, session.Admin)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(func(ctx SpecContext) {
		Expect(cleanup(ctx)).To(Succeed())
	})
	return org.ID
}
