package main

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/renzon/robottelo/api/v1"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
	"github.com/renzon/robottelo/pkg/ui"
	"github.com/renzon/robottelo/test/e2e/fixtures"
)

var _ = Describe("Organizations", Label("organization"), func() {
	var ctx context.Context

	BeforeEach(func(sctx SpecContext) {
		ctx = specContext(sctx)
	})

	// deleteByName removes an organization created through the UI.
	deleteByName := func(name string) {
		DeferCleanup(func(ctx SpecContext) {
			orgs, err := session.Admin.SearchOrganizations(ctx, fmt.Sprintf("name = %q", name))
			Expect(err).NotTo(HaveOccurred())
			for _, o := range orgs {
				Expect(fixtures.DeleteOrganization(ctx, session.Admin, o.ID)).To(Succeed())
			}
		})
	}

	Context("API", func() {
		It("should create an organization with a Library environment", func() {
			org, err := session.Admin.CreateOrganization(ctx, v1.OrganizationRequest{Name: fixtures.UniqueName("org"), Description: "created by the suite"})
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(func(ctx SpecContext) {
				Expect(fixtures.DeleteOrganization(ctx, session.Admin, org.ID)).To(Succeed())
			})

			Expect(org.Label).NotTo(BeEmpty())
			lib, err := session.Admin.Library(ctx, org.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(lib.Library).To(BeTrue())

			found, err := session.Admin.SearchOrganizations(ctx, fmt.Sprintf("name = %q", org.Name))
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(ConsistOf(HaveField("ID", org.ID)))
		})

		It("should reject a duplicate name", func() {
			_, err := session.Admin.CreateOrganization(ctx, v1.OrganizationRequest{Name: session.Org.Name})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue(), "got %v", err)
		})

		It("should reject an empty name", func() {
			_, err := session.Admin.CreateOrganization(ctx, v1.OrganizationRequest{})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})

		It("should let the session user authenticate", func() {
			c := session.Admin.As(session.User.Login, session.UserPassword)

			orgs, err := c.SearchOrganizations(ctx, fmt.Sprintf("name = %q", session.Org.Name))

			Expect(err).NotTo(HaveOccurred())
			Expect(orgs).To(HaveLen(1))
		})
	})

	Context("web UI", func() {
		BeforeEach(requireBrowser)

		// Given two organizations sharing a prefix
		// When we type the prefix in the search box
		// Then both should be suggested
		It("should create organizations and autocomplete their names", func() {
			prefix := fixtures.UniqueName("ui")
			first, second := prefix+" corp", prefix+" labs"
			for _, name := range []string{first, second} {
				deleteByName(name)
				Expect(session.Browser.Organizations.Create(ctx, ui.OrganizationForm{Name: name})).To(Succeed())
			}

			names, err := session.Browser.Organizations.Search(ctx, fmt.Sprintf("name = %q", second))
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(ConsistOf(second))

			suggestions, err := session.Browser.Organizations.AutoCompleteSearch(ctx, prefix)
			Expect(err).NotTo(HaveOccurred())
			Expect(suggestions).To(ConsistOf(fmt.Sprintf("name = %q", first), fmt.Sprintf("name = %q", second)))
		})

		It("should show why an organization was rejected", func() {
			err := session.Browser.Organizations.Create(ctx, ui.OrganizationForm{Name: session.Org.Name})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
			msg, err := ui.ErrorMessage(ctx, session.Browser.Browser)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(ContainSubstring("has already been taken"))
		})
	})
})
