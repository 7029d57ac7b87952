package main

import (
	"context"
	"fmt"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	v1 "github.com/renzon/robottelo/api/v1"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
	"github.com/renzon/robottelo/pkg/satellite"
	"github.com/renzon/robottelo/test/e2e/fixtures"
)

const (
	publishCount = 3
	yumFeed      = "https://fixtures.pulpproject.org/rpm-signed/"
	puppetFeed   = "https://fixtures.pulpproject.org/puppet/"
)

var validNames = []string{
	"alpha",
	"1234567890",
	"Name with spaces",
	"utf8-名前-ñandú",
	"html-<b>bold</b>",
	strings.Repeat("x", 255),
}

var invalidNames = map[string]string{
	"empty":    "",
	"too long": strings.Repeat("x", 256),
	"blank":    "   ",
}

var _ = Describe("Content views", Label("contentview"), func() {
	var (
		ctx   context.Context
		orgID int
	)

	BeforeEach(func(sctx SpecContext) {
		ctx = specContext(sctx)
		orgID = localOrg(ctx)
	})

	createView := func(name string, composite bool) *v1.ContentView {
		cv, err := session.Admin.CreateContentView(ctx, v1.ContentViewRequest{OrganizationID: orgID, Name: ptr.To(name), Composite: composite})
		Expect(err).NotTo(HaveOccurred())
		return cv
	}

	syncedRepo := func(contentType, feed string) *v1.Repository {
		product, err := session.Admin.CreateProduct(ctx, v1.ProductRequest{OrganizationID: orgID, Name: fixtures.UniqueName("product")})
		Expect(err).NotTo(HaveOccurred())
		repo, err := session.Admin.CreateRepository(ctx, v1.RepositoryRequest{
			ProductID:   product.ID,
			Name:        fixtures.UniqueName(contentType),
			ContentType: contentType,
			URL:         feed,
		})
		Expect(err).NotTo(HaveOccurred())
		repo, err = session.Admin.SyncAndWait(ctx, repo.ID)
		Expect(err).NotTo(HaveOccurred())
		return repo
	}

	// environmentPath creates Library → env[0] → env[1] ... and returns them in order.
	environmentPath := func(names ...string) []*v1.LifecycleEnvironment {
		lib, err := session.Admin.Library(ctx, orgID)
		Expect(err).NotTo(HaveOccurred())
		prior := lib.ID
		var envs []*v1.LifecycleEnvironment
		for _, name := range names {
			env, err := session.Admin.CreateLifecycleEnvironment(ctx, v1.LifecycleEnvironmentRequest{OrganizationID: orgID, Name: name, PriorID: ptr.To(prior)})
			Expect(err).NotTo(HaveOccurred())
			envs = append(envs, env)
			prior = env.ID
		}
		return envs
	}

	Context("create", func() {
		for _, name := range validNames {
			It("should create a view named "+truncate(name), func() {
				cv := createView(name, false)

				Expect(cv.Name).To(Equal(name))
				Expect(cv.Composite).To(BeFalse())
				Expect(cv.NextVersion).To(Equal(1))
			})
		}

		for desc, name := range invalidNames {
			It("should reject a "+desc+" name", func() {
				_, err := session.Admin.CreateContentView(ctx, v1.ContentViewRequest{OrganizationID: orgID, Name: ptr.To(name)})

				Expect(srvErrors.IsValidationError(err)).To(BeTrue(), "got %v", err)
			})
		}

		It("should reject a name taken in the organization", func() {
			cv := createView("taken", false)

			_, err := session.Admin.CreateContentView(ctx, v1.ContentViewRequest{OrganizationID: orgID, Name: ptr.To(cv.Name)})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})
	})

	Context("update", func() {
		for _, name := range validNames {
			It("should rename a view to "+truncate(name), func() {
				cv := createView(fixtures.UniqueName("cv"), false)

				updated, err := session.Admin.UpdateContentView(ctx, cv.ID, v1.ContentViewRequest{Name: ptr.To(name)})

				Expect(err).NotTo(HaveOccurred())
				Expect(updated.Name).To(Equal(name))
			})
		}

		for desc, name := range invalidNames {
			// Given a view
			// When we rename it to an invalid name
			// Then the update should fail and the name should be kept
			It("should keep the name when renaming to a "+desc+" name", func() {
				cv := createView(fixtures.UniqueName("cv"), false)

				_, err := session.Admin.UpdateContentView(ctx, cv.ID, v1.ContentViewRequest{Name: ptr.To(name)})

				Expect(srvErrors.IsValidationError(err)).To(BeTrue())
				current, err := session.Admin.GetContentView(ctx, cv.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(current.Name).To(Equal(cv.Name))
			})
		}

		It("should refuse to change the label", func() {
			cv := createView(fixtures.UniqueName("cv"), false)

			_, err := session.Admin.UpdateContentView(ctx, cv.ID, v1.ContentViewRequest{Label: ptr.To("changed")})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})
	})

	Context("publish", func() {
		// Given a new view
		// When we publish it several times
		// Then each publish should create the next major version in Library
		It("should publish with increasing version numbers", func() {
			cv := createView(fixtures.UniqueName("cv"), false)
			lib, err := session.Admin.Library(ctx, orgID)
			Expect(err).NotTo(HaveOccurred())

			for i := 1; i <= publishCount; i++ {
				version, err := session.Admin.PublishAndWait(ctx, cv.ID, "")
				Expect(err).NotTo(HaveOccurred())
				Expect(version.Major).To(Equal(i))
				Expect(version.Version).To(Equal(fmt.Sprintf("%d.0", i)))
				Expect(version.EnvironmentIDs).To(ContainElement(lib.ID))
			}

			current, err := session.Admin.GetContentView(ctx, cv.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(current.Versions).To(HaveLen(publishCount))
			Expect(current.NextVersion).To(Equal(publishCount + 1))
		})

		It("should snapshot the repository content", func() {
			cv := createView(fixtures.UniqueName("cv"), false)
			repo := syncedRepo(satellite.RepositoryTypeYum, yumFeed)
			_, err := session.Admin.SetRepositoryIDs(ctx, cv.ID, repo.ID)
			Expect(err).NotTo(HaveOccurred())

			version, err := session.Admin.PublishAndWait(ctx, cv.ID, "with packages")

			Expect(err).NotTo(HaveOccurred())
			Expect(version.RepositoryIDs).To(ConsistOf(repo.ID))
			Expect(version.PackageCount).To(Equal(repo.PackageCount))
			Expect(version.Description).To(Equal("with packages"))
		})
	})

	Context("promote", func() {
		It("should promote a version along the environment path", func() {
			cv := createView(fixtures.UniqueName("cv"), false)
			envs := environmentPath(fixtures.UniqueName("dev"), fixtures.UniqueName("qa"), fixtures.UniqueName("prod"))
			version, err := session.Admin.PublishAndWait(ctx, cv.ID, "")
			Expect(err).NotTo(HaveOccurred())

			for _, env := range envs {
				version, err = session.Admin.PromoteAndWait(ctx, version.ID, env.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(version.EnvironmentIDs).To(ContainElement(env.ID))
			}
			Expect(version.EnvironmentIDs).To(HaveLen(len(envs) + 1))
		})

		It("should promote every published version", func() {
			cv := createView(fixtures.UniqueName("cv"), false)
			dev := environmentPath(fixtures.UniqueName("dev"))[0]

			for range publishCount {
				version, err := session.Admin.PublishAndWait(ctx, cv.ID, "")
				Expect(err).NotTo(HaveOccurred())
				version, err = session.Admin.PromoteAndWait(ctx, version.ID, dev.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(version.EnvironmentIDs).To(ContainElement(dev.ID))
			}
		})

		// Given a version already promoted to an environment
		// When we promote it there again
		// Then the promotion should be rejected as a duplicate membership
		It("should reject promoting twice to the same environment", func() {
			cv := createView(fixtures.UniqueName("cv"), false)
			dev := environmentPath(fixtures.UniqueName("dev"))[0]
			version, err := session.Admin.PublishAndWait(ctx, cv.ID, "")
			Expect(err).NotTo(HaveOccurred())
			_, err = session.Admin.PromoteAndWait(ctx, version.ID, dev.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = session.Admin.PromoteContentViewVersion(ctx, version.ID, dev.ID)

			Expect(srvErrors.IsDuplicateReferenceError(err)).To(BeTrue(), "got %v", err)
			lib, err := session.Admin.Library(ctx, orgID)
			Expect(err).NotTo(HaveOccurred())
			current, err := session.Admin.GetContentViewVersion(ctx, version.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(current.EnvironmentIDs).To(ConsistOf(lib.ID, dev.ID))
		})
	})

	Context("repositories", func() {
		It("should associate a yum repository", func() {
			cv := createView(fixtures.UniqueName("cv"), false)
			repo := syncedRepo(satellite.RepositoryTypeYum, yumFeed)

			updated, err := session.Admin.SetRepositoryIDs(ctx, cv.ID, repo.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.RepositoryIDs).To(ConsistOf(repo.ID))
		})

		It("should reject a repeated repository id", func() {
			cv := createView(fixtures.UniqueName("cv"), false)
			repo := syncedRepo(satellite.RepositoryTypeYum, yumFeed)

			_, err := session.Admin.SetRepositoryIDs(ctx, cv.ID, repo.ID, repo.ID)

			Expect(srvErrors.IsDuplicateReferenceError(err)).To(BeTrue(), "got %v", err)
		})

		It("should keep puppet repositories out of a view", func() {
			cv := createView(fixtures.UniqueName("cv"), false)
			repo := syncedRepo(satellite.RepositoryTypePuppet, puppetFeed)

			_, err := session.Admin.SetRepositoryIDs(ctx, cv.ID, repo.ID)

			Expect(srvErrors.IsCompositionRuleViolationError(err)).To(BeTrue(), "got %v", err)
		})

		It("should keep repositories out of a composite view", func() {
			cv := createView(fixtures.UniqueName("ccv"), true)
			repo := syncedRepo(satellite.RepositoryTypeYum, yumFeed)

			_, err := session.Admin.SetRepositoryIDs(ctx, cv.ID, repo.ID)

			Expect(srvErrors.IsCompositionRuleViolationError(err)).To(BeTrue(), "got %v", err)
		})
	})

	Context("puppet modules", func() {
		It("should add each available module once", func() {
			cv := createView(fixtures.UniqueName("cv"), false)
			syncedRepo(satellite.RepositoryTypePuppet, puppetFeed)
			available, err := session.Admin.AvailablePuppetModules(ctx, cv.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(available).NotTo(BeEmpty())

			for _, m := range available[:2] {
				added, err := session.Admin.AddPuppetModule(ctx, cv.ID, v1.PuppetModuleRequest{Author: m.Author, Name: m.Name})
				Expect(err).NotTo(HaveOccurred())
				Expect(added.Name).To(Equal(m.Name))
			}

			_, err = session.Admin.AddPuppetModule(ctx, cv.ID, v1.PuppetModuleRequest{Author: available[0].Author, Name: available[0].Name})
			Expect(srvErrors.IsDuplicateReferenceError(err)).To(BeTrue(), "got %v", err)

			version, err := session.Admin.PublishAndWait(ctx, cv.ID, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(version.PuppetModuleIDs).To(HaveLen(2))
		})

		It("should keep puppet modules out of a composite view", func() {
			cv := createView(fixtures.UniqueName("ccv"), true)
			syncedRepo(satellite.RepositoryTypePuppet, puppetFeed)
			plain := createView(fixtures.UniqueName("cv"), false)
			available, err := session.Admin.AvailablePuppetModules(ctx, plain.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(available).NotTo(BeEmpty())

			_, err = session.Admin.AddPuppetModule(ctx, cv.ID, v1.PuppetModuleRequest{ID: available[0].ID})

			Expect(srvErrors.IsCompositionRuleViolationError(err)).To(BeTrue(), "got %v", err)
		})
	})

	Context("composite views", func() {
		publishedComponent := func() *v1.ContentViewVersion {
			cv := createView(fixtures.UniqueName("component"), false)
			version, err := session.Admin.PublishAndWait(ctx, cv.ID, "")
			Expect(err).NotTo(HaveOccurred())
			return version
		}

		It("should compose published versions and publish them", func() {
			first, second := publishedComponent(), publishedComponent()
			ccv := createView(fixtures.UniqueName("ccv"), true)

			updated, err := session.Admin.SetComponentIDs(ctx, ccv.ID, first.ID, second.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ComponentIDs).To(ConsistOf(first.ID, second.ID))

			version, err := session.Admin.PublishAndWait(ctx, ccv.ID, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(version.ComponentIDs).To(ConsistOf(first.ID, second.ID))
		})

		It("should reject a repeated component", func() {
			component := publishedComponent()
			ccv := createView(fixtures.UniqueName("ccv"), true)

			_, err := session.Admin.SetComponentIDs(ctx, ccv.ID, component.ID, component.ID)

			Expect(srvErrors.IsDuplicateReferenceError(err)).To(BeTrue(), "got %v", err)
		})

		It("should keep components out of a non-composite view", func() {
			component := publishedComponent()
			cv := createView(fixtures.UniqueName("cv"), false)

			_, err := session.Admin.SetComponentIDs(ctx, cv.ID, component.ID)

			Expect(srvErrors.IsCompositionRuleViolationError(err)).To(BeTrue(), "got %v", err)
		})
	})

	Context("copy and delete", func() {
		It("should copy the definition without the versions", func() {
			cv := createView(fixtures.UniqueName("cv"), false)
			repo := syncedRepo(satellite.RepositoryTypeYum, yumFeed)
			_, err := session.Admin.SetRepositoryIDs(ctx, cv.ID, repo.ID)
			Expect(err).NotTo(HaveOccurred())
			_, err = session.Admin.PublishAndWait(ctx, cv.ID, "")
			Expect(err).NotTo(HaveOccurred())

			copied, err := session.Admin.CopyContentView(ctx, cv.ID, fixtures.UniqueName("copy"))

			Expect(err).NotTo(HaveOccurred())
			Expect(copied.RepositoryIDs).To(ConsistOf(repo.ID))
			Expect(copied.Versions).To(BeEmpty())
		})

		It("should delete a version once it left every environment", func() {
			cv := createView(fixtures.UniqueName("cv"), false)
			lib, err := session.Admin.Library(ctx, orgID)
			Expect(err).NotTo(HaveOccurred())
			version, err := session.Admin.PublishAndWait(ctx, cv.ID, "")
			Expect(err).NotTo(HaveOccurred())

			Expect(srvErrors.IsValidationError(session.Admin.DeleteContentViewVersion(ctx, version.ID))).To(BeTrue())

			Expect(session.Admin.RemoveContentViewFromEnvironment(ctx, cv.ID, lib.ID)).To(Succeed())
			Expect(session.Admin.DeleteContentViewVersion(ctx, version.ID)).To(Succeed())
			Expect(session.Admin.DeleteContentView(ctx, cv.ID)).To(Succeed())

			_, err = session.Admin.GetContentView(ctx, cv.ID)
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})
})

func truncate(s string) string {
	if len(s) > 20 {
		return s[:20] + "..."
	}
	return s
}
