package satellite_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	v1 "github.com/renzon/robottelo/api/v1"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
	"github.com/renzon/robottelo/pkg/satellite"
)

var _ = Describe("Content views", func() {
	var (
		ctx context.Context
		c   *satellite.Client
		org *v1.Organization
	)

	BeforeEach(func() {
		ctx = context.Background()
		c = startProduct(ctx)
		var err error
		org, err = c.CreateOrganization(ctx, v1.OrganizationRequest{Name: "ACME"})
		Expect(err).NotTo(HaveOccurred())
	})

	createView := func(name string, composite bool) *v1.ContentView {
		cv, err := c.CreateContentView(ctx, v1.ContentViewRequest{OrganizationID: org.ID, Name: ptr.To(name), Composite: composite})
		Expect(err).NotTo(HaveOccurred())
		return cv
	}

	createRepo := func(contentType string) *v1.Repository {
		product, err := c.CreateProduct(ctx, v1.ProductRequest{OrganizationID: org.ID, Name: "product-" + contentType})
		Expect(err).NotTo(HaveOccurred())
		repo, err := c.CreateRepository(ctx, v1.RepositoryRequest{
			ProductID:   product.ID,
			Name:        "repo-" + contentType,
			ContentType: contentType,
			URL:         "https://fixtures.example.com/" + contentType + "/",
		})
		Expect(err).NotTo(HaveOccurred())
		repo, err = c.SyncAndWait(ctx, repo.ID)
		Expect(err).NotTo(HaveOccurred())
		return repo
	}

	Context("create", func() {
		It("should reject an empty name", func() {
			_, err := c.CreateContentView(ctx, v1.ContentViewRequest{OrganizationID: org.ID, Name: ptr.To("")})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})

		It("should keep the label immutable", func() {
			cv := createView("Base", false)

			_, err := c.UpdateContentView(ctx, cv.ID, v1.ContentViewRequest{Label: ptr.To("other")})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})

		It("should update the name", func() {
			cv := createView("Base", false)

			updated, err := c.UpdateContentView(ctx, cv.ID, v1.ContentViewRequest{Name: ptr.To("Renamed")})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Renamed"))
			Expect(updated.Label).To(Equal(cv.Label))
		})
	})

	Context("publish and promote", func() {
		// Given a view published three times
		// When we list its versions
		// Then the version numbers should increase by one each time
		It("should number versions monotonically", func() {
			cv := createView("Base", false)

			var majors []int
			for range 3 {
				v, err := c.PublishAndWait(ctx, cv.ID, "")
				Expect(err).NotTo(HaveOccurred())
				majors = append(majors, v.Major)
			}

			Expect(majors).To(Equal([]int{1, 2, 3}))
			versions, err := c.ListContentViewVersions(ctx, cv.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(versions).To(HaveLen(3))
		})

		It("should put new versions in Library and promote along the path", func() {
			cv := createView("Base", false)
			lib, err := c.Library(ctx, org.ID)
			Expect(err).NotTo(HaveOccurred())
			dev, err := c.CreateLifecycleEnvironment(ctx, v1.LifecycleEnvironmentRequest{OrganizationID: org.ID, Name: "Dev"})
			Expect(err).NotTo(HaveOccurred())
			Expect(dev.Prior).NotTo(BeNil())
			Expect(dev.Prior.ID).To(Equal(lib.ID))

			version, err := c.PublishAndWait(ctx, cv.ID, "first")
			Expect(err).NotTo(HaveOccurred())
			Expect(version.EnvironmentIDs).To(ConsistOf(lib.ID))

			version, err = c.PromoteAndWait(ctx, version.ID, dev.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(version.EnvironmentIDs).To(ConsistOf(lib.ID, dev.ID))

			_, err = c.PromoteContentViewVersion(ctx, version.ID, dev.ID)
			Expect(srvErrors.IsDuplicateReferenceError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("already promoted"))

			current, err := c.GetContentViewVersion(ctx, version.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(current.EnvironmentIDs).To(ConsistOf(lib.ID, dev.ID))
		})

		It("should not delete a version that is still in an environment", func() {
			cv := createView("Base", false)
			version, err := c.PublishAndWait(ctx, cv.ID, "")
			Expect(err).NotTo(HaveOccurred())
			lib, err := c.Library(ctx, org.ID)
			Expect(err).NotTo(HaveOccurred())

			err = c.DeleteContentViewVersion(ctx, version.ID)
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())

			Expect(c.RemoveContentViewFromEnvironment(ctx, cv.ID, lib.ID)).To(Succeed())
			Expect(c.DeleteContentViewVersion(ctx, version.ID)).To(Succeed())
			_, err = c.GetContentViewVersion(ctx, version.ID)
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Context("membership", func() {
		It("should set a yum repository once", func() {
			cv := createView("Base", false)
			repo := createRepo(satellite.RepositoryTypeYum)

			updated, err := c.SetRepositoryIDs(ctx, cv.ID, repo.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.RepositoryIDs).To(ConsistOf(repo.ID))

			_, err = c.SetRepositoryIDs(ctx, cv.ID, repo.ID, repo.ID)
			Expect(srvErrors.IsDuplicateReferenceError(err)).To(BeTrue())
		})

		It("should keep puppet repositories out of the repository set", func() {
			cv := createView("Base", false)
			repo := createRepo(satellite.RepositoryTypePuppet)

			_, err := c.SetRepositoryIDs(ctx, cv.ID, repo.ID)

			Expect(srvErrors.IsCompositionRuleViolationError(err)).To(BeTrue())
		})

		It("should add each puppet module once", func() {
			cv := createView("Base", false)
			createRepo(satellite.RepositoryTypePuppet)

			available, err := c.AvailablePuppetModules(ctx, cv.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(available).NotTo(BeEmpty())

			m, err := c.AddPuppetModule(ctx, cv.ID, v1.PuppetModuleRequest{Author: available[0].Author, Name: available[0].Name})
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Name).To(Equal(available[0].Name))

			_, err = c.AddPuppetModule(ctx, cv.ID, v1.PuppetModuleRequest{ID: available[0].ID})
			Expect(srvErrors.IsDuplicateReferenceError(err)).To(BeTrue())
		})

		It("should only accept components on composite views", func() {
			component := createView("Component", false)
			version, err := c.PublishAndWait(ctx, component.ID, "")
			Expect(err).NotTo(HaveOccurred())

			plain := createView("Plain", false)
			_, err = c.SetComponentIDs(ctx, plain.ID, version.ID)
			Expect(srvErrors.IsCompositionRuleViolationError(err)).To(BeTrue())

			composite := createView("Composite", true)
			updated, err := c.SetComponentIDs(ctx, composite.ID, version.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ComponentIDs).To(ConsistOf(version.ID))

			_, err = c.SetComponentIDs(ctx, composite.ID, version.ID, version.ID)
			Expect(srvErrors.IsDuplicateReferenceError(err)).To(BeTrue())
		})
	})

	It("should copy and delete a view", func() {
		cv := createView("Base", false)
		repo := createRepo(satellite.RepositoryTypeYum)
		_, err := c.SetRepositoryIDs(ctx, cv.ID, repo.ID)
		Expect(err).NotTo(HaveOccurred())

		copied, err := c.CopyContentView(ctx, cv.ID, "Base copy")
		Expect(err).NotTo(HaveOccurred())
		Expect(copied.RepositoryIDs).To(ConsistOf(repo.ID))

		Expect(c.DeleteContentView(ctx, copied.ID)).To(Succeed())
		_, err = c.GetContentView(ctx, copied.ID)
		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue(), fmt.Sprint(err))
	})
})
