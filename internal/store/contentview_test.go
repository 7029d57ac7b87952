package store_test

import (
	"context"
	"database/sql"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/store"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

var _ = Describe("ContentViewStore", func() {
	var (
		ctx   context.Context
		s     *store.Store
		db    *sql.DB
		orgID int
		libID int
	)

	BeforeEach(func() {
		ctx = context.Background()
		s, db = newTestStore(ctx)

		var err error
		orgID, err = s.Organization().Create(ctx, models.Organization{Name: "ACME", Label: "ACME"})
		Expect(err).NotTo(HaveOccurred())
		libID, err = s.Environment().Create(ctx, models.LifecycleEnvironment{OrganizationID: orgID, Name: "Library", Label: "Library", Library: true})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	createView := func(name string, composite bool) int {
		id, err := s.ContentView().Create(ctx, models.ContentView{OrganizationID: orgID, Name: name, Label: name, Composite: composite})
		Expect(err).NotTo(HaveOccurred())
		return id
	}

	Context("memberships", func() {
		// Given a content view and two repositories
		// When we set its repositories twice
		// Then the second call should replace the first, keeping order
		It("should replace repository ids in order", func() {
			cvID := createView("cv", false)

			Expect(s.ContentView().SetRepositories(ctx, cvID, []int{3, 1})).To(Succeed())
			Expect(s.ContentView().SetRepositories(ctx, cvID, []int{7, 5, 6})).To(Succeed())

			cv, err := s.ContentView().Get(ctx, cvID)
			Expect(err).NotTo(HaveOccurred())
			Expect(cv.RepositoryIDs).To(Equal([]int{7, 5, 6}))
			Expect(cv.ComponentIDs).To(BeEmpty())
		})

		It("should store components and report the composites using a version", func() {
			composite := createView("composite", true)
			other := createView("other", true)

			Expect(s.ContentView().SetComponents(ctx, composite, []int{10, 11})).To(Succeed())
			Expect(s.ContentView().SetComponents(ctx, other, []int{11})).To(Succeed())

			users, err := s.ContentView().CompositesUsing(ctx, 11)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(ConsistOf(composite, other))

			users, err = s.ContentView().CompositesUsing(ctx, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(ConsistOf(composite))
		})

		It("should list puppet modules added to the view", func() {
			cvID := createView("cv", false)

			_, err := s.ContentView().AddPuppetModule(ctx, models.ContentViewPuppetModule{ContentViewID: cvID, PuppetModuleID: 4, Name: "ntp", Author: "puppetlabs"})
			Expect(err).NotTo(HaveOccurred())

			cv, err := s.ContentView().Get(ctx, cvID)
			Expect(err).NotTo(HaveOccurred())
			Expect(cv.PuppetModules).To(HaveLen(1))
			Expect(cv.PuppetModules[0].Name).To(Equal("ntp"))
			Expect(cv.PuppetModules[0].PuppetModuleID).To(Equal(4))
		})
	})

	Context("NextVersion", func() {
		It("should hand out increasing numbers", func() {
			cvID := createView("cv", false)

			var got []int
			for range 3 {
				n, err := s.ContentView().NextVersion(ctx, cvID)
				Expect(err).NotTo(HaveOccurred())
				got = append(got, n)
			}

			Expect(got).To(Equal([]int{1, 2, 3}))
		})

		It("should fail for an unknown view", func() {
			_, err := s.ContentView().NextVersion(ctx, 99)
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Context("Delete", func() {
		It("should remove the view and its memberships", func() {
			cvID := createView("cv", false)
			Expect(s.ContentView().SetRepositories(ctx, cvID, []int{1})).To(Succeed())

			Expect(s.ContentView().Delete(ctx, cvID)).To(Succeed())

			_, err := s.ContentView().Get(ctx, cvID)
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
			Expect(srvErrors.IsResourceNotFoundError(s.ContentView().Delete(ctx, cvID))).To(BeTrue())
		})
	})

	Context("VersionStore", func() {
		It("should store the snapshot of a version", func() {
			cvID := createView("cv", false)

			id, err := s.Version().Create(ctx, models.ContentViewVersion{
				ContentViewID:   cvID,
				Major:           1,
				PackageCount:    32,
				RepositoryIDs:   []int{1, 2},
				PuppetModuleIDs: []int{9},
				EnvironmentIDs:  []int{libID},
			})
			Expect(err).NotTo(HaveOccurred())

			v, err := s.Version().Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.Version()).To(Equal("1.0"))
			Expect(v.PackageCount).To(Equal(32))
			Expect(v.RepositoryIDs).To(ConsistOf(1, 2))
			Expect(v.PuppetModuleIDs).To(ConsistOf(9))
			Expect(v.ComponentIDs).To(BeEmpty())
			Expect(v.InEnvironment(libID)).To(BeTrue())
		})

		It("should add and remove environments", func() {
			cvID := createView("cv", false)
			id, err := s.Version().Create(ctx, models.ContentViewVersion{ContentViewID: cvID, Major: 1})
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Version().AddEnvironment(ctx, id, libID)).To(Succeed())
			Expect(s.Version().AddEnvironment(ctx, id, 77)).To(Succeed())
			Expect(s.Version().RemoveEnvironment(ctx, id, libID)).To(Succeed())

			v, err := s.Version().Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(v.EnvironmentIDs).To(Equal([]int{77}))
		})

		It("should list versions of a view and delete them", func() {
			cvID := createView("cv", false)
			for major := 1; major <= 3; major++ {
				_, err := s.Version().Create(ctx, models.ContentViewVersion{ContentViewID: cvID, Major: major})
				Expect(err).NotTo(HaveOccurred())
			}

			versions, err := s.Version().List(ctx, store.ByContentView(cvID), store.WithDefaultSort())
			Expect(err).NotTo(HaveOccurred())
			Expect(versions).To(HaveLen(3))

			Expect(s.Version().Delete(ctx, versions[0].ID)).To(Succeed())
			n, err := s.Version().Count(ctx, store.ByContentView(cvID))
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(2))
		})
	})

	Context("RepositoryStore", func() {
		It("should replace puppet modules on sync", func() {
			productID, err := s.Product().Create(ctx, models.Product{OrganizationID: orgID, Name: "p", Label: "p"})
			Expect(err).NotTo(HaveOccurred())
			repoID, err := s.Repository().Create(ctx, models.Repository{
				ProductID: productID, OrganizationID: orgID, Name: "forge", Label: "forge", ContentType: models.RepositoryTypePuppet,
			})
			Expect(err).NotTo(HaveOccurred())

			at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			Expect(s.Repository().Synced(ctx, repoID, 0, []models.PuppetModule{{Name: "ntp", Author: "puppetlabs", Version: "4.0.0"}}, at)).To(Succeed())
			Expect(s.Repository().Synced(ctx, repoID, 0, []models.PuppetModule{
				{Name: "ntp", Author: "puppetlabs", Version: "4.0.0"},
				{Name: "stdlib", Author: "puppetlabs", Version: "4.1.0"},
			}, at)).To(Succeed())

			modules, err := s.Repository().PuppetModules(ctx, store.ByRepository(repoID))
			Expect(err).NotTo(HaveOccurred())
			Expect(modules).To(HaveLen(2))

			repo, err := s.Repository().Get(ctx, repoID)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.ContentType).To(Equal(models.RepositoryTypePuppet))
			Expect(repo.LastSync).NotTo(BeNil())
		})
	})
})
