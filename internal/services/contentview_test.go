package services_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/services"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

var _ = Describe("ContentViewService", func() {
	var (
		ctx context.Context
		p   *product
		org *models.Organization
	)

	BeforeEach(func() {
		ctx = context.Background()
		p = newProduct(ctx)
		org = p.createOrg(ctx, "Default Organization")
	})

	Context("Create", func() {
		It("should derive the label from the name", func() {
			cv, err := p.views.Create(ctx, org.ID, services.ContentViewParams{Name: "Web Servers"})

			Expect(err).NotTo(HaveOccurred())
			Expect(cv.Label).To(Equal("Web_Servers"))
			Expect(cv.Composite).To(BeFalse())
			Expect(cv.Versions).To(BeEmpty())
		})

		DescribeTable("should reject invalid names",
			func(name string) {
				_, err := p.views.Create(ctx, org.ID, services.ContentViewParams{Name: name})

				Expect(srvErrors.IsValidationError(err)).To(BeTrue())
				Expect(strings.ToLower(err.Error())).NotTo(ContainSubstring("duplicate"))
			},
			Entry("empty", ""),
			Entry("blank", "   "),
			Entry("too long", strings.Repeat("ü", services.MaxNameLength+1)),
		)

		It("should accept a name of exactly the maximum length", func() {
			_, err := p.views.Create(ctx, org.ID, services.ContentViewParams{Name: strings.Repeat("ü", services.MaxNameLength)})

			Expect(err).NotTo(HaveOccurred())
		})

		// Given a content view named "web"
		// When another one named "web" is created in the same organization
		// Then it should fail validation, while another organization may reuse the name
		It("should keep names unique per organization", func() {
			p.createView(ctx, org.ID, "web", false)

			_, err := p.views.Create(ctx, org.ID, services.ContentViewParams{Name: "web"})
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("has already been taken"))
			Expect(srvErrors.IsDuplicateReferenceError(err)).To(BeFalse())

			other := p.createOrg(ctx, "Other")
			_, err = p.views.Create(ctx, other.ID, services.ContentViewParams{Name: "web"})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject reserved and malformed labels", func() {
			_, err := p.views.Create(ctx, org.ID, services.ContentViewParams{Name: "x", Label: "Library"})
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())

			_, err = p.views.Create(ctx, org.ID, services.ContentViewParams{Name: "x", Label: "with space"})
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})

		It("should roll back the view when its repositories are rejected", func() {
			_, err := p.views.Create(ctx, org.ID, services.ContentViewParams{Name: "web", Composite: true, RepositoryIDs: []int{1}})
			Expect(srvErrors.IsCompositionRuleViolationError(err)).To(BeTrue())

			list, err := p.views.List(ctx, org.ID, services.ListParams{})
			Expect(err).NotTo(HaveOccurred())
			Expect(list.Total).To(BeZero())
		})

		It("should return not found for an unknown organization", func() {
			_, err := p.views.Create(ctx, 999, services.ContentViewParams{Name: "web"})

			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Context("Update", func() {
		var cv *services.ContentViewDetails

		BeforeEach(func() {
			cv = p.createView(ctx, org.ID, "web", false)
		})

		It("should rename and describe the view", func() {
			updated, err := p.views.Update(ctx, cv.ID, services.ContentViewUpdate{
				Name:        ptr.To("web servers"),
				Description: ptr.To("all web servers"),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("web servers"))
			Expect(updated.Description).To(Equal("all web servers"))
			Expect(updated.Label).To(Equal(cv.Label))
		})

		It("should keep the label immutable", func() {
			_, err := p.views.Update(ctx, cv.ID, services.ContentViewUpdate{Label: ptr.To("changed")})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("immutable"))
		})

		It("should accept the current label unchanged", func() {
			_, err := p.views.Update(ctx, cv.ID, services.ContentViewUpdate{Label: ptr.To(cv.Label)})

			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject a name taken by another view", func() {
			p.createView(ctx, org.ID, "db", false)

			_, err := p.views.Update(ctx, cv.ID, services.ContentViewUpdate{Name: ptr.To("db")})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
			Expect(strings.ToLower(err.Error())).NotTo(ContainSubstring("duplicate"))
		})
	})

	Context("repository membership", func() {
		var (
			cv   *services.ContentViewDetails
			yum  *models.Repository
			yum2 *models.Repository
		)

		BeforeEach(func() {
			cv = p.createView(ctx, org.ID, "web", false)
			yum = p.createRepo(ctx, org.ID, "rhel", models.RepositoryTypeYum)
			yum2 = p.createRepo(ctx, org.ID, "epel", models.RepositoryTypeYum)
		})

		It("should replace the repository set in the given order", func() {
			updated, err := p.views.SetRepositories(ctx, cv.ID, []int{yum2.ID, yum.ID})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.RepositoryIDs).To(ConsistOf(yum.ID, yum2.ID))
			Expect(updated.Repositories).To(HaveLen(2))
			Expect(updated.Repositories[0].ID).To(Equal(yum2.ID))

			updated, err = p.views.SetRepositories(ctx, cv.ID, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.RepositoryIDs).To(BeEmpty())
		})

		// Given a repository id listed twice
		// When it is set on the view
		// Then a duplicate reference error is returned and the set is unchanged
		It("should reject repeated ids", func() {
			_, err := p.views.SetRepositories(ctx, cv.ID, []int{yum.ID, yum2.ID, yum.ID})

			Expect(srvErrors.IsDuplicateReferenceError(err)).To(BeTrue())
			current, err := p.views.Get(ctx, cv.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(current.RepositoryIDs).To(BeEmpty())
		})

		It("should never put puppet repositories in the set", func() {
			puppet := p.createRepo(ctx, org.ID, "modules", models.RepositoryTypePuppet)

			_, err := p.views.SetRepositories(ctx, cv.ID, []int{yum.ID, puppet.ID})

			Expect(srvErrors.IsCompositionRuleViolationError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("puppet repositor"))
		})

		It("should refuse repositories on composite views", func() {
			composite := p.createView(ctx, org.ID, "all", true)

			_, err := p.views.SetRepositories(ctx, composite.ID, []int{yum.ID})

			Expect(srvErrors.IsCompositionRuleViolationError(err)).To(BeTrue())
		})

		It("should reject unknown and foreign repositories", func() {
			_, err := p.views.SetRepositories(ctx, cv.ID, []int{9999})
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())

			other := p.createOrg(ctx, "Other")
			foreign := p.createRepo(ctx, other.ID, "foreign", models.RepositoryTypeYum)
			_, err = p.views.SetRepositories(ctx, cv.ID, []int{foreign.ID})
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})
	})

	Context("components", func() {
		var (
			composite *services.ContentViewDetails
			v1        *models.ContentViewVersion
			v2        *models.ContentViewVersion
		)

		BeforeEach(func() {
			composite = p.createView(ctx, org.ID, "all", true)
			v1 = p.publish(ctx, p.createView(ctx, org.ID, "web", false).ID)
			v2 = p.publish(ctx, p.createView(ctx, org.ID, "db", false).ID)
		})

		It("should set the component versions of a composite view", func() {
			updated, err := p.views.SetComponents(ctx, composite.ID, []int{v1.ID, v2.ID})

			Expect(err).NotTo(HaveOccurred())
			Expect(updated.ComponentIDs).To(ConsistOf(v1.ID, v2.ID))
			Expect(updated.Components).To(HaveLen(2))
			Expect(updated.Components[0].ContentViewID).To(Equal(v1.ContentViewID))
		})

		It("should reject repeated component ids", func() {
			_, err := p.views.SetComponents(ctx, composite.ID, []int{v1.ID, v1.ID})

			Expect(srvErrors.IsDuplicateReferenceError(err)).To(BeTrue())
		})

		It("should only accept components on composite views", func() {
			plain := p.createView(ctx, org.ID, "plain", false)

			_, err := p.views.SetComponents(ctx, plain.ID, []int{v1.ID})

			Expect(srvErrors.IsCompositionRuleViolationError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("non-composite"))
		})

		It("should refuse versions of composite views as components", func() {
			_, err := p.views.SetComponents(ctx, composite.ID, []int{v1.ID})
			Expect(err).NotTo(HaveOccurred())
			nested := p.publish(ctx, composite.ID)
			outer := p.createView(ctx, org.ID, "outer", true)

			_, err = p.views.SetComponents(ctx, outer.ID, []int{nested.ID})

			Expect(srvErrors.IsCompositionRuleViolationError(err)).To(BeTrue())
		})

		It("should publish the sum of the component package counts", func() {
			yum := p.createRepo(ctx, org.ID, "rhel", models.RepositoryTypeYum)
			p.syncRepo(ctx, yum.ID)
			web := p.createView(ctx, org.ID, "with packages", false)
			_, err := p.views.SetRepositories(ctx, web.ID, []int{yum.ID})
			Expect(err).NotTo(HaveOccurred())
			withPackages := p.publish(ctx, web.ID)
			Expect(withPackages.PackageCount).To(BeNumerically(">", 0))

			_, err = p.views.SetComponents(ctx, composite.ID, []int{withPackages.ID, v1.ID})
			Expect(err).NotTo(HaveOccurred())
			version := p.publish(ctx, composite.ID)

			Expect(version.PackageCount).To(Equal(withPackages.PackageCount))
			Expect(version.ComponentIDs).To(ConsistOf(withPackages.ID, v1.ID))
		})
	})

	Context("puppet modules", func() {
		var cv *services.ContentViewDetails

		BeforeEach(func() {
			cv = p.createView(ctx, org.ID, "web", false)
			puppet := p.createRepo(ctx, org.ID, "modules", models.RepositoryTypePuppet)
			p.syncRepo(ctx, puppet.ID)
		})

		It("should list the modules synced in the organization", func() {
			modules, err := p.views.AvailablePuppetModules(ctx, cv.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(modules).NotTo(BeEmpty())
		})

		// Given a module already in the view
		// When it is added again
		// Then a duplicate reference error is returned
		It("should add a module once", func() {
			added, err := p.views.AddPuppetModule(ctx, cv.ID, services.PuppetModuleParams{Author: "puppetlabs", Name: "ntp"})
			Expect(err).NotTo(HaveOccurred())
			Expect(added.Name).To(Equal("ntp"))

			_, err = p.views.AddPuppetModule(ctx, cv.ID, services.PuppetModuleParams{Author: "puppetlabs", Name: "ntp"})
			Expect(srvErrors.IsDuplicateReferenceError(err)).To(BeTrue())

			current, err := p.views.Get(ctx, cv.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(current.PuppetModules).To(HaveLen(1))
		})

		It("should reject unknown modules", func() {
			_, err := p.views.AddPuppetModule(ctx, cv.ID, services.PuppetModuleParams{Author: "nobody", Name: "nothing"})

			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		It("should refuse modules on composite views", func() {
			composite := p.createView(ctx, org.ID, "all", true)

			_, err := p.views.AddPuppetModule(ctx, composite.ID, services.PuppetModuleParams{Author: "puppetlabs", Name: "ntp"})

			Expect(srvErrors.IsCompositionRuleViolationError(err)).To(BeTrue())
		})

		It("should snapshot the modules when publishing", func() {
			_, err := p.views.AddPuppetModule(ctx, cv.ID, services.PuppetModuleParams{Author: "saz", Name: "ssh"})
			Expect(err).NotTo(HaveOccurred())

			version := p.publish(ctx, cv.ID)

			Expect(version.PuppetModuleIDs).To(HaveLen(1))
		})
	})

	Context("Publish", func() {
		// Given a content view
		// When it is published three times
		// Then versions 1.0, 2.0 and 3.0 exist and each is in Library
		It("should number versions monotonically", func() {
			cv := p.createView(ctx, org.ID, "web", false)
			lib, err := p.store.Environment().Library(ctx, org.ID)
			Expect(err).NotTo(HaveOccurred())

			var names []string
			for range 3 {
				v := p.publish(ctx, cv.ID)
				names = append(names, v.Version())
				Expect(v.EnvironmentIDs).To(ConsistOf(lib.ID))
			}

			Expect(names).To(Equal([]string{"1.0", "2.0", "3.0"}))
		})

		It("should return a planned task immediately", func() {
			cv := p.createView(ctx, org.ID, "web", false)

			task, err := p.views.Publish(ctx, cv.ID, "first")

			Expect(err).NotTo(HaveOccurred())
			Expect(task.Label).To(Equal(services.TaskLabelPublish))
			Expect(task.ResourceID).To(Equal(cv.ID))
			Expect(p.waitTask(ctx, task).Result).To(Equal(models.TaskResultSuccess))
		})

		It("should return not found for an unknown view", func() {
			_, err := p.views.Publish(ctx, 4242, "")

			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Context("Promote", func() {
		var (
			version *models.ContentViewVersion
			dev     *models.LifecycleEnvironment
			qa      *models.LifecycleEnvironment
		)

		BeforeEach(func() {
			version = p.publish(ctx, p.createView(ctx, org.ID, "web", false).ID)
			var err error
			dev, err = p.orgs.CreateEnvironment(ctx, org.ID, services.EnvironmentParams{Name: "Dev"})
			Expect(err).NotTo(HaveOccurred())
			qa, err = p.orgs.CreateEnvironment(ctx, org.ID, services.EnvironmentParams{Name: "QA", PriorID: &dev.ID})
			Expect(err).NotTo(HaveOccurred())
		})

		promote := func(envID int, force bool) error {
			task, err := p.views.Promote(ctx, version.ID, services.PromoteParams{EnvironmentID: envID, Force: force})
			if err != nil {
				return err
			}
			Expect(p.waitTask(ctx, task).Result).To(Equal(models.TaskResultSuccess))
			return nil
		}

		It("should promote along the environment path", func() {
			Expect(promote(dev.ID, false)).To(Succeed())
			Expect(promote(qa.ID, false)).To(Succeed())

			current, err := p.views.GetVersion(ctx, version.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(current.EnvironmentIDs).To(ContainElements(dev.ID, qa.ID))
			Expect(current.EnvironmentIDs).To(HaveLen(3))
		})

		// Given a version already promoted to Dev
		// When it is promoted to Dev again
		// Then the request is rejected as a duplicate without starting a task
		// And the version stays in Library and Dev only
		It("should reject a duplicate promotion", func() {
			Expect(promote(dev.ID, false)).To(Succeed())

			err := promote(dev.ID, false)

			Expect(srvErrors.IsDuplicateReferenceError(err)).To(BeTrue())
			tasks, err := p.tasks.List(ctx, services.ListParams{PerPage: 100})
			Expect(err).NotTo(HaveOccurred())
			promotions := 0
			for _, t := range tasks.Items {
				if t.Label == services.TaskLabelPromote {
					promotions++
				}
			}
			Expect(promotions).To(Equal(1))

			lib, err := p.store.Environment().Library(ctx, org.ID)
			Expect(err).NotTo(HaveOccurred())
			current, err := p.views.GetVersion(ctx, version.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(current.EnvironmentIDs).To(ConsistOf(lib.ID, dev.ID))
		})

		It("should require the prior environment unless forced", func() {
			err := promote(qa.ID, false)
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())

			Expect(promote(qa.ID, true)).To(Succeed())
		})

		It("should reject environments of other organizations", func() {
			other := p.createOrg(ctx, "Other")
			foreign, err := p.orgs.CreateEnvironment(ctx, other.ID, services.EnvironmentParams{Name: "Dev"})
			Expect(err).NotTo(HaveOccurred())

			Expect(srvErrors.IsValidationError(promote(foreign.ID, true))).To(BeTrue())
		})
	})

	Context("Delete", func() {
		It("should refuse to delete versions that are in environments", func() {
			cv := p.createView(ctx, org.ID, "web", false)
			version := p.publish(ctx, cv.ID)
			lib, err := p.store.Environment().Library(ctx, org.ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(srvErrors.IsValidationError(p.views.DeleteVersion(ctx, version.ID))).To(BeTrue())
			Expect(srvErrors.IsValidationError(p.views.Delete(ctx, cv.ID))).To(BeTrue())

			Expect(p.views.RemoveFromEnvironment(ctx, cv.ID, lib.ID)).To(Succeed())
			Expect(p.views.DeleteVersion(ctx, version.ID)).To(Succeed())
			Expect(p.views.Delete(ctx, cv.ID)).To(Succeed())

			_, err = p.views.Get(ctx, cv.ID)
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		It("should refuse to delete versions used by composite views", func() {
			cv := p.createView(ctx, org.ID, "web", false)
			version := p.publish(ctx, cv.ID)
			composite := p.createView(ctx, org.ID, "all", true)
			_, err := p.views.SetComponents(ctx, composite.ID, []int{version.ID})
			Expect(err).NotTo(HaveOccurred())
			lib, err := p.store.Environment().Library(ctx, org.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.views.RemoveFromEnvironment(ctx, cv.ID, lib.ID)).To(Succeed())

			err = p.views.DeleteVersion(ctx, version.ID)

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
			Expect(srvErrors.IsCompositionRuleViolationError(err)).To(BeFalse())
		})
	})

	Context("Copy", func() {
		It("should copy the definition but not the versions", func() {
			cv := p.createView(ctx, org.ID, "web", false)
			yum := p.createRepo(ctx, org.ID, "rhel", models.RepositoryTypeYum)
			_, err := p.views.SetRepositories(ctx, cv.ID, []int{yum.ID})
			Expect(err).NotTo(HaveOccurred())
			p.publish(ctx, cv.ID)

			copied, err := p.views.Copy(ctx, cv.ID, "web copy")

			Expect(err).NotTo(HaveOccurred())
			Expect(copied.ID).NotTo(Equal(cv.ID))
			Expect(copied.Label).To(Equal("web_copy"))
			Expect(copied.RepositoryIDs).To(ConsistOf(yum.ID))
			Expect(copied.Versions).To(BeEmpty())
		})

		It("should reject a taken name", func() {
			cv := p.createView(ctx, org.ID, "web", false)

			_, err := p.views.Copy(ctx, cv.ID, "web")

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})
	})

	Context("List", func() {
		It("should search and page content views", func() {
			for _, name := range []string{"web", "web-2", "db"} {
				p.createView(ctx, org.ID, name, false)
			}

			result, err := p.views.List(ctx, org.ID, services.ListParams{Search: "name ~ web", PerPage: 1})

			Expect(err).NotTo(HaveOccurred())
			Expect(result.Total).To(Equal(3))
			Expect(result.Subtotal).To(Equal(2))
			Expect(result.Items).To(HaveLen(1))
		})

		It("should reject unsupported searches", func() {
			_, err := p.views.List(ctx, org.ID, services.ListParams{Search: "label ~ web"})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})
	})
})
