package store_test

import (
	"context"
	"database/sql"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/store"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

var _ = Describe("Remote execution stores", func() {
	var (
		ctx context.Context
		s   *store.Store
		db  *sql.DB
	)

	BeforeEach(func() {
		ctx = context.Background()
		s, db = newTestStore(ctx)
	})

	AfterEach(func() {
		if db != nil {
			db.Close()
		}
	})

	Context("TaskStore", func() {
		It("should create and update a task", func() {
			// Arrange
			task := models.Task{
				ID:           "8f2c7a4e-3f1d-4c55-9e0a-2f8b6a1c9d70",
				Label:        "Actions::Katello::ContentView::Publish",
				Action:       "publish",
				ResourceType: "content_view",
				ResourceID:   3,
				State:        models.TaskStatePlanned,
				Result:       models.TaskResultPending,
			}
			Expect(s.Task().Create(ctx, task)).To(Succeed())

			// Act
			ended := time.Now()
			task.State = models.TaskStateStopped
			task.Result = models.TaskResultError
			task.Progress = 1
			task.Errors = []string{"first", "second"}
			task.EndedAt = &ended
			Expect(s.Task().Update(ctx, task)).To(Succeed())

			// Assert
			got, err := s.Task().Get(ctx, task.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Pending()).To(BeFalse())
			Expect(got.Result).To(Equal(models.TaskResultError))
			Expect(got.Errors).To(Equal([]string{"first", "second"}))
			Expect(got.StartedAt).To(BeNil())
			Expect(got.EndedAt).NotTo(BeNil())

			tasks, err := s.Task().List(ctx, store.ByResource("content_view", 3))
			Expect(err).NotTo(HaveOccurred())
			Expect(tasks).To(HaveLen(1))
		})

		It("should report unknown tasks as not found", func() {
			_, err := s.Task().Get(ctx, "missing")
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
			Expect(srvErrors.IsResourceNotFoundError(s.Task().Update(ctx, models.Task{ID: "missing"}))).To(BeTrue())
		})
	})

	Context("HostStore", func() {
		It("should store parameters and overwrite them", func() {
			id, err := s.Host().Create(ctx, models.Host{
				Name: "client.example.com", OrganizationID: 1, IP: "192.168.100.12",
				Parameters: map[string]string{models.ConnectByIPParameter: "false"},
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(s.Host().SetParameter(ctx, id, models.ConnectByIPParameter, "true")).To(Succeed())

			h, err := s.Host().Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(h.Parameters).To(Equal(map[string]string{models.ConnectByIPParameter: "true"}))
			Expect(h.Address()).To(Equal("192.168.100.12"))
			Expect(h.ContentViewID).To(BeNil())

			Expect(s.Host().Delete(ctx, id)).To(Succeed())
			_, err = s.Host().Get(ctx, id)
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})
	})

	Context("JobTemplateStore", func() {
		It("should store a template with its inputs", func() {
			id, err := s.JobTemplate().Create(ctx, models.JobTemplate{
				Name:         models.DefaultJobTemplateName,
				JobCategory:  models.DefaultJobCategory,
				ProviderType: models.DefaultProviderType,
				Template:     `<%= input("command") %>`,
				Inputs:       []models.TemplateInput{{Name: "command", Required: true, InputType: "user"}},
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = s.JobTemplate().AddInput(ctx, models.TemplateInput{TemplateID: id, Name: "timeout", InputType: "user"})
			Expect(err).NotTo(HaveOccurred())

			t, err := s.JobTemplate().Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Inputs).To(HaveLen(2))
			in, ok := t.Input("command")
			Expect(ok).To(BeTrue())
			Expect(in.Required).To(BeTrue())

			byCategory, err := s.JobTemplate().List(ctx, store.ByJobCategory(models.DefaultJobCategory))
			Expect(err).NotTo(HaveOccurred())
			Expect(byCategory).To(HaveLen(1))
		})

		It("should update and delete a template", func() {
			id, err := s.JobTemplate().Create(ctx, models.JobTemplate{Name: "a", JobCategory: "c", ProviderType: "SSH", Template: "ls"})
			Expect(err).NotTo(HaveOccurred())

			t, err := s.JobTemplate().Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			t.Template = "pwd"
			Expect(s.JobTemplate().Update(ctx, *t)).To(Succeed())

			t, err = s.JobTemplate().Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Template).To(Equal("pwd"))

			Expect(s.JobTemplate().Delete(ctx, id)).To(Succeed())
			n, err := s.JobTemplate().Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})

	Context("JobInvocationStore", func() {
		It("should track per-host results", func() {
			// Arrange
			id, err := s.JobInvocation().Create(ctx, models.JobInvocation{
				TemplateID:  1,
				JobCategory: models.DefaultJobCategory,
				Description: "Run ls",
				Inputs:      map[string]string{"command": "ls"},
				Targets: []models.JobTarget{
					{HostID: 1, HostName: "one.example.com"},
					{HostID: 2, HostName: "two.example.com"},
				},
			})
			Expect(err).NotTo(HaveOccurred())

			inv, err := s.JobInvocation().Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Status()).To(Equal(models.JobStatusQueued))
			Expect(inv.Inputs).To(HaveKeyWithValue("command", "ls"))

			// Act
			now := time.Now()
			Expect(s.JobInvocation().UpdateTarget(ctx, models.JobTarget{
				InvocationID: id, HostID: 1, Status: models.HostJobSuccess,
				ExitStatus: ptr.To(0), Output: []string{"bin", "etc"}, StartedAt: &now, EndedAt: &now,
			})).To(Succeed())
			Expect(s.JobInvocation().UpdateTarget(ctx, models.JobTarget{
				InvocationID: id, HostID: 2, Status: models.HostJobError, ExitStatus: ptr.To(1),
			})).To(Succeed())

			// Assert
			inv, err = s.JobInvocation().Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Status()).To(Equal(models.JobStatusFailed))
			one, ok := inv.Target(1)
			Expect(ok).To(BeTrue())
			Expect(one.Output).To(Equal([]string{"bin", "etc"}))
			Expect(one.ExitStatus).To(HaveValue(Equal(0)))
			two, _ := inv.Target(2)
			Expect(two.Output).To(BeEmpty())
		})

		It("should keep the scheduled start", func() {
			startAt := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)
			id, err := s.JobInvocation().Create(ctx, models.JobInvocation{TemplateID: 1, JobCategory: "c", StartAt: &startAt})
			Expect(err).NotTo(HaveOccurred())

			inv, err := s.JobInvocation().Get(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.StartAt).NotTo(BeNil())
			Expect(inv.StartAt.Equal(startAt)).To(BeTrue())
		})
	})
})
