package main

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	v1 "github.com/renzon/robottelo/api/v1"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
	"github.com/renzon/robottelo/pkg/poll"
	"github.com/renzon/robottelo/pkg/satellite"
	"github.com/renzon/robottelo/pkg/ui"
	"github.com/renzon/robottelo/test/e2e/fixtures"
)

const hostCount = 3

var _ = Describe("Remote execution", Label("remote-execution"), func() {
	var (
		ctx         context.Context
		orgID       int
		defaultTmpl *v1.JobTemplate
	)

	BeforeEach(func(sctx SpecContext) {
		ctx = specContext(sctx)
		orgID = localOrg(ctx)

		var err error
		defaultTmpl, err = session.Admin.JobTemplateByName(ctx, satellite.DefaultJobTemplate)
		Expect(err).NotTo(HaveOccurred())
	})

	// newHost registers a host reached by its address, like a freshly provisioned client.
	newHost := func() *v1.Host {
		host, err := session.Admin.CreateHost(ctx, v1.HostRequest{
			Name:           fixtures.UniqueName("client") + ".example.com",
			OrganizationID: orgID,
			IP:             session.Addresses.Next(),
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func(ctx SpecContext) {
			_ = session.Admin.DeleteHost(ctx, host.ID)
		})
		host, err = session.Admin.SetHostParameter(ctx, host.ID, satellite.ConnectByIPParameter, "true")
		Expect(err).NotTo(HaveOccurred())
		return host
	}

	newTemplate := func(body string, inputs ...v1.TemplateInput) *v1.JobTemplate {
		t, err := session.Admin.CreateJobTemplate(ctx, v1.JobTemplateRequest{
			Name:           ptr.To(fixtures.UniqueName("template")),
			JobCategory:    ptr.To("Commands"),
			ProviderType:   ptr.To("SSH"),
			Template:       ptr.To(body),
			TemplateInputs: inputs,
		})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func(ctx SpecContext) {
			_ = session.Admin.DeleteJobTemplate(ctx, t.ID)
		})
		return t
	}

	command := func(cmd string, hostIDs ...int) v1.JobInvocationRequest {
		return v1.JobInvocationRequest{
			JobTemplateID: defaultTmpl.ID,
			Inputs:        map[string]string{"command": cmd},
			Targeting:     v1.Targeting{HostIDs: hostIDs},
		}
	}

	Context("job templates", func() {
		It("should create a template with its inputs", func() {
			t := newTemplate(`<%= input("command") %>`, v1.TemplateInput{Name: "command", Required: true})

			got, err := session.Admin.GetJobTemplate(ctx, t.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(got.Locked).To(BeFalse())
			Expect(got.TemplateInputs).To(ConsistOf(HaveField("Name", "command")))
		})

		It("should reject a duplicate name", func() {
			t := newTemplate("uptime")

			_, err := session.Admin.CreateJobTemplate(ctx, v1.JobTemplateRequest{Name: ptr.To(t.Name), JobCategory: ptr.To("Commands"), Template: ptr.To("uptime")})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue(), "got %v", err)
		})

		It("should clone a template under a new name", func() {
			t := newTemplate("uptime", v1.TemplateInput{Name: "flag"})

			clone, err := session.Admin.CloneJobTemplate(ctx, t.ID, fixtures.UniqueName("clone"))
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(func(ctx SpecContext) {
				_ = session.Admin.DeleteJobTemplate(ctx, clone.ID)
			})

			Expect(clone.Template).To(Equal(t.Template))
			Expect(clone.TemplateInputs).To(HaveLen(1))
			_, err = session.Admin.CloneJobTemplate(ctx, t.ID, clone.Name)
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})

		It("should delete a template", func() {
			t := newTemplate("uptime")

			Expect(session.Admin.DeleteJobTemplate(ctx, t.ID)).To(Succeed())

			_, err := session.Admin.GetJobTemplate(ctx, t.ID)
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		It("should keep the default template locked", func() {
			Expect(defaultTmpl.Locked).To(BeTrue())

			err := session.Admin.DeleteJobTemplate(ctx, defaultTmpl.ID)

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})

		It("should preview a rendered template", func() {
			out, err := session.Admin.PreviewJobTemplate(ctx, defaultTmpl.ID, v1.PreviewRequest{InputValues: map[string]string{"command": "uname -a"}})

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("uname -a"))
		})

		It("should show the difference between two templates", func() {
			t := newTemplate("uptime")

			diff, err := session.Admin.DiffJobTemplates(ctx, defaultTmpl.ID, t.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(diff).To(ContainSubstring("+uptime"))
		})
	})

	Context("job invocations", func() {
		It("should run a command on one host", func() {
			host := newHost()

			inv, err := session.Admin.RunJobAndWait(ctx, command("echo hello", host.ID))

			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Succeeded).To(Equal(1))
			out, err := session.Admin.JobInvocationOutput(ctx, inv.ID, host.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.ExitStatus).To(HaveValue(BeZero()))
			Expect(out.Output).To(ContainElement(HaveField("Output", "hello")))
		})

		It("should run a command on many hosts", func() {
			var ids []int
			names := map[string]bool{}
			for range hostCount {
				h := newHost()
				ids = append(ids, h.ID)
				names[h.Name] = true
			}

			inv, err := session.Admin.RunJobAndWait(ctx, command("hostname", ids...))
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Total).To(Equal(hostCount))
			Expect(inv.Succeeded).To(Equal(hostCount))

			outputs, err := session.Admin.HostOutputs(ctx, inv)
			Expect(err).NotTo(HaveOccurred())
			Expect(outputs).To(HaveLen(hostCount))
			for name, lines := range outputs {
				Expect(names).To(HaveKey(name))
				Expect(lines).To(ContainElement(name))
			}
		})

		It("should run a custom template with its own input", func() {
			host := newHost()
			t := newTemplate(`echo <%= input("greeting") %>`, v1.TemplateInput{Name: "greeting", Required: true})

			inv, err := session.Admin.RunJobAndWait(ctx, v1.JobInvocationRequest{
				JobTemplateID: t.ID,
				Inputs:        map[string]string{"greeting": "hi there"},
				Targeting:     v1.Targeting{HostIDs: []int{host.ID}},
			})

			Expect(err).NotTo(HaveOccurred())
			outputs, err := session.Admin.HostOutputs(ctx, inv)
			Expect(err).NotTo(HaveOccurred())
			Expect(outputs[host.Name]).To(ContainElement("hi there"))
		})

		It("should reject a job without its required input", func() {
			host := newHost()

			_, err := session.Admin.RunJob(ctx, v1.JobInvocationRequest{JobTemplateID: defaultTmpl.ID, Targeting: v1.Targeting{HostIDs: []int{host.ID}}})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})

		// Given a job scheduled an hour ahead
		// When we observe it with a short budget
		// Then it should stay queued and the observation should time out rather than fail
		It("should hold a scheduled job until its start time", func() {
			host := newHost()
			req := command("echo later", host.ID)
			req.Scheduling.StartAt = ptr.To(time.Now().Add(time.Hour))

			inv, err := session.Admin.RunJob(ctx, req)
			Expect(err).NotTo(HaveOccurred())
			Expect(inv.Scheduling.StartAt).NotTo(BeNil())

			inv, err = session.Admin.WaitJobInvocation(ctx, inv.ID, poll.WithTimeout[v1.JobInvocation](time.Second))
			Expect(srvErrors.IsTimedOutError(err)).To(BeTrue(), "got %v", err)
			Expect(srvErrors.IsOperationFailedError(err)).To(BeFalse())
			Expect(inv.Pending).To(Equal(1))
		})

		// Given a command that exits non-zero
		// When we wait for the invocation
		// Then the job should fail and the report should hold the host output
		It("should report a failing job with the host output", func() {
			host := newHost()

			inv, err := session.Admin.RunJobAndWait(ctx, command("echo checking\nls /nonexistent", host.ID))

			Expect(srvErrors.IsOperationFailedError(err)).To(BeTrue(), "got %v", err)
			Expect(inv.Status).To(Equal(satellite.JobStatusFailed))
			Expect(inv.Failed).To(Equal(1))

			var recorded *satellite.Observation
			for _, o := range recorder.Entries() {
				if o.State == poll.Failed && o.HostOutputs[host.Name] != nil {
					recorded = &o
				}
			}
			Expect(recorded).NotTo(BeNil())
			Expect(recorded.HostOutputs[host.Name]).To(ContainElements("checking", ContainSubstring("No such file or directory")))
		})
	})

	Context("from the web UI", func() {
		BeforeEach(requireBrowser)

		It("should create, clone and delete a template", func() {
			name := fixtures.UniqueName("ui-template")
			cloneName := name + " clone"
			Expect(session.Browser.JobTemplates.Create(ctx, ui.JobTemplateForm{Name: name, JobCategory: "Commands", Template: "uptime"})).To(Succeed())
			DeferCleanup(func(ctx SpecContext) {
				for _, n := range []string{cloneName, name} {
					if t, err := session.Admin.JobTemplateByName(ctx, n); err == nil {
						_ = session.Admin.DeleteJobTemplate(ctx, t.ID)
					}
				}
			})

			Expect(session.Browser.JobTemplates.Clone(ctx, name, cloneName)).To(Succeed())
			err := session.Browser.JobTemplates.Clone(ctx, name, cloneName)
			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
			msg, err := session.Browser.JobTemplates.ErrorMessage(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(msg).To(ContainSubstring("has already been taken"))

			Expect(session.Browser.JobTemplates.Delete(ctx, cloneName)).To(Succeed())
			names, err := session.Browser.JobTemplates.Search(ctx, name)
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(ConsistOf(name))
		})

		It("should run a job from the host page", func() {
			host := newHost()

			id, err := session.Browser.Jobs.RunFromHost(ctx, host.ID, ui.JobForm{TemplateName: satellite.DefaultJobTemplate, Command: "whoami"})
			Expect(err).NotTo(HaveOccurred())

			status, err := session.Browser.Jobs.WaitForStatus(ctx, id,
				poll.WithTimeout[string](session.Settings.Poll.Timeout),
				poll.WithInterval[string](session.Settings.Poll.Interval),
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal(ui.StatusSucceeded))

			out, err := session.Browser.Jobs.Output(ctx, host.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal("root"))
		})
	})
})
