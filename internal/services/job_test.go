package services_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"k8s.io/utils/ptr"

	"github.com/renzon/robottelo/internal/models"
	"github.com/renzon/robottelo/internal/services"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
)

var _ = Describe("HostService", func() {
	var (
		ctx context.Context
		p   *product
		org *models.Organization
	)

	BeforeEach(func() {
		ctx = context.Background()
		p = newProduct(ctx)
		org = p.createOrg(ctx, "ACME")
	})

	It("should create a host with parameters", func() {
		h, err := p.hosts.Create(ctx, services.HostParams{
			Name:           "Web01.example.com",
			OrganizationID: org.ID,
			IP:             "192.168.100.10",
			Parameters:     map[string]string{models.ConnectByIPParameter: "true"},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(h.Name).To(Equal("web01.example.com"))
		Expect(h.Address()).To(Equal("192.168.100.10"))
	})

	It("should reject invalid addresses and taken names", func() {
		_, err := p.hosts.Create(ctx, services.HostParams{Name: "a", OrganizationID: org.ID, IP: "not-an-ip"})
		Expect(srvErrors.IsValidationError(err)).To(BeTrue())

		_, err = p.hosts.Create(ctx, services.HostParams{Name: "a", OrganizationID: org.ID})
		Expect(err).NotTo(HaveOccurred())
		_, err = p.hosts.Create(ctx, services.HostParams{Name: "A", OrganizationID: org.ID})
		Expect(srvErrors.IsValidationError(err)).To(BeTrue())
	})

	It("should overwrite a parameter", func() {
		h, err := p.hosts.Create(ctx, services.HostParams{Name: "a", OrganizationID: org.ID, IP: "10.0.0.1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(h.Address()).To(Equal("a"))

		_, err = p.hosts.SetParameter(ctx, h.ID, models.ConnectByIPParameter, "false")
		Expect(err).NotTo(HaveOccurred())
		h, err = p.hosts.SetParameter(ctx, h.ID, models.ConnectByIPParameter, "true")

		Expect(err).NotTo(HaveOccurred())
		Expect(h.Parameters).To(HaveKeyWithValue(models.ConnectByIPParameter, "true"))
		Expect(h.Address()).To(Equal("10.0.0.1"))
	})
})

var _ = Describe("JobTemplateService", func() {
	var (
		ctx context.Context
		p   *product
	)

	BeforeEach(func() {
		ctx = context.Background()
		p = newProduct(ctx)
	})

	create := func(name string) *models.JobTemplate {
		t, err := p.templates.Create(ctx, services.JobTemplateParams{
			Name:        name,
			JobCategory: "Commands",
			Template:    `echo <%= input("message") %> from <%= @host.name %>`,
			Inputs:      []models.TemplateInput{{Name: "message", Required: true}},
		})
		Expect(err).NotTo(HaveOccurred())
		return t
	}

	It("should seed the default template once", func() {
		Expect(p.templates.SeedDefaults(ctx)).To(Succeed())

		result, err := p.templates.List(ctx, models.DefaultJobCategory, services.ListParams{Search: `name = "` + models.DefaultJobTemplateName + `"`})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Items).To(HaveLen(1))
		Expect(result.Items[0].Locked).To(BeTrue())
		_, ok := result.Items[0].Input("command")
		Expect(ok).To(BeTrue())
	})

	It("should create a template with the SSH provider by default", func() {
		t := create("greet")

		Expect(t.ProviderType).To(Equal(models.DefaultProviderType))
		Expect(t.Inputs).To(HaveLen(1))
	})

	DescribeTable("should reject invalid templates",
		func(params services.JobTemplateParams) {
			_, err := p.templates.Create(ctx, params)

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		},
		Entry("blank name", services.JobTemplateParams{JobCategory: "Commands", Template: "true"}),
		Entry("blank category", services.JobTemplateParams{Name: "x", Template: "true"}),
		Entry("blank body", services.JobTemplateParams{Name: "x", JobCategory: "Commands"}),
		Entry("unknown provider", services.JobTemplateParams{Name: "x", JobCategory: "Commands", Template: "true", ProviderType: "Telnet"}),
		Entry("repeated inputs", services.JobTemplateParams{Name: "x", JobCategory: "Commands", Template: "true",
			Inputs: []models.TemplateInput{{Name: "a"}, {Name: "a"}}}),
	)

	// Given a template named "greet"
	// When another template named "greet" is created
	// Then the name is reported as taken
	It("should keep template names unique", func() {
		create("greet")

		_, err := p.templates.Create(ctx, services.JobTemplateParams{Name: "greet", JobCategory: "Commands", Template: "true"})

		Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("has already been taken"))
	})

	It("should clone body and inputs", func() {
		src := create("greet")

		clone, err := p.templates.Clone(ctx, src.ID, "greet clone")

		Expect(err).NotTo(HaveOccurred())
		Expect(clone.Template).To(Equal(src.Template))
		Expect(clone.Inputs).To(HaveLen(1))
		Expect(clone.Inputs[0].Name).To(Equal("message"))
		Expect(clone.Locked).To(BeFalse())

		diff, err := p.templates.Diff(ctx, src.ID, clone.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(diff).To(BeEmpty())
	})

	It("should diff template bodies", func() {
		a := create("a")
		b, err := p.templates.Clone(ctx, a.ID, "b")
		Expect(err).NotTo(HaveOccurred())
		_, err = p.templates.Update(ctx, b.ID, services.JobTemplateUpdate{Template: ptr.To("uptime\n")})
		Expect(err).NotTo(HaveOccurred())

		diff, err := p.templates.Diff(ctx, a.ID, b.ID)

		Expect(err).NotTo(HaveOccurred())
		Expect(diff).To(ContainSubstring("+uptime"))
		Expect(diff).To(ContainSubstring("--- a"))
	})

	It("should protect locked templates", func() {
		result, err := p.templates.List(ctx, "", services.ListParams{Search: models.DefaultJobTemplateName})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Items).NotTo(BeEmpty())
		locked := result.Items[0]

		Expect(srvErrors.IsValidationError(p.templates.Delete(ctx, locked.ID))).To(BeTrue())
		_, err = p.templates.Update(ctx, locked.ID, services.JobTemplateUpdate{Template: ptr.To("true")})
		Expect(srvErrors.IsValidationError(err)).To(BeTrue())
	})

	It("should delete unlocked templates", func() {
		t := create("greet")

		Expect(p.templates.Delete(ctx, t.ID)).To(Succeed())

		_, err := p.templates.Get(ctx, t.ID)
		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
	})

	It("should preview with placeholders for missing values", func() {
		t := create("greet")

		out, err := p.templates.Preview(ctx, t.ID, nil, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("echo $USER_INPUT[message] from $HOST[name]"))

		out, err = p.templates.Preview(ctx, t.ID, map[string]string{"message": "hi"}, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("echo hi from $HOST[name]"))
	})

	It("should fail the preview of undeclared inputs", func() {
		t, err := p.templates.Create(ctx, services.JobTemplateParams{Name: "bad", JobCategory: "Commands", Template: `<%= input("missing") %>`})
		Expect(err).NotTo(HaveOccurred())

		_, err = p.templates.Preview(ctx, t.ID, nil, 0)

		Expect(srvErrors.IsValidationError(err)).To(BeTrue())
	})

	It("should add inputs to a template", func() {
		t := create("greet")

		updated, err := p.templates.AddInput(ctx, t.ID, models.TemplateInput{Name: "count"})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.Inputs).To(HaveLen(2))

		_, err = p.templates.AddInput(ctx, t.ID, models.TemplateInput{Name: "count"})
		Expect(srvErrors.IsValidationError(err)).To(BeTrue())
	})
})

var _ = Describe("JobInvocationService", func() {
	var (
		ctx      context.Context
		p        *product
		org      *models.Organization
		template *models.JobTemplate
	)

	BeforeEach(func() {
		ctx = context.Background()
		p = newProduct(ctx)
		org = p.createOrg(ctx, "ACME")

		result, err := p.templates.List(ctx, "", services.ListParams{Search: `name = "` + models.DefaultJobTemplateName + `"`})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Items).To(HaveLen(1))
		template = &result.Items[0]
	})

	createHost := func(name string) *models.Host {
		h, err := p.hosts.Create(ctx, services.HostParams{Name: name, OrganizationID: org.ID, IP: "10.0.0.1"})
		Expect(err).NotTo(HaveOccurred())
		return h
	}

	run := func(command string, hosts ...*models.Host) *models.JobInvocation {
		ids := make([]int, 0, len(hosts))
		for _, h := range hosts {
			ids = append(ids, h.ID)
		}
		inv, err := p.jobs.Create(ctx, services.JobInvocationParams{
			TemplateID: template.ID,
			Inputs:     map[string]string{"command": command},
			HostIDs:    ids,
		})
		Expect(err).NotTo(HaveOccurred())
		return inv
	}

	waitStatus := func(id int, status models.JobStatus) *models.JobInvocation {
		var inv *models.JobInvocation
		Eventually(func(g Gomega) {
			var err error
			inv, err = p.jobs.Get(ctx, id)
			g.Expect(err).NotTo(HaveOccurred())
			g.Expect(inv.Status()).To(Equal(status))
		}, 5*time.Second, 10*time.Millisecond).Should(Succeed())
		return inv
	}

	// Given a host
	// When "echo" runs on it
	// Then the invocation succeeds and the host output holds the echoed line
	It("should run a command on one host", func() {
		h := createHost("web01")

		inv := run("echo hello", h)
		Expect(inv.JobCategory).To(Equal(models.DefaultJobCategory))
		done := waitStatus(inv.ID, models.JobStatusSucceeded)

		target, ok := done.Target(h.ID)
		Expect(ok).To(BeTrue())
		Expect(target.Status).To(Equal(models.HostJobSuccess))
		Expect(target.ExitStatus).To(HaveValue(Equal(0)))
		Expect(target.Output).To(Equal([]string{"hello", "Exit status: 0"}))
	})

	It("should run on many hosts", func() {
		hosts := []*models.Host{createHost("a"), createHost("b"), createHost("c")}

		inv := run("hostname", hosts...)
		done := waitStatus(inv.ID, models.JobStatusSucceeded)

		Expect(done.Targets).To(HaveLen(3))
		for _, h := range hosts {
			out, err := p.jobs.Output(ctx, inv.ID, h.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Output[0]).To(Equal(h.Name))
		}
	})

	DescribeTable("should fail hosts whose script exits non-zero",
		func(command string, exitStatus int, line string) {
			h := createHost("web01")

			inv := run(command, h)
			done := waitStatus(inv.ID, models.JobStatusFailed)

			target, _ := done.Target(h.ID)
			Expect(target.Status).To(Equal(models.HostJobError))
			Expect(target.ExitStatus).To(HaveValue(Equal(exitStatus)))
			if line != "" {
				Expect(target.Output).To(ContainElement(line))
			}
		},
		Entry("exit", "exit 3", 3, ""),
		Entry("unknown command", "definitely-not-a-command", 127, "bash: definitely-not-a-command: command not found"),
		Entry("false", "echo before; false", 1, "before"),
		Entry("missing path", "ls /nonexistent", 2, ""),
	)

	It("should stop at exit", func() {
		h := createHost("web01")

		inv := run("echo one; exit 0; echo two", h)
		done := waitStatus(inv.ID, models.JobStatusSucceeded)

		target, _ := done.Target(h.ID)
		Expect(target.Output).To(Equal([]string{"one", "Exit status: 0"}))
	})

	It("should wait on the clock for sleep", func() {
		h := createHost("web01")

		inv := run("sleep 30; echo awake", h)
		waitStatus(inv.ID, models.JobStatusRunning)
		Eventually(p.clock.HasWaiters, 5*time.Second, 10*time.Millisecond).Should(BeTrue())
		p.clock.Step(30 * time.Second)

		done := waitStatus(inv.ID, models.JobStatusSucceeded)
		target, _ := done.Target(h.ID)
		Expect(target.Output).To(ContainElement("awake"))
	})

	// Given a job scheduled an hour from now
	// When the clock has not reached start_at
	// Then the invocation stays queued, and runs once the clock gets there
	It("should honour start_at", func() {
		h := createHost("web01")
		startAt := p.clock.Now().Add(time.Hour)

		inv, err := p.jobs.Create(ctx, services.JobInvocationParams{
			TemplateID: template.ID,
			Inputs:     map[string]string{"command": "true"},
			HostIDs:    []int{h.ID},
			StartAt:    &startAt,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(inv.StartAt).NotTo(BeNil())

		Eventually(p.clock.HasWaiters, 5*time.Second, 10*time.Millisecond).Should(BeTrue())
		current, err := p.jobs.Get(ctx, inv.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(current.Status()).To(Equal(models.JobStatusQueued))

		p.clock.Step(time.Hour)
		waitStatus(inv.ID, models.JobStatusSucceeded)
	})

	It("should require the template inputs and at least one host", func() {
		h := createHost("web01")

		_, err := p.jobs.Create(ctx, services.JobInvocationParams{TemplateID: template.ID, HostIDs: []int{h.ID}})
		Expect(srvErrors.IsValidationError(err)).To(BeTrue())

		_, err = p.jobs.Create(ctx, services.JobInvocationParams{TemplateID: template.ID, Inputs: map[string]string{"command": "true"}})
		Expect(srvErrors.IsValidationError(err)).To(BeTrue())

		_, err = p.jobs.Create(ctx, services.JobInvocationParams{TemplateID: template.ID, Inputs: map[string]string{"command": "true", "other": "x"}, HostIDs: []int{h.ID}})
		Expect(srvErrors.IsValidationError(err)).To(BeTrue())
	})

	It("should return not found for unknown hosts and templates", func() {
		_, err := p.jobs.Create(ctx, services.JobInvocationParams{TemplateID: 999, HostIDs: []int{1}})
		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())

		_, err = p.jobs.Create(ctx, services.JobInvocationParams{TemplateID: template.ID, Inputs: map[string]string{"command": "true"}, HostIDs: []int{999}})
		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
	})

	It("should report hosts outside the invocation as not found", func() {
		h := createHost("web01")
		other := createHost("web02")
		inv := run("true", h)

		_, err := p.jobs.Output(ctx, inv.ID, other.ID)

		Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
	})
})
