package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/renzon/robottelo/api/v1"
	"github.com/renzon/robottelo/internal/handlers"
)

var _ = Describe("Web UI", func() {
	var (
		ctx context.Context
		a   *api
	)

	BeforeEach(func() {
		ctx = context.Background()
		a = startProduct(ctx)
	})

	login := func() {
		status, _, location := a.form("/users/login", url.Values{"login": {admin}, "password": {password}})
		Expect(status).To(Equal(http.StatusFound))
		Expect(location).To(Equal("/"))
	}

	It("should redirect anonymous visitors to the login page", func() {
		resp, err := a.client.Get(a.base + "/organizations")
		Expect(err).NotTo(HaveOccurred())
		resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusFound))
		Expect(resp.Header.Get("Location")).To(Equal("/users/login"))
	})

	It("should show an error on bad credentials", func() {
		status, body, _ := a.form("/users/login", url.Values{"login": {admin}, "password": {"wrong"}})

		Expect(status).To(Equal(http.StatusUnauthorized))
		Expect(body).To(ContainSubstring(`id="error-alert"`))
	})

	Context("organizations", func() {
		BeforeEach(login)

		It("should create and search organizations", func() {
			// Given an organization created through the form
			status, _, location := a.form("/organizations", url.Values{"name": {"Umbrella"}})
			Expect(status).To(Equal(http.StatusFound))
			Expect(location).To(HavePrefix("/organizations?notice="))

			// When the list is searched by name
			status, body := a.page("/organizations?search=" + url.QueryEscape(`name = "Umbrella"`))

			// Then the organization is listed
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring(`<td class="name">Umbrella</td>`))
			Expect(body).To(ContainSubstring(`<span id="account-menu">admin</span>`))
		})

		It("should render validation errors on the form", func() {
			status, body, _ := a.form("/organizations", url.Values{"name": {""}})

			Expect(status).To(Equal(http.StatusUnprocessableEntity))
			Expect(body).To(ContainSubstring(`id="error-alert"`))
			Expect(body).To(ContainSubstring("name"))
		})

		It("should suggest organization names", func() {
			for _, name := range []string{"Umbrella", "Umbrella Labs", "Initech"} {
				status, _, _ := a.form("/organizations", url.Values{"name": {name}})
				Expect(status).To(Equal(http.StatusFound))
			}

			status, body := a.page("/organizations/auto_complete_search?search=" + url.QueryEscape("name = Umbr"))
			Expect(status).To(Equal(http.StatusOK))

			var items []handlers.AutoCompleteItem
			Expect(json.Unmarshal([]byte(body), &items)).To(Succeed())
			Expect(items).To(ConsistOf(
				HaveField("Label", `name = "Umbrella"`),
				HaveField("Label", `name = "Umbrella Labs"`),
			))
		})
	})

	Context("job templates", func() {
		BeforeEach(login)

		It("should create, clone and delete templates", func() {
			status, _, _ := a.form("/job_templates", url.Values{
				"name":          {"restart"},
				"job_category":  {"Commands"},
				"provider_type": {"SSH"},
				"template":      {"systemctl restart <%= input('service') %>"},
				"input_name":    {"service"},
			})
			Expect(status).To(Equal(http.StatusFound))

			var list v1.List[v1.JobTemplate]
			Expect(a.call(http.MethodGet, "/api/v2/job_templates?search=restart", nil, &list)).To(Equal(http.StatusOK))
			Expect(list.Results).To(HaveLen(1))
			id := list.Results[0].ID

			status, _, _ = a.form(fmt.Sprintf("/job_templates/%d/clone", id), url.Values{"name": {"restart copy"}})
			Expect(status).To(Equal(http.StatusFound))

			status, body, _ := a.form(fmt.Sprintf("/job_templates/%d/clone", id), url.Values{"name": {"restart copy"}})
			Expect(status).To(Equal(http.StatusUnprocessableEntity))
			Expect(body).To(ContainSubstring("has already been taken"))

			status, _, _ = a.form(fmt.Sprintf("/job_templates/%d/delete", id), nil)
			Expect(status).To(Equal(http.StatusFound))

			_, body = a.page("/job_templates")
			Expect(body).NotTo(ContainSubstring(`<td class="name">restart</td>`))
			Expect(body).To(ContainSubstring(`<td class="name">restart copy</td>`))
		})
	})

	Context("jobs", func() {
		BeforeEach(login)

		It("should run a job from the host page", func() {
			// Given a host and the default template
			var org v1.Organization
			Expect(a.call(http.MethodPost, "/api/v2/organizations", v1.OrganizationRequest{Name: "ACME"}, &org)).To(Equal(http.StatusCreated))
			var host v1.Host
			Expect(a.call(http.MethodPost, "/api/v2/hosts", v1.HostRequest{Name: "web01", OrganizationID: org.ID}, &host)).To(Equal(http.StatusCreated))
			var list v1.List[v1.JobTemplate]
			Expect(a.call(http.MethodGet, "/api/v2/job_templates", nil, &list)).To(Equal(http.StatusOK))

			status, body := a.page(fmt.Sprintf("/hosts/%d", host.ID))
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring(`id="run-job-form"`))

			// When the run-job form is submitted
			status, _, location := a.form("/job_invocations", url.Values{
				"host_id":         {fmt.Sprint(host.ID)},
				"job_template_id": {fmt.Sprint(list.Results[0].ID)},
				"command":         {"echo from-ui"},
			})
			Expect(status).To(Equal(http.StatusFound))
			Expect(location).To(MatchRegexp(`^/job_invocations/\d+$`))

			// Then the invocation page eventually shows success and the output
			Eventually(func() string {
				_, body := a.page(location)
				return body
			}, 5*time.Second, 20*time.Millisecond).Should(ContainSubstring(`<span id="job-status" class="status-succeeded">succeeded</span>`))
			_, body = a.page(location)
			Expect(body).To(ContainSubstring("from-ui"))
		})
	})
})
