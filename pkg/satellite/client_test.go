package satellite_test

import (
	"context"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/renzon/robottelo/api/v1"
	srvErrors "github.com/renzon/robottelo/pkg/errors"
	"github.com/renzon/robottelo/pkg/satellite"
)

var _ = Describe("Client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Context("error classification", func() {
		// canned answers every request with the given status and body
		canned := func(status int, body string) *satellite.Client {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				_, _ = w.Write([]byte(body))
			}))
			DeferCleanup(srv.Close)
			return satellite.NewClient(srv.URL)
		}

		DescribeTable("should map responses onto the error taxonomy",
			func(status int, body string, check func(error) bool) {
				c := canned(status, body)

				_, err := c.GetContentView(ctx, 1)

				Expect(err).To(HaveOccurred())
				Expect(check(err)).To(BeTrue(), err.Error())
			},
			Entry("401", http.StatusUnauthorized, `{"displayMessage":"unable to authenticate user admin","errors":[]}`, srvErrors.IsUnauthorizedError),
			Entry("403", http.StatusForbidden, `{"displayMessage":"forbidden","errors":[]}`, srvErrors.IsUnauthorizedError),
			Entry("404", http.StatusNotFound, `{"displayMessage":"content view 1 not found","errors":[]}`, srvErrors.IsResourceNotFoundError),
			Entry("409", http.StatusConflict, `{"displayMessage":"duplicate repository reference: 3","errors":[]}`, srvErrors.IsDuplicateReferenceError),
			Entry("422 validation", http.StatusUnprocessableEntity, `{"displayMessage":"validation failed: name: Required value","errors":["name: Required value"]}`, srvErrors.IsValidationError),
			Entry("422 duplicate ids", http.StatusUnprocessableEntity, `{"displayMessage":"duplicate repository reference: 4, 4","errors":[]}`, srvErrors.IsDuplicateReferenceError),
			Entry("422 duplicate promote", http.StatusUnprocessableEntity, `{"displayMessage":"duplicate lifecycle environment reference: version 1.0 is already promoted to Dev","errors":[]}`, srvErrors.IsDuplicateReferenceError),
			Entry("422 composition", http.StatusUnprocessableEntity, `{"displayMessage":"composition rule violation: puppet repositories cannot be added to a content view","errors":[]}`, srvErrors.IsCompositionRuleViolationError),
		)

		It("should keep the reference kind of a duplicate", func() {
			c := canned(http.StatusUnprocessableEntity, `{"displayMessage":"duplicate component reference: 7","errors":[]}`)

			_, err := c.SetComponentIDs(ctx, 1, 7, 7)

			var dup *srvErrors.DuplicateReferenceError
			Expect(err).To(BeAssignableToTypeOf(dup))
			Expect(err.Error()).To(ContainSubstring("component"))
		})

		It("should return a StatusError for anything else", func() {
			c := canned(http.StatusInternalServerError, `boom`)

			_, err := c.GetOrganization(ctx, 1)

			var statusErr *satellite.StatusError
			Expect(err).To(BeAssignableToTypeOf(statusErr))
			Expect(err.(*satellite.StatusError).StatusCode).To(Equal(http.StatusInternalServerError))
			Expect(err.Error()).To(ContainSubstring("boom"))
		})
	})

	Context("against the fake product", func() {
		var c *satellite.Client

		BeforeEach(func() {
			c = startProduct(ctx)
		})

		It("should authenticate and ping", func() {
			status, err := c.Ping(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(status.Result).To(Equal("ok"))
		})

		It("should fail with bad credentials", func() {
			_, err := c.As(admin, "wrong").Ping(ctx)

			Expect(srvErrors.IsUnauthorizedError(err)).To(BeTrue())
		})

		It("should create, find and delete an organization", func() {
			org, err := c.CreateOrganization(ctx, v1.OrganizationRequest{Name: "Umbrella Corp"})
			Expect(err).NotTo(HaveOccurred())
			Expect(org.Label).To(Equal("Umbrella_Corp"))

			found, err := c.SearchOrganizations(ctx, `name = "Umbrella Corp"`)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))

			lib, err := c.Library(ctx, org.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(lib.Name).To(Equal("Library"))

			Expect(c.DeleteOrganization(ctx, org.ID)).To(Succeed())
			_, err = c.GetOrganization(ctx, org.ID)
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		It("should let a created user authenticate", func() {
			org, err := c.CreateOrganization(ctx, v1.OrganizationRequest{Name: "ACME"})
			Expect(err).NotTo(HaveOccurred())
			u, err := c.CreateUser(ctx, v1.UserRequest{Login: "jdoe", Password: "secret123", Mail: "jdoe@example.com", DefaultOrganizationID: &org.ID})
			Expect(err).NotTo(HaveOccurred())

			_, err = c.As("jdoe", "secret123").GetOrganization(ctx, org.ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(c.DeleteUser(ctx, u.ID)).To(Succeed())
			_, err = c.As("jdoe", "secret123").GetOrganization(ctx, org.ID)
			Expect(srvErrors.IsUnauthorizedError(err)).To(BeTrue())
		})
	})
})
