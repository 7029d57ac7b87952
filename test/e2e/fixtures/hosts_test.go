package fixtures_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/renzon/robottelo/test/e2e/fixtures"
)

var _ = Describe("AddressPool", func() {
	It("should start after the gateway", func() {
		pool, err := fixtures.NewAddressPool("192.168.100.0/24")
		Expect(err).NotTo(HaveOccurred())

		Expect(pool.Next()).To(Equal("192.168.100.2"))
		Expect(pool.Next()).To(Equal("192.168.100.3"))
	})

	It("should mask the host bits of the subnet", func() {
		pool, err := fixtures.NewAddressPool("10.0.0.77/24")
		Expect(err).NotTo(HaveOccurred())

		Expect(pool.Next()).To(Equal("10.0.0.2"))
	})

	// Given a /29 with five addresses after the gateway
	// When we take more addresses than that
	// Then the pool should wrap around and never hand out the broadcast address
	It("should wrap around before the broadcast address", func() {
		pool, err := fixtures.NewAddressPool("10.0.0.0/29")
		Expect(err).NotTo(HaveOccurred())

		var got []string
		for range 7 {
			got = append(got, pool.Next())
		}

		Expect(got).To(Equal([]string{"10.0.0.2", "10.0.0.3", "10.0.0.4", "10.0.0.5", "10.0.0.6", "10.0.0.2", "10.0.0.3"}))
		Expect(strings.Join(got, ",")).NotTo(ContainSubstring("10.0.0.7"))
	})

	It("should reject a malformed subnet", func() {
		_, err := fixtures.NewAddressPool("10.0.0.0")

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("UniqueName", func() {
	It("should keep the prefix and differ between calls", func() {
		Expect(fixtures.UniqueName("org")).NotTo(Equal(fixtures.UniqueName("org")))
		Expect(fixtures.UniqueName("org")).To(HavePrefix("org-"))
	})
})
