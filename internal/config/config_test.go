package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/renzon/robottelo/internal/config"
)

var _ = Describe("Configuration", func() {
	Context("defaults", func() {
		It("should be valid", func() {
			cfg := config.NewConfigurationWithDefaults()

			Expect(cfg.Validate()).To(Succeed())
			Expect(cfg.Server.AdminUsername).To(Equal("admin"))
			Expect(cfg.Poll.Timeout).To(Equal(5 * time.Minute))
			Expect(cfg.Browser.Name).To(Equal(config.BrowserNone))
			Expect(cfg.Fake.DatabasePath).To(Equal(":memory:"))
		})
	})

	Context("Load", func() {
		var dir string

		BeforeEach(func() {
			dir = GinkgoT().TempDir()
		})

		// Given a config file, an environment variable and an override
		// When we load the configuration
		// Then each later layer should win over the earlier ones
		It("should layer file, environment and overrides", func() {
			// Arrange
			path := filepath.Join(dir, "robottelo.yaml")
			Expect(os.WriteFile(path, []byte(`
server:
  url: https://file.example.com
  admin_username: file-admin
poll:
  interval: 2s
browser:
  name: chrome
`), 0o600)).To(Succeed())
			GinkgoT().Setenv("ROBOTTELO_SERVER_ADMIN_USERNAME", "env-admin")
			GinkgoT().Setenv("ROBOTTELO_POLL_TIMEOUT", "30s")

			// Act
			cfg, err := config.Load(config.LoadOptions{
				ConfigPath: path,
				Overrides:  map[string]any{"browser.name": "none"},
			})

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.URL).To(Equal("https://file.example.com"))
			Expect(cfg.Server.AdminUsername).To(Equal("env-admin"))
			Expect(cfg.Poll.Interval).To(Equal(2 * time.Second))
			Expect(cfg.Poll.Timeout).To(Equal(30 * time.Second))
			Expect(cfg.Browser.Name).To(Equal(config.BrowserNone))
			Expect(cfg.LogLevel).To(Equal("info"))
		})

		It("should fail on a missing explicit file", func() {
			_, err := config.Load(config.LoadOptions{ConfigPath: filepath.Join(dir, "nope.yaml")})
			Expect(err).To(HaveOccurred())
		})

		It("should reject an invalid result", func() {
			_, err := config.Load(config.LoadOptions{Overrides: map[string]any{"browser.name": "netscape"}})

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("browser.name"))
		})
	})

	Context("Validate", func() {
		It("should report every problem at once", func() {
			cfg := config.NewConfigurationWithDefaults()
			cfg.Server.URL = "not a url"
			cfg.Poll.Timeout = time.Second
			cfg.Poll.BackOff = "fibonacci"
			cfg.LogFormat = "xml"
			cfg.ComputeResources.DefaultSubnet = "192.168.100.0"

			err := cfg.Validate()

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("server.url"))
			Expect(err.Error()).To(ContainSubstring("poll.timeout"))
			Expect(err.Error()).To(ContainSubstring("poll.backoff"))
			Expect(err.Error()).To(ContainSubstring("log_format"))
			Expect(err.Error()).To(ContainSubstring("compute_resources.default_subnet"))
		})
	})

	Context("DebugMap", func() {
		It("should hide secrets", func() {
			cfg := config.NewConfigurationWithDefaults()
			cfg.Fake.SessionSecret = "s3cr3t"

			m := cfg.DebugMap()

			server := m["server"].(map[string]any)
			Expect(server["admin_password"]).To(Equal("(sensitive)"))
			Expect(server["admin_username"]).To(Equal("admin"))
			Expect(m["fake"].(map[string]any)["session_secret"]).To(Equal("(sensitive)"))
			Expect(m["log_level"]).To(Equal("info"))
		})
	})
})
