package internal_test

import (
	"time"

	"github.com/frahmantamala/workforce-presence/internal"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	Describe("AttendanceConfig.Location", func() {
		It("resolves Asia/Jakarta from the embedded zone database", func() {
			cfg := internal.AttendanceConfig{Timezone: "Asia/Jakarta"}
			loc, err := cfg.Location()
			Expect(err).NotTo(HaveOccurred())

			_, offset := time.Date(2025, 1, 15, 12, 0, 0, 0, loc).Zone()
			Expect(offset).To(Equal(7 * 60 * 60))
		})

		It("defaults to UTC", func() {
			cfg := internal.AttendanceConfig{}
			Expect(cfg.Location()).To(Equal(time.UTC))
		})

		It("rejects an unknown zone", func() {
			cfg := internal.AttendanceConfig{Timezone: "Mars/Olympus"}
			Expect(cfg.Validate()).To(MatchError(ContainSubstring("invalid timezone")))
		})
	})

	Describe("ServerConfig.Origins", func() {
		It("splits and trims the list", func() {
			cfg := internal.ServerConfig{AllowedOrigins: " https://a.example.com, ,https://b.example.com "}
			Expect(cfg.Origins()).To(Equal([]string{"https://a.example.com", "https://b.example.com"}))
		})

		It("returns nil when unset", func() {
			cfg := internal.ServerConfig{}
			Expect(cfg.Origins()).To(BeNil())
		})
	})
})
