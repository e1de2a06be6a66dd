package core_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sarchlab/waitstate/arch"
	"github.com/sarchlab/waitstate/timing/core"
)

var _ = Describe("Config", func() {
	It("should have valid defaults", func() {
		cfg := core.DefaultConfig()
		Expect(cfg.Target).To(Equal("gfx942"))
		Expect(cfg.ClockMHz).To(Equal(2100.0))
		Expect(cfg.Workers).To(Equal(4))
		Expect(cfg.DisabledRules).To(BeEmpty())
		Expect(cfg.Validate()).To(Succeed())
	})

	It("should round-trip through a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "waitstate.yaml")
		cfg := core.DefaultConfig()
		cfg.Target = "gfx90a"
		cfg.Workers = 2
		cfg.DisabledRules = []string{"CMPXWriteExec"}

		Expect(cfg.SaveConfig(path)).To(Succeed())

		loaded, err := core.LoadConfig(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(loaded).To(Equal(cfg))
	})

	It("should keep defaults for missing fields", func() {
		path := filepath.Join(GinkgoT().TempDir(), "partial.yaml")
		Expect(os.WriteFile(path, []byte("target: gfx908\n"), 0644)).To(Succeed())

		cfg, err := core.LoadConfig(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Target).To(Equal("gfx908"))
		Expect(cfg.ClockMHz).To(Equal(2100.0))
		Expect(cfg.Workers).To(Equal(4))
	})

	It("should reject unknown fields", func() {
		path := filepath.Join(GinkgoT().TempDir(), "typo.yaml")
		Expect(os.WriteFile(path, []byte("worker: 3\n"), 0644)).To(Succeed())

		_, err := core.LoadConfig(path)
		Expect(err).To(MatchError(ContainSubstring("failed to parse config")))
	})

	It("should report a missing file", func() {
		_, err := core.LoadConfig(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(MatchError(ContainSubstring("failed to read config file")))
	})

	DescribeTable("validation",
		func(mutate func(*core.Config), message string) {
			cfg := core.DefaultConfig()
			mutate(cfg)
			err := cfg.Validate()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring(message))
		},
		Entry("zero clock", func(c *core.Config) { c.ClockMHz = 0 }, "clock_mhz must be > 0"),
		Entry("negative workers", func(c *core.Config) { c.Workers = -1 }, "workers must be > 0"),
		Entry("unknown rule", func(c *core.Config) { c.DisabledRules = []string{"Nope"} }, `unknown hazard rule "Nope"`),
		Entry("unknown target", func(c *core.Config) { c.Target = "gfx1" }, "unknown GPU architecture target"),
	)

	It("should report unknown targets with the arch sentinel", func() {
		cfg := core.DefaultConfig()
		cfg.Target = "sm_90"
		Expect(errors.Is(cfg.Validate(), arch.ErrUnknownTarget)).To(BeTrue())
	})

	It("should clone deeply", func() {
		cfg := core.DefaultConfig()
		cfg.DisabledRules = []string{"SALUWriteM0"}

		clone := cfg.Clone()
		Expect(clone).To(Equal(cfg))

		clone.DisabledRules[0] = "VALUWriteVCC"
		clone.Workers = 9
		Expect(cfg.DisabledRules).To(Equal([]string{"SALUWriteM0"}))
		Expect(cfg.Workers).To(Equal(4))
	})
})
