package version

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseConstraint", func() {
	DescribeTable("constraint satisfaction",
		func(constraint, candidate string, want bool) {
			c, err := ParseConstraint(constraint)
			Expect(err).ToNot(HaveOccurred())
			v, err := Parse(candidate)
			Expect(err).ToNot(HaveOccurred())
			Expect(c.Satisfies(v)).To(Equal(want), "constraint=%s candidate=%s", constraint, candidate)
		},
		Entry("exact match", "1.2.3", "1.2.3", true),
		Entry("exact mismatch", "1.2.3", "1.2.4", false),
		Entry("partial matches any patch", "1.2", "1.2.9", true),
		Entry("partial rejects other minor", "1.2", "1.3.0", false),
		Entry("major matches any minor.patch", "1", "1.9.9", true),
		Entry("major rejects other major", "1", "2.0.0", false),
		Entry("latest excludes prerelease", "latest", "1.0.0-rc.1", false),
		Entry("latest admits release", "latest", "1.0.0", true),
		Entry("latest-prerelease admits prerelease", "latest-prerelease", "1.0.0-rc.1", true),
		Entry("wildcard any", "*", "9.9.9", true),
		Entry("wildcard major", "2.*", "2.5.0", true),
		Entry("wildcard major mismatch", "2.*", "3.0.0", false),
		Entry("caret pins major", "^1.2.3", "1.9.0", true),
		Entry("caret rejects major bump", "^1.2.3", "2.0.0", false),
		Entry("caret zero-major pins minor", "^0.2.3", "0.2.9", true),
		Entry("caret zero-major rejects minor bump", "^0.2.3", "0.3.0", false),
		Entry("tilde pins minor", "~1.2.3", "1.2.9", true),
		Entry("tilde rejects minor bump", "~1.2.3", "1.3.0", false),
		Entry("range intersection", ">=1.2.0, <2.0.0", "1.9.0", true),
		Entry("range lower bound", ">=1.2.0, <2.0.0", "1.1.0", false),
		Entry("range upper bound", ">=1.2.0, <2.0.0", "2.0.0", false),
		Entry("any matches everything", "any", "0.0.1", true),
	)

	It("round-trips through String", func() {
		for _, raw := range []string{"1.2.3", "1.2", "1", "latest", "*", "^1.2.3", "~1.2.3", ">=1.0.0, <2.0.0"} {
			c, err := ParseConstraint(raw)
			Expect(err).ToNot(HaveOccurred())
			c2, err := ParseConstraint(c.String())
			Expect(err).ToNot(HaveOccurred())
			Expect(c2.Kind).To(Equal(c.Kind))
		}
	})
})

var _ = Describe("Strategy", func() {
	It("selects the highest satisfying version", func() {
		c, _ := ParseConstraint("^1.0.0")
		candidates := []Version{MustParse("1.0.0"), MustParse("1.4.2"), MustParse("2.0.0"), MustParse("1.9.9")}
		best, ok := DefaultStrategy().SelectBest(c, candidates)
		Expect(ok).To(BeTrue())
		Expect(best.String()).To(Equal("1.9.9"))
	})

	It("returns false when nothing satisfies", func() {
		c, _ := ParseConstraint("^3.0.0")
		_, ok := DefaultStrategy().SelectBest(c, []Version{MustParse("1.0.0")})
		Expect(ok).To(BeFalse())
	})

	It("normalizes PEP 440 prerelease markers", func() {
		s := PythonStrategy()
		Expect(s.Normalize("3.12.0rc1")).To(Equal("3.12.0-rc.1"))
		Expect(s.Normalize("3.12.0")).To(Equal("3.12.0"))
	})

	It("strips the go toolchain prefix", func() {
		s := GoStrategy()
		Expect(s.Normalize("go1.22.4")).To(Equal("1.22.4"))
	})
})
