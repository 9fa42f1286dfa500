package version

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestVersion(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "version suite")
}

var _ = Describe("Parse", func() {
	DescribeTable("tolerant parsing",
		func(raw string, major, minor, patch uint64, prerelease string) {
			v, err := Parse(raw)
			Expect(err).ToNot(HaveOccurred())
			Expect(v.Major).To(Equal(major))
			Expect(v.Minor).To(Equal(minor))
			Expect(v.Patch).To(Equal(patch))
			Expect(v.Prerelease).To(Equal(prerelease))
		},
		Entry("exact", "1.2.3", uint64(1), uint64(2), uint64(3), ""),
		Entry("leading v", "v1.2.3", uint64(1), uint64(2), uint64(3), ""),
		Entry("sparse major", "3", uint64(3), uint64(0), uint64(0), ""),
		Entry("sparse major.minor", "3.11", uint64(3), uint64(11), uint64(0), ""),
		Entry("leading go", "go1.22.4", uint64(1), uint64(22), uint64(4), ""),
		Entry("prerelease", "1.2.3-rc.1", uint64(1), uint64(2), uint64(3), "rc.1"),
	)

	It("rejects garbage", func() {
		_, err := Parse("not-a-version-at-all-!!!")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Version ordering", func() {
	It("orders prerelease below release at equal core", func() {
		pre := MustParse("1.0.0-rc.1")
		rel := MustParse("1.0.0")
		Expect(pre.LessThan(rel)).To(BeTrue())
	})

	It("orders numerically, not lexically", func() {
		Expect(MustParse("1.9.0").LessThan(MustParse("1.10.0"))).To(BeTrue())
	})
})
