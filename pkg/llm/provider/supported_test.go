package provider_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wellchat/pkg/llm/provider"
)

var _ = Describe("New", func() {
	It("creates the openai provider", func() {
		p, err := provider.New(provider.OpenAI)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Name()).To(Equal("openai"))
	})

	It("returns an error for an unknown provider", func() {
		p, err := provider.New("mystery")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unknown provider type"))
		Expect(p).To(BeNil())
	})

	It("lists supported providers", func() {
		Expect(provider.SupportedProviders()).To(ConsistOf("openai"))
	})
})
