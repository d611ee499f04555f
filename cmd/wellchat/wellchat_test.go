package wellchatcmder_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	wellchatcmder "github.com/papercomputeco/wellchat/cmd/wellchat"
	"github.com/papercomputeco/wellchat/pkg/utils"
	testutils "github.com/papercomputeco/wellchat/pkg/utils/test"
)

var _ = Describe("NewWellchatCmd", func() {
	It("registers every subcommand", func() {
		cmd := wellchatcmder.NewWellchatCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("ask", "chat", "history", "config", "auth", "version"))
	})

	It("has global debug and config-dir flags", func() {
		cmd := wellchatcmder.NewWellchatCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().ShorthandLookup("d")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})

	It("prints the version", func() {
		cmd := wellchatcmder.NewWellchatCmd()
		out := &bytes.Buffer{}
		cmd.SetOut(out)
		cmd.SetArgs([]string{"version"})

		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Version: " + utils.Version))
		Expect(out.String()).To(ContainSubstring("Sha: " + utils.Sha))
	})

	It("asks a question end to end with a stored key", func() {
		GinkgoT().Setenv("WELLCHAT_API_KEY", "")
		GinkgoT().Setenv("OPENAI_API_KEY", "")

		srv := testutils.NewMockResponsesServer(testutils.MockReply{Body: testutils.SSEBody("Stay ", "hydrated.")})
		DeferCleanup(srv.Close)
		dir := GinkgoT().TempDir()

		auth := wellchatcmder.NewWellchatCmd()
		auth.SetIn(bytes.NewBufferString("sk-stored\n"))
		auth.SetOut(&bytes.Buffer{})
		auth.SetArgs([]string{"auth", "openai", "--config-dir", dir})
		Expect(auth.Execute()).To(Succeed())

		set := wellchatcmder.NewWellchatCmd()
		set.SetOut(&bytes.Buffer{})
		set.SetArgs([]string{"config", "set", "api.base_url", srv.URL, "--config-dir", dir})
		Expect(set.Execute()).To(Succeed())

		out := &bytes.Buffer{}
		ask := wellchatcmder.NewWellchatCmd()
		ask.SetOut(out)
		ask.SetErr(&bytes.Buffer{})
		ask.SetArgs([]string{"ask", "--config-dir", dir, "Any tips?"})
		Expect(ask.Execute()).To(Succeed())

		Expect(out.String()).To(Equal("Stay hydrated.\n"))
		reqs := srv.Requests()
		Expect(reqs).To(HaveLen(1))
		Expect(reqs[0].Header.Get("Authorization")).To(Equal("Bearer sk-stored"))
	})
})
