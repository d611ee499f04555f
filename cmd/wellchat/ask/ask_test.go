package askcmder_test

import (
	"bytes"
	"net/http"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	askcmder "github.com/papercomputeco/wellchat/cmd/wellchat/ask"
	"github.com/papercomputeco/wellchat/pkg/client"
	"github.com/papercomputeco/wellchat/pkg/config"
	testutils "github.com/papercomputeco/wellchat/pkg/utils/test"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{Use: "wellchat", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	root.PersistentFlags().String("config-dir", "", "Override path to .wellchat/ config directory")
	root.AddCommand(askcmder.NewAskCmd())
	return root
}

var _ = Describe("NewAskCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := askcmder.NewAskCmd()
		Expect(cmd.Use).To(Equal("ask <question...>"))
	})

	It("requires a question", func() {
		cmd := askcmder.NewAskCmd()
		Expect(cmd.Args(cmd, []string{})).To(HaveOccurred())
		Expect(cmd.Args(cmd, []string{"why", "sleep?"})).To(Succeed())
	})

	It("registers every request flag plus its own", func() {
		cmd := askcmder.NewAskCmd()
		for _, key := range config.RequestFlagKeys() {
			Expect(cmd.Flags().Lookup(config.RequestFlags[key].Name)).NotTo(BeNil(), key)
		}
		for _, name := range []string{"api-key", "context-file", "render"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
	})
})

var _ = Describe("Ask command execution", func() {
	var (
		tmpDir string
		srv    *testutils.MockResponsesServer
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	)

	start := func(replies ...testutils.MockReply) {
		srv = testutils.NewMockResponsesServer(replies...)
		DeferCleanup(srv.Close)
	}

	run := func(args ...string) error {
		root := newRootCmd()
		root.SetOut(stdout)
		root.SetErr(stderr)
		root.SetArgs(append([]string{"ask", "--config-dir", tmpDir, "--base-url", srv.URL}, args...))
		return root.Execute()
	}

	lastBody := func() map[string]any {
		reqs := srv.Requests()
		Expect(reqs).NotTo(BeEmpty())
		return reqs[len(reqs)-1].Body
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		GinkgoT().Setenv("WELLCHAT_API_KEY", "")
		GinkgoT().Setenv("OPENAI_API_KEY", "")
	})

	It("streams the answer to stdout", func() {
		start(testutils.MockReply{Body: testutils.SSEBody("Drink ", "water", ".")})

		Expect(run("--api-key", "sk-test", "How", "much", "water?")).To(Succeed())
		Expect(stdout.String()).To(Equal("Drink water.\n"))
		Expect(lastBody()["input"]).To(HaveSuffix("User: How much water?\nAssistant:"))
		Expect(lastBody()).To(HaveKeyWithValue("stream", true))
	})

	It("keeps the answer's own trailing newline", func() {
		start(testutils.MockReply{Body: testutils.SSEBody("Done.\n")})

		Expect(run("--api-key", "sk-test", "hi")).To(Succeed())
		Expect(stdout.String()).To(Equal("Done.\n"))
	})

	It("leaves sampling parameters out unless set", func() {
		start()

		Expect(run("--api-key", "sk-test", "hi")).To(Succeed())
		Expect(lastBody()).NotTo(HaveKey("temperature"))
		Expect(lastBody()).NotTo(HaveKey("top_p"))
		Expect(lastBody()).NotTo(HaveKey("max_output_tokens"))
	})

	It("sends sampling flags", func() {
		start()

		Expect(run("--api-key", "sk-test", "-t", "0.3", "--top-p", "0.8", "--max-output-tokens", "64", "-m", "gpt-4.1", "hi")).To(Succeed())
		body := lastBody()
		Expect(body).To(HaveKeyWithValue("temperature", 0.3))
		Expect(body).To(HaveKeyWithValue("top_p", 0.8))
		Expect(body).To(HaveKeyWithValue("max_output_tokens", BeNumerically("==", 64)))
		Expect(body).To(HaveKeyWithValue("model", "gpt-4.1"))
	})

	It("takes the model from config.toml when no flag is given", func() {
		start()
		data := "[api]\nmodel = \"gpt-4o-mini\"\n"
		Expect(os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(data), 0o600)).To(Succeed())

		Expect(run("--api-key", "sk-test", "hi")).To(Succeed())
		Expect(lastBody()).To(HaveKeyWithValue("model", "gpt-4o-mini"))
	})

	It("rejects an out of range temperature before sending", func() {
		start()

		err := run("--api-key", "sk-test", "-t", "7", "hi")
		Expect(err).To(MatchError(ContainSubstring("invalid value for sampling.temperature")))
		Expect(srv.Requests()).To(BeEmpty())
	})

	It("adds the context file to the prompt", func() {
		start()
		path := filepath.Join(tmpDir, "health.md")
		Expect(os.WriteFile(path, []byte("Resting heart rate 58."), 0o600)).To(Succeed())

		Expect(run("--api-key", "sk-test", "--context-file", path, "hi")).To(Succeed())
		Expect(lastBody()["input"]).To(ContainSubstring("Context:\nResting heart rate 58."))
	})

	It("explains a missing key without sending", func() {
		start()

		err := run("hi")
		Expect(err).To(MatchError(client.ErrMissingCredential))
		Expect(err.Error()).To(ContainSubstring("wellchat auth openai"))
		Expect(srv.Requests()).To(BeEmpty())
		Expect(stdout.String()).To(BeEmpty())
	})

	It("reports the endpoint's rejection", func() {
		start(testutils.MockReply{Status: http.StatusUnauthorized, Body: `{"error":{"message":"Incorrect API key"}}`})

		err := run("--api-key", "sk-wrong", "hi")
		Expect(err).To(MatchError(ContainSubstring("Incorrect API key")))
		Expect(err.Error()).To(ContainSubstring("check your API key"))
		Expect(stdout.String()).To(BeEmpty())
	})

	It("streams raw text with --render when stdout is not a terminal", func() {
		start(testutils.MockReply{Body: testutils.SSEBody("**bold**")})

		Expect(run("--api-key", "sk-test", "--render", "hi")).To(Succeed())
		Expect(stdout.String()).To(Equal("**bold**\n"))
	})

	It("writes debug logs to stderr only", func() {
		start()

		Expect(run("--api-key", "sk-test", "--debug", "hi")).To(Succeed())
		Expect(stdout.String()).To(Equal("ok\n"))
		Expect(stderr.String()).To(ContainSubstring("answer complete"))
	})
})
