package assistant_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wellchat/pkg/assistant"
	"github.com/papercomputeco/wellchat/pkg/client"
	"github.com/papercomputeco/wellchat/pkg/config"
	"github.com/papercomputeco/wellchat/pkg/credentials"
	testutils "github.com/papercomputeco/wellchat/pkg/utils/test"
)

var _ = Describe("Setup", func() {
	var (
		tmpDir string
		srv    *testutils.MockResponsesServer
		cfg    *config.Config
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		GinkgoT().Setenv("WELLCHAT_API_KEY", "")
		GinkgoT().Setenv("OPENAI_API_KEY", "")

		srv = testutils.NewMockResponsesServer()
		DeferCleanup(srv.Close)

		cfg = config.NewDefaultConfig()
		cfg.API.BaseURL = srv.URL
	})

	authHeader := func() string {
		reqs := srv.Requests()
		Expect(reqs).NotTo(BeEmpty())
		return reqs[len(reqs)-1].Header.Get("Authorization")
	}

	It("uses the stored key when nothing else is set", func() {
		mgr, err := credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.SetKey("openai", "sk-stored")).To(Succeed())

		a, err := assistant.Setup(cfg, assistant.SetupOptions{ConfigDir: tmpDir})
		Expect(err).NotTo(HaveOccurred())

		_, err = a.Collect(context.Background(), nil, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(authHeader()).To(Equal("Bearer sk-stored"))
	})

	It("prefers the environment over the stored key", func() {
		mgr, err := credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(mgr.SetKey("openai", "sk-stored")).To(Succeed())
		GinkgoT().Setenv("OPENAI_API_KEY", "sk-env")

		a, err := assistant.Setup(cfg, assistant.SetupOptions{ConfigDir: tmpDir})
		Expect(err).NotTo(HaveOccurred())

		_, err = a.Collect(context.Background(), nil, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(authHeader()).To(Equal("Bearer sk-env"))
	})

	It("prefers an explicit key over everything", func() {
		GinkgoT().Setenv("OPENAI_API_KEY", "sk-env")

		a, err := assistant.Setup(cfg, assistant.SetupOptions{ConfigDir: tmpDir, APIKey: "sk-flag"})
		Expect(err).NotTo(HaveOccurred())

		_, err = a.Collect(context.Background(), nil, "hi")
		Expect(err).NotTo(HaveOccurred())
		Expect(authHeader()).To(Equal("Bearer sk-flag"))
	})

	It("renders the context file into the prompt", func() {
		path := filepath.Join(tmpDir, "health.md")
		Expect(os.WriteFile(path, []byte("Runs 3x a week."), 0o600)).To(Succeed())

		a, err := assistant.Setup(cfg, assistant.SetupOptions{ConfigDir: tmpDir, APIKey: "sk", ContextFile: path})
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Request(nil, "q").Input).To(ContainSubstring("Context:\nRuns 3x a week."))
	})

	It("fails on a missing context file", func() {
		_, err := assistant.Setup(cfg, assistant.SetupOptions{
			ConfigDir:   tmpDir,
			ContextFile: filepath.Join(tmpDir, "missing.md"),
		})
		Expect(err).To(MatchError(ContainSubstring("reading context file")))
	})

	It("leaves a missing key to the request", func() {
		a, err := assistant.Setup(cfg, assistant.SetupOptions{ConfigDir: tmpDir})
		Expect(err).NotTo(HaveOccurred())

		_, err = a.Collect(context.Background(), nil, "hi")
		Expect(err).To(MatchError(client.ErrMissingCredential))
	})
})

var _ = Describe("Explain", func() {
	It("names the places a key can come from", func() {
		err := assistant.Explain(client.ErrMissingCredential, "openai")
		Expect(err).To(MatchError(client.ErrMissingCredential))
		Expect(err.Error()).To(ContainSubstring("WELLCHAT_API_KEY or OPENAI_API_KEY"))
		Expect(err.Error()).To(ContainSubstring("wellchat auth openai"))
	})

	It("points at the key on a 401", func() {
		reqErr := &client.RequestError{StatusCode: http.StatusUnauthorized, Body: "nope"}
		err := assistant.Explain(reqErr, "openai")
		Expect(errors.Is(err, reqErr)).To(BeTrue())
		Expect(err.Error()).To(HaveSuffix("(check your API key)"))
	})

	It("returns other errors unchanged", func() {
		boom := errors.New("boom")
		Expect(assistant.Explain(boom, "openai")).To(BeIdenticalTo(boom))
	})
})
