package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pyro-notes/pyro/internal/config"
	"github.com/pyro-notes/pyro/internal/testutil"
)

// cliRun is the outcome of one CLI invocation.
type cliRun struct {
	Stdout string
	Stderr string
	Err    error
}

// testOptions returns options with a cheap scrypt cost and silent logs.
func testOptions() *RootOptions {
	return &RootOptions{
		Engine: testutil.FastEngine(),
		Logger: testutil.DiscardLogger(),
		OpIDs:  testutil.NewFixedOpIDGenerator(""),
	}
}

// isolateEnv keeps the developer's config and password out of a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvConfig, "")
	t.Setenv(config.EnvPassword, "")
}

// runCLI executes the root command once with fresh options.
func runCLI(t *testing.T, opts *RootOptions, stdin string, args ...string) cliRun {
	t.Helper()
	if opts == nil {
		opts = testOptions()
	}
	cmd := newRootCommand(opts)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return cliRun{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

// fixedPrompt answers password prompts in order.
func fixedPrompt(answers ...string) PasswordPrompt {
	return func(string) (string, error) {
		if len(answers) == 0 {
			return "", errNoPassword
		}
		a := answers[0]
		answers = answers[1:]
		return a, nil
	}
}
