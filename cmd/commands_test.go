package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/adsmcp/internal/ads"
	"github.com/teemow/adsmcp/internal/server"
)

func toJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "customers", "query", "token", "version", "generate-docs"} {
		assert.True(t, names[want], "missing command %s", want)
	}
	for _, flag := range []string{"config", "env-file", "debug", "log-format"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "missing flag --%s", flag)
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, newVersionCmd())
	require.NoError(t, err)
	assert.Equal(t, "adsmcp version "+version+"\n", out)
}

func TestTokenCmd(t *testing.T) {
	const secret = "test-secret-with-enough-length"

	t.Run("issues a token valid for the secret", func(t *testing.T) {
		out, err := execute(t, newTokenCmd(), "--auth-secret", secret, "--subject", "ci", "--ttl", "1h")
		require.NoError(t, err)

		auth, err := server.NewBearerAuth(secret)
		require.NoError(t, err)
		claims, err := auth.Validate(strings.TrimSpace(out))
		require.NoError(t, err)
		assert.Equal(t, "ci", claims.Subject)
	})

	t.Run("secret from env", func(t *testing.T) {
		t.Setenv(authSecretEnv, secret)
		out, err := execute(t, newTokenCmd())
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(out))
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv(authSecretEnv, "")
		_, err := execute(t, newTokenCmd())
		assert.ErrorIs(t, err, server.ErrEmptyAuthSecret)
	})

	t.Run("non positive ttl", func(t *testing.T) {
		_, err := execute(t, newTokenCmd(), "--auth-secret", secret, "--ttl", "0s")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--ttl")
	})
}

func TestQueryCmd_RequiresFlags(t *testing.T) {
	_, err := execute(t, newQueryCmd())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestCustomersCmd_MissingDeveloperToken(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("GOOGLE_ADS_DEVELOPER_TOKEN", "")

	_, err := execute(t, newCustomersCmd())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "developer token")
}

func TestCustomersCmd_InvalidOutput(t *testing.T) {
	_, err := execute(t, newCustomersCmd(), "--output", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format: yaml")
}

func TestPrintCustomers(t *testing.T) {
	var out bytes.Buffer
	err := printCustomers(&out, &ads.CustomersResult{
		AccessibleCustomers: []ads.Customer{
			{ResourceName: "customers/1234567890", CustomerID: "1234567890"},
			{ResourceName: "customers/987654321", CustomerID: "987654321"},
		},
		TotalCount: 2,
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "CUSTOMER ID"))
	assert.Equal(t, []string{"123-456-7890", "customers/1234567890"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"987654321", "customers/987654321"}, strings.Fields(lines[2]), "IDs that are not ten digits are printed as is")
	assert.Equal(t, "2 customer(s)", lines[3])
}
