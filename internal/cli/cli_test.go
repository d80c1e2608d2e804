package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eco2-team/backend/domains/data-shield/internal/config"
	"github.com/eco2-team/backend/domains/data-shield/internal/constants"
	"github.com/eco2-team/backend/domains/data-shield/internal/logging"
)

// runCommand executes the root command with args and stdin, returning stdout,
// stderr and the command error.
func runCommand(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&errOut)

	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestDescribe(t *testing.T) {
	out, _, err := runCommand(t, "", "describe")
	require.NoError(t, err)

	assert.Equal(t, `Masking configuration summary:
Minimum length to mask: 4
Keep start: yes (2 characters)
Keep end: yes (2 characters)
Mask token: '*'
`, out)
}

func TestDescribe_EnvOverride(t *testing.T) {
	t.Setenv("DATASHIELD_MASKING_KEEP_END", "false")
	t.Setenv("DATASHIELD_MASKING_MASK_TOKEN", "#")

	out, _, err := runCommand(t, "", "describe")
	require.NoError(t, err)

	assert.Contains(t, out, "Keep end: no (2 characters)")
	assert.Contains(t, out, "Mask token: '#'")
}

func TestMask_Values(t *testing.T) {
	out, _, err := runCommand(t, "", "mask", "--value", "abc", "--value", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, "abc\nab**ef\n", out)
}

func TestMask_Records(t *testing.T) {
	stdin := `{"Token":"abcdef","name":"x"}` + "\n\n" + `{"Secret":"topsecret"}` + "\n"

	out, errOut, err := runCommand(t, stdin, "mask")
	require.NoError(t, err)
	assert.Empty(t, errOut)
	assert.Equal(t, `{"Token":"ab**ef","name":"x"}`+"\n"+`{"Secret":"to*****et"}`+"\n", out)
}

func TestMask_RecordsWithFailures(t *testing.T) {
	stdin := strings.Join([]string{
		`{"Token":"abcdef"}`,
		`not json`,
		`{"Secret":[1]}`,
		`{"name":"kept"}`,
	}, "\n")

	out, errOut, err := runCommand(t, stdin, "mask")
	assert.EqualError(t, err, "2 of 4 records could not be masked")
	assert.Equal(t, `{"Token":"ab**ef"}`+"\n"+`{"name":"kept"}`+"\n", out)
	assert.Contains(t, errOut, "line 2: malformed input")
	assert.Contains(t, errOut, "line 3: type mismatch")
}

func TestMask_FieldsFlag(t *testing.T) {
	stdin := `{"Password":"hunter22","Token":"abcdef"}`

	out, _, err := runCommand(t, stdin, "mask", "--fields", "Password")
	require.NoError(t, err)
	assert.Equal(t, `{"Password":"hu****22","Token":"abcdef"}`+"\n", out)
}

func TestMask_EmptyFieldsDisablesMasking(t *testing.T) {
	t.Setenv("DATASHIELD_MASKING_SENSITIVE_FIELDS", "")

	out, _, err := runCommand(t, `{"Token":"abcdef"}`, "mask")
	require.NoError(t, err)
	assert.Equal(t, `{"Token":"abcdef"}`+"\n", out)
}

func TestServe_InvalidAuditMode(t *testing.T) {
	_, _, err := runCommand(t, "", "serve", "--audit-mode", "drop")
	assert.Error(t, err)
}

func TestServeConfigs(t *testing.T) {
	cfg := &config.Config{
		LogLevel:    "warn",
		Environment: "staging",
		Tracing: config.TracingSettings{
			Enabled:      true,
			Endpoint:     "collector:4317",
			SamplingRate: 0.1,
		},
	}

	lc := loggingConfig(cfg)
	assert.Equal(t, logging.LevelWarn, lc.Level)
	assert.Equal(t, "staging", lc.Environment)

	tc := tracingConfig(cfg)
	assert.Equal(t, "data-shield", tc.ServiceName)
	assert.Equal(t, "staging", tc.Environment)
	assert.Equal(t, "collector:4317", tc.Endpoint)
	assert.Equal(t, 0.1, tc.SamplingRate)
	assert.True(t, tc.Enabled)
}

type fakeFieldSource struct {
	raw   string
	found bool
	err   error
}

func (f fakeFieldSource) SensitiveFields(context.Context, string) (string, bool, error) {
	return f.raw, f.found, f.err
}

func TestFieldsFromStore(t *testing.T) {
	base := config.NewMasking(config.DefaultMaskingSettings())
	logger := logging.NewTestLogger()
	ctx := context.Background()

	got, err := fieldsFromStore(ctx, fakeFieldSource{raw: "Password,Pin", found: true}, "k", base, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"Password", "Pin"}, got.SensitiveFields())
	assert.Equal(t, []string{"Authorization", "Secret", "Token"}, base.SensitiveFields())

	got, err = fieldsFromStore(ctx, fakeFieldSource{}, "k", base, logger)
	require.NoError(t, err)
	assert.Same(t, base, got)

	got, err = fieldsFromStore(ctx, fakeFieldSource{raw: "", found: true}, "k", base, logger)
	require.NoError(t, err)
	assert.Empty(t, got.SensitiveFields())

	_, err = fieldsFromStore(ctx, fakeFieldSource{err: errors.New("down")}, "k", base, logger)
	assert.EqualError(t, err, "down")
}

func TestMetricsMux(t *testing.T) {
	mux := newMetricsMux()

	for _, path := range []string{constants.PathHealth, constants.PathReady} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, constants.HealthOK, rec.Body.String(), path)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, constants.PathMetrics, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
