package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	client "github.com/lubluniky/smsglobal-client-go"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func setupEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"HOST", "PROTOCOL", "PORT", "API_VERSION", "API_KEY", "SECRET_KEY", "HASH_ALGORITHM", "DEBUG"} {
		name := "SMSGLOBAL_" + key
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	t.Setenv("SMSGLOBAL_API_KEY", "cli-key")
	t.Setenv("SMSGLOBAL_SECRET_KEY", "cli-secret")
}

func withTransport(t *testing.T, rt http.RoundTripper) {
	t.Helper()
	prev := extraClientOptions
	extraClientOptions = []client.Option{client.WithHTTPClient(&http.Client{Transport: rt})}
	t.Cleanup(func() { extraClientOptions = prev })
}

func jsonResponse(r *http.Request, status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Request:    r,
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "absent.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestGetCommand(t *testing.T) {
	setupEnv(t)

	var got *http.Request
	withTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		got = r
		return jsonResponse(r, http.StatusOK, `{"messages":[],"total":0}`), nil
	}))

	out, err := execute(t, "get", "sms", "--query", "limit=5")
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "https://api.smsglobal.com/v2/sms?limit=5", got.URL.String())
	assert.True(t, strings.HasPrefix(got.Header.Get("Authorization"), `MAC id="cli-key"`))

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Contains(t, payload, "messages")
}

func TestFormCommands(t *testing.T) {
	for _, verb := range []string{"post", "put", "patch"} {
		t.Run(verb, func(t *testing.T) {
			setupEnv(t)

			var method, body string
			withTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
				method = r.Method
				b, _ := io.ReadAll(r.Body)
				body = string(b)
				return jsonResponse(r, http.StatusOK, `{"ok":true}`), nil
			}))

			_, err := execute(t, verb, "sms", "--form", "message=hello")
			require.NoError(t, err)
			assert.Equal(t, strings.ToUpper(verb), method)
			assert.Equal(t, "message=hello", body)
		})
	}
}

func TestStrictFlag(t *testing.T) {
	setupEnv(t)
	withTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return jsonResponse(r, http.StatusNotFound, `{"error":"not found"}`), nil
	}))

	out, err := execute(t, "delete", "sms/42")
	require.NoError(t, err)
	assert.Contains(t, out, "not found")

	_, err = execute(t, "--strict", "delete", "sms/42")
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestNoResponsePrintsDump(t *testing.T) {
	setupEnv(t)
	withTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, io.ErrUnexpectedEOF
	}))

	out, err := execute(t, "balance")
	require.Error(t, err)
	assert.Contains(t, out, "GET https://api.smsglobal.com/v2/user/credit-balance")

	var terr *client.TransportError
	assert.ErrorAs(t, err, &terr)
}

func TestSendCommand(t *testing.T) {
	setupEnv(t)

	var body string
	withTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		return jsonResponse(r, http.StatusOK, `{"messages":[{"id":6746514019161950}]}`), nil
	}))

	out, err := execute(t, "send", "--to", "61400000000", "--message", "hi", "--origin", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "destination=61400000000&message=hi&origin=Acme", body)
	assert.Contains(t, out, "6746514019161950")

	_, err = execute(t, "send", "--message", "hi")
	assert.Error(t, err)
}

func TestEnvFileIsLoaded(t *testing.T) {
	setupEnv(t)
	require.NoError(t, os.Unsetenv("SMSGLOBAL_API_KEY"))

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("SMSGLOBAL_API_KEY=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("SMSGLOBAL_API_KEY") })

	var auth string
	withTransport(t, roundTripFunc(func(r *http.Request) (*http.Response, error) {
		auth = r.Header.Get("Authorization")
		return jsonResponse(r, http.StatusOK, `{}`), nil
	}))

	cmd := NewRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--env-file", envFile, "balance"})
	require.NoError(t, cmd.Execute())
	assert.True(t, strings.HasPrefix(auth, `MAC id="from-dotenv"`))
}
