package googlecalendarutil

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func writeCredentials(t *testing.T, tokenURL string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "credentials.json")
	creds := fmt.Sprintf(`{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.example.com/auth","token_uri":%q,"redirect_uris":["urn:ietf:wg:oauth:2.0:oob"]}}`, tokenURL)
	require.NoError(t, os.WriteFile(p, []byte(creds), 0o600))
	return p
}

func TestConfig(t *testing.T) {
	config, err := Config(writeCredentials(t, "https://oauth2.example.com/token"))
	require.NoError(t, err)
	assert.Equal(t, "id", config.ClientID)
	assert.Equal(t, []string{"https://www.googleapis.com/auth/calendar"}, config.Scopes)

	_, err = Config(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSaveAndLoadToken(t *testing.T) {
	p := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, SaveToken(p, &oauth2.Token{AccessToken: "abc", RefreshToken: "def", TokenType: "Bearer"}))

	info, err := os.Stat(p)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	token, err := TokenFromFile(p)
	require.NoError(t, err)
	assert.Equal(t, "abc", token.AccessToken)
	assert.Equal(t, "def", token.RefreshToken)
}

func TestGetClientAuthorizesWithoutCachedToken(t *testing.T) {
	var gotCode string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotCode = r.PostForm.Get("code")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fresh","token_type":"Bearer","refresh_token":"r","expires_in":3600}`))
	}))
	defer srv.Close()

	config, err := Config(writeCredentials(t, srv.URL+"/token"))
	require.NoError(t, err)

	tokenPath := filepath.Join(t.TempDir(), "token.json")
	out := &bytes.Buffer{}
	client, err := GetClient(context.Background(), config, tokenPath, strings.NewReader("the-code\n"), out)
	require.NoError(t, err)
	assert.NotNil(t, client)
	assert.Equal(t, "the-code", gotCode)
	assert.Contains(t, out.String(), "https://accounts.example.com/auth?")
	assert.Contains(t, out.String(), "Saved credential file to: "+tokenPath)

	token, err := TokenFromFile(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "fresh", token.AccessToken)
}

func TestAuthorizeWithoutCode(t *testing.T) {
	config, err := Config(writeCredentials(t, "https://oauth2.example.com/token"))
	require.NoError(t, err)

	_, err = Authorize(context.Background(), config, filepath.Join(t.TempDir(), "token.json"), strings.NewReader("\n"), &bytes.Buffer{})
	assert.EqualError(t, err, "no authorization code given")
}
