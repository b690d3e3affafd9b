package googlecalendarutil

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// Config reads an OAuth client secret file downloaded from the Google Cloud
// console. The scope allows creating calendars as well as events.
func Config(credentialsPath string) (*oauth2.Config, error) {
	bytes, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("could not read contents of %s: %w", credentialsPath, err)
	}
	config, err := google.ConfigFromJSON(bytes, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("could not create config from %s: %w", credentialsPath, err)
	}
	return config, nil
}

// GetClient returns an HTTP client authorized with the token cached at
// tokenPath. Without a cached token the user is asked to authorize in the
// browser, reading the code from in and prompting on out.
func GetClient(ctx context.Context, config *oauth2.Config, tokenPath string, in io.Reader, out io.Writer) (*http.Client, error) {
	token, err := TokenFromFile(tokenPath)
	if err != nil {
		if token, err = Authorize(ctx, config, tokenPath, in, out); err != nil {
			return nil, err
		}
	}
	return config.Client(ctx, token), nil
}

// Authorize runs the installed-app flow and saves the resulting token.
func Authorize(ctx context.Context, config *oauth2.Config, tokenPath string, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	token, err := getTokenFromWeb(ctx, config, in, out)
	if err != nil {
		return nil, err
	}
	if err := SaveToken(tokenPath, token); err != nil {
		return nil, fmt.Errorf("could not cache oauth token: %w", err)
	}
	fmt.Fprintf(out, "Saved credential file to: %s\n", tokenPath)
	return token, nil
}

func getTokenFromWeb(ctx context.Context, config *oauth2.Config, in io.Reader, out io.Writer) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)

	fmt.Fprintf(out, "Go to the following link in your browser and type the authorization code:\n%v\n", authURL)

	authCode, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && authCode != "") {
		return nil, fmt.Errorf("could not read authorization code: %w", err)
	}
	authCode = strings.TrimSpace(authCode)
	if authCode == "" {
		return nil, errors.New("no authorization code given")
	}

	token, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve token from web: %w", err)
	}
	return token, nil
}

// TokenFromFile reads a token saved by SaveToken.
func TokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)
	return token, err
}

// SaveToken writes token to path, readable by the owner only.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}
