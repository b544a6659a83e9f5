// Shared helpers for groomcrm CLI commands.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/groomcrm/groomcrm/internal/calendar"
	"github.com/groomcrm/groomcrm/internal/folder"
	"github.com/groomcrm/groomcrm/internal/sqlite"
	"github.com/groomcrm/groomcrm/pkg/types"
)

// envOAuthToken carries an already-granted access token into the process.
// The CLI has no interactive OAuth flow; operators obtain a token out of
// band and hand it over per invocation.
const envOAuthToken = "GROOMCRM_OAUTH_TOKEN"

// attachBackend creates a SQLite backend on the resolved data directory and
// attaches it. The caller must defer backend.Detach().
func attachBackend() (*sqlite.Backend, error) {
	cfg := types.Config{
		Backend: types.BackendSQLite,
		DataDir: resolveDataDir(),
	}

	backend := sqlite.NewBackend()
	if err := backend.Attach(cfg); err != nil {
		return nil, fmt.Errorf("attach backend: %w", err)
	}

	return backend, nil
}

// newFolderStore builds the photo folder store over the attached backend's
// kv table, using the OS directory capability.
func newFolderStore(backend *sqlite.Backend) *folder.Store {
	return folder.NewStore(folder.NewOSOpener(), backend, logger)
}

// newCalendarClient builds the calendar client, seeding the token cache
// from the environment when a token is present.
func newCalendarClient(backend *sqlite.Backend) (*calendar.Client, error) {
	tokens := calendar.NewTokenCache(backend)
	if token := os.Getenv(envOAuthToken); token != "" {
		if err := tokens.SetToken(token, calendar.RequiredScope); err != nil {
			return nil, err
		}
	}
	client := calendar.NewClient(tokens, logger)
	if configGoogleBaseURL != "" {
		client.SetBaseURL(configGoogleBaseURL)
	}
	return client, nil
}

// selectedCalendarID returns the calendar to operate on: the flag value if
// given, otherwise the persisted selection.
func selectedCalendarID(backend *sqlite.Backend, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	var id string
	found, err := backend.GetKV(types.KVSelectedCalendarID, &id)
	if err != nil {
		return "", err
	}
	if !found || id == "" {
		return "", fmt.Errorf("no calendar selected (use --calendar)")
	}
	return id, nil
}

// confirm asks for an interactive "yes" unless --yes was given. Anything
// other than an exact "yes" aborts.
func confirm(prompt string) bool {
	if flagYes {
		return true
	}
	fmt.Printf("%s Type 'yes' to continue: ", prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(line) == "yes"
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(output))
	return nil
}
