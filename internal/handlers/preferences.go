package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// preferencesCookie is the cookie the settings page writes the user's theme
// and engine choices into. The value is URL-encoded JSON.
const preferencesCookie = "preferences"

// Preferences mirrors the JSON payload stored in the preferences cookie.
type Preferences struct {
	Theme       string   `json:"theme"`
	Colorscheme string   `json:"colorscheme"`
	Engines     []string `json:"engines"`
}

// ErrMalformedPreferences marks a preferences cookie that could not be
// decoded. Serving with an unintended engine set would be incorrect, so this
// is fatal to the request rather than a silent fallback to the defaults.
var ErrMalformedPreferences = errors.New("malformed preferences cookie")

// resolveEngines returns the upstream engines to query: the cookie's
// selection when one is present, the configured defaults otherwise. A cookie
// whose decoded selection is empty falls back to the defaults too.
func resolveEngines(r *http.Request, defaults []string) ([]string, error) {
	cookie, err := r.Cookie(preferencesCookie)
	if err != nil {
		// http.ErrNoCookie is the only error Cookie returns
		return defaults, nil
	}

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPreferences, err)
	}

	var prefs Preferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPreferences, err)
	}

	if len(prefs.Engines) == 0 {
		return defaults, nil
	}
	return prefs.Engines, nil
}
