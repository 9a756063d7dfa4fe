package oauth

import (
	"golang.org/x/oauth2"
)

// Endpoint defines the OAuth2 endpoints for the Salla merchant platform.
// Salla expects client credentials in the request parameters, not basic auth.
var Endpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.salla.sa/oauth2/auth",
	TokenURL:  "https://accounts.salla.sa/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}
