package webhelper

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers connection failures and unexpected status codes.
	ErrTransport = errors.New("webhelper: transport failure")
	// ErrMalformedResponse is returned when a body is not valid JSON.
	ErrMalformedResponse = errors.New("webhelper: malformed response")
	// ErrMissingCredential is returned when a token response parses but lacks its token.
	ErrMissingCredential = errors.New("webhelper: missing credential")
	// ErrEndpointNotFound means no port in the scanned range was occupied.
	ErrEndpointNotFound = errors.New("webhelper: no local endpoint found")
	// ErrReactorStarted is returned when Start is called on a reactor that is not idle.
	ErrReactorStarted = errors.New("webhelper: reactor already started")

	// ErrInvalidBearerToken means the token endpoint answered without a usable "t".
	ErrInvalidBearerToken = fmt.Errorf("%w: bearer token", ErrMissingCredential)
	// ErrInvalidAntiForgeryToken means the webhelper answered without a usable "token".
	ErrInvalidAntiForgeryToken = fmt.Errorf("%w: anti-forgery token", ErrMissingCredential)
)
