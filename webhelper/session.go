package webhelper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/marcus-crane/spotilocal/shared"
	"github.com/marcus-crane/spotilocal/utils"
)

// Session holds the credentials from a completed handshake. It is never
// mutated after construction and can be read from any goroutine.
type Session struct {
	baseURL string
	port    int
	oauth   string
	csrf    string
}

func (s Session) Port() int          { return s.port }
func (s Session) BaseURL() string    { return s.baseURL }
func (s Session) OAuthToken() string { return s.oauth }
func (s Session) CSRFToken() string  { return s.csrf }

// Signer returns a Signer carrying this session's tokens.
func (s Session) Signer() Signer {
	return Signer{OAuth: s.oauth, CSRF: s.csrf}
}

// pendingSession is a session whose anti-forgery token has not been issued yet.
type pendingSession struct {
	baseURL string
	port    int
	oauth   string
}

func (p pendingSession) complete(csrf string) (Session, error) {
	if p.oauth == "" {
		return Session{}, ErrInvalidBearerToken
	}
	if csrf == "" {
		return Session{}, ErrInvalidAntiForgeryToken
	}
	return Session{baseURL: p.baseURL, port: p.port, oauth: p.oauth, csrf: csrf}, nil
}

// Handshake acquires the bearer token from Spotify and the anti-forgery token
// from the local webhelper.
type Handshake struct {
	HTTPClient *http.Client
	Resolver   *Resolver
	TokenURL   string
	LocalURL   string
	Now        func() time.Time
	Logger     *slog.Logger
}

func NewHandshake(httpClient *http.Client) *Handshake {
	if httpClient == nil {
		httpClient = utils.NewHTTPClient()
	}
	return &Handshake{
		HTTPClient: httpClient,
		Resolver:   NewResolver(),
		TokenURL:   shared.TOKEN_URL,
		LocalURL:   shared.LOCAL_URL,
	}
}

// Establish resolves the local port, then fetches the bearer and anti-forgery
// tokens in that order. No Session is returned unless every step succeeds.
func (h *Handshake) Establish(ctx context.Context) (Session, error) {
	logger := h.Logger
	if logger == nil {
		logger = slog.Default()
	}

	resolver := h.Resolver
	if resolver == nil {
		resolver = NewResolver()
	}
	port, err := resolver.Resolve()
	if err != nil {
		return Session{}, err
	}
	logger.Debug("Resolved webhelper port", slog.Int("port", port))

	pending := pendingSession{
		baseURL: fmt.Sprintf("%s:%d", h.localURL(), port),
		port:    port,
	}

	pending.oauth, err = h.bearerToken(ctx)
	if err != nil {
		return Session{}, err
	}
	logger.Debug("Acquired bearer token")

	csrf, err := h.antiForgeryToken(ctx, pending.baseURL)
	if err != nil {
		return Session{}, err
	}

	session, err := pending.complete(csrf)
	if err != nil {
		return Session{}, err
	}
	logger.Info("Established webhelper session", slog.String("base_url", session.BaseURL()))
	return session, nil
}

func (h *Handshake) bearerToken(ctx context.Context) (string, error) {
	tokenURL := h.TokenURL
	if tokenURL == "" {
		tokenURL = shared.TOKEN_URL
	}
	body, err := doGet(ctx, h.HTTPClient, tokenURL)
	if err != nil {
		return "", err
	}
	payload, err := parseJSON(body)
	if err != nil {
		return "", err
	}
	token := stringField(payload, "t")
	if token == "" {
		return "", ErrInvalidBearerToken
	}
	return token, nil
}

func (h *Handshake) antiForgeryToken(ctx context.Context, baseURL string) (string, error) {
	signer := Signer{Now: h.Now}
	body, err := doGet(ctx, h.HTTPClient, signer.Build(baseURL, shared.PATH_CSRF, false, false))
	if err != nil {
		return "", err
	}
	payload, err := parseJSON(body)
	if err != nil {
		return "", err
	}
	token := stringField(payload, "token")
	if token == "" {
		return "", ErrInvalidAntiForgeryToken
	}
	return token, nil
}

func (h *Handshake) localURL() string {
	if h.LocalURL == "" {
		return shared.LOCAL_URL
	}
	return h.LocalURL
}

// Connect performs a handshake and returns a client bound to the new session.
func Connect(ctx context.Context, h *Handshake) (*Client, error) {
	session, err := h.Establish(ctx)
	if err != nil {
		return nil, err
	}
	return NewClient(session, h.HTTPClient), nil
}
