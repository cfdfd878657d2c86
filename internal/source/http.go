package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/truthdare/truthdare-api/internal/content"
	"github.com/truthdare/truthdare-api/internal/model"
)

// MaxDocumentSize caps the body read from a remote origin.
const MaxDocumentSize = 10 << 20

// HTTPSource fetches one JSON document per kind over HTTP.
type HTTPSource struct {
	client *http.Client
	urls   map[model.Kind]string
}

// OAuthConfig holds client-credentials settings for a protected origin.
// An empty TokenURL means requests go out unauthenticated.
type OAuthConfig struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

// NewHTTPSource creates a source fetching truthsURL and daresURL.
//
// When oauth.TokenURL is set, requests carry a bearer token obtained with
// the OAuth2 client-credentials grant. The token is cached and refreshed by
// the oauth2 transport. ctx only seeds that transport's token requests.
func NewHTTPSource(ctx context.Context, truthsURL, daresURL string, oauth OAuthConfig) *HTTPSource {
	client := &http.Client{}
	if oauth.TokenURL != "" {
		cc := clientcredentials.Config{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			TokenURL:     oauth.TokenURL,
			Scopes:       oauth.Scopes,
		}
		client = cc.Client(ctx)
	}
	return &HTTPSource{
		client: client,
		urls: map[model.Kind]string{
			model.KindTruth: truthsURL,
			model.KindDare:  daresURL,
		},
	}
}

// Records performs a GET bound to ctx and decodes the body.
// Transport failures and non-2xx responses are reported as unavailable.
func (s *HTTPSource) Records(ctx context.Context, kind model.Kind) ([]content.RawRecord, error) {
	url, ok := s.urls[kind]
	if !ok || url == "" {
		return nil, fmt.Errorf("%w: no URL configured for %s", content.ErrSourceUnavailable, kind.Plural())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %w", content.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", content.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", content.ErrSourceUnavailable, kind.Plural(), resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", content.ErrSourceUnavailable, err)
	}
	if len(body) > MaxDocumentSize {
		return nil, fmt.Errorf("%w: document larger than %d bytes", content.ErrMalformed, MaxDocumentSize)
	}

	return content.DecodeRecords(bytes.NewReader(body))
}
