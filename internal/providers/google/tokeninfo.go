package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Profile is the subset of the Google ID-token payload we keep.
type Profile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Aud     string `json:"aud"`
}

type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Profile, error)
}

// TokeninfoVerifier validates ID tokens against Google's tokeninfo endpoint.
type TokeninfoVerifier struct {
	client   *resty.Client
	clientID string
}

func NewTokeninfoVerifier(clientID string) *TokeninfoVerifier {
	return &TokeninfoVerifier{
		client:   resty.New().SetBaseURL("https://oauth2.googleapis.com"),
		clientID: clientID,
	}
}

func (v *TokeninfoVerifier) Verify(ctx context.Context, idToken string) (*Profile, error) {
	if idToken == "" {
		return nil, errors.New("empty id token")
	}

	var p Profile
	resp, err := v.client.R().
		SetContext(ctx).
		SetQueryParam("id_token", idToken).
		SetResult(&p).
		Get("/tokeninfo")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("tokeninfo rejected token: status %d", resp.StatusCode())
	}
	if v.clientID != "" && p.Aud != v.clientID {
		return nil, errors.New("token audience mismatch")
	}
	if p.Sub == "" || p.Email == "" {
		return nil, errors.New("tokeninfo payload missing sub or email")
	}
	return &p, nil
}
