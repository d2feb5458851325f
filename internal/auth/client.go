// Package auth talks to the login service and keeps the signed-in session.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/MarcoMadridG27/Thesaurus/internal/apiclient"
	"github.com/MarcoMadridG27/Thesaurus/internal/common"
	"github.com/MarcoMadridG27/Thesaurus/internal/model"
)

const serviceName = "login"

var rucPattern = regexp.MustCompile(`^\d{11}$`)

// ErrInvalidRUC is returned before any request when a RUC is not 11 digits.
var ErrInvalidRUC = common.NewUserError("RUC must have exactly 11 digits", nil)

// Client calls the login service.
type Client struct {
	api *apiclient.Client
	now func() time.Time
}

// NewClient creates a login client rooted at base.
func NewClient(base string, httpClient *http.Client) *Client {
	return &Client{
		api: apiclient.New(serviceName, base, httpClient),
		now: time.Now,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (*model.Token, error) {
	var resp tokenResponse
	err := c.api.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "login",
		Op:     "login",
		Body:   model.Credentials{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, &common.ServiceError{Service: serviceName, Op: "login", StatusCode: http.StatusOK, Message: "response has no access token"}
	}

	return &model.Token{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		ExpiresIn:   resp.ExpiresIn,
		IssuedAt:    c.now().UTC(),
	}, nil
}

// RegisterResult is the outcome of a registration.
type RegisterResult struct {
	Data    map[string]any
	Message string
}

// Register creates an account and then signs in with the same credentials.
// When the automatic sign-in fails the registration still counts: the token
// is nil and the result carries an explanatory message.
func (c *Client) Register(ctx context.Context, in model.SignUp) (*model.Token, *RegisterResult, error) {
	if !ValidRUC(in.RUC) {
		return nil, nil, ErrInvalidRUC
	}

	var data map[string]any
	err := c.api.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "register",
		Op:     "register",
		Body:   in,
	}, &data)
	if err != nil {
		return nil, nil, err
	}

	result := &RegisterResult{Data: data}
	token, err := c.Login(ctx, in.Email, in.Password)
	if err != nil {
		result.Message = fmt.Sprintf("registered, but automatic sign-in failed: %v", err)
		return nil, result, nil
	}
	return token, result, nil
}

// ValidRUC reports whether ruc looks like a Peruvian taxpayer number.
func ValidRUC(ruc string) bool {
	return rucPattern.MatchString(ruc)
}

// ValidateRUC looks up a taxpayer in the registry.
func (c *Client) ValidateRUC(ctx context.Context, ruc string) (*model.RucData, error) {
	ruc = strings.TrimSpace(ruc)
	if !ValidRUC(ruc) {
		return nil, ErrInvalidRUC
	}

	var data model.RucData
	err := c.api.Do(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   "validate-ruc",
		Op:     "validate-ruc",
		Body:   map[string]string{"ruc": ruc},
	}, &data)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// Profile returns the profile of the account owning token.
func (c *Client) Profile(ctx context.Context, token string) (*model.UserProfile, error) {
	if token == "" {
		return nil, common.ErrNotAuthenticated
	}

	var profile model.UserProfile
	err := c.api.Do(ctx, apiclient.Request{
		Method: http.MethodGet,
		Path:   "profile",
		Op:     "profile",
		Header: apiclient.BearerHeader(token),
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
