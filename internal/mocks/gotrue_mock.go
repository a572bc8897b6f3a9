package mocks

import (
	"errors"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"
)

// MockedUserID is the user behind the "access" token.
const MockedUserID = "4001e9cf-3fbe-4b09-863f-bd1654cfbf76"

// MockedGoTrueClient implements the session calls of gotrue.Client. Any
// other call panics on the nil embedded client.
type MockedGoTrueClient struct {
	gotrue.Client
	token string
}

func NewMockedGoTrueClient() gotrue.Client {
	return MockedGoTrueClient{Client: nil, token: ""}
}

func (client MockedGoTrueClient) WithToken(token string) gotrue.Client {
	client.token = token
	return client
}

func (client MockedGoTrueClient) Logout() error {
	return nil
}

func (client MockedGoTrueClient) Token(
	_ types.TokenRequest,
) (*types.TokenResponse, error) {
	//nolint:exhaustruct //only the session is read
	return &types.TokenResponse{
		Session: types.Session{
			AccessToken:  "access",
			RefreshToken: "refresh",
		},
	}, nil
}

func (client MockedGoTrueClient) GetUser() (*types.UserResponse, error) {
	if client.token != "access" {
		return nil, errors.New("invalid token")
	}

	//nolint:exhaustruct //only the identity is read
	return &types.UserResponse{
		User: types.User{
			ID:    uuid.MustParse(MockedUserID),
			Email: "user@example.com",
		},
	}, nil
}
