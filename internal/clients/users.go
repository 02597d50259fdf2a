package clients

import (
	"context"
	"net/http"
	"net/url"

	"github.com/iliyamo/hotel-reservation/internal/model"
)

// UserClient looks up guest profiles in the user service.
type UserClient struct{ c *Client }

// NewUserClient wraps c, which must point at the user service.
func NewUserClient(c *Client) *UserClient { return &UserClient{c: c} }

func (uc *UserClient) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	found, err := uc.c.Do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, nil, &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}
