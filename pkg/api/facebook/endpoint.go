package facebook

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/questbycycle/backend/config"
	"github.com/questbycycle/backend/pkg/api"
	"github.com/questbycycle/backend/pkg/xcontext"
)

type IEndpoint interface {
	PostPhoto(ctx context.Context, pageID, accessToken, imageURL, caption string) (string, error)
}

type photo struct {
	ID     string `mapstructure:"id"`
	PostID string `mapstructure:"post_id"`
}

type Endpoint struct {
	apiGenerator api.Generator
}

func New(cfg config.FacebookConfigs) *Endpoint {
	return &Endpoint{
		apiGenerator: api.NewGenerator(cfg.GraphEndpoint),
	}
}

// PostPhoto publishes a photo on the page feed and returns the post url.
func (e *Endpoint) PostPhoto(
	ctx context.Context, pageID, accessToken, imageURL, caption string,
) (string, error) {
	resp, err := e.apiGenerator.New("/%s/photos", pageID).
		Body(api.Parameter{
			"url":          imageURL,
			"caption":      caption,
			"access_token": accessToken,
		}).
		POST(ctx)
	if err != nil {
		return "", err
	}

	if resp.Code != 200 {
		xcontext.Logger(ctx).Errorf("Invalid status code: %v", resp.Body)
		return "", fmt.Errorf("invalid status code %d", resp.Code)
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return "", errors.New("invalid body format")
	}

	p := photo{}
	if err := mapstructure.Decode(map[string]any(body), &p); err != nil {
		return "", err
	}

	if p.PostID == "" {
		return "", errors.New("cannot get post id")
	}

	return fmt.Sprintf("https://www.facebook.com/%s", p.PostID), nil
}
