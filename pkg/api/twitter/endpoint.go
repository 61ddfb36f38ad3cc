package twitter

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
	PostPhoto(ctx context.Context, token, imageURL, caption string) (string, error)
}

type Tweet struct {
	ID  string `mapstructure:"id"`
	URL string `mapstructure:"url"`
}

type Endpoint struct {
	apiGenerator api.Generator
}

// New creates an endpoint talking to the twitter proxy service. The proxy is
// in charge of uploading the media and creating the tweet.
func New(cfg config.TwitterConfigs) *Endpoint {
	return &Endpoint{
		apiGenerator: api.NewGenerator(cfg.APIEndpoints...),
	}
}

func (e *Endpoint) PostPhoto(ctx context.Context, token, imageURL, caption string) (string, error) {
	resp, err := e.apiGenerator.New("/post_tweet").
		Body(api.JSON{"text": caption, "media_url": imageURL}).
		POST(ctx, api.OAuth2("Bearer", token))
	if err != nil {
		return "", err
	}

	if resp.Code != 200 && resp.Code != 201 {
		xcontext.Logger(ctx).Errorf("Invalid status code: %v", resp.Body)
		return "", fmt.Errorf("invalid status code %d", resp.Code)
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return "", errors.New("invalid body format")
	}

	tweet := Tweet{}
	if err := mapstructure.Decode(map[string]any(body), &tweet); err != nil {
		return "", err
	}

	if tweet.URL != "" {
		return tweet.URL, nil
	}

	if tweet.ID == "" {
		return "", errors.New("cannot get tweet id")
	}

	return fmt.Sprintf("https://twitter.com/i/web/status/%s", tweet.ID), nil
}
