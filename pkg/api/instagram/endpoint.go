package instagram

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
	PostPhoto(ctx context.Context, userID, accessToken, imageURL, caption string) (string, error)
}

type media struct {
	ID        string `mapstructure:"id"`
	Permalink string `mapstructure:"permalink"`
}

type Endpoint struct {
	apiGenerator api.Generator
}

func New(cfg config.InstagramConfigs) *Endpoint {
	return &Endpoint{
		apiGenerator: api.NewGenerator(cfg.GraphEndpoint),
	}
}

// PostPhoto creates a media container, publishes it and returns its permalink.
func (e *Endpoint) PostPhoto(
	ctx context.Context, userID, accessToken, imageURL, caption string,
) (string, error) {
	container, err := e.call(ctx, e.apiGenerator.New("/%s/media", userID).
		Body(api.Parameter{
			"image_url":    imageURL,
			"caption":      caption,
			"access_token": accessToken,
		}), true)
	if err != nil {
		return "", err
	}

	published, err := e.call(ctx, e.apiGenerator.New("/%s/media_publish", userID).
		Body(api.Parameter{
			"creation_id":  container.ID,
			"access_token": accessToken,
		}), true)
	if err != nil {
		return "", err
	}

	detail, err := e.call(ctx, e.apiGenerator.New("/%s", published.ID).
		Query(api.Parameter{
			"fields":       "permalink",
			"access_token": accessToken,
		}), false)
	if err != nil {
		return "", err
	}

	if detail.Permalink == "" {
		return "", errors.New("cannot get permalink")
	}

	return detail.Permalink, nil
}

func (e *Endpoint) call(ctx context.Context, client api.Client, post bool) (media, error) {
	var resp *api.Response
	var err error
	if post {
		resp, err = client.POST(ctx)
	} else {
		resp, err = client.GET(ctx)
	}
	if err != nil {
		return media{}, err
	}

	if resp.Code != 200 {
		xcontext.Logger(ctx).Errorf("Invalid status code: %v", resp.Body)
		return media{}, fmt.Errorf("invalid status code %d", resp.Code)
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return media{}, errors.New("invalid body format")
	}

	m := media{}
	if err := mapstructure.Decode(map[string]any(body), &m); err != nil {
		return media{}, err
	}

	if m.ID == "" {
		return media{}, errors.New("cannot get media id")
	}

	return m, nil
}
