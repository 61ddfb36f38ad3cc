package social

import (
	"context"
	"sync"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/pkg/api/facebook"
	"github.com/questbycycle/backend/pkg/api/instagram"
	"github.com/questbycycle/backend/pkg/api/twitter"
	"github.com/questbycycle/backend/pkg/xcontext"
)

// PostResult holds the url of each created post. A platform which was not
// configured for the game, or which failed, has an empty url.
type PostResult struct {
	TwitterURL   string
	FacebookURL  string
	InstagramURL string
}

type Poster interface {
	CrossPost(ctx context.Context, game *entity.Game, imageURL, caption string) PostResult
}

type poster struct {
	twitterEndpoint   twitter.IEndpoint
	facebookEndpoint  facebook.IEndpoint
	instagramEndpoint instagram.IEndpoint
}

func NewPoster(
	twitterEndpoint twitter.IEndpoint,
	facebookEndpoint facebook.IEndpoint,
	instagramEndpoint instagram.IEndpoint,
) *poster {
	return &poster{
		twitterEndpoint:   twitterEndpoint,
		facebookEndpoint:  facebookEndpoint,
		instagramEndpoint: instagramEndpoint,
	}
}

// CrossPost publishes the photo on every platform the game has credentials
// for. Failures are logged and never returned, the submission doesn't depend
// on them.
func (p *poster) CrossPost(
	ctx context.Context, game *entity.Game, imageURL, caption string,
) PostResult {
	result := PostResult{}
	if !xcontext.Configs(ctx).Quest.PostToSocial || imageURL == "" {
		return result
	}

	wg := sync.WaitGroup{}
	post := func(platform string, target *string, fn func() (string, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			url, err := fn()
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot post to %s for game %s: %v", platform, game.ID, err)
				return
			}
			*target = url
		}()
	}

	if game.TwitterToken != "" {
		post("twitter", &result.TwitterURL, func() (string, error) {
			return p.twitterEndpoint.PostPhoto(ctx, game.TwitterToken, imageURL, caption)
		})
	}

	if game.FacebookPageID != "" && game.FacebookAccessToken != "" {
		post("facebook", &result.FacebookURL, func() (string, error) {
			return p.facebookEndpoint.PostPhoto(
				ctx, game.FacebookPageID, game.FacebookAccessToken, imageURL, caption)
		})
	}

	if game.InstagramUserID != "" && game.InstagramAccessToken != "" {
		post("instagram", &result.InstagramURL, func() (string, error) {
			return p.instagramEndpoint.PostPhoto(
				ctx, game.InstagramUserID, game.InstagramAccessToken, imageURL, caption)
		})
	}

	wg.Wait()
	return result
}
