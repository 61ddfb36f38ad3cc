package testutil

import (
	"context"
	"errors"
)

type MockTwitterEndpoint struct {
	PostPhotoFunc func(ctx context.Context, token, imageURL, caption string) (string, error)
}

func (e *MockTwitterEndpoint) PostPhoto(ctx context.Context, token, imageURL, caption string) (string, error) {
	if e.PostPhotoFunc != nil {
		return e.PostPhotoFunc(ctx, token, imageURL, caption)
	}

	return "", errors.New("not implemented")
}

type MockFacebookEndpoint struct {
	PostPhotoFunc func(ctx context.Context, pageID, accessToken, imageURL, caption string) (string, error)
}

func (e *MockFacebookEndpoint) PostPhoto(
	ctx context.Context, pageID, accessToken, imageURL, caption string,
) (string, error) {
	if e.PostPhotoFunc != nil {
		return e.PostPhotoFunc(ctx, pageID, accessToken, imageURL, caption)
	}

	return "", errors.New("not implemented")
}

type MockInstagramEndpoint struct {
	PostPhotoFunc func(ctx context.Context, userID, accessToken, imageURL, caption string) (string, error)
}

func (e *MockInstagramEndpoint) PostPhoto(
	ctx context.Context, userID, accessToken, imageURL, caption string,
) (string, error) {
	if e.PostPhotoFunc != nil {
		return e.PostPhotoFunc(ctx, userID, accessToken, imageURL, caption)
	}

	return "", errors.New("not implemented")
}
