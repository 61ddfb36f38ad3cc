package instagram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/questbycycle/backend/config"
	"github.com/stretchr/testify/require"
)

func TestEndpoint_PostPhoto(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ig1/media":
			require.Equal(t, http.MethodPost, r.Method)
			w.Write([]byte(`{"id":"container1"}`))
		case "/ig1/media_publish":
			require.NoError(t, r.ParseForm())
			require.Equal(t, "container1", r.PostForm.Get("creation_id"))
			w.Write([]byte(`{"id":"media1"}`))
		case "/media1":
			require.Equal(t, "permalink", r.URL.Query().Get("fields"))
			w.Write([]byte(`{"id":"media1","permalink":"https://instagram.com/p/abc"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	e := New(config.InstagramConfigs{GraphEndpoint: server.URL})
	url, err := e.PostPhoto(context.Background(), "ig1", "token", "https://img/1.jpg", "hello")
	require.NoError(t, err)
	require.Equal(t, "https://instagram.com/p/abc", url)
}
