package api

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Parameter_Encode(t *testing.T) {
	p := Parameter{
		"message":      "ride to work",
		"access_token": "a+b",
		"link":         "https://example.com/?q=1",
	}

	require.Equal(t,
		"access_token=a%2Bb&link=https%3A%2F%2Fexample.com%2F%3Fq%3D1&message=ride%20to%20work",
		p.Encode())

	r, contentType, err := p.ToReader()
	require.NoError(t, err)
	require.Equal(t, "application/x-www-form-urlencoded", contentType)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, p.Encode(), string(body))
}
