package common

import (
	"context"

	"github.com/pkg/math"
	"github.com/questbycycle/backend/pkg/errorx"
	"github.com/questbycycle/backend/pkg/xcontext"
)

// NormalizePagination applies the default limit and clamps the limit to the
// maximum allowed by the api server.
func NormalizePagination(ctx context.Context, offset, limit int) (int, int, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if offset < 0 {
		return 0, 0, errorx.New(errorx.BadRequest, "Offset must not be negative")
	}

	if limit == 0 {
		limit = apiCfg.DefaultLimit
	}

	if limit < 0 {
		return 0, 0, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	return offset, math.MinInt(limit, apiCfg.MaxLimit), nil
}
