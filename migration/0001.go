package migration

import (
	"context"

	"github.com/questbycycle/backend/internal/entity"
	"github.com/questbycycle/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// migrate0001 normalizes frequency and verification type values imported from
// the legacy store, which were written with mixed case and padding.
func migrate0001(ctx context.Context) error {
	return xcontext.DB(ctx).Model(&entity.Quest{}).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Updates(map[string]any{
			"frequency":         gorm.Expr("LOWER(TRIM(frequency))"),
			"verification_type": gorm.Expr("LOWER(TRIM(verification_type))"),
		}).Error
}
