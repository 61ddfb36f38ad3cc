package main

import (
	"fmt"

	"github.com/questbycycle/backend/migration"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	if err := s.loadDatabase(); err != nil {
		return err
	}

	version := cctx.String("version")
	switch version {
	case "auto":
		return migration.AutoMigrate(s.ctx)
	case "all":
		for _, v := range migration.Versions() {
			s.logger.Infof("Running migrator %s", v)
			if err := migration.Migrators[v](s.ctx); err != nil {
				return fmt.Errorf("migrator %s: %w", v, err)
			}
		}
		return nil
	}

	migrator, ok := migration.Migrators[version]
	if !ok {
		return fmt.Errorf("not found version %s", version)
	}

	return migrator(s.ctx)
}
