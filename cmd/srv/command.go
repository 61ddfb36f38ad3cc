package main

import "github.com/urfave/cli/v2"

var configFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "Path to the toml config file, default configs are used if empty",
	EnvVars: []string{"QUESTBYCYCLE_CONFIG"},
}

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "questbycycle"
	app.Usage = "Quest and badge service for cycling challenges"
	app.Flags = []cli.Flag{configFlag}
	app.Before = s.loadConfig
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Used for start service api, it serves games, quests, submissions and badges.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: `Migrator version, "auto" runs the auto migration, "all" runs every version in order`,
					Value: "auto",
				},
			},
			Description: `Used to create or update the database schema.`,
		},
		{
			Action:   s.createUser,
			Name:     "user",
			Usage:    "Create a user and print its access token",
			Category: "Admin",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Usage:    "Unique user name",
					Required: true,
				},
				&cli.StringFlag{
					Name:  "email",
					Usage: "User email",
				},
				&cli.BoolFlag{
					Name:  "admin",
					Usage: "Grant the global admin role",
				},
			},
			Description: `Used to bootstrap users, e.g. the first admin of a deployment.`,
		},
		{
			Action:   s.generateToken,
			Name:     "token",
			Usage:    "Print a new access token of an existing user",
			Category: "Admin",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Usage:    "User name",
					Required: true,
				},
			},
		},
	}

	s.app = app
}
