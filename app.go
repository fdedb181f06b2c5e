package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/eyescreen/eyescreen/apiclient"
	"github.com/eyescreen/eyescreen/config"
	dbpkg "github.com/eyescreen/eyescreen/db"
	"github.com/eyescreen/eyescreen/service"
)

// Application is the container every command works from. It is built after
// the settings are resolved, so the endpoint is fixed before any client exists.
type Application struct {
	Settings config.Settings
	DB       *sql.DB
	Repo     dbpkg.Repo
	Client   *apiclient.Client
	Detector *service.Detector
}

func newApplication(ctx context.Context, s config.Settings) (*Application, error) {
	repo, sqlDB, err := dbpkg.OpenRepo(ctx, s.DBPath)
	if err != nil {
		return nil, fmt.Errorf("history db: %w", err)
	}

	opts := []apiclient.Option{apiclient.WithTimeout(s.RequestTimeout)}
	if s.Origin != "" {
		opts = append(opts, apiclient.WithOrigin(s.Origin))
	}
	client := apiclient.New(s.Endpoint, opts...)

	return &Application{
		Settings: s,
		DB:       sqlDB,
		Repo:     repo,
		Client:   client,
		Detector: service.NewDetector(client, repo, s.BatchWorkers),
	}, nil
}

func (app *Application) Close() error {
	if app.DB == nil {
		return nil
	}
	return app.DB.Close()
}
