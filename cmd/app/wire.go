//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/fleet-risk-dashboard/internal/bootstrap"
	"github.com/yanqian/fleet-risk-dashboard/internal/domain/dashboard"
	"github.com/yanqian/fleet-risk-dashboard/internal/infra/config"
	"github.com/yanqian/fleet-risk-dashboard/internal/infra/reportapi"
	"github.com/yanqian/fleet-risk-dashboard/internal/infra/telemetry"
	httpiface "github.com/yanqian/fleet-risk-dashboard/internal/interface/http"
	"github.com/yanqian/fleet-risk-dashboard/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		telemetry.NewProvider,
		provideDashboardConfig,
		provideReportClient,
		provideReportSource,
		provideArchiveService,
		dashboard.NewService,
		wire.Bind(new(dashboard.ReportFetcher), new(*reportapi.Client)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
