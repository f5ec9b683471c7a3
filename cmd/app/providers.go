package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/fleet-risk-dashboard/internal/domain/dashboard"
	"github.com/yanqian/fleet-risk-dashboard/internal/domain/reportarchive"
	"github.com/yanqian/fleet-risk-dashboard/internal/infra/config"
	"github.com/yanqian/fleet-risk-dashboard/internal/infra/reportapi"
	"github.com/yanqian/fleet-risk-dashboard/internal/infra/reportsource"
)

func provideDashboardConfig(cfg *config.Config) dashboard.Config {
	return dashboard.Config{SourceURL: cfg.Dashboard.SourceURL}
}

func provideReportClient(cfg *config.Config) *reportapi.Client {
	return reportapi.NewClient(cfg.Dashboard.SourceURL, cfg.Dashboard.FetchTimeout)
}

// provideArchiveService returns nil when the stored report API is disabled.
func provideArchiveService(cfg *config.Config, source reportarchive.Source, logger *slog.Logger) reportarchive.Service {
	if !cfg.Archive.Enabled {
		logger.Info("report archive disabled")
		return nil
	}
	return reportarchive.NewService(source, logger)
}

func provideReportSource(cfg *config.Config, logger *slog.Logger) reportarchive.Source {
	if !cfg.Archive.Enabled {
		return reportsource.NewMemorySource()
	}
	switch cfg.Archive.Backend {
	case config.BackendMinio:
		return provideMinioSource(cfg, logger)
	case config.BackendPostgres:
		return providePostgresSource(cfg, logger)
	case config.BackendValkey:
		return provideValkeySource(cfg, logger)
	case config.BackendMemory:
		logger.Info("report archive using memory source")
		return reportsource.NewMemorySource()
	default:
		logger.Info("report archive using filesystem source", "directory", cfg.Archive.Directory)
		return reportsource.NewFilesystemSource(cfg.Archive.Directory)
	}
}

func provideMinioSource(cfg *config.Config, logger *slog.Logger) reportarchive.Source {
	mc := cfg.Archive.Minio
	source, err := reportsource.NewMinioSource(reportsource.MinioOptions{
		Endpoint:  mc.Endpoint,
		AccessKey: mc.AccessKey,
		SecretKey: mc.SecretKey,
		Bucket:    mc.Bucket,
		Region:    mc.Region,
		Prefix:    mc.Prefix,
	}, logger)
	if err != nil {
		logger.Error("invalid minio configuration, using memory source", "error", err)
		return reportsource.NewMemorySource()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := source.Ping(ctx); err != nil {
		logger.Error("minio bucket unavailable, using memory source", "bucket", mc.Bucket, "error", err)
		return reportsource.NewMemorySource()
	}
	logger.Info("report archive minio source enabled", "bucket", mc.Bucket, "prefix", mc.Prefix)
	return source
}

func providePostgresSource(cfg *config.Config, logger *slog.Logger) reportarchive.Source {
	fallback := reportsource.NewMemorySource()
	pc := cfg.Archive.Postgres
	dsn := strings.TrimSpace(pc.DSN)
	if dsn == "" {
		logger.Info("archive postgres dsn not set, using memory source")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory source", "error", err)
		return fallback
	}
	if pc.MaxConns > 0 {
		poolConfig.MaxConns = pc.MaxConns
	}
	if pc.MinConns > 0 {
		poolConfig.MinConns = pc.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory source", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory source", "error", err)
		pool.Close()
		return fallback
	}
	source := reportsource.NewPostgresSource(pool)
	if err := source.EnsureSchema(ctx); err != nil {
		logger.Error("postgres schema setup failed, using memory source", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("report archive postgres source enabled")
	return source
}

func provideValkeySource(cfg *config.Config, logger *slog.Logger) reportarchive.Source {
	opt, err := buildValkeyOptions(cfg.Archive.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, using memory source", "error", err)
		return reportsource.NewMemorySource()
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, using memory source", "error", err)
		return reportsource.NewMemorySource()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, using memory source", "error", err)
		client.Close()
		return reportsource.NewMemorySource()
	}
	logger.Info("report archive valkey source enabled", "addr", cfg.Archive.Valkey.Addr)
	return reportsource.NewValkeySource(client, cfg.Archive.Valkey.Prefix)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
