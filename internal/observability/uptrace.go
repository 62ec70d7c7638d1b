package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/prediction-pool/internal/config"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

// InitUptrace configures global OpenTelemetry providers for Uptrace. The
// returned func flushes and shuts them down.
func InitUptrace(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.UptraceEnabled {
		logger.Info("uptrace disabled", "reason", "UPTRACE_ENABLED=false")
		return func(context.Context) error { return nil }, nil
	}

	if strings.TrimSpace(cfg.UptraceDSN) == "" {
		logger.Info("uptrace disabled", "reason", "UPTRACE_DSN empty")
		return func(context.Context) error { return nil }, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(poolResourceAttributes(cfg)...),
	)

	logger.Info("uptrace enabled",
		"service_name", cfg.ServiceName,
		"service_version", cfg.ServiceVersion,
		"environment", cfg.AppEnv,
		"store", cfg.StoreDriver,
	)

	return uptrace.Shutdown, nil
}

// poolResourceAttributes tags every span with the stores this process runs
// against, so traces from memory, postgres and mongo deployments can be told
// apart.
func poolResourceAttributes(cfg config.Config) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("pool.store", storeOrDefault(cfg.StoreDriver)),
		attribute.String("pool.competition_store", storeOrDefault(cfg.CompetitionStore)),
		attribute.Bool("pool.catalog_cache", cfg.CacheEnabled),
		attribute.Int("pool.job_workers", cfg.JobMaxWorkers),
	}
	if cfg.PoolCurrency != "" {
		attrs = append(attrs, attribute.String("pool.currency", cfg.PoolCurrency))
	}
	return attrs
}

func storeOrDefault(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return config.StoreMemory
	}
	return v
}
