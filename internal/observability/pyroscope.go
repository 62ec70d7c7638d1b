package observability

import (
	"fmt"
	"runtime"

	"github.com/grafana/pyroscope-go"
	"github.com/riskibarqy/prediction-pool/internal/config"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

const mutexProfileFraction = 5

// InitPyroscope starts continuous profiling when enabled.
func InitPyroscope(cfg config.Config, logger *logging.Logger) (func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if !cfg.PyroscopeEnabled {
		logger.Info("pyroscope disabled", "reason", "PYROSCOPE_ENABLED=false")
		return func() error { return nil }, nil
	}

	// Group stores serialize writes behind a mutex; sample its contention.
	prevFraction := runtime.SetMutexProfileFraction(mutexProfileFraction)
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Logger:            pyroscopeLogger{logger: logger.Named("pyroscope")},
		Tags:              profileTags(cfg),
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
		},
	})
	if err != nil {
		runtime.SetMutexProfileFraction(prevFraction)
		return nil, err
	}

	logger.Info("pyroscope enabled", "application", cfg.PyroscopeAppName, "store", cfg.StoreDriver)

	return func() error {
		defer runtime.SetMutexProfileFraction(prevFraction)
		return profiler.Stop()
	}, nil
}

func profileTags(cfg config.Config) map[string]string {
	tags := map[string]string{
		"env":               cfg.AppEnv,
		"service":           cfg.ServiceName,
		"version":           cfg.ServiceVersion,
		"store":             storeOrDefault(cfg.StoreDriver),
		"competition_store": storeOrDefault(cfg.CompetitionStore),
	}
	for k, v := range tags {
		if v == "" {
			delete(tags, k)
		}
	}
	return tags
}

// pyroscopeLogger routes profiler messages into the service logger. Upload
// chatter stays at debug.
type pyroscopeLogger struct {
	logger *logging.Logger
}

func (l pyroscopeLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l pyroscopeLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l pyroscopeLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}
