package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	LogLevel       logging.Level

	StoreDriver       string
	DBURL             string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	CompetitionStore string
	MongoURI         string
	MongoDatabase    string
	MongoTimeout     time.Duration

	CacheEnabled bool
	CacheTTL     time.Duration

	CompetitionCircuitEnabled        bool
	CompetitionCircuitFailureCount   int
	CompetitionCircuitOpenTimeout    time.Duration
	CompetitionCircuitHalfOpenMaxReq int

	PoolMinTotalBetAmount    int64
	PoolInviteTTL            time.Duration
	PoolInviteCodeLength     int
	PoolCurrency             string
	PoolTeamsPerGroup        int
	PoolTeamsQualifyPerGroup int

	JobRecomputeSchedule string
	JobCleanupSchedule   string
	JobMaxWorkers        int
	JobTimeout           time.Duration

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

// Load reads the environment, after merging an optional dotenv file
// (APP_ENV_FILE, default .env). Variables already set win over the file.
func Load() (Config, error) {
	if err := loadDotEnv(getEnv("APP_ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	storeDriver, err := parseChoice("STORE_DRIVER", getEnv("STORE_DRIVER", StoreMemory), StoreMemory, StorePostgres)
	if err != nil {
		return Config{}, err
	}
	dbURL := strings.TrimSpace(getEnv("DB_URL", ""))
	if storeDriver == StorePostgres && dbURL == "" {
		return Config{}, fmt.Errorf("DB_URL is required when STORE_DRIVER=postgres")
	}
	dbMaxOpenConns, err := getEnvAsInt("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
	}
	if dbMaxOpenConns <= 0 {
		return Config{}, fmt.Errorf("DB_MAX_OPEN_CONNS must be > 0")
	}
	dbMaxIdleConns, err := getEnvAsInt("DB_MAX_IDLE_CONNS", dbMaxOpenConns/2)
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_MAX_IDLE_CONNS: %w", err)
	}
	if dbMaxIdleConns < 0 {
		return Config{}, fmt.Errorf("DB_MAX_IDLE_CONNS must be >= 0")
	}
	dbConnMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "30m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_CONN_MAX_LIFETIME: %w", err)
	}

	competitionStore, err := parseChoice("COMPETITION_STORE", getEnv("COMPETITION_STORE", StoreMemory), StoreMemory, StoreMongo)
	if err != nil {
		return Config{}, err
	}
	mongoURI := strings.TrimSpace(getEnv("MONGO_URI", ""))
	if competitionStore == StoreMongo && mongoURI == "" {
		return Config{}, fmt.Errorf("MONGO_URI is required when COMPETITION_STORE=mongo")
	}
	mongoTimeout, err := time.ParseDuration(getEnv("MONGO_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse MONGO_TIMEOUT: %w", err)
	}
	if mongoTimeout <= 0 {
		return Config{}, fmt.Errorf("MONGO_TIMEOUT must be > 0")
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	circuitEnabled, err := strconv.ParseBool(getEnv("COMPETITION_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse COMPETITION_CIRCUIT_ENABLED: %w", err)
	}
	circuitFailureCount, err := getEnvAsInt("COMPETITION_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse COMPETITION_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if circuitFailureCount < 1 {
		return Config{}, fmt.Errorf("COMPETITION_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	circuitOpenTimeout, err := time.ParseDuration(getEnv("COMPETITION_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse COMPETITION_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if circuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("COMPETITION_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	circuitHalfOpenMaxReq, err := getEnvAsInt("COMPETITION_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse COMPETITION_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if circuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("COMPETITION_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	minTotalBetAmount, err := getEnvAsInt64("POOL_MIN_TOTAL_BET_AMOUNT", 1000)
	if err != nil {
		return Config{}, fmt.Errorf("parse POOL_MIN_TOTAL_BET_AMOUNT: %w", err)
	}
	if minTotalBetAmount <= 0 {
		return Config{}, fmt.Errorf("POOL_MIN_TOTAL_BET_AMOUNT must be > 0")
	}
	inviteTTL, err := time.ParseDuration(getEnv("POOL_INVITE_TTL", "168h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse POOL_INVITE_TTL: %w", err)
	}
	if inviteTTL <= 0 {
		return Config{}, fmt.Errorf("POOL_INVITE_TTL must be > 0")
	}
	inviteCodeLength, err := getEnvAsInt("POOL_INVITE_CODE_LENGTH", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse POOL_INVITE_CODE_LENGTH: %w", err)
	}
	if inviteCodeLength < 6 {
		return Config{}, fmt.Errorf("POOL_INVITE_CODE_LENGTH must be >= 6")
	}
	teamsPerGroup, err := getEnvAsInt("POOL_TEAMS_PER_GROUP", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse POOL_TEAMS_PER_GROUP: %w", err)
	}
	teamsQualify, err := getEnvAsInt("POOL_TEAMS_QUALIFY_PER_GROUP", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse POOL_TEAMS_QUALIFY_PER_GROUP: %w", err)
	}
	if teamsPerGroup <= 0 || teamsQualify <= 0 || teamsQualify > teamsPerGroup {
		return Config{}, fmt.Errorf("POOL_TEAMS_QUALIFY_PER_GROUP must be within 1..POOL_TEAMS_PER_GROUP")
	}
	currency := strings.ToUpper(strings.TrimSpace(getEnv("POOL_CURRENCY", "USD")))
	if len(currency) != 3 {
		return Config{}, fmt.Errorf("POOL_CURRENCY must be a 3-letter code, got %q", currency)
	}

	jobMaxWorkers, err := getEnvAsInt("JOB_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse JOB_MAX_WORKERS: %w", err)
	}
	if jobMaxWorkers <= 0 {
		return Config{}, fmt.Errorf("JOB_MAX_WORKERS must be > 0")
	}
	jobTimeout, err := time.ParseDuration(getEnv("JOB_TIMEOUT", "10m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse JOB_TIMEOUT: %w", err)
	}
	if jobTimeout <= 0 {
		return Config{}, fmt.Errorf("JOB_TIMEOUT must be > 0")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "prediction-pool"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:       logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),

		StoreDriver:       storeDriver,
		DBURL:             dbURL,
		DBMaxOpenConns:    dbMaxOpenConns,
		DBMaxIdleConns:    dbMaxIdleConns,
		DBConnMaxLifetime: dbConnMaxLifetime,

		CompetitionStore: competitionStore,
		MongoURI:         mongoURI,
		MongoDatabase:    getEnv("MONGO_DATABASE", "prediction_pool"),
		MongoTimeout:     mongoTimeout,

		CacheEnabled: cacheEnabled,
		CacheTTL:     cacheTTL,

		CompetitionCircuitEnabled:        circuitEnabled,
		CompetitionCircuitFailureCount:   circuitFailureCount,
		CompetitionCircuitOpenTimeout:    circuitOpenTimeout,
		CompetitionCircuitHalfOpenMaxReq: circuitHalfOpenMaxReq,

		PoolMinTotalBetAmount:    minTotalBetAmount,
		PoolInviteTTL:            inviteTTL,
		PoolInviteCodeLength:     inviteCodeLength,
		PoolCurrency:             currency,
		PoolTeamsPerGroup:        teamsPerGroup,
		PoolTeamsQualifyPerGroup: teamsQualify,

		JobRecomputeSchedule: strings.TrimSpace(getEnv("JOB_RECOMPUTE_SCHEDULE", "@every 15m")),
		JobCleanupSchedule:   strings.TrimSpace(getEnv("JOB_CLEANUP_SCHEDULE", "0 3 * * *")),
		JobMaxWorkers:        jobMaxWorkers,
		JobTimeout:           jobTimeout,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}

	return cfg, nil
}

func loadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func getEnvAsInt64(key string, fallback int64) (int64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	return strconv.ParseInt(value, 10, 64)
}

func parseChoice(key, raw string, allowed ...string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, v := range allowed {
		if value == v {
			return value, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q: valid values are %s", key, raw, strings.Join(allowed, ", "))
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
