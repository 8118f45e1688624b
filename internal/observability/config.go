package observability

import (
	"strings"
	"time"

	"github.com/smallbiznis/pumpops/internal/config"
	"github.com/spf13/viper"
	gormlogger "gorm.io/gorm/logger"
)

const (
	keyLogLevel          = "LOG_LEVEL"
	keyLogFormat         = "LOG_FORMAT"
	keyOtelEnabled       = "OTEL_ENABLED"
	keyOtlpEndpoint      = "OTEL_EXPORTER_OTLP_ENDPOINT"
	keyOtlpProtocol      = "OTEL_EXPORTER_OTLP_PROTOCOL"
	keyOtlpTraceProtocol = "OTEL_EXPORTER_OTLP_TRACES_PROTOCOL"
	keySamplingRatio     = "OTEL_SAMPLING_RATIO"
	keySQLLogLevel       = "DB_LOG_LEVEL"
	keySlowQuery         = "DB_SLOW_QUERY_THRESHOLD"
)

// Config holds logging, tracing and query-logging settings for the pump API.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64

	// SQLLogLevel is one of silent, error, warn or info.
	SQLLogLevel        string
	SlowQueryThreshold time.Duration
}

// LoadConfig starts from the app config and lets the environment override it.
// Export is on by default only when a collector endpoint is known.
func LoadConfig(cfg config.Config) Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "json")
	v.SetDefault(keyOtlpEndpoint, cfg.OTLPEndpoint)
	v.SetDefault(keyOtlpProtocol, "grpc")
	v.SetDefault(keySamplingRatio, 0.1)
	v.SetDefault(keySQLLogLevel, "warn")
	v.SetDefault(keySlowQuery, 200*time.Millisecond)

	endpoint := strings.TrimSpace(v.GetString(keyOtlpEndpoint))
	v.SetDefault(keyOtelEnabled, endpoint != "")

	protocol := v.GetString(keyOtlpProtocol)
	if traces := strings.TrimSpace(v.GetString(keyOtlpTraceProtocol)); traces != "" {
		protocol = traces
	}

	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "pumpops"
	}

	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             lower(v.GetString(keyLogLevel)),
		LogFormat:            lower(v.GetString(keyLogFormat)),
		OtelEnabled:          v.GetBool(keyOtelEnabled),
		OtelExporterEndpoint: endpoint,
		OtelExporterProtocol: lower(protocol),
		OtelSamplingRatio:    v.GetFloat64(keySamplingRatio),
		SQLLogLevel:          lower(v.GetString(keySQLLogLevel)),
		SlowQueryThreshold:   v.GetDuration(keySlowQuery),
	}
}

func (c Config) Debug() bool {
	return c.LogLevel == "debug" || isDevEnv(c.Environment)
}

// GormLevel maps SQLLogLevel onto gorm's levels; unknown values fall back to warn.
func (c Config) GormLevel() gormlogger.LogLevel {
	switch c.SQLLogLevel {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func isDevEnv(env string) bool {
	switch lower(env) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
