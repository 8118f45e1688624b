package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Policy holds the operational tunables read by the KPI aggregator, the
// alert engine and the pump overview.
type Policy struct {
	MaintenanceIntervalDays  int     `mapstructure:"maintenanceIntervalDays"`
	MaintenanceHorizonDays   int     `mapstructure:"maintenanceHorizonDays"`
	FuelPerVolumeThreshold   float64 `mapstructure:"fuelPerVolumeThreshold"`
	FuelPer1000DistanceLimit float64 `mapstructure:"fuelPer1000DistanceLimit"`
	RecentBookingsLimit      int     `mapstructure:"recentBookingsLimit"`
}

func DefaultPolicy() Policy {
	return Policy{
		MaintenanceIntervalDays:  180,
		MaintenanceHorizonDays:   7,
		FuelPerVolumeThreshold:   1.5,
		FuelPer1000DistanceLimit: 450,
		RecentBookingsLimit:      10,
	}
}

// PolicyHolder serves the current Policy and swaps it when the backing file changes.
type PolicyHolder struct {
	current atomic.Value // holds Policy
}

// NewStaticPolicyHolder returns a holder that never reloads.
func NewStaticPolicyHolder(p Policy) *PolicyHolder {
	holder := &PolicyHolder{}
	holder.current.Store(p)
	return holder
}

func NewPolicyHolder(cfg Config, log *zap.Logger) (*PolicyHolder, error) {
	v := viper.New()

	if cfg.PolicyConfigPath != "" {
		v.SetConfigFile(cfg.PolicyConfigPath)
	} else {
		v.SetConfigName("pumpops")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/pumpops")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PUMPOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultPolicy()
	v.SetDefault("policy.maintenanceIntervalDays", defaults.MaintenanceIntervalDays)
	v.SetDefault("policy.maintenanceHorizonDays", defaults.MaintenanceHorizonDays)
	v.SetDefault("policy.fuelPerVolumeThreshold", defaults.FuelPerVolumeThreshold)
	v.SetDefault("policy.fuelPer1000DistanceLimit", defaults.FuelPer1000DistanceLimit)
	v.SetDefault("policy.recentBookingsLimit", defaults.RecentBookingsLimit)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	policy, err := decodePolicy(v)
	if err != nil {
		return nil, err
	}

	holder := NewStaticPolicyHolder(policy)
	if !fileLoaded {
		log.Info("policy file not found, using defaults")
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		updated, err := decodePolicy(v)
		if err != nil {
			log.Warn("policy reload ignored", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("policy reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// decodePolicy goes through Unmarshal rather than UnmarshalKey so keys missing
// from the file fall back to their defaults.
func decodePolicy(v *viper.Viper) (Policy, error) {
	var wrapper struct {
		Policy Policy `mapstructure:"policy"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return Policy{}, err
	}
	if err := validatePolicy(wrapper.Policy); err != nil {
		return Policy{}, err
	}
	return wrapper.Policy, nil
}

func (h *PolicyHolder) Get() Policy {
	return h.current.Load().(Policy)
}

func validatePolicy(p Policy) error {
	if p.MaintenanceIntervalDays <= 0 {
		return errors.New("policy.maintenanceIntervalDays must be positive")
	}
	if p.MaintenanceHorizonDays < 0 {
		return errors.New("policy.maintenanceHorizonDays cannot be negative")
	}
	if p.FuelPerVolumeThreshold <= 0 || p.FuelPer1000DistanceLimit <= 0 {
		return errors.New("policy fuel thresholds must be positive")
	}
	if p.RecentBookingsLimit <= 0 {
		return errors.New("policy.recentBookingsLimit must be positive")
	}
	return nil
}
