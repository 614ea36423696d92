// Package config loads solver and horizon configuration from a YAML file
// via viper, the way niceyeti-tabular's reinforcement.FromYaml loads
// training configuration: a throwaway *viper.Viper per call, pointed at
// one file, unmarshaled into a plain struct.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/nmpc-go/cgmres"
	"github.com/nmpc-go/cgmres/cgmreserr"
	"github.com/nmpc-go/cgmres/horizon"
)

// raw mirrors the YAML document shape. SamplingTime and Dt alias the same
// logical field (the repo this module grew from used both spellings
// interchangeably); Load rejects a document that sets both to disagreeing
// values rather than silently preferring one.
type raw struct {
	SamplingTime            float64 `mapstructure:"sampling_time"`
	Dt                      float64 `mapstructure:"dt"`
	Zeta                    float64 `mapstructure:"zeta"`
	FiniteDifferenceEpsilon float64 `mapstructure:"finite_difference_epsilon"`
	MaxIter                 int     `mapstructure:"max_iter"`
	OptErrTol               float64 `mapstructure:"opterr_tol"`
	VerboseLevel            int     `mapstructure:"verbose_level"`
	KMax                    int     `mapstructure:"k_max"`

	Horizon struct {
		TFinal float64 `mapstructure:"t_final"`
		Alpha  float64 `mapstructure:"alpha"`
		Anchor float64 `mapstructure:"anchor"`
	} `mapstructure:"horizon"`
}

// Document is the fully resolved, validated configuration loaded from a
// YAML file: a solver Config paired with a Horizon schedule.
type Document struct {
	Solver  cgmres.Config
	Horizon horizon.Schedule
}

// Load reads path as YAML and returns a validated Document. Both the dt
// and sampling_time keys are accepted for the sampling period; if both
// are present and disagree, Load returns a configuration error rather
// than guessing which one the caller meant.
func Load(path string) (*Document, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: config: %s", cgmreserr.ErrConfig, err)
	}

	var r raw
	if err := vp.Unmarshal(&r); err != nil {
		return nil, fmt.Errorf("%w: config: %s", cgmreserr.ErrConfig, err)
	}

	dt, err := resolveSamplingTime(r)
	if err != nil {
		return nil, err
	}

	sched, err := horizon.New(r.Horizon.TFinal, r.Horizon.Alpha, r.Horizon.Anchor)
	if err != nil {
		return nil, err
	}

	cfg := cgmres.Config{
		SamplingTime:            dt,
		Zeta:                    r.Zeta,
		FiniteDifferenceEpsilon: r.FiniteDifferenceEpsilon,
		MaxIter:                 r.MaxIter,
		OptErrTol:               r.OptErrTol,
		VerboseLevel:            r.VerboseLevel,
		KMax:                    r.KMax,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Document{Solver: cfg, Horizon: sched}, nil
}

func resolveSamplingTime(r raw) (float64, error) {
	switch {
	case r.Dt != 0 && r.SamplingTime != 0:
		if r.Dt != r.SamplingTime {
			return 0, fmt.Errorf("%w: config: dt=%g and sampling_time=%g disagree", cgmreserr.ErrConfig, r.Dt, r.SamplingTime)
		}
		return r.Dt, nil
	case r.Dt != 0:
		return r.Dt, nil
	default:
		return r.SamplingTime, nil
	}
}
