package domain

import (
	"errors"
	"fmt"
)

// Params holds the epidemiological constants of a simulation.
// They are not calibrated against real data.
type Params struct {
	IncubationDays int `json:"incubation_days" yaml:"incubation_days" mapstructure:"incubation_days"`
	InfectiousDays int `json:"infectious_days" yaml:"infectious_days" mapstructure:"infectious_days"`
	QuarantineDays int `json:"quarantine_days" yaml:"quarantine_days" mapstructure:"quarantine_days"`

	BaseTransmission float64 `json:"base_transmission" yaml:"base_transmission" mapstructure:"base_transmission"`
	ContactsPerDay   int     `json:"contacts_per_day" yaml:"contacts_per_day" mapstructure:"contacts_per_day"`

	// InfectionRadiusM and TargetDegree drive graph generation.
	InfectionRadiusM float64 `json:"infection_radius_m" yaml:"infection_radius_m" mapstructure:"infection_radius_m"`
	TargetDegree     int     `json:"target_degree" yaml:"target_degree" mapstructure:"target_degree"`

	// LockdownThreshold is the I-count that triggers the irreversible lockdown.
	LockdownThreshold int     `json:"lockdown_threshold" yaml:"lockdown_threshold" mapstructure:"lockdown_threshold"`
	LockdownStrength  float64 `json:"lockdown_strength" yaml:"lockdown_strength" mapstructure:"lockdown_strength"`

	TestIsolateRate float64 `json:"test_isolate_rate" yaml:"test_isolate_rate" mapstructure:"test_isolate_rate"`
}

// DefaultParams returns the reference parameter set.
func DefaultParams() Params {
	return Params{
		IncubationDays:    5,
		InfectiousDays:    10,
		QuarantineDays:    10,
		BaseTransmission:  0.09,
		ContactsPerDay:    8,
		InfectionRadiusM:  25.0,
		TargetDegree:      8,
		LockdownThreshold: 150,
		LockdownStrength:  0.65,
		TestIsolateRate:   0.08,
	}
}

// Validate checks ranges that would make the model meaningless.
func (p Params) Validate() error {
	var errs []error
	if p.IncubationDays < 0 || p.InfectiousDays < 0 || p.QuarantineDays < 0 {
		errs = append(errs, errors.New("day counts must not be negative"))
	}
	if p.ContactsPerDay < 0 {
		errs = append(errs, errors.New("contacts_per_day must not be negative"))
	}
	if p.InfectionRadiusM <= 0 {
		errs = append(errs, fmt.Errorf("infection_radius_m must be positive, got %v", p.InfectionRadiusM))
	}
	if p.TargetDegree < 1 {
		errs = append(errs, fmt.Errorf("target_degree must be at least 1, got %d", p.TargetDegree))
	}
	for name, v := range map[string]float64{
		"base_transmission": p.BaseTransmission,
		"lockdown_strength": p.LockdownStrength,
		"test_isolate_rate": p.TestIsolateRate,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1], got %v", name, v))
		}
	}
	return errors.Join(errs...)
}
