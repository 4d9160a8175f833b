// Package bmi implements the body mass index calculator plugin. It is
// pure local computation: no network, no storage, no events.
package bmi

import (
	"context"
	"errors"
	"fmt"

	"github.com/HerbHall/healthgenie/pkg/plugin"
	"go.uber.org/zap"
)

// Compile-time interface guards.
var (
	_ plugin.Plugin        = (*Module)(nil)
	_ plugin.HTTPProvider  = (*Module)(nil)
	_ plugin.HealthChecker = (*Module)(nil)
)

// ErrInvalidMeasurements is returned when weight or height is not positive.
var ErrInvalidMeasurements = errors.New("bmi: weight and height must be positive")

// Category is one of the four BMI advisory bands.
type Category struct {
	Key      string `json:"key"`      // stable identifier: underweight, normal, overweight, obese
	Label    string `json:"label"`    // display name
	Advice   string `json:"advice"`   // one-line coaching message
	Severity string `json:"severity"` // page banner tone: success, warning, error
}

// Compute returns the body mass index for weight in kilograms and height
// in centimeters.
func Compute(weightKg, heightCm float64) (float64, error) {
	if weightKg <= 0 || heightCm <= 0 {
		return 0, ErrInvalidMeasurements
	}
	heightM := heightCm / 100
	return weightKg / (heightM * heightM), nil
}

// Classify maps a BMI value onto the four advisory bands.
func Classify(bmi float64) Category {
	switch {
	case bmi < 18.5:
		return Category{
			Key:      "underweight",
			Label:    "Underweight",
			Advice:   "Eat more nutritious foods!",
			Severity: "warning",
		}
	case bmi < 25:
		return Category{
			Key:      "normal",
			Label:    "Normal weight",
			Advice:   "Great job!",
			Severity: "success",
		}
	case bmi < 30:
		return Category{
			Key:      "overweight",
			Label:    "Overweight",
			Advice:   "Consider more exercise",
			Severity: "warning",
		}
	default:
		return Category{
			Key:      "obese",
			Label:    "Obese",
			Advice:   "Please consult a doctor",
			Severity: "error",
		}
	}
}

// Module implements the bmi plugin.
type Module struct {
	logger *zap.Logger
}

// New creates a new bmi plugin instance.
func New() *Module {
	return &Module{}
}

func (m *Module) Info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:        "bmi",
		Version:     "0.1.0",
		Description: "Body mass index calculator",
		APIVersion:  plugin.APIVersionCurrent,
	}
}

func (m *Module) Init(_ context.Context, deps plugin.Dependencies) error {
	m.logger = deps.Logger
	if m.logger == nil {
		return fmt.Errorf("bmi: logger dependency is required")
	}
	return nil
}

func (m *Module) Start(_ context.Context) error { return nil }

func (m *Module) Stop(_ context.Context) error { return nil }

// Health implements plugin.HealthChecker. The calculator has no external
// dependencies, so it is always healthy.
func (m *Module) Health(_ context.Context) plugin.HealthStatus {
	return plugin.HealthStatus{Status: "healthy"}
}
