// Package gate decides at startup which option providers are registered.
package gate

import (
	"log/slog"
	"slices"

	"github.com/jmylchreest/devopts/internal/option"
	"github.com/jmylchreest/devopts/internal/registry"
	"github.com/jmylchreest/devopts/internal/settings"
)

// Plugin pairs an option with the condition under which it is offered.
type Plugin struct {
	Option option.Option
	// Gate reports whether the option should be registered. Nil means always.
	Gate func(settings.Reader) bool
}

// Result reports what Assemble did with each plugin.
type Result struct {
	Registered []string
	Gated      []string
	Disabled   []string
	Failed     []string
}

// Assemble registers every plugin whose gate passes and whose name is not in
// disabled. Gates are evaluated once; later settings changes do not add or
// remove options.
func Assemble(reg *registry.Registry, plugins []Plugin, r settings.Reader, disabled []string, logger *slog.Logger) Result {
	if logger == nil {
		logger = slog.Default()
	}

	var res Result
	for _, p := range plugins {
		if p.Option == nil {
			logger.Error("plugin without option")
			res.Failed = append(res.Failed, "")
			continue
		}
		name := p.Option.Name()

		if slices.Contains(disabled, name) {
			logger.Debug("option disabled by config", "option", name)
			res.Disabled = append(res.Disabled, name)
			continue
		}

		if p.Gate != nil && !p.Gate(r) {
			logger.Debug("option gated off", "option", name)
			res.Gated = append(res.Gated, name)
			continue
		}

		if err := reg.Register(p.Option); err != nil {
			res.Failed = append(res.Failed, name)
			continue
		}
		res.Registered = append(res.Registered, name)
	}

	logger.Info("options assembled",
		"registered", len(res.Registered),
		"gated", len(res.Gated),
		"disabled", len(res.Disabled),
		"failed", len(res.Failed))
	return res
}

// EnhancedPowerSaving reports whether the device is in enhanced power saving
// mode. A missing key counts as normal mode.
func EnhancedPowerSaving(r settings.Reader) bool {
	mode, err := r.GetInt(settings.KeyPowerSavingMode)
	if err != nil {
		return false
	}
	return mode == settings.PowerSavingEnhanced
}

// NotInEnhancedPowerSaving is a Gate hiding options in enhanced power saving
// mode.
func NotInEnhancedPowerSaving(r settings.Reader) bool {
	return !EnhancedPowerSaving(r)
}

// AccessibilityShortcut is a Gate passing only when the power key hold
// shortcut is set to accessibility.
func AccessibilityShortcut(r settings.Reader) bool {
	v, err := r.GetInt(settings.KeyAccessibilityPowerHold)
	return err == nil && v == settings.PowerKeyShortcutAccessibility
}
