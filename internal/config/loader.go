package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the
// verification core (spec §6 configuration: z3SolverEnabled, solverTimeoutMs,
// availabilitySlotIncrementMinutes).
type Config struct {
	HTTPPort                         int
	SQLiteDSN                        string
	Z3SolverEnabled                  bool
	SolverTimeout                    time.Duration
	AvailabilitySlotIncrementMinutes int
}

// Load parses configuration values from the current process environment,
// applying the spec's defaults for every optional field.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:                         8080,
		SQLiteDSN:                        "file:meetingverify.db?_foreign_keys=on",
		Z3SolverEnabled:                  true,
		SolverTimeout:                    5 * time.Second,
		AvailabilitySlotIncrementMinutes: 15,
	}

	invalid := make([]string, 0, 4)

	if portValue := strings.TrimSpace(os.Getenv("MEETINGVERIFY_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "MEETINGVERIFY_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("MEETINGVERIFY_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if enabledValue := strings.TrimSpace(os.Getenv("MEETINGVERIFY_Z3_SOLVER_ENABLED")); enabledValue != "" {
		enabled, err := strconv.ParseBool(enabledValue)
		if err != nil {
			invalid = append(invalid, "MEETINGVERIFY_Z3_SOLVER_ENABLED")
		} else {
			cfg.Z3SolverEnabled = enabled
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("MEETINGVERIFY_SOLVER_TIMEOUT_MS")); timeoutValue != "" {
		timeoutMs, err := strconv.Atoi(timeoutValue)
		if err != nil || timeoutMs <= 0 {
			invalid = append(invalid, "MEETINGVERIFY_SOLVER_TIMEOUT_MS")
		} else {
			cfg.SolverTimeout = time.Duration(timeoutMs) * time.Millisecond
		}
	}

	if incrementValue := strings.TrimSpace(os.Getenv("MEETINGVERIFY_AVAILABILITY_SLOT_INCREMENT_MINUTES")); incrementValue != "" {
		increment, err := strconv.Atoi(incrementValue)
		if err != nil || increment <= 0 {
			invalid = append(invalid, "MEETINGVERIFY_AVAILABILITY_SLOT_INCREMENT_MINUTES")
		} else {
			cfg.AvailabilitySlotIncrementMinutes = increment
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
