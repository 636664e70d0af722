// Package config resolves runtime settings from flags and environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces the tool's environment variables, e.g.
// ISSUECSV_INPUT. The GitHub token additionally falls back to the
// conventional GITHUB_TOKEN variable.
const EnvPrefix = "ISSUECSV"

// Settings is the resolved runtime configuration.
type Settings struct {
	Token       string
	Input       string
	Output      string
	MaxAttempts int
}

// Init wires viper to the environment. Call once before binding flags.
func Init(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("max-attempts", 5)
}

// Load materializes settings from viper. The input path may still be
// empty here; the command prompts for it interactively.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		Token:       v.GetString("token"),
		Input:       v.GetString("input"),
		Output:      v.GetString("output"),
		MaxAttempts: v.GetInt("max-attempts"),
	}
	if s.Token == "" {
		s.Token = os.Getenv("GITHUB_TOKEN")
	}
	if s.MaxAttempts < 1 {
		return Settings{}, fmt.Errorf("max-attempts must be at least 1, got %d", s.MaxAttempts)
	}
	return s, nil
}

// DefaultOutput derives the state-file path from the input path, e.g.
// plan.csv -> plan_output.csv.
func DefaultOutput(input string) string {
	stem := strings.TrimSuffix(input, ".csv")
	return stem + "_output.csv"
}
