/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mikeb26/gamerunner/internal"
)

// MatchConfig describes how both sides of a single match are provisioned.
type MatchConfig struct {
	TournamentMode bool
	PlayerAConfig  string
	PlayerBConfig  string
	PlayerAID      string
	PlayerBID      string
	MaxRuntimeMs   int64
	Tournament     TournamentConfig
}

// TournamentConfig is only consulted when TournamentMode is set.
type TournamentConfig struct {
	// Profile names the AWS shared config profile holding the credentials
	// for the bot store. Empty selects the default credential chain.
	Profile       string
	Region        string
	BotsContainer string
	ScratchDir    string

	// keys of the submitted packages for each side; normally sourced from
	// the PLAYER_A and PLAYER_B environment variables
	PlayerAKey string
	PlayerBKey string
}

func (mc *MatchConfig) MaxRuntime() time.Duration {
	return internal.MillisToDuration(mc.MaxRuntimeMs)
}

// Validate checks the fields needed before provisioning can begin.
func (mc *MatchConfig) Validate() error {
	var errs []error
	if mc.PlayerAConfig == "" {
		errs = append(errs, errors.New("player-a is required"))
	}
	if mc.PlayerBConfig == "" {
		errs = append(errs, errors.New("player-b is required"))
	}
	if mc.MaxRuntimeMs < 0 {
		errs = append(errs, fmt.Errorf("max-runtime-ms must not be negative: %v",
			mc.MaxRuntimeMs))
	}
	if mc.TournamentMode && mc.Tournament.BotsContainer == "" {
		errs = append(errs, errors.New("tournament.bots-container is required in tournament mode"))
	}

	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("player-a", internal.ConsoleSentinel)
	v.SetDefault("player-b", internal.ConsoleSentinel)
	v.SetDefault("player-a-id", "A")
	v.SetDefault("player-b-id", "B")
	v.SetDefault("max-runtime-ms", internal.DefaultMaxRuntimeMs)
	v.SetDefault("is-tournament-mode", false)
	v.SetDefault("tournament.scratch-dir", internal.DefaultScratchDir)
}

// Load reads a JSON match configuration from path. Every key may be
// overridden from the environment as GAMERUNNER_<KEY> (dashes and dots
// become underscores); the tournament package keys come from PLAYER_A and
// PLAYER_B.
func Load(path string) (*MatchConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("GAMERUNNER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("tournament.player-a-key", "PLAYER_A"); err != nil {
		return nil, fmt.Errorf("config.load: %w", err)
	}
	if err := v.BindEnv("tournament.player-b-key", "PLAYER_B"); err != nil {
		return nil, fmt.Errorf("config.load: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config.load: failed to read %v: %w", path, err)
	}

	mc := fromViper(v)
	if err := mc.Validate(); err != nil {
		return nil, fmt.Errorf("config.load: invalid config %v: %w", path, err)
	}

	return mc, nil
}

func fromViper(v *viper.Viper) *MatchConfig {
	return &MatchConfig{
		TournamentMode: v.GetBool("is-tournament-mode"),
		PlayerAConfig:  v.GetString("player-a"),
		PlayerBConfig:  v.GetString("player-b"),
		PlayerAID:      v.GetString("player-a-id"),
		PlayerBID:      v.GetString("player-b-id"),
		MaxRuntimeMs:   v.GetInt64("max-runtime-ms"),
		Tournament: TournamentConfig{
			Profile:       v.GetString("tournament.profile"),
			Region:        v.GetString("tournament.region"),
			BotsContainer: v.GetString("tournament.bots-container"),
			ScratchDir:    v.GetString("tournament.scratch-dir"),
			PlayerAKey:    v.GetString("tournament.player-a-key"),
			PlayerBKey:    v.GetString("tournament.player-b-key"),
		},
	}
}
