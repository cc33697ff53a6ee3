/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package player

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/mikeb26/gamerunner/botmeta"
	"github.com/mikeb26/gamerunner/botrunner"
	"github.com/mikeb26/gamerunner/config"
	"github.com/mikeb26/gamerunner/internal"
)

var ErrMissingRemote = errors.New("tournament player requires a port and archive")

// AssetNotFoundError reports a local bot whose executable is missing on disk.
type AssetNotFoundError struct {
	Language string
	Author   string
	NickName string
	Path     string
}

func (e *AssetNotFoundError) Error() string {
	return fmt.Sprintf("could not find %v bot file for %v(%v) at %v",
		e.Language, e.Author, e.NickName, e.Path)
}

type MetadataLoader interface {
	Load(path string) (*botmeta.Descriptor, error)
}

type RunnerFactory interface {
	Create(desc *botmeta.Descriptor, maxRuntime time.Duration) (botrunner.Runner, error)
}

type metadataLoaderFunc func(path string) (*botmeta.Descriptor, error)

func (f metadataLoaderFunc) Load(path string) (*botmeta.Descriptor, error) {
	return f(path)
}

// Remote carries the tournament-only attributes of a side.
type Remote struct {
	Port    int
	Archive string
}

// Resolver turns one side's configuration into a Player.
type Resolver struct {
	Loader  MetadataLoader
	Runners RunnerFactory
}

// NewResolver returns a Resolver that reads bot.json descriptors from disk
// and launches local bots with botrunner.
func NewResolver() *Resolver {
	return &Resolver{
		Loader:  metadataLoaderFunc(botmeta.Load),
		Runners: botrunner.Factory{},
	}
}

// Resolve builds the player for side. sideConfig is either the console
// sentinel or the path to the side's bot package. remote must be set in
// tournament mode and is ignored otherwise.
func (r *Resolver) Resolve(sideConfig string, side Side, mc *config.MatchConfig,
	playerID string, remote *Remote) (Player, error) {

	p, err := r.build(sideConfig, side, mc, remote)
	if err != nil {
		return nil, err
	}
	p.setID(playerID)

	return p, nil
}

func (r *Resolver) build(sideConfig string, side Side, mc *config.MatchConfig,
	remote *Remote) (Player, error) {

	// interactive play; no bot package to validate
	if sideConfig == internal.ConsoleSentinel {
		return NewConsole(fmt.Sprintf("BotPlayer %v", side)), nil
	}

	desc, err := r.Loader.Load(sideConfig)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%v - %v", side, desc.NickName)

	if mc.TournamentMode {
		if remote == nil {
			return nil, fmt.Errorf("player.resolve: %v: %w", name, ErrMissingRemote)
		}
		log.Printf("player.resolve: instantiating tournament player %v", name)
		return NewTournamentBot(name, remote.Port, remote.Archive), nil
	}

	log.Printf("player.resolve: instantiating local player %v with bot %v",
		name, desc.BotPath())
	botPath, err := filepath.Abs(desc.BotPath())
	if err != nil {
		return nil, fmt.Errorf("player.resolve: %v: %w", name, err)
	}
	if _, err := os.Stat(botPath); err != nil {
		return nil, &AssetNotFoundError{
			Language: desc.BotLanguage,
			Author:   desc.Author,
			NickName: desc.NickName,
			Path:     botPath,
		}
	}

	runner, err := r.Runners.Create(desc, mc.MaxRuntime())
	if err != nil {
		return nil, err
	}

	return NewLocalBot(name, runner), nil
}
