/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package provision

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/mikeb26/gamerunner/config"
	"github.com/mikeb26/gamerunner/internal"
	"github.com/mikeb26/gamerunner/player"
)

var ErrMissingPackageKey = errors.New("missing bot package key")

// Retriever downloads a bot package to destPath.
type Retriever interface {
	Fetch(ctx context.Context, key string, destPath string,
		container string) (string, error)
}

// Extractor unpacks a downloaded package and returns its directory.
type Extractor interface {
	Extract(archivePath string) (string, error)
}

type Provisioner struct {
	Resolver *player.Resolver

	// only consulted in tournament mode
	Retriever Retriever
	Extractor Extractor
}

// sideSlot ties a side to the config fields that describe it.
type sideSlot struct {
	side   player.Side
	config *string
	id     string
	key    string
	port   int
}

func slots(mc *config.MatchConfig) [2]sideSlot {
	return [2]sideSlot{
		{side: player.SideA, config: &mc.PlayerAConfig, id: mc.PlayerAID,
			key: mc.Tournament.PlayerAKey, port: internal.PlayerAPort},
		{side: player.SideB, config: &mc.PlayerBConfig, id: mc.PlayerBID,
			key: mc.Tournament.PlayerBKey, port: internal.PlayerBPort},
	}
}

// Provision builds both players, side A first. In tournament mode each
// side's package is downloaded and extracted, and mc's player config paths
// are rewritten to the extraction directories. Any failure aborts the whole
// call; no partial pair is returned.
func (p *Provisioner) Provision(ctx context.Context,
	mc *config.MatchConfig) ([2]player.Player, error) {

	var players [2]player.Player
	sides := slots(mc)

	if !mc.TournamentMode {
		for i, s := range sides {
			pl, err := p.Resolver.Resolve(*s.config, s.side, mc, s.id, nil)
			if err != nil {
				return [2]player.Player{}, fmt.Errorf("provision: side %v: resolve: %w",
					s.side, err)
			}
			players[i] = pl
		}
		return players, nil
	}

	for _, s := range sides {
		if s.key == "" {
			return [2]player.Player{}, fmt.Errorf("provision: side %v: %w",
				s.side, ErrMissingPackageKey)
		}
	}

	log.Printf("provision: downloading bots from %v", mc.Tournament.BotsContainer)
	var archives [2]string
	for i, s := range sides {
		archive, dir, err := p.retrieve(ctx, mc.Tournament, s)
		if err != nil {
			return [2]player.Player{}, err
		}
		archives[i] = archive
		*s.config = dir
	}

	for i, s := range sides {
		remote := &player.Remote{Port: s.port, Archive: archives[i]}
		pl, err := p.Resolver.Resolve(*s.config, s.side, mc, s.id, remote)
		if err != nil {
			return [2]player.Player{}, fmt.Errorf("provision: side %v: resolve: %w",
				s.side, err)
		}
		players[i] = pl
	}

	return players, nil
}

func (p *Provisioner) retrieve(ctx context.Context, tc config.TournamentConfig,
	s sideSlot) (string, string, error) {

	dest := ScratchPath(tc.ScratchDir)
	archive, err := p.Retriever.Fetch(ctx, s.key, dest, tc.BotsContainer)
	if err != nil {
		return "", "", fmt.Errorf("provision: side %v: fetch: %w", s.side, err)
	}

	dir, err := p.Extractor.Extract(archive)
	if err != nil {
		return "", "", fmt.Errorf("provision: side %v: extract: %w", s.side, err)
	}
	log.Printf("provision: side %v package %v extracted to %v", s.side, s.key, dir)

	return archive, dir, nil
}

// ScratchPath returns a fresh download location inside scratchDir. The uuid
// suffix keeps concurrent downloads from colliding.
func ScratchPath(scratchDir string) string {
	if scratchDir == "" {
		scratchDir = internal.DefaultScratchDir
	}
	return filepath.Join(scratchDir, fmt.Sprintf("player-%s.zip", uuid.NewString()))
}
