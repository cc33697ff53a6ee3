/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package player

import (
	"fmt"

	"github.com/mikeb26/gamerunner/botrunner"
)

type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

type Kind int

const (
	KindConsole Kind = iota
	KindLocalBot
	KindTournamentBot
)

func (k Kind) String() string {
	switch k {
	case KindConsole:
		return "console"
	case KindLocalBot:
		return "local bot"
	case KindTournamentBot:
		return "tournament bot"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Player is a match participant ready to be handed to the match runner. The
// set of implementations is closed: *Console, *LocalBot and *TournamentBot.
type Player interface {
	ID() string
	Name() string
	Kind() Kind

	setID(id string)
}

type identity struct {
	id   string
	name string
}

func (p *identity) ID() string {
	return p.id
}

func (p *identity) Name() string {
	return p.name
}

func (p *identity) setID(id string) {
	p.id = id
}

// Console is a human playing through the terminal.
type Console struct {
	identity
}

func NewConsole(name string) *Console {
	return &Console{identity: identity{name: name}}
}

func (*Console) Kind() Kind {
	return KindConsole
}

func (p *Console) String() string {
	return fmt.Sprintf("%v [id:%v console]", p.name, p.id)
}

// LocalBot is a bot executed on this host by its Runner.
type LocalBot struct {
	identity
	Runner botrunner.Runner
}

func NewLocalBot(name string, runner botrunner.Runner) *LocalBot {
	return &LocalBot{identity: identity{name: name}, Runner: runner}
}

func (*LocalBot) Kind() Kind {
	return KindLocalBot
}

func (p *LocalBot) String() string {
	return fmt.Sprintf("%v [id:%v local maxRuntime:%v]", p.name, p.id,
		p.Runner.MaxRuntime())
}

// TournamentBot is a bot launched by a remote runner that talks to the match
// over Port. Archive is the downloaded package; removing it after the match
// is the caller's job.
type TournamentBot struct {
	identity
	Port    int
	Archive string
}

func NewTournamentBot(name string, port int, archive string) *TournamentBot {
	return &TournamentBot{identity: identity{name: name}, Port: port,
		Archive: archive}
}

func (*TournamentBot) Kind() Kind {
	return KindTournamentBot
}

func (p *TournamentBot) String() string {
	return fmt.Sprintf("%v [id:%v tournament port:%v archive:%v]", p.name,
		p.id, p.Port, p.Archive)
}
