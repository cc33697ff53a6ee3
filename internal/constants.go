/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

const (
	// ConsoleSentinel selects an interactive console player instead of a bot
	ConsoleSentinel = "console"

	// tournament mode api ports handed to the remote bot runners
	PlayerAPort = 55555
	PlayerBPort = 55556

	DefaultScratchDir   = "./tournament-tmp"
	DefaultConfigFile   = "game-runner-config.json"
	DefaultMaxRuntimeMs = 2000
	BotDescriptorFile   = "bot.json"
)
