/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/mikeb26/gamerunner/archive"
	"github.com/mikeb26/gamerunner/botmeta"
	"github.com/mikeb26/gamerunner/botstore"
	"github.com/mikeb26/gamerunner/config"
	"github.com/mikeb26/gamerunner/internal"
	"github.com/mikeb26/gamerunner/player"
	"github.com/mikeb26/gamerunner/provision"
)

//go:embed help.txt
var helpText string

// cmdHandler defines the signature for command handler functions.
type cmdHandler func(ctx context.Context, args []string)

// commands maps command names to their respective handler functions.
var commands = map[string]cmdHandler{
	"help":      handleHelp,
	"provision": handleProvision,
	"inspect":   handleInspect,
	"upload":    handleUpload,
}

func main() {
	ctx := context.Background()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if handler, ok := commands[cmd]; ok {
		handler(ctx, os.Args[2:])
	} else {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf("%v", helpText)
}

func handleHelp(ctx context.Context, args []string) {
	usage()
}

func handleProvision(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("provision", flag.ExitOnError)
	cfgPath := fs.String("config", internal.DefaultConfigFile,
		"Match configuration file")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	mc, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	prov, err := newProvisioner(ctx, mc)
	if err != nil {
		log.Fatalf("Error preparing bot store: %v", err)
	}
	players, err := prov.Provision(ctx, mc)
	if err != nil {
		log.Fatalf("Error provisioning players: %v", err)
	}

	for _, p := range players {
		fmt.Printf("%v\n", p)
	}
}

// newProvisioner only touches S3 when the match actually needs it.
func newProvisioner(ctx context.Context,
	mc *config.MatchConfig) (*provision.Provisioner, error) {

	prov := &provision.Provisioner{
		Resolver:  player.NewResolver(),
		Extractor: archive.Extractor{},
	}
	if !mc.TournamentMode {
		return prov, nil
	}

	tc := mc.Tournament
	store := botstore.New(tc.BotsContainer, false)
	if err := store.Init(ctx, tc.Profile, tc.Region); err != nil {
		return nil, err
	}
	prov.Retriever = store

	return prov, nil
}

func handleInspect(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	botPath := fs.String("bot", "", "bot.json or directory containing one")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *botPath == "" {
		fmt.Fprintln(os.Stderr, "Please provide a valid --bot path.")
		fs.Usage()
		os.Exit(1)
	}

	desc, err := botmeta.Load(*botPath)
	if err != nil {
		log.Fatalf("Error loading bot: %v", err)
	}

	fmt.Printf("Nickname: %s\n", desc.NickName)
	fmt.Printf("Author: %s\n", desc.Author)
	if desc.Email != "" {
		fmt.Printf("Email: %s\n", desc.Email)
	}
	fmt.Printf("Language: %s\n", desc.BotLanguage)
	fmt.Printf("Executable: %s\n", desc.BotPath())
	if !desc.LastUpdated.IsZero() {
		fmt.Printf("Last Updated: %s\n", desc.LastUpdated.Format("2006-01-02"))
	}
	if _, err := os.Stat(desc.BotDirectory()); err != nil {
		fmt.Printf("Warning: bot directory %s is missing\n", desc.BotDirectory())
	}
}

type upload struct {
	side player.Side
	src  string
	key  string
}

func handleUpload(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucket := fs.String("bucket", "", "Destination bucket")
	profile := fs.String("profile", "", "AWS shared config profile")
	region := fs.String("region", "", "AWS region")
	gzip := fs.Bool("gzip", false, "Compress packages before upload")
	aSrc := fs.String("a", "", "Side A bot package")
	aKey := fs.String("a-key", "", "Key for side A's package")
	bSrc := fs.String("b", "", "Side B bot package")
	bKey := fs.String("b-key", "", "Key for side B's package")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *bucket == "" {
		fmt.Fprintln(os.Stderr, "Please provide a valid --bucket name.")
		fs.Usage()
		os.Exit(1)
	}

	var uploads []upload
	for _, u := range []upload{
		{side: player.SideA, src: *aSrc, key: *aKey},
		{side: player.SideB, src: *bSrc, key: *bKey},
	} {
		if u.src == "" {
			continue
		}
		if u.key == "" {
			fmt.Fprintf(os.Stderr, "Please provide a key for side %v.\n", u.side)
			os.Exit(1)
		}
		uploads = append(uploads, u)
	}
	if len(uploads) == 0 {
		fmt.Fprintln(os.Stderr, "Nothing to upload; provide --a and/or --b.")
		os.Exit(1)
	}

	store := botstore.New(*bucket, *gzip)
	if err := store.Init(ctx, *profile, *region); err != nil {
		log.Fatalf("Error preparing bot store: %v", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, u := range uploads {
		g.Go(func() error {
			if err := store.Put(gctx, u.key, u.src, ""); err != nil {
				return fmt.Errorf("side %v: %w", u.side, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Error uploading bots: %v", err)
	}

	for _, u := range uploads {
		fmt.Printf("uploaded side %v: %s -> %s/%s\n", u.side, u.src, *bucket, u.key)
	}
}
