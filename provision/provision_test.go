/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package provision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/mikeb26/gamerunner/archive"
	"github.com/mikeb26/gamerunner/botmeta"
	"github.com/mikeb26/gamerunner/botstore"
	"github.com/mikeb26/gamerunner/config"
	"github.com/mikeb26/gamerunner/player"
)

// fakeRetriever writes a small bot package to each requested destination.
type fakeRetriever struct {
	packages map[string]string // key -> nickname
	dests    []string
	keys     []string
}

func (f *fakeRetriever) Fetch(ctx context.Context, key string, destPath string,
	container string) (string, error) {

	nick, ok := f.packages[key]
	if !ok {
		return "", &botstore.RetrievalError{Key: key, Bucket: container,
			Missing: true}
	}
	f.dests = append(f.dests, destPath)
	f.keys = append(f.keys, key)

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer out.Close()
	zw := zip.NewWriter(out)
	w, err := zw.Create("bot.json")
	if err != nil {
		return "", err
	}
	body := `{"author":"Team ` + nick + `","nickName":"` + nick + `",` +
		`"botLocation":".","botFileName":"bot.jar","botLanguage":"java"}`
	if _, err := w.Write([]byte(body)); err != nil {
		return "", err
	}
	if err := zw.Close(); err != nil {
		return "", err
	}
	return destPath, nil
}

type countingExtractor struct {
	archive.Extractor
	calls int
}

func (e *countingExtractor) Extract(archivePath string) (string, error) {
	e.calls++
	return e.Extractor.Extract(archivePath)
}

func writeLocalBot(t *testing.T, withBinary bool) string {
	t.Helper()
	dir := t.TempDir()
	body := `{"author":"Jane Smith","nickName":"Rook","botLocation":"./bin",` +
		`"botFileName":"rook","botLanguage":"golang"}`
	descPath := filepath.Join(dir, "bot.json")
	if err := os.WriteFile(descPath, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write bot.json: %v", err)
	}
	if withBinary {
		if err := os.MkdirAll(filepath.Join(dir, "bin"), 0o755); err != nil {
			t.Fatalf("failed to create bot dir: %v", err)
		}
		if err := os.WriteFile(filepath.Join(dir, "bin", "rook"),
			[]byte("#!/bin/sh\necho e4\n"), 0o755); err != nil {
			t.Fatalf("failed to write bot: %v", err)
		}
	}
	return descPath
}

func TestProvisionLocal(t *testing.T) {
	mc := &config.MatchConfig{
		PlayerAConfig: "console",
		PlayerBConfig: writeLocalBot(t, true),
		PlayerAID:     "A",
		PlayerBID:     "B",
		MaxRuntimeMs:  1000,
	}
	prov := &Provisioner{Resolver: player.NewResolver()}

	players, err := prov.Provision(context.Background(), mc)
	if err != nil {
		t.Fatalf("Provision returned error: %v", err)
	}
	if _, ok := players[0].(*player.Console); !ok || players[0].ID() != "A" {
		t.Errorf("players[0] = %T id:%v; want console id:A", players[0],
			players[0].ID())
	}
	bot, ok := players[1].(*player.LocalBot)
	if !ok {
		t.Fatalf("players[1] = %T; want *player.LocalBot", players[1])
	}
	if bot.ID() != "B" {
		t.Errorf("players[1].ID() = %q; want B", bot.ID())
	}
	if bot.Runner.MaxRuntime() != time.Second {
		t.Errorf("runner bound = %v; want 1s", bot.Runner.MaxRuntime())
	}
}

func TestProvisionLocalMissingExecutable(t *testing.T) {
	mc := &config.MatchConfig{
		PlayerAConfig: "console",
		PlayerBConfig: writeLocalBot(t, false),
		PlayerAID:     "A",
		PlayerBID:     "B",
		MaxRuntimeMs:  1000,
	}
	prov := &Provisioner{Resolver: player.NewResolver()}

	players, err := prov.Provision(context.Background(), mc)
	var notFound *player.AssetNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *player.AssetNotFoundError, got %v", err)
	}
	if notFound.NickName != "Rook" || notFound.Author != "Jane Smith" ||
		notFound.Language != "golang" {
		t.Errorf("diagnostics = %+v", notFound)
	}
	if !strings.Contains(err.Error(), "side B") {
		t.Errorf("error %q does not name side B", err)
	}
	if players[0] != nil || players[1] != nil {
		t.Errorf("no partial pair should be returned")
	}
}

func newTournamentConfig(t *testing.T) *config.MatchConfig {
	return &config.MatchConfig{
		TournamentMode: true,
		PlayerAConfig:  "unused",
		PlayerBConfig:  "unused",
		PlayerAID:      "alpha-id",
		PlayerBID:      "beta-id",
		MaxRuntimeMs:   1000,
		Tournament: config.TournamentConfig{
			BotsContainer: "submitted-bots",
			ScratchDir:    t.TempDir(),
			PlayerAKey:    "alpha.zip",
			PlayerBKey:    "beta.zip",
		},
	}
}

func TestProvisionTournament(t *testing.T) {
	mc := newTournamentConfig(t)
	retriever := &fakeRetriever{packages: map[string]string{
		"alpha.zip": "Alpha", "beta.zip": "Beta"}}
	extractor := &countingExtractor{}
	prov := &Provisioner{Resolver: player.NewResolver(), Retriever: retriever,
		Extractor: extractor}

	players, err := prov.Provision(context.Background(), mc)
	if err != nil {
		t.Fatalf("Provision returned error: %v", err)
	}
	if len(retriever.dests) != 2 || extractor.calls != 2 {
		t.Fatalf("downloads=%v extractions=%v; want 2/2", len(retriever.dests),
			extractor.calls)
	}
	if retriever.dests[0] == retriever.dests[1] {
		t.Errorf("downloads share a path: %v", retriever.dests[0])
	}
	if retriever.keys[0] != "alpha.zip" || retriever.keys[1] != "beta.zip" {
		t.Errorf("download order = %v; want side A first", retriever.keys)
	}

	wantPorts := [2]int{55555, 55556}
	wantNames := [2]string{"A - Alpha", "B - Beta"}
	wantIDs := [2]string{"alpha-id", "beta-id"}
	for i, p := range players {
		bot, ok := p.(*player.TournamentBot)
		if !ok {
			t.Fatalf("players[%d] = %T; want *player.TournamentBot", i, p)
		}
		if bot.Port != wantPorts[i] {
			t.Errorf("players[%d].Port = %v; want %v", i, bot.Port, wantPorts[i])
		}
		if bot.Archive != retriever.dests[i] {
			t.Errorf("players[%d].Archive = %q; want %q", i, bot.Archive,
				retriever.dests[i])
		}
		if bot.Name() != wantNames[i] || bot.ID() != wantIDs[i] {
			t.Errorf("players[%d] = %v/%v; want %v/%v", i, bot.Name(), bot.ID(),
				wantNames[i], wantIDs[i])
		}
	}

	if mc.PlayerAConfig != archive.DestDir(retriever.dests[0]) ||
		mc.PlayerBConfig != archive.DestDir(retriever.dests[1]) {
		t.Errorf("config paths not rewritten: %v %v", mc.PlayerAConfig,
			mc.PlayerBConfig)
	}
}

func TestProvisionTournamentFetchFailure(t *testing.T) {
	mc := newTournamentConfig(t)
	retriever := &fakeRetriever{packages: map[string]string{"alpha.zip": "Alpha"}}
	extractor := &countingExtractor{}
	prov := &Provisioner{Resolver: player.NewResolver(), Retriever: retriever,
		Extractor: extractor}

	_, err := prov.Provision(context.Background(), mc)
	var retErr *botstore.RetrievalError
	if !errors.As(err, &retErr) {
		t.Fatalf("expected *botstore.RetrievalError, got %v", err)
	}
	if retErr.Key != "beta.zip" {
		t.Errorf("failed key = %q; want beta.zip", retErr.Key)
	}
	if !strings.Contains(err.Error(), "side B") {
		t.Errorf("error %q does not name side B", err)
	}
	if extractor.calls != 1 {
		t.Errorf("extractions = %v; want 1", extractor.calls)
	}
}

func TestProvisionTournamentMissingKey(t *testing.T) {
	mc := newTournamentConfig(t)
	mc.Tournament.PlayerBKey = ""
	retriever := &fakeRetriever{}
	prov := &Provisioner{Resolver: player.NewResolver(), Retriever: retriever,
		Extractor: &countingExtractor{}}

	_, err := prov.Provision(context.Background(), mc)
	if !errors.Is(err, ErrMissingPackageKey) {
		t.Errorf("expected ErrMissingPackageKey, got %v", err)
	}
	if len(retriever.dests) != 0 {
		t.Errorf("nothing should be downloaded when a key is missing")
	}
}

func TestScratchPath(t *testing.T) {
	a := ScratchPath("/tmp/scratch")
	b := ScratchPath("/tmp/scratch")
	if a == b {
		t.Errorf("ScratchPath returned the same path twice: %v", a)
	}
	if filepath.Dir(a) != "/tmp/scratch" || filepath.Ext(a) != ".zip" {
		t.Errorf("ScratchPath = %v", a)
	}
	if filepath.Dir(ScratchPath("")) != filepath.Clean("./tournament-tmp") {
		t.Errorf("empty scratch dir should use the default")
	}
}

// corruptRetriever hands back an archive that is not a zip.
type corruptRetriever struct{}

func (corruptRetriever) Fetch(ctx context.Context, key string, destPath string,
	container string) (string, error) {

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(destPath, []byte("not a zip"), 0o644); err != nil {
		return "", err
	}
	return destPath, nil
}

func TestProvisionTournamentExtractFailure(t *testing.T) {
	mc := newTournamentConfig(t)
	extractor := &countingExtractor{}
	prov := &Provisioner{Resolver: player.NewResolver(),
		Retriever: corruptRetriever{}, Extractor: extractor}

	players, err := prov.Provision(context.Background(), mc)
	var extErr *archive.ExtractionError
	if !errors.As(err, &extErr) {
		t.Fatalf("expected *archive.ExtractionError, got %v", err)
	}
	if !strings.Contains(err.Error(), "side A: extract:") {
		t.Errorf("error %q does not name side A's extract step", err)
	}
	if extractor.calls != 1 {
		t.Errorf("extractions = %v; want 1", extractor.calls)
	}
	if mc.PlayerAConfig != "unused" {
		t.Errorf("PlayerAConfig rewritten to %q after a failed extraction",
			mc.PlayerAConfig)
	}
	if players[0] != nil || players[1] != nil {
		t.Errorf("no partial pair should be returned")
	}
}

// recordingLoader notes every descriptor path it is asked to load.
type recordingLoader struct {
	paths []string
}

func (l *recordingLoader) Load(path string) (*botmeta.Descriptor, error) {
	l.paths = append(l.paths, path)
	return botmeta.Load(path)
}

func TestProvisionLocalSideAFailureStops(t *testing.T) {
	dir := t.TempDir()
	badPath := filepath.Join(dir, "bot.json")
	if err := os.WriteFile(badPath, []byte("{"), 0o644); err != nil {
		t.Fatalf("failed to write bot.json: %v", err)
	}
	goodPath := writeLocalBot(t, true)
	mc := &config.MatchConfig{
		PlayerAConfig: badPath,
		PlayerBConfig: goodPath,
		PlayerAID:     "A",
		PlayerBID:     "B",
		MaxRuntimeMs:  1000,
	}
	loader := &recordingLoader{}
	resolver := player.NewResolver()
	resolver.Loader = loader
	prov := &Provisioner{Resolver: resolver}

	players, err := prov.Provision(context.Background(), mc)
	var loadErr *botmeta.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected *botmeta.LoadError, got %v", err)
	}
	if !strings.Contains(err.Error(), "side A: resolve:") {
		t.Errorf("error %q does not name side A", err)
	}
	if len(loader.paths) != 1 || loader.paths[0] != badPath {
		t.Errorf("loaded %v; side B must not be resolved", loader.paths)
	}
	if players[0] != nil || players[1] != nil {
		t.Errorf("no partial pair should be returned")
	}
}
