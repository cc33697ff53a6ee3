/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package botrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/mikeb26/gamerunner/botmeta"
)

var (
	ErrUnsupportedLanguage = errors.New("unsupported bot language")
	ErrTimedOut            = errors.New("bot exceeded maximum runtime")
)

// Runner launches and supervises a single local bot process.
type Runner interface {
	Command() []string
	MaxRuntime() time.Duration
	Run(ctx context.Context, args ...string) (*Result, error)
}

type Result struct {
	Stdout   string
	Stderr   string
	Elapsed  time.Duration
	TimedOut bool
}

// launchers maps a normalized language name to the interpreter (if any) that
// runs the bot's entry point.
var launchers = map[string][]string{
	"java":       {"java", "-jar"},
	"kotlin":     {"java", "-jar"},
	"scala":      {"java", "-jar"},
	"python":     {"python3"},
	"python3":    {"python3"},
	"javascript": {"node"},
	"typescript": {"node"},
	"c#core":     {"dotnet"},
	"csharpcore": {"dotnet"},
	"dotnet":     {"dotnet"},
	"fsharp":     {"dotnet"},
	"julia":      {"julia"},
	"php":        {"php"},
	"c++":        nil,
	"cplusplus":  nil,
	"golang":     nil,
	"go":         nil,
	"rust":       nil,
	"haskell":    nil,
}

func normalizeLanguage(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}

// Factory builds runners for bots described by a botmeta.Descriptor.
type Factory struct{}

func (Factory) Create(desc *botmeta.Descriptor,
	maxRuntime time.Duration) (Runner, error) {

	r, err := New(desc, maxRuntime)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// New returns a LocalRunner for desc bounded by maxRuntime. A zero maxRuntime
// means the bot is never cut off.
func New(desc *botmeta.Descriptor, maxRuntime time.Duration) (*LocalRunner, error) {
	launcher, ok := launchers[normalizeLanguage(desc.BotLanguage)]
	if !ok {
		return nil, fmt.Errorf("botrunner.new: %w %q for %v", ErrUnsupportedLanguage,
			desc.BotLanguage, desc.NickName)
	}

	argv := append(append([]string(nil), launcher...), desc.BotPath())
	return &LocalRunner{
		desc:       desc,
		argv:       argv,
		dir:        desc.BotDirectory(),
		maxRuntime: maxRuntime,
	}, nil
}

type LocalRunner struct {
	desc       *botmeta.Descriptor
	argv       []string
	dir        string
	maxRuntime time.Duration
}

func (r *LocalRunner) Command() []string {
	return append([]string(nil), r.argv...)
}

func (r *LocalRunner) MaxRuntime() time.Duration {
	return r.maxRuntime
}

// Run executes the bot once with args appended to its command line. The
// process is killed when it outlives MaxRuntime; the partial output is still
// returned alongside ErrTimedOut.
func (r *LocalRunner) Run(ctx context.Context, args ...string) (*Result, error) {
	if r.maxRuntime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.maxRuntime)
		defer cancel()
	}

	argv := append(r.Command(), args...)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.dir
	cmd.WaitDelay = 250 * time.Millisecond
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := &Result{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Elapsed: time.Since(start),
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		log.Printf("botrunner.run: %v killed after %v", r.desc.NickName,
			r.maxRuntime)
		return res, fmt.Errorf("botrunner.run: %v: %w", r.desc.NickName,
			ErrTimedOut)
	}
	if err != nil {
		return res, fmt.Errorf("botrunner.run: %v failed: %w", r.desc.NickName,
			err)
	}

	return res, nil
}
