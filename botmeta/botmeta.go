/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package botmeta

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mikeb26/gamerunner/internal"
)

// Descriptor identifies a bot and locates its executable. It is vended by
// each bot package as bot.json.
type Descriptor struct {
	Author      string `json:"author"`
	Email       string `json:"email"`
	NickName    string `json:"nickName"`
	BotLocation string `json:"botLocation"`
	BotFileName string `json:"botFileName"`
	BotLanguage string `json:"botLanguage"`
	RawUpdated  string `json:"lastUpdated"`

	LastUpdated time.Time `json:"-"`

	// directory containing the bot.json this descriptor was loaded from
	baseDir string
}

// LoadError reports a bot descriptor that could not be read or parsed.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("botmeta.load: failed to load bot descriptor %v: %v",
		e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads a bot descriptor. path may name the descriptor file itself or a
// directory holding a bot.json.
func Load(path string) (*Descriptor, error) {
	descPath := path
	fi, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if fi.IsDir() {
		descPath = filepath.Join(path, internal.BotDescriptorFile)
	}

	data, err := os.ReadFile(descPath)
	if err != nil {
		return nil, &LoadError{Path: descPath, Err: err}
	}

	return parse(data, descPath)
}

func parse(data []byte, descPath string) (*Descriptor, error) {
	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, &LoadError{Path: descPath, Err: err}
	}
	if err := desc.validate(); err != nil {
		return nil, &LoadError{Path: descPath, Err: err}
	}

	updated, err := internal.ParseDateOrZero(strings.TrimSpace(desc.RawUpdated))
	if err != nil {
		return nil, &LoadError{Path: descPath,
			Err: fmt.Errorf("invalid lastUpdated %q: %w", desc.RawUpdated, err)}
	}
	desc.LastUpdated = updated
	baseDir, err := filepath.Abs(filepath.Dir(descPath))
	if err != nil {
		return nil, &LoadError{Path: descPath, Err: err}
	}
	desc.baseDir = baseDir

	return &desc, nil
}

func (d *Descriptor) validate() error {
	var missing []string
	if d.NickName == "" {
		missing = append(missing, "nickName")
	}
	if d.BotLanguage == "" {
		missing = append(missing, "botLanguage")
	}
	if d.BotFileName == "" {
		missing = append(missing, "botFileName")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %v",
			strings.Join(missing, ", "))
	}

	return nil
}

// BotDirectory returns the absolute directory the bot runs from. botLocation
// is always relative to the descriptor; a leading "/" means the package root.
func (d *Descriptor) BotDirectory() string {
	return filepath.Join(d.baseDir, d.BotLocation)
}

// BotPath returns the location of the bot's executable or entry point.
func (d *Descriptor) BotPath() string {
	return filepath.Join(d.BotDirectory(), d.BotFileName)
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%v by %v (%v)", d.NickName, d.Author, d.BotLanguage)
}
