package policy

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrInvalidName = errors.New("invalid game or mode name")

func checkName(kind, s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("%w: %s %q", ErrInvalidName, kind, s)
	}
	return nil
}

// Paths helper for default/game/mode files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/configs
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "games", "default.yaml")
}
func (p Paths) GamePath(game string) string {
	return filepath.Join(p.BaseDir, "games", game+".yaml")
}
func (p Paths) ModePath(game, mode string) string {
	return filepath.Join(p.BaseDir, "games", game, "modes", mode+".yaml")
}

// Files lists every path LoadMerged may read for game/modes, for the watcher.
func (p Paths) Files(game string, modes ...string) []string {
	out := []string{p.DefaultPath(), p.GamePath(game)}
	for _, m := range modes {
		out = append(out, p.ModePath(game, m))
	}
	return out
}

// Loader reads YAML configs and merges default → game → mode.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: "game" or "game/mode"
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → game → mode (mode optional).
// It returns the merged RawConfig (without normalization).
func (l *Loader) LoadMerged(game, mode string) (RawConfig, error) {
	if err := checkName("game", game); err != nil {
		return RawConfig{}, err
	}
	if mode != "" {
		if err := checkName("mode", mode); err != nil {
			return RawConfig{}, err
		}
	}
	key := game
	if mode != "" {
		key = game + "/" + mode
	}
	l.mu.RLock()
	if cfg, ok := l.cache[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	// Read files from disk
	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	gameCfg, err := readYAML(l.paths.GamePath(game))
	if err != nil {
		return RawConfig{}, fmt.Errorf("read game %s: %w", game, err)
	}
	var modeCfg RawConfig
	if mode != "" {
		modeCfg, err = readYAML(l.paths.ModePath(game, mode))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read mode %s/%s: %w", game, mode, err)
		}
	}

	// Merge: default <- game <- mode
	gameLevel := mergeRaw(defCfg, gameCfg)
	merged := mergeRaw(gameLevel, modeCfg)

	l.mu.Lock()
	l.cache[game] = gameLevel
	l.cache[key] = merged
	l.mu.Unlock()

	return merged, nil
}

// Resolve loads, validates and normalizes the policy for game/mode, then applies overrides.
func (l *Loader) Resolve(game, mode string, o Overrides) (Params, error) {
	raw, err := l.LoadMerged(game, mode)
	if err != nil {
		return Params{}, err
	}
	raw = o.apply(raw)
	if err := ValidateRaw(raw); err != nil {
		return Params{}, err
	}
	return normalize(raw), nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw performs a shallow merge: 'b' overrides 'a' where non-zero/non-nil.
// For slices (Plan), 'b' replaces 'a' if provided.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	// top-level scalars
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if b.Stake != nil {
		out.Stake = b.Stake
	}
	if len(b.Plan) > 0 {
		out.Plan = append([]string(nil), b.Plan...)
	}

	// draw
	if b.Draw.AttemptCap != nil {
		out.Draw.AttemptCap = b.Draw.AttemptCap
	}
	if b.Draw.MaxPicks != nil {
		out.Draw.MaxPicks = b.Draw.MaxPicks
	}

	// bias
	if b.Bias.Hot != nil {
		out.Bias.Hot = b.Bias.Hot
	}
	if b.Bias.Cold != nil {
		out.Bias.Cold = b.Bias.Cold
	}
	if b.Bias.HotSize != nil {
		out.Bias.HotSize = b.Bias.HotSize
	}
	if b.Bias.ColdSize != nil {
		out.Bias.ColdSize = b.Bias.ColdSize
	}
	if b.Bias.RunAllow != nil {
		out.Bias.RunAllow = b.Bias.RunAllow
	}

	return out
}
