package policy

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestResolveMergesDefaultGameMode(t *testing.T) {
	dir := t.TempDir()
	p := Paths{BaseDir: dir}
	writeFile(t, p.DefaultPath(), `
version: "base"
draw:
  attempt_cap: 1000
bias:
  hot: 0.4
  cold: 0.4
stake: "2.50"
`)
	writeFile(t, p.GamePath("lotofacil"), `
version: "2025-05"
bias:
  hot: 0.6
stake: "3.00"
`)
	writeFile(t, p.ModePath("lotofacil", "final_0"), `
plan: [pattern_0, pattern_0]
bias:
  run_allow: 0.25
`)

	l := NewLoader(dir)
	params, err := l.Resolve("lotofacil", "", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 1000, params.AttemptCap)
	assert.Equal(t, 0.6, params.HotBias)
	assert.Equal(t, 0.4, params.ColdBias)
	assert.Equal(t, "3.00", params.Stake)
	assert.Equal(t, "2025-05", params.Version)
	assert.Equal(t, StandardPlan, params.Plan)
	assert.Equal(t, DefaultHotSize, params.HotSize)

	params, err = l.Resolve("lotofacil", "final_0", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, []string{"pattern_0", "pattern_0"}, params.Plan)
	assert.Equal(t, 0.25, params.RunAllow)
	assert.Equal(t, 0.6, params.HotBias)
}

func TestResolveOverrides(t *testing.T) {
	l := NewLoader(t.TempDir()) // no files: built-in defaults
	hot := 0.9
	params, err := l.Resolve("lotofacil", "", Overrides{HotBias: &hot, Plan: []string{"cold"}})
	require.NoError(t, err)
	assert.Equal(t, 0.9, params.HotBias)
	assert.Equal(t, []string{"cold"}, params.Plan)
	assert.Equal(t, DefaultAttemptCap, params.AttemptCap)

	bad := 1.5
	_, err = l.Resolve("lotofacil", "", Overrides{ColdBias: &bad})
	assert.ErrorContains(t, err, "bias.cold must be in [0,1]")
}

func TestValidateRawCollectsAllErrors(t *testing.T) {
	cap0, size, neg, stake := 0, 30, -0.1, "-1"
	err := ValidateRaw(RawConfig{
		Draw:  DrawConfig{AttemptCap: &cap0},
		Bias:  BiasConfig{HotSize: &size, RunAllow: &neg},
		Plan:  []string{"hot", "lucky"},
		Stake: &stake,
	})
	require.Error(t, err)
	for _, want := range []string{
		"draw.attempt_cap",
		"bias.hot_size",
		"bias.run_allow",
		`plan[1] unknown strategy "lucky"`,
		"stake must be >= 0",
	} {
		assert.ErrorContains(t, err, want)
	}
	assert.NoError(t, ValidateRaw(RawConfig{}))
}

func TestLoaderCacheAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	p := Paths{BaseDir: dir}
	writeFile(t, p.DefaultPath(), "draw:\n  attempt_cap: 1500\n")

	l := NewLoader(dir)
	params, err := l.Resolve("lotofacil", "", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 1500, params.AttemptCap)

	writeFile(t, p.DefaultPath(), "draw:\n  attempt_cap: 3000\n")
	params, err = l.Resolve("lotofacil", "", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 1500, params.AttemptCap, "served from cache")

	l.Invalidate()
	params, err = l.Resolve("lotofacil", "", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, 3000, params.AttemptCap)
}

func TestLoaderRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, Paths{BaseDir: dir}.GamePath("lotofacil"), "bias: [unclosed")
	_, err := NewLoader(dir).LoadMerged("lotofacil", "")
	assert.ErrorContains(t, err, "read game lotofacil")
}

func TestFileWatcherDetectsChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default.yaml")
	writeFile(t, path, "version: a\n")

	var changed atomic.Int32
	w := NewFileWatcher([]string{path}, 10*time.Millisecond, func(string) { changed.Add(1) })
	w.Start()
	defer w.Stop()

	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, future, future))
	assert.Eventually(t, func() bool { return changed.Load() > 0 }, time.Second, 10*time.Millisecond)
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	assert.Equal(t, DefaultAttemptCap, d.AttemptCap)
	assert.Equal(t, StandardPlan, d.Plan)
	assert.Equal(t, DefaultStake, d.Stake)
}

func TestLoaderRejectsPathNames(t *testing.T) {
	l := NewLoader(t.TempDir())
	for _, tc := range []struct{ game, mode string }{
		{"", ""},
		{"../etc", ""},
		{"lotofacil", "../../secret"},
		{"lotofacil", ".."},
	} {
		_, err := l.Resolve(tc.game, tc.mode, Overrides{})
		assert.ErrorIs(t, err, ErrInvalidName, "%q/%q", tc.game, tc.mode)
	}
}

func TestStakeAmount(t *testing.T) {
	assert.Equal(t, "2.5", Params{Stake: "2.50"}.StakeAmount().String())
	assert.Equal(t, "3", Params{Stake: "three"}.StakeAmount().String())
}

func TestShippedPolicies(t *testing.T) {
	l := NewLoader(filepath.Join("..", "..", "configs"))

	std, err := l.Resolve("lotofacil", "", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, StandardPlan, std.Plan)
	assert.Equal(t, 0.6, std.HotBias)

	f0, err := l.Resolve("lotofacil", "final_0", Overrides{})
	require.NoError(t, err)
	assert.Equal(t, FinalZeroPlan, f0.Plan)
}
