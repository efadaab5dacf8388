package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/hots-draft-backend/internal/engine"
	"github.com/DoyleJ11/hots-draft-backend/internal/store"
)

const (
	snapshotPath = "../../configs/stats_snapshot.json"
	rulesPath    = "../../configs/hero_config.toml"
)

func testOptions(manual string) runOptions {
	return runOptions{
		Map:           "Cursed Hollow",
		Mode:          "Storm League",
		FirstName:     "Fowl",
		FirstPlayers:  []string{"Alfie#1948", "Bramble#2210", "Corvid#3307", "Dusk#4419", "Ember#5523"},
		SecondName:    "Bell",
		SecondPlayers: []string{"Silverbell#11333", "Fennec#6634", "Gale#7745", "Hollow#8856", "Ivy#9967"},
		Manual:        manual,
		Seed:          1,
		Snapshot:      snapshotPath,
		Rules:         rulesPath,
	}
}

func TestManualSides(t *testing.T) {
	cases := []struct {
		in   string
		want []engine.Side
	}{
		{"first", []engine.Side{engine.SideFirst}},
		{"Second", []engine.Side{engine.SideSecond}},
		{"both", []engine.Side{engine.SideFirst, engine.SideSecond}},
		{"none", nil},
	}
	for _, tc := range cases {
		got, err := manualSides(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.in)
	}
	_, err := manualSides("red")
	assert.Error(t, err)
}

func TestRunThenReplay(t *testing.T) {
	o := testOptions("none")
	o.Out = filepath.Join(t.TempDir(), "draft.json")
	mem := store.NewMemoryStore()

	var out bytes.Buffer
	require.NoError(t, runDraft(context.Background(), o, strings.NewReader(""), &out, zap.NewNop(), mem))
	assert.Contains(t, out.String(), "Draft log")
	assert.Contains(t, out.String(), "Archived as")

	b, err := os.ReadFile(o.Out)
	require.NoError(t, err)
	var exp exportFile
	require.NoError(t, json.Unmarshal(b, &exp))
	assert.Len(t, exp.Records, len(engine.DraftOrder))
	assert.Equal(t, "Fowl", exp.First.Name)

	archived, err := mem.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, store.StatusCompleted, archived[0].Status)
	assert.Equal(t, exp.Records, archived[0].Records)

	root := newRootCmd()
	var replayOut bytes.Buffer
	root.SetOut(&replayOut)
	root.SetArgs([]string{"replay", o.Out, "--snapshot", snapshotPath, "--rules", rulesPath})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, replayOut.String(), "Replayed 16 decisions cleanly")
}

func TestRunIsDeterministic(t *testing.T) {
	runOnce := func() []engine.DecisionRecord {
		o := testOptions("none")
		o.Out = filepath.Join(t.TempDir(), "draft.json")
		require.NoError(t, runDraft(context.Background(), o, strings.NewReader(""), &bytes.Buffer{}, zap.NewNop(), nil))
		b, err := os.ReadFile(o.Out)
		require.NoError(t, err)
		var exp exportFile
		require.NoError(t, json.Unmarshal(b, &exp))
		return exp.Records
	}
	assert.Equal(t, runOnce(), runOnce())
}

func TestRunPromptsManualTeam(t *testing.T) {
	var out bytes.Buffer
	input := strings.Repeat("\n", 40)
	require.NoError(t, runDraft(context.Background(), testOptions("first"), strings.NewReader(input), &out, zap.NewNop(), nil))

	text := out.String()
	assert.Contains(t, text, "Slot 1: Fowl Ban")
	assert.NotContains(t, text, "Slot 2: Bell")
	// Taking every default matches the automatic draft.
	var auto bytes.Buffer
	require.NoError(t, runDraft(context.Background(), testOptions("none"), strings.NewReader(""), &auto, zap.NewNop(), nil))
	tail := func(s string) string { return s[strings.LastIndex(s, "Draft log"):] }
	assert.Equal(t, tail(auto.String()), tail(text))
}

func TestRunStopsWhenInputEnds(t *testing.T) {
	err := runDraft(context.Background(), testOptions("both"), strings.NewReader("\n\n"), &bytes.Buffer{}, zap.NewNop(), nil)
	assert.Error(t, err)
}
