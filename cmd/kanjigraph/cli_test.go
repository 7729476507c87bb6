package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/kanjigraph/pkg/entity"
	"github.com/japaniel/kanjigraph/pkg/searchindex"
)

func fixture() []entity.Entity {
	text := func(s string) entity.Characters { return entity.Characters{Type: entity.CharactersText, Value: s} }
	return []entity.Entity{
		{ID: 1, Type: entity.Radical, PrimaryMeaning: "Grass", Characters: text("艹"),
			Related: entity.Relations{Kanji: []int64{10}}},
		{ID: 10, Type: entity.Kanji, PrimaryMeaning: "Potato", PrimaryReading: "いも", Characters: text("芋"),
			Related: entity.Relations{Radicals: []int64{1}, Vocabulary: []int64{100, 101}}},
		{ID: 100, Type: entity.Vocabulary, PrimaryMeaning: "Potato", PrimaryReading: "じゃがいも", Characters: text("じゃが芋"),
			Related: entity.Relations{Kanji: []int64{10}}},
		{ID: 101, Type: entity.Vocabulary, PrimaryMeaning: "Yam", PrimaryReading: "いも", Characters: text("芋"),
			Related: entity.Relations{Kanji: []int64{10}}},
	}
}

type env struct {
	dir     string
	records string
	config  string
	index   string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	e := &env{dir: t.TempDir()}

	e.records = filepath.Join(e.dir, "records")
	require.NoError(t, os.MkdirAll(filepath.Join(e.records, "data"), 0o755))
	for _, ent := range fixture() {
		raw, err := json.Marshal(ent)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(e.records, "data", strconv.FormatInt(ent.ID, 10)+".json"), raw, 0o644))
	}

	e.index = filepath.Join(e.dir, "index.bin")
	require.NoError(t, os.WriteFile(e.index, indexBlob(t), 0o644))

	e.config = filepath.Join(e.dir, "kanjigraph.yaml")
	cfg := "log:\n  level: error\n" +
		"index:\n  path: " + e.index + "\n" +
		"store:\n  backend: sqlite\n" +
		"  sqlite_path: " + filepath.Join(e.dir, "entities.db") + "\n" +
		"  badger_dir: " + filepath.Join(e.dir, "badger") + "\n"
	require.NoError(t, os.WriteFile(e.config, []byte(cfg), 0o644))
	return e
}

func indexBlob(t *testing.T) []byte {
	t.Helper()
	b := searchindex.NewBuilder(nil)
	for _, ent := range fixture() {
		b.Add(searchindex.DocumentFor(ent))
	}
	var buf bytes.Buffer
	require.NoError(t, b.Build().Encode(&buf))
	return buf.Bytes()
}

func (e *env) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--config", e.config))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLoadAndView(t *testing.T) {
	e := newEnv(t)

	out, err := e.run(t, "", "load", e.records, "--mirror", "--batch", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "loaded 4 records (1 radicals, 1 kanji, 2 vocabulary), skipped 0")
	assert.Contains(t, out, "database holds 1 radicals, 1 kanji, 2 vocabulary")

	out, err = e.run(t, "", "view", "kanji", "10")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5, out)
	assert.True(t, strings.HasPrefix(lines[0], "radical"), lines[0])
	assert.Contains(t, lines[1], "[芋*]")
	assert.Contains(t, lines[2], "じゃが芋  芋")
	assert.Equal(t, "focus: 10 kanji Potato, いも", lines[3])
	assert.Equal(t, "moves: up=1 down=100", lines[4])

	out, err = e.run(t, "", "view", "character", "10", "--move", "down,right", "--store", "badger")
	require.NoError(t, err)
	assert.Contains(t, out, "focus: 101 vocabulary Yam, いも")
	assert.Contains(t, out, "moves: up=10 left=100")
}

func TestViewErrors(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "", "load", e.records)
	require.NoError(t, err)

	_, err = e.run(t, "", "view", "planet", "10")
	assert.ErrorContains(t, err, "unknown entity type")
	_, err = e.run(t, "", "view", "kanji", "999")
	assert.ErrorContains(t, err, "not found")
	_, err = e.run(t, "", "view", "radical", "10")
	assert.ErrorContains(t, err, "is a kanji, not a radical")
	_, err = e.run(t, "", "view", "kanji", "10", "--store", "http")
	assert.ErrorContains(t, err, "base_url")
}

func TestSearch(t *testing.T) {
	e := newEnv(t)
	out, err := e.run(t, "", "search", "jagaimo")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2, out)
	assert.Equal(t, "query: (jagaimo OR じゃがいも)", lines[0])
	assert.Contains(t, lines[1], "100")
	assert.Contains(t, lines[1], "Potato, じゃがいも")

	out, err = e.run(t, "", "search", "!!")
	require.NoError(t, err)
	assert.Contains(t, out, "no results")
}

func TestExplore(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "", "load", e.records)
	require.NoError(t, err)

	script := strings.Join([]string{
		"/ jagaimo",
		"n",
		"p",
		"o",
		"up",
		"down",
		"0",
		"g 1",
		"g radical 1",
		"fly",
		"q",
	}, "\n")
	out, err := e.run(t, script, "explore")
	require.NoError(t, err)

	assert.Contains(t, out, "query: (jagaimo OR じゃがいも)")
	assert.Contains(t, out, "selected: 100 vocabulary Potato, じゃがいも")
	assert.Contains(t, out, "nothing up")
	assert.Contains(t, out, "focus: 1 radical Grass")
	assert.Contains(t, out, "is not in this view")
	assert.Contains(t, out, `unknown command "fly"`)
}

func TestFetchIndex(t *testing.T) {
	e := newEnv(t)
	blob := indexBlob(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(blob)
	}))
	defer srv.Close()

	_, err := e.run(t, "", "fetch-index")
	assert.ErrorContains(t, err, "index.url")

	cached := filepath.Join(e.dir, "cache", "index.bin")
	out, err := e.run(t, "", "fetch-index", "--index-url", srv.URL+"/index.bin", "--index", cached)
	require.NoError(t, err)
	assert.Contains(t, out, cached)

	out, err = e.run(t, "", "search", "yam", "--index", cached)
	require.NoError(t, err)
	assert.Contains(t, out, "Yam, いも")
}

func TestIndex(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "", "load", e.records, "--mirror")
	require.NoError(t, err)

	built := filepath.Join(e.dir, "built", "index.bin")
	out, err := e.run(t, "", "index", "--out", built)
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 4 records into "+built)

	out, err = e.run(t, "", "search", "yam", "--index", built)
	require.NoError(t, err)
	assert.Contains(t, out, "Yam, いも")

	// じゃが芋 is segmented, so 芋 finds the word as well as the kanji and 芋 itself.
	out, err = e.run(t, "", "search", "芋", "--index", built)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, out)
	assert.Contains(t, out, "じゃが芋")

	fromBadger := filepath.Join(e.dir, "badger.bin")
	out, err = e.run(t, "", "index", "--out", fromBadger, "--store", "badger")
	require.NoError(t, err)
	assert.Contains(t, out, "indexed 4 records")
	out, err = e.run(t, "", "search", "jagaimo", "--index", fromBadger)
	require.NoError(t, err)
	assert.Contains(t, out, "Potato, じゃがいも")

	_, err = e.run(t, "", "index", "--store", "http")
	assert.ErrorContains(t, err, "local store")
}

func TestCheck(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "", "load", e.records)
	require.NoError(t, err)

	out, err := e.run(t, "", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "relations consistent (1 radicals, 1 kanji, 2 vocabulary)")

	orphan := entity.Entity{ID: 102, Type: entity.Vocabulary, PrimaryMeaning: "Sweet potato",
		Related: entity.Relations{Kanji: []int64{10}}}
	raw, err := json.Marshal(orphan)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(e.records, "data", "102.json"), raw, 0o644))
	_, err = e.run(t, "", "load", e.records)
	require.NoError(t, err)

	out, err = e.run(t, "", "check")
	assert.ErrorContains(t, err, "1 relations lack their reverse")
	assert.Contains(t, out, "missing reverse: vocabulary 102 -> kanji 10")
}
