package docstore

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/udisondev/unitbalance/internal/balance"
)

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	dir := t.TempDir()
	now := time.Date(2026, 5, 17, 9, 42, 0, 0, time.UTC)
	s := New(filepath.Join(dir, "balance.json"), filepath.Join(dir, "saved"), func() time.Time { return now }, nil)
	return s, &now
}

func writeActive(t *testing.T, s *Store, doc string) {
	t.Helper()
	require.NoError(t, os.WriteFile(s.ActivePath(), []byte(doc), 0o644))
}

func readActive(t *testing.T, s *Store) []byte {
	t.Helper()
	data, err := s.Read()
	require.NoError(t, err)
	return data
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"my config", "myconfig"},
		{"../../etc/passwd", "etcpasswd"},
		{"..hidden..", "hidden"},
		{"con", "_con"},
		{"COM3.backup", "_COM3.backup"},
		{"console", "console"},
		{"a-b_c.d", "a-b_c.d"},
		{"!!!", ""},
		{"abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefghijXYZ", "abcdefghijabcdefghijabcdefghijabcdefghijabcdefghijabcdefghij"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestEnsureDefaultAndReset(t *testing.T) {
	s, _ := newTestStore(t)

	created, err := s.EnsureDefault()
	require.NoError(t, err)
	assert.True(t, created)

	st, err := balance.Parse(readActive(t, s))
	require.NoError(t, err)
	assert.True(t, st.Enabled)
	for tier := 1; tier <= balance.MaxTechTier; tier++ {
		secs, ok := st.TechTime(tier)
		require.True(t, ok)
		assert.Equal(t, 30.0, secs)
	}

	writeActive(t, s, `{"units": {"Tank": {"health_mult": 2}}}`)
	created, err = s.EnsureDefault()
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, s.ResetBlank())
	assert.Equal(t, BlankDocument, string(readActive(t, s)))
}

func TestSaveAndList(t *testing.T) {
	s, now := newTestStore(t)
	writeActive(t, s, `{"units": {}}`)

	name, err := s.Save("")
	require.NoError(t, err)
	assert.Equal(t, "202605170942.json", name)

	_, err = s.Save("")
	assert.ErrorIs(t, err, fs.ErrExist, "saves never overwrite")

	name, err = s.Save("!!!")
	require.NoError(t, err)
	assert.Equal(t, "202605170942_config.json", name)

	*now = now.Add(time.Hour)
	name, err = s.Save("tank rework")
	require.NoError(t, err)
	assert.Equal(t, "202605171042_tankrework.json", name)

	require.NoError(t, os.WriteFile(filepath.Join(s.saveDir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(s.saveDir, "dir.json"), 0o755))

	files, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"202605171042_tankrework.json", "202605170942_config.json", "202605170942.json"}, files)
}

func TestSave_NoActiveDocument(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Save("x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestList_MissingDir(t *testing.T) {
	s, _ := newTestStore(t)
	files, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestList_SkipsSymlinkOutside(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.saveDir, 0o755))
	outside := filepath.Join(t.TempDir(), "secret.json")
	require.NoError(t, os.WriteFile(outside, []byte(`{}`), 0o644))
	if err := os.Symlink(outside, filepath.Join(s.saveDir, "link.json")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	files, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.ErrorIs(t, s.Load("link.json"), ErrPathTraversal)
}

func TestLoad(t *testing.T) {
	s, _ := newTestStore(t)
	writeActive(t, s, `{"units": {"Tank": {"health_mult": 2}}}`)
	name, err := s.Save("tank")
	require.NoError(t, err)

	require.NoError(t, s.ResetBlank())
	require.NoError(t, s.Load(name))
	assert.Equal(t, 2.0, gjson.GetBytes(readActive(t, s), "units.Tank.health_mult").Float())
}

func TestLoad_Rejections(t *testing.T) {
	s, _ := newTestStore(t)
	writeActive(t, s, BlankDocument)
	require.NoError(t, os.MkdirAll(s.saveDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.saveDir, "broken.json"), []byte(`{"units": `), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.saveDir, "array.json"), []byte(`[1, 2]`), 0o644))

	tests := []struct {
		file string
		want error
	}{
		{"", ErrInvalidName},
		{"../balance.json", ErrPathTraversal},
		{"sub/x.json", ErrPathTraversal},
		{"notes.txt", ErrNotJSON},
		{"missing.json", ErrNotFound},
		{"broken.json", ErrInvalidDocument},
		{"array.json", ErrInvalidDocument},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			assert.ErrorIs(t, s.Load(tt.file), tt.want)
		})
	}
	assert.Equal(t, BlankDocument, string(readActive(t, s)), "rejected loads leave the active document alone")
}

func TestWriteParam(t *testing.T) {
	s, _ := newTestStore(t)
	writeActive(t, s, `{
    "enabled": true,
    "units": {
        "Tank": {"health_mult": 1.5}
    }
}`)

	old, err := s.WriteParam("Tank", "health_mult", 2.123456)
	require.NoError(t, err)
	assert.Equal(t, "1.5", old)

	old, err = s.WriteParam("Hover Bike", "min_tier", 3.9)
	require.NoError(t, err)
	assert.Equal(t, "-", old)

	_, err = s.WriteParam("Gunship", "target_distance", 750.6)
	require.NoError(t, err)

	data := readActive(t, s)
	assert.Equal(t, "2.1235", gjson.GetBytes(data, "units.Tank.health_mult").Raw)
	assert.Equal(t, NoteModified, gjson.GetBytes(data, "units.Tank._note").String())
	assert.Equal(t, "3", gjson.GetBytes(data, "units.Hover Bike.min_tier").Raw)
	assert.Equal(t, NoteModified, gjson.GetBytes(data, "units.Hover Bike._note").String())
	assert.Equal(t, "750", gjson.GetBytes(data, "units.Gunship.target_distance").Raw)

	st, err := balance.Parse(data)
	require.NoError(t, err)
	tier, ok := st.MinTierFor("Hover Bike")
	require.True(t, ok)
	assert.Equal(t, 3, tier)
}

func TestWriteParam_EscapesDottedNames(t *testing.T) {
	s, _ := newTestStore(t)
	writeActive(t, s, `{"units": {}}`)

	_, err := s.WriteParam("Mk.II Tank", "damage_mult", 1.25)
	require.NoError(t, err)
	assert.Equal(t, 1.25, gjson.GetBytes(readActive(t, s), `units.Mk\.II Tank.damage_mult`).Float())
}

func TestWriteParam_Errors(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.WriteParam("Tank", "health_mult", 2)
	assert.ErrorIs(t, err, ErrNotFound)

	writeActive(t, s, `not json`)
	_, err = s.WriteParam("Tank", "health_mult", 2)
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = s.WriteParam("", "health_mult", 2)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestWriteTechTierAndBool(t *testing.T) {
	s, _ := newTestStore(t)
	writeActive(t, s, BlankDocument)

	old, err := s.WriteTechTier(3, 44.6)
	require.NoError(t, err)
	assert.Equal(t, "30", old)
	_, err = s.WriteTechTier(9, 10)
	assert.ErrorIs(t, err, ErrInvalidName)

	old, err = s.WriteBool("shrimp_disable_aim", true)
	require.NoError(t, err)
	assert.Equal(t, "-", old)

	st, err := balance.Parse(readActive(t, s))
	require.NoError(t, err)
	secs, _ := st.TechTime(3)
	assert.Equal(t, 45.0, secs)
	assert.True(t, st.ShrimpDisableAim)
}

func TestFormatParam(t *testing.T) {
	assert.Equal(t, "2", FormatParam("min_tier", 2.7))
	assert.Equal(t, "-1", FormatParam("build_radius", -1))
	assert.Equal(t, "0.3333", FormatParam("cost_mult", 1.0/3))
	assert.Equal(t, "1", FormatParam("cost_mult", 1))
}
