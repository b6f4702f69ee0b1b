package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"dbupgrade-config-go/dtos/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// inSandbox runs the test from an empty directory so the configs tree stays isolated
func inSandbox(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func writeRaw(t *testing.T, db, dc, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(ConfigDir(db, dc), 0o755))
	require.NoError(t, os.WriteFile(ConfigFile(db, dc), []byte(content), 0o644))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	inSandbox(t)
	ctx := context.Background()
	log := zaptest.NewLogger(t).Sugar()

	cfg := testConfig()
	require.NoError(t, cfg.Save(ctx, log))

	loaded, err := Load(ctx, log, "mydb", "dc1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, cfg, loaded)
	assert.Equal(t, "p@ss/word", loaded.Src.RootUser.Password())
	assert.Nil(t, loaded.Src.OtherUsers[0].Pw)
}

func TestSaveLoadKeepsEmptySchemaName(t *testing.T) {
	inSandbox(t)
	ctx := context.Background()

	cfg := testConfig()
	cfg.SchemaName = ""
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.Save(ctx, nil))

	loaded, err := Load(ctx, nil, "mydb", "dc1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "", loaded.SchemaName)
	assert.Equal(t, cfg, loaded)
}

func TestSaveOverwrites(t *testing.T) {
	inSandbox(t)
	ctx := context.Background()

	cfg := testConfig()
	require.NoError(t, cfg.Save(ctx, nil))

	cfg.SchemaName = "sales"
	cfg.Dst = nil
	require.NoError(t, cfg.Save(ctx, nil))

	loaded, err := Load(ctx, nil, "mydb", "dc1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "sales", loaded.SchemaName)
	assert.Nil(t, loaded.Dst)

	entries, err := os.ReadDir(ConfigDir("mydb", "dc1"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, FileName, entries[0].Name())
}

func TestSaveFileLayout(t *testing.T) {
	inSandbox(t)

	cfg := NewDbupgradeConfig("mydb", "dc1")
	require.NoError(t, cfg.Save(context.Background(), nil))

	raw, err := os.ReadFile(filepath.Join("configs", "dc1", "mydb", "config.json"))
	require.NoError(t, err)
	assert.Equal(t, `{
    "db": "mydb",
    "dc": "dc1",
    "src": null,
    "dst": null,
    "tables": null,
    "sequences": null,
    "schema_name": "public"
}`, string(raw))
}

func TestLoadMissingFile(t *testing.T) {
	inSandbox(t)
	core, logs := observer.New(zapcore.DebugLevel)

	loaded, err := Load(context.Background(), zap.New(core).Sugar(), "mydb", "dc1")
	require.NoError(t, err)
	assert.Nil(t, loaded)
	assert.Equal(t, 1, logs.FilterMessage("No cached config available").Len())
}

func TestLoadInvalidFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "Malformed JSON",
			content: `{"db": "mydb", "dc": `,
		},
		{
			name:    "Missing db",
			content: `{"dc": "dc1", "schema_name": "public"}`,
		},
		{
			name:    "Wrong type",
			content: `{"db": "mydb", "dc": "dc1", "tables": "users"}`,
		},
		{
			name:    "Invalid UTF-8",
			content: "{\"db\": \"my\xffdb\", \"dc\": \"dc1\"}",
		},
		{
			name:    "Keys differing in case",
			content: `{"DB": "mydb", "DC": "dc1"}`,
		},
		{
			name:    "Not an object",
			content: `["mydb", "dc1"]`,
		},
		{
			name: "Privileged user without password",
			content: `{"db": "mydb", "dc": "dc1", "src": {
				"host": "h", "ip": "10.0.0.1", "db": "mydb", "port": "5432",
				"root_user": {"name": "postgres", "pw": null},
				"owner_user": {"name": "owner", "pw": "o"},
				"pglogical_user": {"name": "pglogical", "pw": "p"}
			}}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inSandbox(t)
			writeRaw(t, "mydb", "dc1", tc.content)
			core, logs := observer.New(zapcore.DebugLevel)

			loaded, err := Load(context.Background(), zap.New(core).Sugar(), "mydb", "dc1")
			require.NoError(t, err)
			assert.Nil(t, loaded)
			assert.Equal(t, 1, logs.FilterMessage("Cached config was not a valid DbupgradeConfig").Len())
		})
	}
}

func TestLoadDefaultsSchemaName(t *testing.T) {
	inSandbox(t)
	writeRaw(t, "mydb", "dc1", `{"db": "mydb", "dc": "dc1", "schema_name": null}`)

	loaded, err := Load(context.Background(), nil, "mydb", "dc1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "public", loaded.SchemaName)
}

func TestLoadReadError(t *testing.T) {
	inSandbox(t)
	// a directory in place of the file cannot be read
	require.NoError(t, os.MkdirAll(ConfigFile("mydb", "dc1"), 0o755))

	loaded, err := Load(context.Background(), nil, "mydb", "dc1")
	require.Error(t, err)
	assert.Nil(t, loaded)
}

func TestCancelledContext(t *testing.T) {
	inSandbox(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, nil, "mydb", "dc1")
	assert.ErrorIs(t, err, context.Canceled)

	err = testConfig().Save(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, ConfigFile("mydb", "dc1"))
}

func TestSaveLogs(t *testing.T) {
	inSandbox(t)
	core, logs := observer.New(zapcore.DebugLevel)

	require.NoError(t, testConfig().Save(context.Background(), zap.New(core).Sugar()))
	assert.Equal(t, 1, logs.FilterMessage("Caching config to disk...").Len())
	assert.Equal(t, 1, logs.FilterMessage("Cached config to disk.").Len())
}

func TestLoadRejectsIdentity(t *testing.T) {
	inSandbox(t)
	writeRaw(t, "mydb", "dc1", `{"db": "..", "dc": "dc1"}`)

	for _, pair := range [][2]string{{"", "dc1"}, {"mydb", ""}, {"..", "dc1"}, {"mydb", "dc1/mydb"}} {
		loaded, err := Load(context.Background(), nil, pair[0], pair[1])
		require.Error(t, err)
		assert.Nil(t, loaded)
	}

	loaded, err := Load(context.Background(), nil, "mydb", "dc1")
	require.NoError(t, err)
	assert.Nil(t, loaded, "a file holding an unusable identity is not valid")
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	inSandbox(t)

	cfg := testConfig()
	cfg.Src.RootUser = common.User{Name: "postgres"}
	err := cfg.Save(context.Background(), nil)
	require.ErrorIs(t, err, common.ErrMissingPassword)
	assert.NoDirExists(t, cfg.Dir())

	err = NewDbupgradeConfig("..", "dc1").Save(context.Background(), nil)
	require.ErrorIs(t, err, common.ErrPathSegment)
	assert.NoFileExists(t, filepath.Join("configs", "config.json"))
}

func TestSaveDirError(t *testing.T) {
	inSandbox(t)
	// a regular file where the datacenter directory belongs
	require.NoError(t, os.MkdirAll(RootDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(RootDir, "dc1"), []byte("x"), 0o644))

	err := testConfig().Save(context.Background(), nil)
	require.Error(t, err)

	var pathErr *fs.PathError
	assert.True(t, errors.As(err, &pathErr))
	assert.NotErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, ConfigFile("mydb", "dc1"))
}
