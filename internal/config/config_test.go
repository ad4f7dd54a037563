package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-pathlock/pathlock"
	"github.com/go-pathlock/pathlock/log"
	logadapter "github.com/go-pathlock/pathlock/log/logrus"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "pathlock.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissing(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.NoError(err)
	opts := cfg.Options()
	assert.Equal(pathlock.DefaultMaxWait, opts.MaxWait)
	assert.Nil(opts.Log)

	cfg, err = Load("")
	assert.NoError(err)
	assert.Nil(cfg.MaxWait)
}

func TestLoad(t *testing.T) {
	assert := assert.New(t)
	path := writeConfig(t, `
max_wait = "10s"
poll_interval = "50ms"

[log]
level = "debug"
topics = ["verdict", "Error"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	opts := cfg.Options()
	assert.Equal(10*time.Second, opts.MaxWait)
	assert.Equal(50*time.Millisecond, opts.PollInterval)

	l, ok := opts.Log.(*logadapter.Logrus)
	require.True(t, ok)
	assert.True(l.Enabled(log.TopicVerdict))
	assert.True(l.Enabled(log.TopicError))
	assert.False(l.Enabled(log.TopicTrace))
	assert.Equal("debug", l.Logger.GetLevel().String())
}

func TestLoadZeroWait(t *testing.T) {
	assert := assert.New(t)
	cfg, err := Load(writeConfig(t, `max_wait = "0s"`))
	require.NoError(t, err)
	assert.Equal(time.Duration(0), cfg.Options().MaxWait)
}

func TestLoadInvalid(t *testing.T) {
	assert := assert.New(t)

	_, err := Load(writeConfig(t, `max_wait = [`))
	assert.Error(err)

	_, err = Load(writeConfig(t, "[log]\ntopics = [\"everything\"]\n"))
	assert.ErrorContains(err, "unknown log topic")

	_, err = Load(writeConfig(t, "[log]\nlevel = \"loud\"\n"))
	assert.Error(err)
}
