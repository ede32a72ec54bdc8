package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/iov-one/ida/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	cases := map[string]struct {
		raw     string
		want    func(Config) Config
		wantErr *errors.Error
	}{
		"defaults": {
			raw:  "",
			want: func(c Config) Config { return c },
		},
		"bolt with redis": {
			raw: `
backend: bolt
home: /tmp/ida
log_level: debug
redis:
  addr: localhost:6379
  stream: ida-events
  max_len: 100
`,
			want: func(c Config) Config {
				c.Backend = "bolt"
				c.Home = "/tmp/ida"
				c.LogLevel = "debug"
				return c
			},
		},
		"unknown backend": {
			raw:     "backend: leveldb\n",
			wantErr: errors.ErrInput,
		},
		"bad log level": {
			raw:     "log_level: loud\n",
			wantErr: errors.ErrInput,
		},
		"redis without stream": {
			raw:     "redis:\n  addr: localhost:6379\n",
			wantErr: errors.ErrEmpty,
		},
		"not yaml": {
			raw:     "backend: [",
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			conf, err := loadConfig(writeFile(t, "idad.yaml", tc.raw))
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
				return
			}
			require.NoError(t, err)
			want := tc.want(defaultConfig())
			assert.Equal(t, want.Backend, conf.Backend)
			assert.Equal(t, want.Home, conf.Home)
			assert.Equal(t, want.LogLevel, conf.LogLevel)
		})
	}
}

func TestRedisConfig(t *testing.T) {
	conf, err := loadConfig(writeFile(t, "idad.yaml", "redis:\n  addr: localhost:6379\n  stream: ida-events\n  max_len: 100\n"))
	require.NoError(t, err)
	require.NotNil(t, conf.Redis)
	assert.Equal(t, "localhost:6379", conf.Redis.Addr)
	assert.Equal(t, "ida-events", conf.Redis.Stream)
	assert.Equal(t, int64(100), conf.Redis.MaxLen)
}

func TestOpenStore(t *testing.T) {
	for _, backend := range []string{"memory", "iavl", "bolt"} {
		t.Run(backend, func(t *testing.T) {
			conf := Config{Backend: backend, Home: t.TempDir(), LogLevel: "info"}
			db, err := openStore(conf)
			require.NoError(t, err)
			require.NoError(t, db.LoadLatestVersion())
			require.NoError(t, db.Close())
		})
	}
	_, err := openStore(Config{Backend: "leveldb"})
	assert.True(t, errors.ErrInput.Is(err))
}

func TestRootFlagsOverride(t *testing.T) {
	flags := rootFlags{backend: "bolt", home: filepath.Join(t.TempDir(), "data"), logLevel: "error"}
	conf, err := flags.config()
	require.NoError(t, err)
	assert.Equal(t, "bolt", conf.Backend)
	assert.Equal(t, flags.home, conf.Home)
	assert.Equal(t, "error", conf.LogLevel)
}

func TestResolveAccount(t *testing.T) {
	named, err := resolveAccount("alice")
	require.NoError(t, err)
	assert.Equal(t, accountCondition("alice").Address(), named)

	hex, err := resolveAccount(named.String())
	require.NoError(t, err)
	assert.True(t, named.Equals(hex))

	_, err = resolveAccount("")
	assert.True(t, errors.ErrEmpty.Is(err))
}

func TestSignerAuth(t *testing.T) {
	ctx := withSigners(context.Background(), accountCondition("alice"))
	auth := signerAuth{}
	assert.True(t, auth.HasAddress(ctx, accountCondition("alice").Address()))
	assert.False(t, auth.HasAddress(ctx, accountCondition("bob").Address()))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, Version+"\n", out.String())
}
