package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoZeroFields(t *testing.T) {
	cfg := Default()

	for _, field := range visit(newVar(*cfg), "Config", false) {
		assert.Fail(t, "zero-value field", field)
	}
}

type variable struct {
	Type  reflect.Type
	Value reflect.Value
}

func newVar(a any) variable {
	return variable{reflect.TypeOf(a), reflect.ValueOf(a)}
}

func visit(a variable, name string, nullable bool) (fields []string) {
	if a.Type.Kind() == reflect.Struct {
		for field := range a.Value.NumField() {
			v1 := variable{a.Type.Field(field).Type, a.Value.Field(field)}
			fieldname := a.Type.Field(field).Name
			isNullable := a.Type.Field(field).Tag.Get("test") == "nullable"
			fields = append(fields, visit(v1, name+"."+fieldname, isNullable)...)
		}

		return fields
	}

	if a.Value.IsZero() && !nullable {
		return []string{name}
	}

	return nil
}

func TestParse(t *testing.T) {
	t.Run("overlay", func(t *testing.T) {
		cfg, err := Parse([]byte(`
net:
  read_buffer_size: 4096
  poll_timeout: 5ms
headers:
  line_size:
    maximal: 1024
log:
  level: debug
`))
		require.NoError(t, err)
		require.Equal(t, 4096, cfg.NET.ReadBufferSize)
		require.Equal(t, 5*time.Millisecond, cfg.NET.PollTimeout)
		require.Equal(t, 1024, cfg.Headers.LineSize.Maximal)
		require.Equal(t, Default().Headers.LineSize.Default, cfg.Headers.LineSize.Default)
		require.Equal(t, Default().NET.DialTimeout, cfg.NET.DialTimeout)
		require.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	})

	t.Run("invalid values", func(t *testing.T) {
		_, err := Parse([]byte("net:\n  read_buffer_size: 0\n"))
		require.Error(t, err)

		_, err = Parse([]byte("headers:\n  line_size:\n    default: 100\n    maximal: 10\n"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Parse([]byte("net: [1, 2"))
		require.Error(t, err)
	})

	t.Run("unknown log level", func(t *testing.T) {
		cfg := Default()
		cfg.Log.Level = "verbose"
		require.Equal(t, slog.LevelInfo, cfg.SlogLevel())
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hclient.yaml")
	require.NoError(t, os.WriteFile(path, []byte("net:\n  dial_timeout: 2s\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.NET.DialTimeout)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
