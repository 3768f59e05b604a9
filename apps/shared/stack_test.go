package shared

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamunity/lms/core"
)

func memoryConf() *core.Config {
	return &core.Config{
		HackerModeSwitch: "hacker_mode",
		Database:         core.DatabaseConfig{Driver: core.DriverMemory},
		Session:          core.SessionConfig{Backend: core.SessionMemory},
	}
}

func TestNewStack(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		s, err := NewStack(ctx, memoryConf(), true)
		require.NoError(t, err)
		defer s.Close()

		assert.Nil(t, s.SQL)
		assert.NotNil(t, s.Gate)
		assert.Len(t, s.Pingers, 2)
		for name, p := range s.Pingers {
			assert.NoError(t, p.PingContext(ctx), name)
		}
	})

	t.Run("bolt sessions", func(t *testing.T) {
		conf := memoryConf()
		conf.Session = core.SessionConfig{Backend: core.SessionBolt, BoltPath: filepath.Join(t.TempDir(), "sessions.db")}

		s, err := NewStack(ctx, conf, true)
		require.NoError(t, err)
		assert.NoError(t, s.Pingers["sessions"].PingContext(ctx))
		assert.NoError(t, s.Close())
	})

	t.Run("without sessions", func(t *testing.T) {
		s, err := NewStack(ctx, memoryConf(), false)
		require.NoError(t, err)
		assert.Nil(t, s.Sessions)
		assert.Nil(t, s.Gate)
		assert.NotNil(t, s.UserSvc)
	})

	t.Run("unknown driver", func(t *testing.T) {
		conf := memoryConf()
		conf.Database.Driver = "mongo"
		_, err := NewStack(ctx, conf, true)
		assert.EqualError(t, err, `unknown database driver "mongo"`)
	})

	t.Run("unknown session backend", func(t *testing.T) {
		conf := memoryConf()
		conf.Session.Backend = "memcached"
		_, err := NewStack(ctx, conf, true)
		assert.EqualError(t, err, `unknown session backend "memcached"`)
	})
}
