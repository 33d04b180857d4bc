package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("ADMIN_IDS", "123")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresAdmins(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_IDS", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_IDS", "123,456")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int64{123, 456}, cfg.AdminIDs)
	assert.Equal(t, "data.json", cfg.DataFile)
	assert.Equal(t, "chat_ids.json", cfg.ChatIDsFile)
	assert.Equal(t, "photos", cfg.PhotosDir)
	assert.Equal(t, "10:00", cfg.BroadcastTime)
	assert.Equal(t, Clock{Hour: 10}, cfg.BroadcastAt)
	assert.Equal(t, "00:00", cfg.ExpiredCheckTime)
	assert.Equal(t, Clock{}, cfg.ExpiredCheckAt)
	assert.Equal(t, "Europe/Moscow", cfg.Timezone)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadParsesClockTimes(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_IDS", "123")
	t.Setenv("BROADCAST_TIME", "09:30")
	t.Setenv("EXPIRED_CHECK_TIME", "23:45")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 9, Minute: 30}, cfg.BroadcastAt)
	assert.Equal(t, Clock{Hour: 23, Minute: 45}, cfg.ExpiredCheckAt)
}

func TestLoadRejectsBadClock(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_IDS", "123")
	t.Setenv("BROADCAST_TIME", "25:99")

	_, err := Load()
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	c, err := parseClock("10:05")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 10, Minute: 5}, c)

	_, err = parseClock("banana")
	assert.Error(t, err)
}
