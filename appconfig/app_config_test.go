package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppConfig(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "letmein")
	t.Setenv("ACCESS_SECRET", "0123456789abcdef")

	t.Run("defaults", func(t *testing.T) {
		config, err := LoadAppConfig()
		require.NoError(t, err)
		assert.Equal(t, ":8081", config.HttpPort)
		assert.Equal(t, ":50051", config.GrpcPort)
		assert.Equal(t, StorageMongo, config.StorageType)
		assert.Equal(t, 12*time.Hour, config.SessionTTL)
		assert.Equal(t, []string{"*"}, config.AllowedOrigins)
		assert.Equal(t, "summit-notifications", config.NotificationQueue)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "memory")
		t.Setenv("SESSION_TTL", "30m")
		t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

		config, err := LoadAppConfig()
		require.NoError(t, err)
		assert.Equal(t, StorageMemory, config.StorageType)
		assert.Equal(t, 30*time.Minute, config.SessionTTL)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, config.AllowedOrigins)
	})

	t.Run("env file", func(t *testing.T) {
		envFile := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(envFile, []byte("MONGO_DATABASE=fromfile\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("MONGO_DATABASE") })

		config, err := LoadAppConfig(envFile, filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, "fromfile", config.MongoDatabase)
	})

	t.Run("unknown storage", func(t *testing.T) {
		t.Setenv("STORAGE_TYPE", "firestore")
		_, err := LoadAppConfig()
		assert.Error(t, err)
	})
}

func TestAppConfig_Validate(t *testing.T) {
	valid := AppConfig{
		StorageType:   StorageMemory,
		AdminPassword: "pw",
		AccessSecret:  "0123456789abcdef",
		SessionTTL:    time.Hour,
	}
	assert.NoError(t, valid.Validate())

	noPassword := valid
	noPassword.AdminPassword = "  "
	assert.Error(t, noPassword.Validate())

	shortSecret := valid
	shortSecret.AccessSecret = "short"
	assert.Error(t, shortSecret.Validate())

	noTTL := valid
	noTTL.SessionTTL = 0
	assert.Error(t, noTTL.Validate())
}
