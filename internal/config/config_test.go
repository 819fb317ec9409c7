package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"toyshop/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setValidEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_jwt_secret")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("SHOP_NAME", "Tiệm Đồ Chơi")
	t.Setenv("SHOP_TEL", "0901234567")
	t.Setenv("SHOP_EMAIL", "shop@example.com")
	t.Setenv("SHOP_ADDRESS", "12 Lê Lợi, Huế")
	t.Setenv("SHOP_FACEBOOK_LINK", "https://www.facebook.com/tiemdochoi/")
}

func TestLoad_FromEnvironment(t *testing.T) {
	setValidEnv(t)

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "admin", cfg.Admin.Email)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "my_project", cfg.Assets.Folder)
	assert.Equal(t, "Tiệm Đồ Chơi", cfg.Shop.Name)
}

func TestLoad_MissingShopValue(t *testing.T) {
	setValidEnv(t)
	t.Setenv("SHOP_NAME", "")

	_, err := config.Load(nil)
	var missing *config.MissingValueError
	require.True(t, errors.As(err, &missing), "expected MissingValueError, got %v", err)
	assert.Equal(t, "SHOP_NAME", missing.Key)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	setValidEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := config.Load(nil)
	var missing *config.MissingValueError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "JWT_SECRET", missing.Key)
}

func TestLoad_InvalidDriver(t *testing.T) {
	setValidEnv(t)
	t.Setenv("DATABASE_DRIVER", "mongo")

	_, err := config.Load(nil)
	var invalid *config.InvalidValueError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "DATABASE_DRIVER", invalid.Key)
}

func TestLoad_ConfigFileFlag(t *testing.T) {
	setValidEnv(t)
	path := filepath.Join(t.TempDir(), "toyshop.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app_port: \":9090\"\nassets_folder: toys\n"), 0o600))

	cfg, err := config.Load([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "toys", cfg.Assets.Folder)
}

func TestShopConfig_Links(t *testing.T) {
	shop := config.ShopConfig{Phone: "0901234567", FacebookURL: "https://www.facebook.com/tiemdochoi/"}
	assert.Equal(t, "tiemdochoi", shop.MessengerHandle())
	assert.Equal(t, "https://m.me/tiemdochoi", shop.MessengerLink())
	assert.Equal(t, "https://zalo.me/0901234567", shop.ZaloLink())
}

func TestShopConfig_InvalidURL(t *testing.T) {
	shop := config.ShopConfig{Name: "a", Phone: "b", Email: "c", Address: "d", FacebookURL: "not a url"}
	var invalid *config.InvalidValueError
	require.True(t, errors.As(shop.Validate(), &invalid))
	assert.Equal(t, "SHOP_FACEBOOK_LINK", invalid.Key)
}
