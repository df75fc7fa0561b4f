package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
feed:
  url: https://feed.example.com/xml/?start=0&limit=99999
  timeout: 15s
  retry_count: 2
delivery:
  host: ftp.example.com
  username: shop
  password: secret
  remote_path: /public_html/xml/
transform:
  indent: "  "
log:
  level: debug
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "https://feed.example.com/xml/?start=0&limit=99999", cfg.Feed.URL)
	assert.Equal(t, 15*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, 2, cfg.Feed.RetryCount)
	assert.Equal(t, 2*time.Second, cfg.Feed.RetryWait)

	assert.Equal(t, "ftp.example.com", cfg.Delivery.Host)
	assert.Equal(t, "shop", cfg.Delivery.Username)
	assert.Equal(t, "secret", cfg.Delivery.Password)
	assert.Equal(t, "/public_html/xml/", cfg.Delivery.RemotePath)
	assert.Equal(t, DefaultFilename, cfg.Delivery.Filename)
	assert.Equal(t, 30*time.Second, cfg.Delivery.Timeout)

	assert.Equal(t, "  ", cfg.Transform.Indent)
	assert.Equal(t, "Renk", cfg.Transform.VariantName1)
	assert.Equal(t, "Beden", cfg.Transform.VariantName2)

	assert.Equal(t, DefaultFilename, cfg.Fallback.Filename)
	assert.Equal(t, "feedsync", cfg.Metrics.Job)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("FEEDSYNC_DELIVERY_HOST", "ftp.override.example.com")
	t.Setenv("FEEDSYNC_DELIVERY_FILENAME", "catalog.xml")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "ftp.override.example.com", cfg.Delivery.Host)
	assert.Equal(t, "catalog.xml", cfg.Delivery.Filename)
	assert.Equal(t, "catalog.xml", cfg.Fallback.Filename)
}

func TestLoad_EnvOnlyWithoutFile(t *testing.T) {
	t.Setenv("FEEDSYNC_FEED_URL", "http://feed.example.com/xml")
	t.Setenv("FEEDSYNC_DELIVERY_HOST", "ftp.example.com")
	t.Setenv("FEEDSYNC_DELIVERY_USERNAME", "shop")
	t.Setenv("FEEDSYNC_DELIVERY_PASSWORD", "secret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://feed.example.com/xml", cfg.Feed.URL)
	assert.Equal(t, DefaultRemotePath, cfg.Delivery.RemotePath)
}

func TestLoad_MissingRequiredDelivery(t *testing.T) {
	_, err := Load(writeConfig(t, `
feed:
  url: https://feed.example.com/xml
delivery:
  host: ftp.example.com
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.Delivery.Username")
	assert.Contains(t, err.Error(), "Config.Delivery.Password")
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(writeConfig(t, sampleYAML+"  format: xml\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Config.Log.Format")
}

func TestLoad_ExplicitFileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestValidate_DeliverySection(t *testing.T) {
	err := Validate(DeliveryConfig{Host: "ftp.example.com", Filename: "a.xml", Timeout: time.Second})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DeliveryConfig.Username")

	assert.NoError(t, Validate(DeliveryConfig{
		Host:     "ftp.example.com",
		Username: "u",
		Password: "p",
		Filename: "a.xml",
		Timeout:  time.Second,
	}))
}
