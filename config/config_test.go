package config

import (
	"bytes"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newViper returns a viper instance containing the defaults followed by the given overrides.
func newViper(t *testing.T, overrides string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(DefaultConfig)))
	if overrides != "" {
		require.NoError(t, v.MergeConfig(bytes.NewBufferString(overrides)))
	}
	return v
}

func TestDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg, err := FromViper(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal("topic", cfg.AMQP.ExchangeType)
	assert.Equal("notification-dispatch", cfg.AMQP.Queue)
	assert.Equal("email.requests", cfg.Email.RoutingKey)
	assert.Equal(1, cfg.DispatchWorkers)
	assert.Equal("info", cfg.LogLevel)

	prefs := cfg.PreferenceDefaults
	assert.True(prefs.EmailNotifications)
	assert.True(prefs.OrderUpdates)
	assert.True(prefs.StockAlerts)
	assert.False(prefs.MarketingEmails)
}

func TestOverrides(t *testing.T) {
	assert := assert.New(t)

	overrides := `dispatch:
  workers: 4
preferences:
  defaults:
    marketing_emails: true
    new_arrivals: false
`
	cfg, err := FromViper(newViper(t, overrides))
	require.NoError(t, err)

	assert.Equal(4, cfg.DispatchWorkers)
	assert.True(cfg.PreferenceDefaults.MarketingEmails)
	assert.False(cfg.PreferenceDefaults.NewArrivals)
	assert.True(cfg.PreferenceDefaults.PriceDrops)
}

func TestEnvironmentOverride(t *testing.T) {
	t.Setenv("NOTIFICATIONS_AMQP_QUEUE", "from-env")

	cfg, err := FromViper(newViper(t, ""))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AMQP.Queue)
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name      string
		overrides string
	}{
		{"zero workers", "dispatch:\n  workers: 0\n"},
		{"bad exchange type", "amqp:\n  exchange:\n    type: broadcast\n"},
		{"bad log level", "log:\n  level: chatty\n"},
		{"missing database", "db:\n  uri: \"\"\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := FromViper(newViper(t, test.overrides))
			assert.Error(t, err)
		})
	}
}
