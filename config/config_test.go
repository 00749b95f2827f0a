package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-escrow/pkg/escrow"
	"github.com/vulpemventures/go-elements/network"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    interface{}
		errorMsg string
	}{
		{"empty datadir", DatadirKey, "", "datadir must not be null"},
		{"unknown network", NetworkKey, "mainnet", "network must be one of"},
		{"unknown db type", DbTypeKey, "postgres", "db type must be either"},
		{"unknown claim gate", ClaimGateKey, "oracle", "unknown"},
		{"empty ticket name", TicketNameKey, "", "ticket name must not be null"},
		{"zero slot length", SlotLengthKey, 0, "slot_length must be a positive number"},
		{"negative fee", FeePerByteKey, -1, "fees must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := vip.Get(tt.key)
			t.Cleanup(func() { Set(tt.key, prev) })

			Set(tt.key, tt.value)
			err := validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errorMsg)
		})
	}

	require.NoError(t, validate())
}

func TestInitConfig(t *testing.T) {
	datadir := t.TempDir()
	prev := GetDatadir()
	t.Cleanup(func() { Set(DatadirKey, prev) })

	Set(DatadirKey, datadir)
	require.NoError(t, InitConfig())

	info, err := os.Stat(filepath.Join(datadir, DbLocation))
	require.NoError(t, err)
	require.True(t, info.IsDir())
	require.Equal(t, filepath.Join(datadir, DbLocation), GetDbDir())
}

func TestGetters(t *testing.T) {
	t.Cleanup(func() {
		Set(NetworkKey, network.Regtest.Name)
		Set(ClaimGateKey, escrow.PolicyGated.String())
		Set(EnforceDeadlineKey, false)
		Set(WebhookEndpointsKey, "")
		Set(DbTypeKey, DbTypeBadger)
	})

	require.Equal(t, &network.Regtest, GetNetwork())
	Set(NetworkKey, network.Testnet.Name)
	require.Equal(t, &network.Testnet, GetNetwork())

	params, err := GetEscrowParams()
	require.NoError(t, err)
	require.Equal(t, escrow.Params{Gate: escrow.PolicyGated}, params)

	Set(ClaimGateKey, "identity")
	Set(EnforceDeadlineKey, true)
	params, err = GetEscrowParams()
	require.NoError(t, err)
	require.Equal(t, escrow.Params{
		Gate: escrow.IdentityGated, DeadlinePolicy: escrow.DeadlineEnforced,
	}, params)

	require.Empty(t, GetWebhookEndpoints())
	Set(WebhookEndpointsKey, "http://localhost:8000/a, http://localhost:8000/b,")
	require.Equal(t, []string{
		"http://localhost:8000/a", "http://localhost:8000/b",
	}, GetWebhookEndpoints())

	Set(DbTypeKey, DbTypeInMemory)
	require.Empty(t, GetDbDir())

	require.Equal(t, int64(100), int64(GetDuration(ValidityMarginKey).Seconds()))
}
