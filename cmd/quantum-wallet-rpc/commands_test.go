package main

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantumauth-io/quantum-wallet-rpc/internal/coin"
)

func TestBaseUnits(t *testing.T) {
	v, err := baseUnits(coin.ETH, "0xde0b6b3a7640000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000", v.String())

	v, err = baseUnits(coin.SOL, "5000")
	require.NoError(t, err)
	assert.Equal(t, "5000", v.String())

	_, err = baseUnits(coin.FIL, "0x10")
	assert.Error(t, err)
}

func TestURLString(t *testing.T) {
	assert.Equal(t, "", urlString(nil))
	u, _ := url.Parse("https://brave.com")
	assert.Equal(t, "https://brave.com", urlString(u))
}
