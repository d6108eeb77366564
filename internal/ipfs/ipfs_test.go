package ipfs

import (
	"net/url"
	"testing"

	"github.com/ipfs/go-cid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCID(t *testing.T) string {
	c, err := cid.Prefix{Version: 1, Codec: cid.DagProtobuf, MhType: 0x12, MhLength: -1}.Sum([]byte("brave"))
	require.NoError(t, err)
	return c.String()
}

func TestIsValidCID(t *testing.T) {
	assert.True(t, IsValidCID(testCID(t)))
	assert.False(t, IsValidCID(""))
	assert.False(t, IsValidCID("not-a-cid"))
}

func TestContentURL(t *testing.T) {
	c := testCID(t)
	u, ok := ContentURL(c, "index.html")
	require.True(t, ok)
	assert.Equal(t, "ipfs://"+c+"/index.html", u.String())

	_, ok = ContentURL("nope", "")
	assert.False(t, ok)
}

func TestToGatewayURL(t *testing.T) {
	c := testCID(t)
	u, _ := url.Parse("ipfs://" + c + "/1.json?x=1")

	g, ok := ToGatewayURL(u, "")
	require.True(t, ok)
	assert.Equal(t, "https://ipfs.io/ipfs/"+c+"/1.json?x=1", g.String())

	g, ok = ToGatewayURL(u, "https://gw.example.com/base/")
	require.True(t, ok)
	assert.Equal(t, "https://gw.example.com/base/ipfs/"+c+"/1.json?x=1", g.String())

	ipns, _ := url.Parse("ipns://brave.eth/")
	g, ok = ToGatewayURL(ipns, "")
	require.True(t, ok)
	assert.Equal(t, "https://ipfs.io/ipns/brave.eth/", g.String())

	for _, raw := range []string{"https://example.com/a", "ipfs://bad/a", "ipfs:///x"} {
		u, _ := url.Parse(raw)
		_, ok := ToGatewayURL(u, "")
		assert.False(t, ok, raw)
	}
	_, ok = ToGatewayURL(u, "ftp://gw")
	assert.False(t, ok)
}
