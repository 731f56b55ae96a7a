package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProxyRotates(t *testing.T) {
	m, err := NewManager([]string{"http://p1:8000", "http://p2:8000"}, "")
	require.NoError(t, err)

	assert.Equal(t, "p1:8000", m.GetProxy().Host)
	assert.Equal(t, "p2:8000", m.GetProxy().Host)
	assert.Equal(t, "p1:8000", m.GetProxy().Host)
}

func TestGetProxyNone(t *testing.T) {
	m, err := NewManager(nil, "")
	require.NoError(t, err)

	assert.Nil(t, m.GetProxy())
	u, err := m.ProxyFunc(nil)
	assert.NoError(t, err)
	assert.Nil(t, u)
}

func TestNewManagerBadProxy(t *testing.T) {
	_, err := NewManager([]string{"http://bad host:80"}, "")
	assert.Error(t, err)
}

func TestGetUserAgent(t *testing.T) {
	m, err := NewManager(nil, "harvester/1.0")
	require.NoError(t, err)
	assert.Equal(t, "harvester/1.0", m.GetUserAgent())

	m, err = NewManager(nil, "")
	require.NoError(t, err)
	assert.Contains(t, defaultUserAgents, m.GetUserAgent())
}
