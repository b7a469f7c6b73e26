package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, m.Enabled(name), name)
	}
	for _, name := range []string{"b", "d", "f", "missing"} {
		assert.False(t, m.Enabled(name), name)
	}
}

func TestEnabled_CaseInsensitiveNames(t *testing.T) {
	m := NewManager("Batch_Comment_Counts=ON")
	assert.True(t, m.Enabled(BatchCommentCounts))
}

func TestEnabledFor_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%,broken=abc%")

	assert.True(t, m.EnabledFor("always", "10.0.0.1"))
	assert.True(t, m.Enabled("always"))
	assert.False(t, m.EnabledFor("never", "10.0.0.1"))
	assert.False(t, m.EnabledFor("broken", "10.0.0.1"))

	first := m.EnabledFor("canary", "10.0.0.42")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, m.EnabledFor("canary", "10.0.0.42"), "rollout must be deterministic per subject")
	}
	assert.False(t, m.Enabled("canary"), "partial rollout needs a subject")
}

func TestNilManager(t *testing.T) {
	var m *Manager
	assert.False(t, m.Enabled(BatchCommentCounts))
	assert.Empty(t, m.Raw())
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ,=on")

	assert.Equal(t, map[string]string{"x": "on", "y": "20%", "z": "off"}, m.Raw())
	assert.Equal(t, map[string]bool{"x": true, "y": false, "z": false}, m.Snapshot())
}
