// Package featureflags evaluates runtime switches read from FEATURE_FLAGS.
package featureflags

import (
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Known flags.
const (
	// BatchCommentCounts loads comment counts for a result page with one
	// grouped query instead of one query per post.
	BatchCommentCounts = "batch_comment_counts"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "batch_comment_counts=on,post_cache=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		key, value = normalize(key), normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return &Manager{flags: out}
}

// Enabled reports whether a flag is switched on. Percentage values are only
// honored by EnabledFor.
func (m *Manager) Enabled(name string) bool {
	return m.EnabledFor(name, "")
}

// EnabledFor evaluates a flag for a subject such as a client address.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic rollout by subject, e.g. 25%)
func (m *Manager) EnabledFor(name, subject string) bool {
	if m == nil {
		return false
	}
	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if subject == "" {
		return false
	}
	return rolloutBucket(name, subject) < pct
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return lo.Assign(m.flags)
}

// Snapshot returns the evaluated on/off state of every configured flag.
func (m *Manager) Snapshot() map[string]bool {
	return lo.MapValues(m.Raw(), func(_ string, name string) bool {
		return m.Enabled(name)
	})
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + subject))
	return int(h.Sum32() % 100)
}
