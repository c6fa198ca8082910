// Package flags evaluates feature flags and deterministic sampling buckets.
package flags

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
)

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "boost_purchase=on,offer_claims=25%,legacy_badges=off"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := normalize(parts[0])
		value := normalize(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a given user.
// Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic rollout by user, e.g. 25%)
func (m *Manager) Enabled(name string, userID uint) bool {
	return m.enabledFor(name, fmt.Sprintf("user:%d", userID), userID != 0)
}

// EnabledForKey evaluates a flag against an arbitrary string key, e.g. a
// session ID, using the same deterministic rollout buckets as Enabled.
func (m *Manager) EnabledForKey(name, key string) bool {
	return m.enabledFor(name, key, key != "")
}

func (m *Manager) enabledFor(name, key string, keyed bool) bool {
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

	if strings.HasSuffix(value, "%") {
		pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
		if err != nil {
			return false
		}
		if pct <= 0 {
			return false
		}
		if pct >= 100 {
			return true
		}
		if !keyed {
			return false
		}
		return Bucket(name, key) < pct
	}

	return false
}

// SetRollout sets a flag to a percentage rollout, clamped to [0, 100].
// It lets config knobs that are plain integers join the manager so they
// are evaluated with the same deterministic buckets as file-defined flags.
func (m *Manager) SetRollout(name string, percent int) {
	if m == nil {
		return
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	m.flags[normalize(name)] = fmt.Sprintf("%d%%", percent)
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Bucket maps (name, key) to a stable bucket in [0, 100). The same pair
// always lands in the same bucket, which is what makes percentage rollouts
// and write sampling deterministic.
func Bucket(name, key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name)))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % 100)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
