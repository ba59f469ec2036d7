// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureRecords(t *testing.T, level any) (*bytes.Buffer, func()) {
	prev := Root()
	buf := new(bytes.Buffer)
	switch lvl := level.(type) {
	case int:
		SetDefault(NewLogger(JSONHandlerWithLevel(buf, FromLegacyLevel(lvl))))
	default:
		SetDefault(NewLogger(JSONHandlerWithLevel(buf, LevelDebug)))
	}
	return buf, func() { SetDefault(prev) }
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestContextLogger(t *testing.T) {
	logger := WithContext("pkg", "staker")

	buf, restore := captureRecords(t, nil)
	defer restore()

	logger.Info("staked", "user", "0xabc")
	logger.With("epoch", 3).Debug("reward paid")
	logger.Trace("dropped")

	records := decodeLines(t, buf)
	require.Len(t, records, 2)

	assert.Equal(t, "staked", records[0]["msg"])
	assert.Equal(t, "staker", records[0]["pkg"])
	assert.Equal(t, "0xabc", records[0]["user"])

	assert.Equal(t, "reward paid", records[1]["msg"])
	assert.Equal(t, float64(3), records[1]["epoch"])
}

func TestLegacyVerbosity(t *testing.T) {
	// 2 is warn in the legacy scale
	buf, restore := captureRecords(t, 2)
	defer restore()

	Info("hidden")
	Warn("shown")
	Error("shown too")

	records := decodeLines(t, buf)
	require.Len(t, records, 2)
	assert.Equal(t, "shown", records[0]["msg"])
}
