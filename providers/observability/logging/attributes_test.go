package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttributes_ErrorKeyIsNormalized(t *testing.T) {
	var buffer bytes.Buffer
	logger := NewWithWriter(&buffer, slog.LevelDebug, FormatJSON)

	logger.Warn("graph node failed",
		slog.String(AttrGraphNode, "answer"),
		slog.Int(AttrGraphStep, 3),
		slog.Any(AttrError, errors.New("boom")),
	)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &record))
	assert.Equal(t, "answer", record[AttrGraphNode])
	assert.Equal(t, 3.0, record[AttrGraphStep])
	assert.Equal(t, "boom", record["err"])
	assert.NotContains(t, record, AttrError)
}
