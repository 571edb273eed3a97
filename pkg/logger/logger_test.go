package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	require.Error(t, err)
}

func TestFieldsAreWritten(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.DebugLevel).With(String("batch_id", "b-1"))

	l.Warn("instrument excluded",
		Int64("id", 42),
		Float64("offer", 8.7),
		Duration("took", 1500*time.Millisecond),
		Error(errors.New("bad barriers")),
	)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "warn", got["level"])
	assert.Equal(t, "instrument excluded", got["message"])
	assert.Equal(t, "b-1", got["batch_id"])
	assert.EqualValues(t, 42, got["id"])
	assert.EqualValues(t, 8.7, got["offer"])
	assert.EqualValues(t, 1500, got["took"])
	assert.Equal(t, "bad barriers", got["error"])
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, zerolog.WarnLevel)
	l.Info("dropped")
	assert.Zero(t, buf.Len())
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Error("nothing", Error(nil))
}
