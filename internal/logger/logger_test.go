package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/school-admin/internal/logger"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("prod", &buf)

	log.Debug("hidden")
	require.Zero(t, buf.Len())

	log.Info("shown", "kind", "student")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "shown", line["msg"])
	require.Equal(t, "student", line["kind"])
}

func TestNew_Dev(t *testing.T) {
	var buf bytes.Buffer
	logger.New("dev", &buf).Debug("detail")
	require.Contains(t, buf.String(), "level=DEBUG msg=detail")
}
