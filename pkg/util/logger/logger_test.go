package logger_test

import (
	"testing"

	"github.com/nspcc-dev/recstore/pkg/util/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	l, err := logger.NewLogger(nil)
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zap.InfoLevel))
	require.False(t, l.Core().Enabled(zap.DebugLevel))

	var prm logger.Prm
	require.NoError(t, prm.SetLevelString("DEBUG"))
	require.NoError(t, prm.SetEncoding("json"))

	l, err = logger.NewLogger(&prm)
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zap.DebugLevel))

	require.Error(t, prm.SetLevelString("verbose"))
	require.Error(t, prm.SetEncoding("xml"))
}
