package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigure_Formats(t *testing.T) {
	tests := []struct {
		format string
		check  func(t *testing.T, f logrus.Formatter)
	}{
		{"auto", func(t *testing.T, f logrus.Formatter) {
			tf, ok := f.(*logrus.TextFormatter)
			require.True(t, ok)
			assert.True(t, tf.EnvironmentOverrideColors)
		}},
		{"JSON", func(t *testing.T, f logrus.Formatter) {
			assert.IsType(t, &logrus.JSONFormatter{}, f)
		}},
		{"logfmt", func(t *testing.T, f logrus.Formatter) {
			tf, ok := f.(*logrus.TextFormatter)
			require.True(t, ok)
			assert.True(t, tf.DisableColors)
			assert.True(t, tf.FullTimestamp)
		}},
		{"pretty", func(t *testing.T, f logrus.Formatter) {
			tf, ok := f.(*logrus.TextFormatter)
			require.True(t, ok)
			assert.True(t, tf.ForceColors)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			logger := logrus.New()
			require.NoError(t, Configure(logger, Options{Format: tt.format, Level: "warn"}))
			tt.check(t, logger.Formatter)
			assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
		})
	}
}

func TestConfigure_NoColor(t *testing.T) {
	logger := logrus.New()
	require.NoError(t, Configure(logger, Options{Format: "pretty", NoColor: true}))
	tf, ok := logger.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
	assert.False(t, tf.ForceColors)
}

func TestConfigure_Errors(t *testing.T) {
	logger := logrus.New()

	err := Configure(logger, Options{Format: "xml"})
	assert.ErrorIs(t, err, errInvalidLogFormat)

	err = Configure(logger, Options{Level: "loud"})
	assert.ErrorIs(t, err, errInvalidLogLevel)
}

func TestConfigure_VerboseRaisesToDebug(t *testing.T) {
	logger := logrus.New()
	require.NoError(t, Configure(logger, Options{Level: "error", Verbose: true}))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	require.NoError(t, Configure(logger, Options{Level: "trace", Verbose: true}))
	assert.Equal(t, logrus.TraceLevel, logger.GetLevel())
}

func TestConfigure_Output(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	require.NoError(t, Configure(logger, Options{Format: "json", Output: &buf}))

	logger.WithField("project", "shop").Info("hello")
	assert.Contains(t, buf.String(), `"project":"shop"`)
}
