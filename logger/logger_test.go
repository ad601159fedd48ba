package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, New("debug", "console").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("", "console").GetLevel())
	assert.Equal(t, zerolog.InfoLevel, New("loud", "json").GetLevel())
	assert.Equal(t, zerolog.WarnLevel, New("warn", "json").GetLevel())
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf)

	log.Info().Str("account_no", "1234567890").Msg("deposit committed")

	assert.Contains(t, buf.String(), "deposit committed")
	assert.Contains(t, buf.String(), `"account_no":"1234567890"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestContextRoundTrip(t *testing.T) {
	t.Run("logger stored in context is returned", func(t *testing.T) {
		buf := &bytes.Buffer{}
		ctx := WithContext(context.Background(), NewWithWriter(buf))

		log := FromContext(ctx)
		log.Info().Msg("from context")

		assert.Contains(t, buf.String(), "from context")
	})

	t.Run("missing logger yields a disabled one", func(t *testing.T) {
		log := FromContext(context.Background())
		assert.Equal(t, zerolog.Disabled, log.GetLevel())
	})
}
