package streamerr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zonewatch/zonewatch/pkg/streamerr"
)

func TestTransportError(t *testing.T) {
	base := errors.New("connection refused")
	err := streamerr.NewTransportError("http://dash.local/home/status", 2, base)

	assert.Contains(t, err.Error(), "home/status")
	assert.Contains(t, err.Error(), "attempt 2")
	assert.Equal(t, base, err.Unwrap())
	assert.Equal(t, streamerr.ClassTransport, streamerr.Classify(err))
	assert.True(t, streamerr.IsRetryable(err))
}

func TestFrameError(t *testing.T) {
	err := streamerr.NewFrameError("message", errors.New("unexpected end of JSON input"))

	assert.Contains(t, err.Error(), "malformed")
	assert.True(t, errors.Is(err, streamerr.ErrBadFrame))
	assert.True(t, streamerr.IsFrame(err))
	assert.Equal(t, streamerr.ClassParse, streamerr.Classify(err))
	assert.False(t, streamerr.IsRetryable(err))
}

func TestAuthError(t *testing.T) {
	t.Run("expired token", func(t *testing.T) {
		err := streamerr.NewAuthError(http.StatusUnauthorized)
		assert.True(t, errors.Is(err, streamerr.ErrTokenExpired))
		assert.Equal(t, streamerr.ClassAuth, streamerr.Classify(err))
		assert.True(t, streamerr.IsAuth(err))
		assert.False(t, streamerr.IsRetryable(err))
	})

	t.Run("forbidden", func(t *testing.T) {
		err := streamerr.NewAuthError(http.StatusForbidden)
		assert.Equal(t, streamerr.ClassAuth, streamerr.Classify(err))
	})

	t.Run("wrapped", func(t *testing.T) {
		err := fmt.Errorf("opening stream: %w", streamerr.NewAuthError(http.StatusUnauthorized))
		assert.Equal(t, streamerr.ClassAuth, streamerr.Classify(err))
	})
}

func TestRetryExhaustedError(t *testing.T) {
	base := streamerr.NewTransportError("http://dash.local/home/zone", 3, errors.New("EOF"))
	err := &streamerr.RetryExhaustedError{URL: "http://dash.local/home/zone", Attempts: 3, Err: base}

	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.True(t, errors.Is(err, streamerr.ErrRetryExhausted))
	assert.True(t, streamerr.IsRetryExhausted(err))
	// Terminal transport failures classify as transport so reporters can
	// group them with the attempts that led there.
	assert.Equal(t, streamerr.ClassTransport, streamerr.Classify(err))
}

func TestClassifyUnknown(t *testing.T) {
	assert.Equal(t, streamerr.ClassUnknown, streamerr.Classify(errors.New("something odd")))
	assert.True(t, streamerr.IsRetryable(errors.New("something odd")))
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, streamerr.ClassAuth, streamerr.ClassifyStatus(http.StatusUnauthorized))
	assert.Equal(t, streamerr.ClassAuth, streamerr.ClassifyStatus(http.StatusForbidden))
	assert.Equal(t, streamerr.ClassTransport, streamerr.ClassifyStatus(http.StatusBadGateway))
	assert.Equal(t, streamerr.ClassUnknown, streamerr.ClassifyStatus(http.StatusOK))
}

func TestClassString(t *testing.T) {
	assert.Equal(t, "transport", streamerr.ClassTransport.String())
	assert.Equal(t, "parse", streamerr.ClassParse.String())
	assert.Equal(t, "auth", streamerr.ClassAuth.String())
	assert.Equal(t, "unknown", streamerr.ClassUnknown.String())
}
