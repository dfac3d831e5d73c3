package errs_test

import (
	"errors"
	"net/http"
	"testing"

	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("delivery", "ord-1")

		assert.Equal(t, "delivery", err.ParamName)
		assert.Equal(t, "ord-1", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: ord-1", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("non string id", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("orderId", 456)

		assert.Equal(t, "object not found: 456", err.Error())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("run finished")
		err := errs.NewObjectNotFoundErrorWithCause("delivery", "ord-1", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: delivery, ID is: ord-1 (cause: run finished)",
			err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("NewValueIsInvalidError", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("status")

		assert.Equal(t, "status", err.ParamName)
		assert.Equal(t, "value is invalid: status", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("NewValueIsInvalidErrorWithCause", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("status", errors.New(`"shipped" is not a known status`))

		assert.Equal(t, `value is invalid: status (cause: "shipped" is not a known status)`, err.Error())
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("NewValueIsOutOfRangeError", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("latitude", 91.5, -90.0, 90.0)

		assert.Equal(t, "latitude", err.ParamName)
		assert.InDelta(t, 91.5, err.Value, 0)
		assert.Equal(t, "value is out of range: latitude is 91.5, min value is -90, max value is 90", err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})

	t.Run("NewValueIsOutOfRangeErrorWithCause", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeErrorWithCause("quantity", -5, 0, 100, errors.New("negative stock"))

		assert.Equal(t,
			"value is out of range: quantity is -5, min value is 0, max value is 100 (cause: negative stock)",
			err.Error())
	})

	t.Run("newlines in values are collapsed", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("text", "hello\nworld", 0, 10)

		assert.Contains(t, err.Error(), "hello world")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	err := errs.NewValueIsRequiredError("order_id")
	assert.Equal(t, "value is required: order_id", err.Error())
	assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())

	withCause := errs.NewValueIsRequiredErrorWithCause("Material", errors.New("empty list"))
	assert.Equal(t, "value is required: Material (cause: empty list)", withCause.Error())
}

func TestLookupError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := errs.NewLookupError("address", "Rua Direita 1, Viseu")

		assert.Equal(t, `lookup failed: address "Rua Direita 1, Viseu"`, err.Error())
		require.ErrorIs(t, err, errs.ErrLookupFailed)
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("status 500")
		err := errs.NewLookupErrorWithCause("route", "a:b", cause)

		assert.Equal(t, `lookup failed: route "a:b" (cause: status 500)`, err.Error())
		assert.Equal(t, cause, err.Cause)
	})
}

func TestTransportError(t *testing.T) {
	t.Run("status and body are reported", func(t *testing.T) {
		err := errs.NewTransportError("eventgrid", http.StatusUnauthorized, "invalid\nkey")

		assert.Equal(t, "transport failed: eventgrid returned 401: invalid key", err.Error())
		require.ErrorIs(t, err, errs.ErrTransportFailed)
	})

	t.Run("cause is reachable", func(t *testing.T) {
		cause := errors.New("broker unreachable")
		err := errs.NewTransportErrorWithCause("kafka", http.StatusServiceUnavailable, cause)

		require.ErrorIs(t, err, errs.ErrTransportFailed)
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "broker unreachable", err.Body)

		var te *errs.TransportError
		require.ErrorAs(t, error(err), &te)
		assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)
	})
}

func TestSentinelErrors(t *testing.T) {
	assert.Equal(t, "object not found", errs.ErrObjectNotFound.Error())
	assert.Equal(t, "value is invalid", errs.ErrValueIsInvalid.Error())
	assert.Equal(t, "value is out of range", errs.ErrValueIsOutOfRange.Error())
	assert.Equal(t, "value is required", errs.ErrValueIsRequired.Error())
	assert.Equal(t, "lookup failed", errs.ErrLookupFailed.Error())
	assert.Equal(t, "transport failed", errs.ErrTransportFailed.Error())
}

func TestErrorsCanBeUnwrapped(t *testing.T) {
	require.ErrorIs(t, errs.NewObjectNotFoundError("delivery", "1"), errs.ErrObjectNotFound)
	require.ErrorIs(t, errs.NewValueIsInvalidError("status"), errs.ErrValueIsInvalid)
	require.ErrorIs(t, errs.NewValueIsOutOfRangeError("lat", 100, -90, 90), errs.ErrValueIsOutOfRange)
	require.ErrorIs(t, errs.NewValueIsRequiredError("order_id"), errs.ErrValueIsRequired)
	require.ErrorIs(t, errors.Join(errs.NewValueIsRequiredError("a"), errs.NewValueIsInvalidError("b")),
		errs.ErrValueIsInvalid)
}
