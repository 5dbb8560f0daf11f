package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOrderRequest(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		errs := ValidateOrderRequest(map[string]any{"pair": "EURSEK", "quantity": float64(125)})
		assert.Empty(t, errs)
	})

	t.Run("NumericStringQuantity", func(t *testing.T) {
		errs := ValidateOrderRequest(map[string]any{"pair": "SEKDOL", "quantity": "125.5"})
		assert.Empty(t, errs)
	})

	t.Run("ZeroQuantity", func(t *testing.T) {
		errs := ValidateOrderRequest(map[string]any{"pair": "EURSEK", "quantity": float64(0)})
		assert.Empty(t, errs)
	})

	t.Run("MissingPair", func(t *testing.T) {
		errs := ValidateOrderRequest(map[string]any{"quantity": float64(125)})
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "'pair'")
	})

	t.Run("UnrecognizedPair", func(t *testing.T) {
		errs := ValidateOrderRequest(map[string]any{"pair": "EURUSD", "quantity": float64(1)})
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "Unrecognized pair: EURUSD")
		assert.Contains(t, errs[0], "EURSEK")
	})

	t.Run("MissingQuantity", func(t *testing.T) {
		errs := ValidateOrderRequest(map[string]any{"pair": "EURSEK"})
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "'quantity'")
	})

	t.Run("NegativeQuantity", func(t *testing.T) {
		errs := ValidateOrderRequest(map[string]any{"pair": "EURSEK", "quantity": float64(-50)})
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "Negative(-50)")
	})

	t.Run("NonNumericQuantity", func(t *testing.T) {
		errs := ValidateOrderRequest(map[string]any{"pair": "EURSEK", "quantity": "12x"})
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "Non-numeric(12x)")
	})

	t.Run("UnexpectedParameters", func(t *testing.T) {
		errs := ValidateOrderRequest(map[string]any{
			"pair":     "EURSEK",
			"quantity": float64(10),
			"side":     "buy",
			"note":     "asap",
		})
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0], "Unexpected parameter(s)")
		assert.Contains(t, errs[0], "note")
		assert.Contains(t, errs[0], "side")
	})

	t.Run("NotAnObject", func(t *testing.T) {
		errs := ValidateOrderRequest("EURSEK")
		assert.Equal(t, []string{"Order must be an object!"}, errs)
	})

	t.Run("AllViolationsReported", func(t *testing.T) {
		errs := ValidateOrderRequest(map[string]any{
			"quantity": "abc",
			"extra":    true,
		})
		require.Len(t, errs, 3)
		assert.Contains(t, errs[0], "'pair'")
		assert.Contains(t, errs[1], "Non-numeric")
		assert.Contains(t, errs[2], "Unexpected parameter(s)")
	})
}
