package orders

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/finvex/fxorders/pkg/models"
)

// allowedParams is the accepted order submission schema.
var allowedParams = map[string]struct{}{
	"pair":     {},
	"quantity": {},
}

// ValidateOrderRequest checks a raw order submission against the accepted
// schema. Every violated rule is reported, not only the first, so a client
// gets a complete correction list in one round trip. An empty result means
// the submission is valid.
func ValidateOrderRequest(raw any) []string {
	body, ok := raw.(map[string]any)
	if !ok {
		return []string{"Order must be an object!"}
	}

	var errs []string
	if msg := verifyPair(body); msg != "" {
		errs = append(errs, msg)
	}
	if msg := verifyQuantity(body); msg != "" {
		errs = append(errs, msg)
	}

	var unexpected []string
	for key := range body {
		if _, ok := allowedParams[key]; !ok {
			unexpected = append(unexpected, key)
		}
	}
	if len(unexpected) > 0 {
		sort.Strings(unexpected)
		errs = append(errs, fmt.Sprintf("Unexpected parameter(s): %v in order request!", unexpected))
	}
	return errs
}

func verifyPair(body map[string]any) string {
	value, ok := body["pair"]
	if !ok {
		return "Missing required data 'pair' in order request!"
	}
	pair, ok := value.(string)
	if !ok || !models.Pair(pair).IsValid() {
		return fmt.Sprintf("Unrecognized pair: %v in order request! Recognized values: %v", value, models.Pairs())
	}
	return ""
}

func verifyQuantity(body map[string]any) string {
	value, ok := body["quantity"]
	if !ok {
		return "Missing required data 'quantity' in order request!"
	}
	qty, err := parseQuantity(value)
	if err != nil {
		return fmt.Sprintf("Non-numeric(%v) value for quantity in order request! It should be a positive number.", value)
	}
	if qty.IsNegative() {
		return fmt.Sprintf("Negative(%v) value for quantity in order request! It should be a positive number!", value)
	}
	return ""
}

// parseQuantity accepts JSON numbers and numeric strings.
func parseQuantity(value any) (decimal.Decimal, error) {
	switch q := value.(type) {
	case float64:
		return decimal.NewFromFloat(q), nil
	case json.Number:
		return decimal.NewFromString(q.String())
	case string:
		return decimal.NewFromString(q)
	default:
		return decimal.Decimal{}, fmt.Errorf("unsupported quantity type %T", value)
	}
}
