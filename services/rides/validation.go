package rides

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"biketowork/core"
	"biketowork/models"
)

const (
	// distance is stored as NUMERIC(5, 2)
	distanceMaxDigits     = 5
	distanceDecimalPlaces = 2

	MsgRequired        = "This field is required."
	MsgInvalidDateTime = "Enter a valid date/time."
	MsgInvalidNumber   = "Enter a number."
	MsgNegativeNumber  = "Ensure this value is greater than or equal to 0."
)

// ValidateRideInput checks the domain rules of a new ride. Every time is acceptable,
// including 0001-01-01 00:00 UTC, and the end time is allowed to precede the start time.
// Missing fields are reported by the form binder, which sees the raw values.
func ValidateRideInput(input models.RideInput) core.FieldErrors {
	errs := core.FieldErrors{}

	if msg := validateDistance(input.Distance); msg != "" {
		errs.Add("distance", msg)
	}

	return errs
}

// validateDistance returns the first broken distance rule, or "" when d is acceptable.
func validateDistance(d decimal.Decimal) string {
	if d.IsNegative() {
		return MsgNegativeNumber
	}

	digits, decimals := digitCounts(d)
	wholeDigits := digits - decimals
	maxWholeDigits := distanceMaxDigits - distanceDecimalPlaces

	switch {
	case digits > distanceMaxDigits:
		return fmt.Sprintf("Ensure that there are no more than %d digits in total.", distanceMaxDigits)
	case decimals > distanceDecimalPlaces:
		return fmt.Sprintf("Ensure that there are no more than %d decimal places.", distanceDecimalPlaces)
	case wholeDigits > maxWholeDigits:
		return fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", maxWholeDigits)
	}
	return ""
}

// digitCounts returns the number of significant digits and of fractional digits
// as written, so "5.50" has 3 digits and 2 decimals while "0.05" has 2 and 2.
func digitCounts(d decimal.Decimal) (digits, decimals int) {
	coefficientDigits := len(new(big.Int).Abs(d.Coefficient()).String())
	exponent := int(d.Exponent())

	if exponent >= 0 {
		return coefficientDigits + exponent, 0
	}
	if -exponent > coefficientDigits {
		return -exponent, -exponent
	}
	return coefficientDigits, -exponent
}
