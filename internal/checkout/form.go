package checkout

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/order"
)

const (
	minFullName = 2
	minAddress  = 10
	minPhone    = 10
)

type Form struct {
	FullName        string              `json:"fullName"`
	ShippingAddress string              `json:"shippingAddress"`
	PhoneNumber     string              `json:"phoneNumber"`
	PaymentMethod   order.PaymentMethod `json:"paymentMethod"`
}

// ValidationError maps form field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid checkout form: " + strings.Join(parts, "; ")
}

// Validate checks presence and minimum lengths, and that the payment method
// is one of allowed.
func (f Form) Validate(allowed []order.PaymentMethod) error {
	fields := map[string]string{}

	if runeLen(f.FullName) < minFullName {
		fields["fullName"] = "Full name is required"
	}
	if runeLen(f.ShippingAddress) < minAddress {
		fields["shippingAddress"] = "Please provide a valid shipping address"
	}
	if runeLen(f.PhoneNumber) < minPhone {
		fields["phoneNumber"] = "Please provide a valid phone number"
	}
	switch {
	case strings.TrimSpace(string(f.PaymentMethod)) == "":
		fields["paymentMethod"] = "Payment method is required"
	case !contains(allowed, f.PaymentMethod):
		fields["paymentMethod"] = fmt.Sprintf("Unsupported payment method %q", f.PaymentMethod)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func runeLen(s string) int { return utf8.RuneCountInString(strings.TrimSpace(s)) }

func contains(methods []order.PaymentMethod, m order.PaymentMethod) bool {
	for _, x := range methods {
		if x == m {
			return true
		}
	}
	return false
}
