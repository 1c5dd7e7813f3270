package enums

import "fmt"

// VoucherKind selects how a voucher's discount is computed.
type VoucherKind string

const (
	VoucherKindFlat       VoucherKind = "flat"
	VoucherKindPercentage VoucherKind = "percentage"
)

var validVoucherKinds = []VoucherKind{
	VoucherKindFlat,
	VoucherKindPercentage,
}

// String implements fmt.Stringer.
func (k VoucherKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known VoucherKind.
func (k VoucherKind) IsValid() bool {
	for _, candidate := range validVoucherKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseVoucherKind converts raw input into a VoucherKind.
func ParseVoucherKind(value string) (VoucherKind, error) {
	for _, candidate := range validVoucherKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid voucher kind %q", value)
}
