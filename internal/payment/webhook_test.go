package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldConfirm(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status string
		fraud  string
		want   bool
	}{
		{"settlement", "", true},
		{"capture", "accept", true},
		{"capture", "", true},
		{"capture", "challenge", false},
		{"pending", "", false},
		{"deny", "", false},
		{"expire", "", false},
		{"cancel", "", false},
	}
	for _, tc := range cases {
		n := Notification{TransactionStatus: tc.status, FraudStatus: tc.fraud}
		assert.Equal(t, tc.want, n.ShouldConfirm(), "%s/%s", tc.status, tc.fraud)
	}
}
