package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRoleDomain(t *testing.T) {
	for _, raw := range []string{"farmer", "coop", "buyer", "admin"} {
		role, err := ParseUserRole(raw)
		require.NoError(t, err)
		assert.True(t, role.IsValid())
		assert.Equal(t, raw, role.String())
	}
	_, err := ParseUserRole("vendor")
	assert.Error(t, err)
	assert.False(t, UserRole("Farmer").IsValid())
}

func TestCoopRoleDomain(t *testing.T) {
	assert.True(t, CoopRoleMember.IsValid())
	assert.True(t, CoopRoleOfficer.IsValid())
	_, err := ParseCoopRole("chair")
	assert.Error(t, err)
}

func TestOrderStatusDomain(t *testing.T) {
	assert.Equal(t, []OrderStatus{
		OrderStatusPending,
		OrderStatusAccepted,
		OrderStatusInTransit,
		OrderStatusCompleted,
		OrderStatusCancelled,
	}, OrderStatuses())

	status, err := ParseOrderStatus("in_transit")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusInTransit, status)

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)
}

func TestPriceSourceTypeDomain(t *testing.T) {
	assert.True(t, PriceSourceFarmer.IsValid())
	assert.True(t, PriceSourceCoop.IsValid())
	_, err := ParsePriceSourceType("buyer")
	assert.Error(t, err)
}

func TestCurrency(t *testing.T) {
	c, err := ParseCurrency(" usd ")
	require.NoError(t, err)
	assert.Equal(t, Currency("USD"), c)

	assert.Equal(t, CurrencyKES, Currency("").OrDefault())
	assert.Equal(t, Currency("UGX"), Currency("UGX").OrDefault())

	for _, bad := range []string{"", "KE", "KESH", "K3S"} {
		_, err := ParseCurrency(bad)
		assert.Errorf(t, err, "expected %q to be rejected", bad)
	}
}
