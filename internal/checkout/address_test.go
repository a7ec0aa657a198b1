package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validAddress() Address {
	return Address{
		Name:     "Rahim Uddin",
		Phone:    "01712345678",
		Address:  "12 Main St",
		Country:  "BD",
		State:    "Dhaka",
		Postcode: "1207",
	}
}

func TestValidateAddress(t *testing.T) {
	t.Run("valid address passes", func(t *testing.T) {
		res := ValidateAddress(validAddress(), false)
		assert.True(t, res.OK())
		assert.Empty(t, res.Warnings)
	})

	t.Run("short phone is rejected", func(t *testing.T) {
		addr := validAddress()
		addr.Phone = "12345"
		res := ValidateAddress(addr, false)
		assert.False(t, res.OK())
		assert.Contains(t, res.Errors, "phone")
	})

	t.Run("phone with letters is rejected", func(t *testing.T) {
		addr := validAddress()
		addr.Phone = "017a2345678"
		res := ValidateAddress(addr, false)
		assert.Contains(t, res.Errors, "phone")
	})

	t.Run("missing required fields", func(t *testing.T) {
		res := ValidateAddress(Address{}, false)
		assert.False(t, res.OK())
		for _, f := range []string{"name", "phone", "address", "country", "state"} {
			assert.Contains(t, res.Errors, f)
		}
	})

	t.Run("email optional without account", func(t *testing.T) {
		addr := validAddress()
		addr.Email = ""
		assert.True(t, ValidateAddress(addr, false).OK())
	})

	t.Run("email required for account creation", func(t *testing.T) {
		addr := validAddress()
		addr.Email = ""
		res := ValidateAddress(addr, true)
		assert.Contains(t, res.Errors, "email")
	})

	t.Run("malformed email rejected even without account", func(t *testing.T) {
		addr := validAddress()
		addr.Email = "not-an-email"
		res := ValidateAddress(addr, false)
		assert.Contains(t, res.Errors, "email")
	})

	t.Run("short postcode only warns", func(t *testing.T) {
		addr := validAddress()
		addr.Postcode = "12"
		res := ValidateAddress(addr, false)
		assert.True(t, res.OK())
		assert.Contains(t, res.Warnings, "postcode")
	})

	t.Run("empty postcode is fine", func(t *testing.T) {
		addr := validAddress()
		addr.Postcode = ""
		res := ValidateAddress(addr, false)
		assert.True(t, res.OK())
		assert.Empty(t, res.Warnings)
	})
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("Rahim Uddin Ahmed")
	assert.Equal(t, "Rahim", first)
	assert.Equal(t, "Uddin Ahmed", last)

	first, last = SplitName("Madonna")
	assert.Equal(t, "Madonna", first)
	assert.Equal(t, "", last)

	first, last = SplitName("   ")
	assert.Equal(t, "", first)
	assert.Equal(t, "", last)
}
