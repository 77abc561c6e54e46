package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotal(t *testing.T) {
	cart := &Cart{}
	cart.ComputeTotal()
	assert.Zero(t, cart.TotalPrice)

	cart.Items = []*CartItem{
		{ShoePrice: 120.00, Quantity: 2},
		{ShoePrice: 80.50, Quantity: 1},
	}
	cart.ComputeTotal()
	assert.InDelta(t, 320.50, cart.TotalPrice, 0.001)
}

func TestShoeHasSize(t *testing.T) {
	shoe := &Shoe{Sizes: []string{"8", "9", "10"}}
	assert.True(t, shoe.HasSize("9"))
	assert.False(t, shoe.HasSize("13"))
	assert.False(t, (&Shoe{}).HasSize("9"))
}
