package cart

import (
	"testing"

	"pos-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedVirtualStock(t *testing.T) {
	products := []models.Product{
		{ID: "p1", Stock: 10},
		{ID: "p2", Stock: 5.5, Unit: models.UnitKg},
	}

	vs := SeedVirtualStock(products)

	assert.Equal(t, 10.0, vs["p1"])
	assert.Equal(t, 5.5, vs["p2"])
	assert.Equal(t, 0.0, vs["unknown"])
}

func TestAvailableSubtractsCartReservation(t *testing.T) {
	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)
	vs := SeedVirtualStock([]models.Product{coke})

	c := Clear()
	assert.Equal(t, 10.0, vs.Available(c, "p1"))

	c = Add(c, coke, 3)
	assert.Equal(t, 7.0, vs.Available(c, "p1"))

	// the tracker itself is never decremented by cart ops
	assert.Equal(t, 10.0, vs["p1"])
}

func TestCanAddRejectsWhenNothingAvailable(t *testing.T) {
	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)
	coke.Stock = 2
	vs := SeedVirtualStock([]models.Product{coke})

	c := Add(Add(Clear(), coke, 1), coke, 1)
	require.Equal(t, 0.0, vs.Available(c, "p1"))

	assert.False(t, vs.CanAdd(c, coke))
	assert.True(t, vs.CanAdd(Clear(), coke))
}

func TestCanAddRequiresFullStepForWeightItems(t *testing.T) {
	bread := models.Product{
		ID:    "p2",
		Name:  "Pan",
		Price: 2000,
		Stock: 5.3,
		Unit:  models.UnitKg,
	}
	vs := SeedVirtualStock([]models.Product{bread})

	c := Clear()
	for i := 0; i < 10; i++ {
		require.True(t, vs.CanAdd(c, bread))
		c = Add(c, bread, 0.5)
	}

	// 0.3 kg left: not enough for another half-kilo step, so the cart
	// can never reserve more than the real stock.
	assert.InDelta(t, 0.3, vs.Available(c, "p2"), 1e-9)
	assert.False(t, vs.CanAdd(c, bread))
}

func TestCanSetQuantityUsesVirtualCeiling(t *testing.T) {
	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)
	vs := SeedVirtualStock([]models.Product{coke})

	// the edited line already accounts for its reservation, so the
	// ceiling is the full virtual stock, not Available
	assert.True(t, vs.CanSetQuantity("p1", 10))
	assert.False(t, vs.CanSetQuantity("p1", 12))
	assert.False(t, vs.CanSetQuantity("unknown", 1))
}
