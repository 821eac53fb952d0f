package cart

import (
	"testing"

	"pos-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id, name string, price float64) models.Product {
	return models.Product{
		ID:                id,
		Name:              name,
		Price:             price,
		Stock:             10,
		Unit:              models.UnitPiece,
		LowStockThreshold: 5,
	}
}

func TestAddNewLine(t *testing.T) {
	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)

	c := Add(Clear(), coke, 1)

	require.Len(t, c, 1)
	assert.Equal(t, 1.0, c[0].Quantity)
	assert.Equal(t, 3500.0, c[0].Subtotal)
}

func TestAddMergesExistingLine(t *testing.T) {
	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)

	c := Add(Add(Clear(), coke, 1), coke, 1)

	require.Len(t, c, 1, "repeated adds must merge, not duplicate lines")
	assert.Equal(t, 2.0, c[0].Quantity)
	assert.Equal(t, 2*3500.0, c[0].Subtotal)
}

func TestAddDoesNotMutateInput(t *testing.T) {
	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)
	water := testProduct("p2", "Agua 500ml", 800)

	original := Add(Clear(), coke, 1)
	_ = Add(original, coke, 1)
	_ = Add(original, water, 1)

	require.Len(t, original, 1)
	assert.Equal(t, 1.0, original[0].Quantity)
	assert.Equal(t, 3500.0, original[0].Subtotal)
}

func TestAddRecomputesSubtotalFromCurrentPrice(t *testing.T) {
	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)
	c := Add(Clear(), coke, 1)

	coke.Price = 4000
	c = Add(c, coke, 1)

	require.Len(t, c, 1)
	assert.Equal(t, 2*4000.0, c[0].Subtotal, "merge must use the updated price")
}

func TestWeightProductHalfKiloSteps(t *testing.T) {
	bread := models.Product{ID: "p3", Name: "Pan", Price: 2000, Stock: 5, Unit: models.UnitKg}
	require.Equal(t, 0.5, bread.QuantityStep())

	c := Clear()
	for i := 0; i < 3; i++ {
		c = Add(c, bread, bread.QuantityStep())
	}

	require.Len(t, c, 1)
	assert.Equal(t, 1.5, c[0].Quantity)
	assert.Equal(t, 3000.0, c[0].Subtotal)
}

func TestUpdateQuantitySetsAbsoluteValue(t *testing.T) {
	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)
	c := Add(Clear(), coke, 3)

	c = UpdateQuantity(c, "p1", 5)

	require.Len(t, c, 1)
	assert.Equal(t, 5.0, c[0].Quantity)
	assert.Equal(t, 5*3500.0, c[0].Subtotal)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)
	water := testProduct("p2", "Agua 500ml", 800)
	c := Add(Add(Clear(), coke, 2), water, 1)
	before := Total(c)

	c = UpdateQuantity(c, "p1", 0)

	require.Len(t, c, 1)
	assert.Equal(t, "p2", c[0].Product.ID)
	assert.Equal(t, before-2*3500.0, Total(c))
}

func TestUpdateQuantityNegativeRemovesLine(t *testing.T) {
	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)
	c := Add(Clear(), coke, 1)

	c = UpdateQuantity(c, "p1", -0.5)

	assert.Len(t, c, 0)
}

func TestUpdateQuantityUnknownProductIsNoop(t *testing.T) {
	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)
	c := Add(Clear(), coke, 2)

	updated := UpdateQuantity(c, "missing", 4)

	assert.Equal(t, c, updated)
}

func TestRemove(t *testing.T) {
	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)
	water := testProduct("p2", "Agua 500ml", 800)
	c := Add(Add(Clear(), coke, 1), water, 1)

	c = Remove(c, "p1")
	require.Len(t, c, 1)
	assert.Equal(t, "p2", c[0].Product.ID)

	// removing an absent product keeps the cart as is
	c = Remove(c, "p1")
	assert.Len(t, c, 1)
}

func TestTotal(t *testing.T) {
	assert.Equal(t, 0.0, Total(Clear()))

	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)
	water := testProduct("p2", "Agua 500ml", 800)
	c := Add(Add(Add(Clear(), coke, 2), water, 3), coke, 1)

	// total equals the sum of quantity x price over lines
	var direct float64
	for _, line := range c {
		direct += line.Quantity * line.Product.Price
	}
	assert.Equal(t, direct, Total(c))
	assert.Equal(t, 3*3500.0+3*800.0, Total(c))
}

func TestInsertionOrderPreserved(t *testing.T) {
	a := testProduct("a", "A", 100)
	b := testProduct("b", "B", 200)
	z := testProduct("z", "Z", 300)

	c := Add(Add(Add(Clear(), z, 1), a, 1), b, 1)
	c = Add(c, z, 1) // merge must not reorder

	require.Len(t, c, 3)
	assert.Equal(t, "z", c[0].Product.ID)
	assert.Equal(t, "a", c[1].Product.ID)
	assert.Equal(t, "b", c[2].Product.ID)
}

func TestQuantityOf(t *testing.T) {
	coke := testProduct("p1", "Coca Cola 2.25lt", 3500)
	c := Add(Clear(), coke, 3)

	assert.Equal(t, 3.0, c.QuantityOf("p1"))
	assert.Equal(t, 0.0, c.QuantityOf("missing"))
}
