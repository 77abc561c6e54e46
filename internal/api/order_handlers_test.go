package api

import (
	"context"
	"net/http"
	"testing"

	"kickvibe/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) fillCart(t *testing.T, token string, shoeID, size string, quantity int) {
	t.Helper()
	rec := e.doJSON(t, http.MethodPost, "/api/v1/cart/items", token, domain.AddCartItemRequest{
		ShoeID: shoeID, Size: size, Quantity: quantity,
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	buyer := env.createUser(t, "buyer", "buyer@example.com", "secret123", domain.RoleUser)
	token := env.accessToken(t, buyer)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/orders", token, domain.PlaceOrderRequest{
		ShippingAddress: "12 Main Street, Springfield",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestPlaceOrderSnapshotsCartAndDecrementsStock(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", "seller@example.com", "secret123", domain.RoleUser)
	buyer := env.createUser(t, "buyer", "buyer@example.com", "secret123", domain.RoleUser)
	token := env.accessToken(t, buyer)
	shoe := env.createShoe(t, seller.ID, "Street Runner", 120.00, 3, "8", "9")

	env.fillCart(t, token, shoe.ID, "9", 2)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/orders", token, domain.PlaceOrderRequest{
		ShippingAddress: "12 Main Street, Springfield",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var order domain.Order
	decodeData(t, rec, &order)
	assert.Equal(t, buyer.ID, order.OwnerID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "Street Runner", order.Items[0].Name)
	assert.Equal(t, "9", order.Items[0].Size)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.InDelta(t, 120.00, order.Items[0].Price, 0.001)
	assert.InDelta(t, 240.00, order.TotalPrice, 0.001)

	// Stock went down and the cart is empty again.
	rec = env.doJSON(t, http.MethodGet, "/api/v1/shoes/"+shoe.ID, "", nil)
	var updated domain.Shoe
	decodeData(t, rec, &updated)
	assert.Equal(t, 1, updated.Stock)

	rec = env.doJSON(t, http.MethodGet, "/api/v1/cart", token, nil)
	var cart domain.Cart
	decodeData(t, rec, &cart)
	assert.Empty(t, cart.Items)

	// Exactly one order in the history.
	rec = env.doJSON(t, http.MethodGet, "/api/v1/orders/history", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []*domain.Order
	decodeData(t, rec, &history)
	require.Len(t, history, 1)
	assert.Equal(t, order.ID, history[0].ID)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", "seller@example.com", "secret123", domain.RoleUser)
	buyer := env.createUser(t, "buyer", "buyer@example.com", "secret123", domain.RoleUser)
	token := env.accessToken(t, buyer)
	shoe := env.createShoe(t, seller.ID, "Street Runner", 120.00, 3, "9")

	env.fillCart(t, token, shoe.ID, "9", 3)

	// Someone else buys out the stock first.
	shoe.Stock = 1
	require.NoError(t, env.shoes.Update(context.Background(), shoe))

	rec := env.doJSON(t, http.MethodPost, "/api/v1/orders", token, domain.PlaceOrderRequest{
		ShippingAddress: "12 Main Street, Springfield",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Message, "Street Runner")

	// Nothing was committed: the cart still holds the line and stock is unchanged.
	rec = env.doJSON(t, http.MethodGet, "/api/v1/cart", token, nil)
	var cart domain.Cart
	decodeData(t, rec, &cart)
	require.Len(t, cart.Items, 1)

	current, err := env.shoes.GetByID(context.Background(), shoe.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.Stock)
}

func TestGetOrderByIDAuthorization(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", "seller@example.com", "secret123", domain.RoleUser)
	buyer := env.createUser(t, "buyer", "buyer@example.com", "secret123", domain.RoleUser)
	other := env.createUser(t, "other", "other@example.com", "secret123", domain.RoleUser)
	admin := env.createUser(t, "admin", "admin@example.com", "secret123", domain.RoleAdmin)
	buyerToken := env.accessToken(t, buyer)
	shoe := env.createShoe(t, seller.ID, "Street Runner", 120.00, 5, "9")

	env.fillCart(t, buyerToken, shoe.ID, "9", 1)
	rec := env.doJSON(t, http.MethodPost, "/api/v1/orders", buyerToken, domain.PlaceOrderRequest{
		ShippingAddress: "12 Main Street, Springfield",
	})
	var order domain.Order
	decodeData(t, rec, &order)

	rec = env.doJSON(t, http.MethodGet, "/api/v1/orders/"+order.ID, buyerToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/api/v1/orders/"+order.ID, env.accessToken(t, other), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/api/v1/orders/"+order.ID, env.accessToken(t, admin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(t, http.MethodGet, "/api/v1/orders/no-such-order", buyerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func placeTestOrder(t *testing.T, env *testEnv, buyerToken, shoeID string) *domain.Order {
	t.Helper()
	env.fillCart(t, buyerToken, shoeID, "9", 1)
	rec := env.doJSON(t, http.MethodPost, "/api/v1/orders", buyerToken, domain.PlaceOrderRequest{
		ShippingAddress: "12 Main Street, Springfield",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var order domain.Order
	decodeData(t, rec, &order)
	return &order
}

func TestUpdateOrderStatus(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", "seller@example.com", "secret123", domain.RoleUser)
	buyer := env.createUser(t, "buyer", "buyer@example.com", "secret123", domain.RoleUser)
	admin := env.createUser(t, "admin", "admin@example.com", "secret123", domain.RoleAdmin)
	buyerToken := env.accessToken(t, buyer)
	adminToken := env.accessToken(t, admin)
	shoe := env.createShoe(t, seller.ID, "Street Runner", 120.00, 20, "9")

	statusBody := func(s domain.OrderStatus) domain.UpdateOrderStatusRequest {
		return domain.UpdateOrderStatusRequest{Status: string(s)}
	}

	t.Run("admin advances pending to shipped to delivered", func(t *testing.T) {
		order := placeTestOrder(t, env, buyerToken, shoe.ID)

		rec := env.doJSON(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", adminToken,
			statusBody(domain.OrderStatusShipped))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.doJSON(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", adminToken,
			statusBody(domain.OrderStatusDelivered))
		require.Equal(t, http.StatusOK, rec.Code)

		// Delivered is terminal.
		rec = env.doJSON(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", adminToken,
			statusBody(domain.OrderStatusCancelled))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("admin cannot skip shipped", func(t *testing.T) {
		order := placeTestOrder(t, env, buyerToken, shoe.ID)
		rec := env.doJSON(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", adminToken,
			statusBody(domain.OrderStatusDelivered))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("owner may cancel a pending order only", func(t *testing.T) {
		order := placeTestOrder(t, env, buyerToken, shoe.ID)

		rec := env.doJSON(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", buyerToken,
			statusBody(domain.OrderStatusShipped))
		require.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.doJSON(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", buyerToken,
			statusBody(domain.OrderStatusCancelled))
		require.Equal(t, http.StatusOK, rec.Code)

		var cancelled domain.Order
		decodeData(t, rec, &cancelled)
		assert.Equal(t, domain.OrderStatusCancelled, cancelled.Status)
	})

	t.Run("stranger may not touch the order", func(t *testing.T) {
		order := placeTestOrder(t, env, buyerToken, shoe.ID)
		other := env.createUser(t, "stranger", "stranger@example.com", "secret123", domain.RoleUser)
		rec := env.doJSON(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", env.accessToken(t, other),
			statusBody(domain.OrderStatusCancelled))
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		order := placeTestOrder(t, env, buyerToken, shoe.ID)
		rec := env.doJSON(t, http.MethodPatch, "/api/v1/orders/"+order.ID+"/status", adminToken,
			domain.UpdateOrderStatusRequest{Status: "teleported"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
