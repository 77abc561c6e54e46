package api

import (
	"net/http"
	"testing"

	"kickvibe/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistToggle(t *testing.T) {
	env := newTestEnv(t)
	seller := env.createUser(t, "seller", "seller@example.com", "secret123", domain.RoleUser)
	user := env.createUser(t, "collector", "collector@example.com", "secret123", domain.RoleUser)
	token := env.accessToken(t, user)
	shoe := env.createShoe(t, seller.ID, "Hype Drop", 250.00, 5, "9")

	// First toggle adds.
	rec := env.doJSON(t, http.MethodPost, "/api/v1/wishlist/toggle/"+shoe.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var result domain.WishlistToggleResult
	decodeData(t, rec, &result)
	assert.True(t, result.Wishlisted)
	assert.Equal(t, shoe.ID, result.ShoeID)

	rec = env.doJSON(t, http.MethodGet, "/api/v1/wishlist", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var wishlist domain.Wishlist
	decodeData(t, rec, &wishlist)
	assert.Equal(t, user.ID, wishlist.OwnerID)
	require.Len(t, wishlist.Shoes, 1)
	assert.Equal(t, shoe.ID, wishlist.Shoes[0].ID)

	// Second toggle removes.
	rec = env.doJSON(t, http.MethodPost, "/api/v1/wishlist/toggle/"+shoe.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &result)
	assert.False(t, result.Wishlisted)

	rec = env.doJSON(t, http.MethodGet, "/api/v1/wishlist", token, nil)
	decodeData(t, rec, &wishlist)
	assert.Empty(t, wishlist.Shoes)
}

func TestWishlistToggleUnknownShoe(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "collector", "collector@example.com", "secret123", domain.RoleUser)
	token := env.accessToken(t, user)

	rec := env.doJSON(t, http.MethodPost, "/api/v1/wishlist/toggle/no-such-shoe", token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWishlistRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.doJSON(t, http.MethodGet, "/api/v1/wishlist", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
