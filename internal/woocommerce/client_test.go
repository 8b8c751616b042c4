package woocommerce_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"catalogsearch/internal/woocommerce"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *woocommerce.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return woocommerce.NewClient(woocommerce.Config{
		BaseURL:        srv.URL + "/",
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
	}, nil)
}

func TestClient_ListProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		assert.Equal(t, "publish", r.URL.Query().Get("status"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "ck_test", user)
		assert.Equal(t, "cs_test", pass)

		w.Header().Set("X-WP-TotalPages", "3")
		fmt.Fprint(w, `[{"id":10,"name":"Balón","price":"89000","stock_quantity":null,"images":[{"src":"https://cdn/x.jpg"}]}]`)
	})

	products, totalPages, err := client.ListProducts(context.Background(), woocommerce.ListProductsParams{
		Page: 2, PerPage: 50, Status: "publish",
	})

	require.NoError(t, err)
	assert.Equal(t, 3, totalPages)
	require.Len(t, products, 1)
	assert.Equal(t, 10, products[0].ID)
	assert.Equal(t, "Balón", products[0].Name)
	assert.Nil(t, products[0].StockQuantity)
	assert.Equal(t, "https://cdn/x.jpg", products[0].Images[0].Src)
}

func TestClient_AllProductsFollowsPages(t *testing.T) {
	calls := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		pageNo, _ := strconv.Atoi(r.URL.Query().Get("page"))
		w.Header().Set("X-WP-TotalPages", "2")
		_ = json.NewEncoder(w).Encode([]woocommerce.Product{
			{ID: pageNo*10 + 1, Name: "a"},
			{ID: pageNo*10 + 2, Name: "b"},
		})
	})

	products, err := client.AllProducts(context.Background(), woocommerce.ListProductsParams{PerPage: 2})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Len(t, products, 4)
	assert.Equal(t, 11, products[0].ID)
	assert.Equal(t, 22, products[3].ID)
}

func TestClient_AllProductsStopsOnEmptyPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, `[{"id":1,"name":"a"}]`)
			return
		}
		fmt.Fprint(w, `[]`)
	})

	products, err := client.AllProducts(context.Background(), woocommerce.ListProductsParams{})

	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"code":"woocommerce_rest_cannot_view"}`)
	})

	_, _, err := client.ListProducts(context.Background(), woocommerce.ListProductsParams{})

	require.Error(t, err)
	assert.ErrorIs(t, err, woocommerce.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "401")
}

func TestClient_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not":"a list"`)
	})

	_, err := client.AllProducts(context.Background(), woocommerce.ListProductsParams{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode products")
}

func TestClient_AllCategories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products/categories", r.URL.Path)
		w.Header().Set("X-WP-TotalPages", "1")
		fmt.Fprint(w, `[{"id":3,"name":"Guayeras","slug":"guayeras","parent":0,"count":12}]`)
	})

	categories, err := client.AllCategories(context.Background())

	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "guayeras", categories[0].Slug)
	assert.Equal(t, 12, categories[0].Count)
}
