package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/checkout"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/clients"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/config"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/listing"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/middleware"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/order"
	"github.com/BuiNam2k4/FigureCheckEcomSystem/internal/storefront"
)

const (
	listingRem    = "0b7c2f9e-1d1a-4c55-9a51-5d0c8c1f0a01"
	listingEmilia = "0b7c2f9e-1d1a-4c55-9a51-5d0c8c1f0a02"
	listingRam    = "0b7c2f9e-1d1a-4c55-9a51-5d0c8c1f0a03"
	listingOther  = "0b7c2f9e-1d1a-4c55-9a51-5d0c8c1f0a04"
	listingGone   = "0b7c2f9e-1d1a-4c55-9a51-5d0c8c1f0a99"
	buyerID       = "6f0e5d3c-0000-4000-8000-000000000001"
	productRem    = "99999999-2222-3333-4444-555555555555"
	productGone   = "99999999-2222-3333-4444-000000000000"
	orderMine     = "3c2b1a00-0000-4000-8000-0000000000a1"
	orderForeign  = "3c2b1a00-0000-4000-8000-0000000000b2"
)

var prices = map[string]string{listingRem: "180", listingEmilia: "240", listingRam: "99", listingOther: "75"}

type cartLine struct {
	ID        int
	ListingID string
}

// marketplace is an in-memory stand-in for the identity, trade and catalog
// services.
type marketplace struct {
	t *testing.T

	mu          sync.Mutex
	cart        []cartLine
	nextID      int
	failCart    bool
	failRemove  bool
	failOrder   bool
	orders      []order.CheckoutRequest
	listingsRaw []string
	deleted     []string
	removed     []string
	myInfoCalls int
	authHeaders []string
}

func (m *marketplace) update(fn func(m *marketplace)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m)
}

func newMarketplace(t *testing.T) *marketplace {
	return &marketplace{
		t:      t,
		cart:   []cartLine{{ID: 1, ListingID: listingRem}, {ID: 2, ListingID: listingEmilia}},
		nextID: 3,
	}
}

func listingBody(id, owner string) map[string]any {
	return map[string]any{
		"id":          id,
		"userId":      owner,
		"price":       json.Number(prices[id]),
		"quantity":    1,
		"condition":   "NEW",
		"productName": "Figure " + id[len(id)-2:],
		"createdAt":   "2024-05-01T10:15:30",
	}
}

func result(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": 1000, "result": v})
}

func failure(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": 9999, "message": msg})
}

func (m *marketplace) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /identity/auth/token", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			failure(w, http.StatusUnauthorized, "Unauthenticated")
			return
		}
		result(w, http.StatusOK, map[string]any{"token": signToken(m.t, time.Now().Add(time.Hour)), "authenticated": true})
	})
	mux.HandleFunc("GET /identity/users/my-info", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.myInfoCalls++
		m.mu.Unlock()
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			failure(w, http.StatusUnauthorized, "Unauthenticated")
			return
		}
		result(w, http.StatusOK, map[string]any{"id": buyerID, "username": "nam"})
	})
	mux.HandleFunc("POST /identity/users", func(w http.ResponseWriter, r *http.Request) {
		result(w, http.StatusOK, map[string]any{"id": "new-user", "username": "newbie"})
	})

	mux.HandleFunc("GET /api/cart/{userId}", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.authHeaders = append(m.authHeaders, r.Header.Get("Authorization"))
		if m.failCart {
			failure(w, http.StatusInternalServerError, "cart unavailable")
			return
		}
		out := []map[string]any{}
		for _, l := range m.cart {
			out = append(out, map[string]any{"id": l.ID, "userId": r.PathValue("userId"), "listing": listingBody(l.ListingID, "seller-1")})
		}
		result(w, http.StatusOK, out)
	})
	mux.HandleFunc("POST /api/cart/{userId}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		m.mu.Lock()
		defer m.mu.Unlock()
		line := cartLine{ID: m.nextID, ListingID: body["listingId"]}
		m.nextID++
		m.cart = append(m.cart, line)
		result(w, http.StatusOK, map[string]any{"id": line.ID, "userId": r.PathValue("userId"), "listing": listingBody(line.ListingID, "seller-1")})
	})
	mux.HandleFunc("DELETE /api/cart/{itemId}", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.removed = append(m.removed, r.PathValue("itemId"))
		if m.failRemove {
			failure(w, http.StatusInternalServerError, "remove failed")
			return
		}
		kept := m.cart[:0]
		for _, l := range m.cart {
			if fmt.Sprint(l.ID) != r.PathValue("itemId") {
				kept = append(kept, l)
			}
		}
		m.cart = kept
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"code":1000,"message":"Removed"}`))
	})

	mux.HandleFunc("POST /api/orders", func(w http.ResponseWriter, r *http.Request) {
		var req order.CheckoutRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		m.mu.Lock()
		defer m.mu.Unlock()
		m.orders = append(m.orders, req)
		if m.failOrder {
			failure(w, http.StatusInternalServerError, "order service down")
			return
		}
		m.cart = nil
		result(w, http.StatusCreated, map[string]any{"id": orderMine, "buyerId": req.BuyerID, "status": "PENDING", "totalAmount": 425})
	})
	mux.HandleFunc("GET /api/orders/user/{buyerId}", func(w http.ResponseWriter, r *http.Request) {
		result(w, http.StatusOK, []map[string]any{{"id": orderMine, "buyerId": r.PathValue("buyerId"), "status": "PENDING"}})
	})
	mux.HandleFunc("GET /api/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case orderMine:
			result(w, http.StatusOK, map[string]any{"id": orderMine, "buyerId": buyerID, "status": "PENDING"})
		case orderForeign:
			result(w, http.StatusOK, map[string]any{
				"id": orderForeign, "buyerId": "someone-else", "status": "PENDING",
				"shippingAddress": "9 Other Road", "phoneNumber": "0911111111",
			})
		default:
			failure(w, http.StatusNotFound, "Order not found")
		}
	})

	mux.HandleFunc("GET /api/listings", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.listingsRaw = append(m.listingsRaw, r.URL.RawQuery)
		m.mu.Unlock()
		result(w, http.StatusOK, map[string]any{
			"currentPage": 1, "pageSize": 12, "totalPages": 1, "totalElements": 1,
			"data": []any{listingBody(listingRam, "seller-1")},
		})
	})
	mux.HandleFunc("GET /api/listings/product/{productId}", func(w http.ResponseWriter, r *http.Request) {
		l := listingBody(listingRem, "seller-1")
		l["productId"] = r.PathValue("productId")
		result(w, http.StatusOK, []any{l})
	})
	mux.HandleFunc("GET /api/listings/user/{userId}", func(w http.ResponseWriter, r *http.Request) {
		result(w, http.StatusOK, []any{listingBody(listingRam, r.PathValue("userId"))})
	})
	mux.HandleFunc("GET /api/listings/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch id := r.PathValue("id"); id {
		case listingOther:
			result(w, http.StatusOK, listingBody(id, "someone-else"))
		case listingRam:
			result(w, http.StatusOK, listingBody(id, buyerID))
		case listingRem, listingEmilia:
			result(w, http.StatusOK, listingBody(id, "seller-1"))
		default:
			failure(w, http.StatusNotFound, "Listing not found")
		}
	})
	mux.HandleFunc("POST /api/listings", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		l := listingBody(listingRam, fmt.Sprint(body["userId"]))
		result(w, http.StatusCreated, l)
	})
	mux.HandleFunc("DELETE /api/listings/{id}", func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.deleted = append(m.deleted, r.PathValue("id"))
		m.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /api/products", func(w http.ResponseWriter, r *http.Request) {
		result(w, http.StatusOK, []map[string]any{{"id": productRem, "name": "Rem 1/7 Scale", "priceMarket": 210, "released": true}})
	})
	mux.HandleFunc("GET /api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != productRem {
			failure(w, http.StatusNotFound, "Product not found")
			return
		}
		result(w, http.StatusOK, map[string]any{
			"id": productRem, "name": "Rem 1/7 Scale", "priceMarket": 210, "released": true,
			"releaseDate": "2023-11-20", "series": map[string]any{"id": 3, "name": "Re:Zero"},
		})
	})

	for _, p := range []string{"/api/categories", "/api/manufacturers", "/api/series"} {
		name := strings.TrimPrefix(p, "/api/")
		mux.HandleFunc("GET "+p, func(w http.ResponseWriter, r *http.Request) {
			result(w, http.StatusOK, []map[string]any{{"id": 1, "name": name}})
		})
	}
	return mux
}

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	return signTokenWithScope(t, exp, "ROLE_USER")
}

func signTokenWithScope(t *testing.T, exp time.Time, scope string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub":   "nam",
		"scope": scope,
		"exp":   exp.Unix(),
	}).SignedString([]byte("identity-service-secret"))
	require.NoError(t, err)
	return tok
}

type testEnv struct {
	router http.Handler
	market *marketplace
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	market := newMarketplace(t)
	upstream := httptest.NewServer(market.handler())
	t.Cleanup(upstream.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	httpClient := &http.Client{Timeout: 5 * time.Second}
	base := clients.NewClient("test", upstream.URL, httpClient)

	identity := clients.NewIdentityClient(base)
	listings := clients.NewListingClient(base)
	carts := clients.NewCartClient(base)
	orders := clients.NewOrderClient(base)

	reg := storefront.NewRegistry(func() *storefront.Storefront {
		return storefront.New(storefront.Upstreams{
			Identity: identity,
			Cart:     carts,
			Orders:   orders,
			Verifier: listings,
		}, checkout.Config{
			ShippingFee:    decimal.RequireFromString("5.00"),
			PaymentMethods: []order.PaymentMethod{order.PaymentCOD, order.PaymentBankTransfer, order.PaymentMoMo},
		}, logger, nil)
	}, logger)

	router := NewRouter(Deps{
		Logger:   logger,
		Cfg:      config.Config{CORSAllowOrigins: []string{"*"}},
		Registry: reg,
		Query:    listing.NewQuery(listings, listing.DefaultPageSize, logger),
		Identity: identity,
		Listings: listings,
		Orders:   orders,
		Catalog:  clients.NewCatalogClient(base),
		HealthProbes: []clients.HealthProbe{
			{Name: "trade-service", Client: base, Path: "/api/categories"},
		},
	})
	return &testEnv{router: router, market: market}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) login(t *testing.T) (string, map[string]any) {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/session", "", `{"username":"nam","password":"secret"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["token"].(string), body
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "storefront", decode(t, rr)["service"])

	rr = env.do(t, http.MethodGet, "/health/upstreams", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "ok", body["status"])
	assert.Len(t, body["upstream"], 1)
}

func TestCorrelationIDEchoAndGeneration(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.HeaderCorrelationID, "abc")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, "abc", rr.Header().Get(middleware.HeaderCorrelationID))

	rr = env.do(t, http.MethodGet, "/health", "", "")
	assert.NotEmpty(t, rr.Header().Get(middleware.HeaderCorrelationID))
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/me/cart", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Less(t, rr.Code, 300)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Methods"))
}

func TestMeRoutesRequireBearer(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/me/cart", "/me/checkout", "/me/orders", "/me/listings", "/session"} {
		rr := env.do(t, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusUnauthorized, rr.Code, path)
		assert.Equal(t, "authentication required", decode(t, rr)["error"])
	}

	expired := signToken(t, time.Now().Add(-time.Minute))
	rr := env.do(t, http.MethodGet, "/me/cart", expired, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodGet, "/me/cart", "garbage", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginReturnsSessionAndCart(t *testing.T) {
	env := newTestEnv(t)

	token, body := env.login(t)
	assert.NotEmpty(t, token)

	sess := body["session"].(map[string]any)
	assert.Equal(t, buyerID, sess["userId"])
	cart := body["cart"].(map[string]any)
	assert.Equal(t, "loaded", cart["state"])
	assert.Equal(t, "420", cart["total"])
	assert.EqualValues(t, 2, cart["count"])
	assert.Nil(t, cart["error"])

	rr := env.do(t, http.MethodGet, "/session", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, buyerID, decode(t, rr)["userId"])

	env.market.mu.Lock()
	defer env.market.mu.Unlock()
	assert.Equal(t, "Bearer "+token, env.market.authHeaders[0])
}

func TestLoginRejected(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/session", "", `{"username":"nam","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/session", "", `{"username":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoginSurfacesCartFailure(t *testing.T) {
	env := newTestEnv(t)
	env.market.update(func(m *marketplace) { m.failCart = true })

	_, body := env.login(t)
	cart := body["cart"].(map[string]any)
	assert.Equal(t, "empty", cart["state"])
	assert.NotEmpty(t, cart["error"])
	assert.Empty(t, cart["items"])
}

func TestUnknownTokenIsResumed(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, time.Now().Add(time.Hour))

	rr := env.do(t, http.MethodGet, "/me/cart", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 2, decode(t, rr)["count"])

	rr = env.do(t, http.MethodGet, "/me/cart", token, "")
	require.Equal(t, http.StatusOK, rr.Code)

	env.market.mu.Lock()
	defer env.market.mu.Unlock()
	assert.Equal(t, 1, env.market.myInfoCalls)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)

	rr := env.do(t, http.MethodDelete, "/session", token, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodDelete, "/session", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/session/register", "", `{"username":"newbie","password":"longenough"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "new-user", decode(t, rr)["id"])

	rr = env.do(t, http.MethodPost, "/session/register", "", `{"username":"x","password":"short"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	fields := decode(t, rr)["fields"].(map[string]any)
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "password")
}

func TestCartAddAndRemove(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)

	rr := env.do(t, http.MethodPost, "/me/cart/items", token, `{"listingId":"`+listingRam+`"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "3", decode(t, rr)["id"])

	rr = env.do(t, http.MethodGet, "/me/cart", token, "")
	body := decode(t, rr)
	assert.EqualValues(t, 3, body["count"])
	assert.Equal(t, "519", body["total"])

	rr = env.do(t, http.MethodDelete, "/me/cart/items/1", token, "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	rr = env.do(t, http.MethodGet, "/me/cart", token, "")
	assert.EqualValues(t, 2, decode(t, rr)["count"])

	rr = env.do(t, http.MethodPost, "/me/cart/items", token, `{"listingId":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = env.do(t, http.MethodDelete, "/me/cart/items/abc", token, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCartRemoveForeignLine(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)

	rr := env.do(t, http.MethodDelete, "/me/cart/items/777", token, "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	env.market.mu.Lock()
	assert.Empty(t, env.market.removed)
	env.market.mu.Unlock()

	rr = env.do(t, http.MethodGet, "/me/cart", token, "")
	assert.EqualValues(t, 2, decode(t, rr)["count"])
}

func TestCartRemoveFailureKeepsItems(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)
	env.market.update(func(m *marketplace) { m.failRemove = true })

	rr := env.do(t, http.MethodDelete, "/me/cart/items/1", token, "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	rr = env.do(t, http.MethodGet, "/me/cart", token, "")
	assert.EqualValues(t, 2, decode(t, rr)["count"])
}

func TestCartRefresh(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)

	env.market.update(func(m *marketplace) { m.cart = m.cart[:1] })

	rr := env.do(t, http.MethodPost, "/me/cart/refresh", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, decode(t, rr)["count"])

	env.market.update(func(m *marketplace) { m.failCart = true })
	rr = env.do(t, http.MethodPost, "/me/cart/refresh", token, "")
	require.Equal(t, http.StatusBadGateway, rr.Code)
	body := decode(t, rr)
	assert.EqualValues(t, 0, body["count"])
	assert.NotEmpty(t, body["error"])
}

func TestCheckoutEmptyCartRedirects(t *testing.T) {
	env := newTestEnv(t)
	env.market.update(func(m *marketplace) { m.cart = nil })
	token, _ := env.login(t)

	rr := env.do(t, http.MethodGet, "/me/checkout", token, "")
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/me/cart", rr.Header().Get("Location"))

	rr = env.do(t, http.MethodPost, "/me/checkout", token, validCheckout)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

const validCheckout = `{"fullName":"Nam Nguyen","shippingAddress":"123 Anime St, Akihabara","phoneNumber":"0901234567","paymentMethod":"MOMO"}`

func TestCheckoutSummary(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)

	rr := env.do(t, http.MethodGet, "/me/checkout", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "420", body["subtotal"])
	assert.Equal(t, "5", body["shippingFee"])
	assert.Equal(t, "425", body["total"])
	assert.Len(t, body["paymentMethods"], 3)
}

func TestCheckoutValidation(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)

	rr := env.do(t, http.MethodPost, "/me/checkout", token, `{"fullName":"N","paymentMethod":"PAYPAL"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	fields := decode(t, rr)["fields"].(map[string]any)
	assert.Len(t, fields, 4)

	env.market.mu.Lock()
	assert.Empty(t, env.market.orders)
	env.market.mu.Unlock()

	rr = env.do(t, http.MethodGet, "/me/checkout", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	draft := decode(t, rr)["draft"].(map[string]any)
	assert.Equal(t, "N", draft["fullName"])
}

func TestCheckoutSuccessClearsCart(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)

	rr := env.do(t, http.MethodPost, "/me/checkout", token, validCheckout)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	placed := decode(t, rr)["order"].(map[string]any)
	assert.Equal(t, orderMine, placed["id"])
	assert.Equal(t, "PENDING", placed["status"])

	env.market.mu.Lock()
	require.Len(t, env.market.orders, 1)
	req := env.market.orders[0]
	env.market.mu.Unlock()
	assert.Equal(t, buyerID, req.BuyerID)
	assert.Equal(t, order.PaymentMoMo, req.PaymentMethod)
	assert.ElementsMatch(t, []string{listingRem, listingEmilia}, req.ListingIDs)

	rr = env.do(t, http.MethodGet, "/me/cart", token, "")
	assert.EqualValues(t, 0, decode(t, rr)["count"])
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)
	env.market.update(func(m *marketplace) { m.failOrder = true })

	before := env.do(t, http.MethodGet, "/me/cart", token, "").Body.String()

	rr := env.do(t, http.MethodPost, "/me/checkout", token, validCheckout)
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	after := env.do(t, http.MethodGet, "/me/cart", token, "").Body.String()
	assert.JSONEq(t, before, after)
}

func TestListingSearch(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/listings?categories=Scale&categories=Prize&minPrice=10&sort=price_desc", "", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decode(t, rr)
	assert.EqualValues(t, 1, body["totalElements"])
	assert.Len(t, body["data"], 1)

	env.market.mu.Lock()
	raw := env.market.listingsRaw[0]
	env.market.mu.Unlock()
	assert.Contains(t, raw, "categories=Scale&categories=Prize")
	assert.Contains(t, raw, "size=12")

	for _, q := range []string{"sort=cheapest", "minPrice=abc", "minPrice=50&maxPrice=10", "condition=MINT", "page=0", "size=0"} {
		rr = env.do(t, http.MethodGet, "/listings?"+q, "", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, q)
	}
}

func TestListingGet(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/listings/"+listingRam, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, listingRam, decode(t, rr)["id"])

	rr = env.do(t, http.MethodGet, "/listings/"+listingGone, "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodGet, "/listings/not-a-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCatalogFilters(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/catalog/filters", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Len(t, body["categories"], 1)
	assert.Len(t, body["conditions"], 4)
}

func TestOrders(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)

	rr := env.do(t, http.MethodGet, "/me/orders", token, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var orders []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, buyerID, orders[0]["buyerId"])

	rr = env.do(t, http.MethodGet, "/me/orders/"+orderMine, token, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, buyerID, decode(t, rr)["buyerId"])

	rr = env.do(t, http.MethodGet, "/me/orders/3c2b1a00-0000-4000-8000-0000000000ff", token, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = env.do(t, http.MethodGet, "/me/orders/..", token, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestOrderOfAnotherBuyerIsHidden(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)

	rr := env.do(t, http.MethodGet, "/me/orders/"+orderForeign, token, "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.NotContains(t, rr.Body.String(), "9 Other Road")

	rr = env.do(t, http.MethodGet, "/me/orders/"+orderForeign, "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	rr = env.do(t, http.MethodGet, "/orders/"+orderForeign, "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminReadsAnyOrder(t *testing.T) {
	env := newTestEnv(t)
	admin := signTokenWithScope(t, time.Now().Add(time.Hour), "ROLE_ADMIN ROLE_USER")

	rr := env.do(t, http.MethodGet, "/me/orders/"+orderForeign, admin, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "someone-else", decode(t, rr)["buyerId"])
}

func TestProducts(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/products", "", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var products []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, "Rem 1/7 Scale", products[0]["name"])

	rr = env.do(t, http.MethodGet, "/products/"+productRem, "", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decode(t, rr)
	assert.Equal(t, "210", body["priceMarket"])
	assert.Equal(t, true, body["released"])
	assert.Equal(t, "Re:Zero", body["series"].(map[string]any)["name"])

	rr = env.do(t, http.MethodGet, "/products/"+productGone, "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = env.do(t, http.MethodGet, "/products/not-a-uuid", "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListingsByProduct(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/products/"+productRem+"/listings", "", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var ls []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ls))
	require.Len(t, ls, 1)
	assert.Equal(t, productRem, ls[0]["productId"])

	rr = env.do(t, http.MethodGet, "/products/p-1/listings", "", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSellerListings(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t)

	rr := env.do(t, http.MethodGet, "/me/listings", token, "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodPost, "/me/listings", token, `{"productId":"p-1","price":"120.5","quantity":1,"condition":"LIKE_NEW"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, buyerID, decode(t, rr)["userId"])

	rr = env.do(t, http.MethodPost, "/me/listings", token, `{"price":"0","quantity":0,"condition":"MINT"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Len(t, decode(t, rr)["fields"], 4)

	rr = env.do(t, http.MethodDelete, "/me/listings/"+listingOther, token, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = env.do(t, http.MethodDelete, "/me/listings/"+listingRam, token, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	env.market.mu.Lock()
	defer env.market.mu.Unlock()
	assert.Equal(t, []string{listingRam}, env.market.deleted)
}

func TestRecoverMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := middleware.Recover(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/panic", nil))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal server error", decode(t, rr)["error"])
}
