package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"supernova/clients"
	"supernova/config"
	"supernova/controllers"
	"supernova/events"
	"supernova/gateway"
	"supernova/middleware"
	"supernova/models"
	"supernova/repository"
	"supernova/services"
)

const (
	testJWTSecret     = "routes-test-secret"
	testPaymentSecret = "routes-test-payment-secret"
)

// apiSuite serves every service from one engine backed by memory stores.
// The order and payment services reach their peers through this same server.
type apiSuite struct {
	suite.Suite
	server   *httptest.Server
	issuer   *middleware.Issuer
	users    *repository.MemoryUsers
	products *repository.MemoryProducts
	orders   *flakyOrders
}

// flakyOrders fails Create with createErr when it is set.
type flakyOrders struct {
	*repository.MemoryOrders
	createErr error
}

func (f *flakyOrders) Create(ctx context.Context, o *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	return f.MemoryOrders.Create(ctx, o)
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(apiSuite))
}

func (s *apiSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *apiSuite) SetupTest() {
	cfg := config.Config{Service: "test", AllowedOrigins: []string{"http://localhost:5173"}}
	engine := NewEngine(cfg)

	srv := httptest.NewUnstartedServer(engine)
	baseURL := "http://" + srv.Listener.Addr().String()

	denylist := repository.NewMemoryDenylist()
	verifier := middleware.NewVerifier(testJWTSecret, denylist)
	s.issuer = middleware.NewIssuer(testJWTSecret, time.Hour)
	s.users = repository.NewMemoryUsers()
	s.products = repository.NewMemoryProducts()
	s.orders = &flakyOrders{MemoryOrders: repository.NewMemoryOrders()}

	auth := services.NewAuthService(s.users, denylist, s.issuer)
	checkout := services.NewCheckout(
		clients.NewCartClient(baseURL, 5*time.Second),
		clients.NewProductClient(baseURL, 5*time.Second),
		s.orders,
		events.Nop{},
	)
	payments := services.NewPaymentService(
		repository.NewMemoryPayments(),
		clients.NewOrderClient(baseURL, 5*time.Second),
		gateway.NewLocal(testPaymentSecret),
		events.Nop{},
	)

	RegisterAuthRoutes(engine, verifier, controllers.NewAuthController(auth, false))
	RegisterProductRoutes(engine, verifier, controllers.NewProductController(services.NewProductService(s.products)))
	RegisterCartRoutes(engine, verifier, controllers.NewCartController(services.NewCartService(repository.NewMemoryCarts())))
	RegisterOrderRoutes(engine, verifier, controllers.NewOrderController(checkout, services.NewOrderService(s.orders, events.Nop{})))
	RegisterPaymentRoutes(engine, verifier, controllers.NewPaymentController(payments, "rzp_test"))

	srv.Start()
	s.server = srv
}

func (s *apiSuite) TearDownTest() {
	s.server.Close()
}

func (s *apiSuite) do(method, path, token string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, raw
}

func (s *apiSuite) decode(raw []byte, out any) {
	s.Require().NoError(json.Unmarshal(raw, out), string(raw))
}

func (s *apiSuite) newUser(role string) (*models.User, string) {
	user := &models.User{
		Username: gofakeit.Username(),
		Email:    gofakeit.Email(),
		FullName: models.FullName{FirstName: gofakeit.FirstName(), LastName: gofakeit.LastName()},
		Role:     role,
	}
	s.Require().NoError(s.users.Create(context.Background(), user))
	token, _, err := s.issuer.Issue(user)
	s.Require().NoError(err)
	return user, token
}

func (s *apiSuite) seedProduct(title, amount string, stock int) *models.Product {
	p := &models.Product{
		Title:       title,
		Description: gofakeit.Sentence(8),
		Price:       models.Money{Amount: decimal.RequireFromString(amount), Currency: "INR"},
		Seller:      primitive.NewObjectID(),
		Stock:       stock,
	}
	s.Require().NoError(s.products.Create(context.Background(), p))
	return p
}

var shippingBody = map[string]any{
	"street":  "12 MG Road",
	"city":    "Bengaluru",
	"state":   "KA",
	"zip":     "560001",
	"country": "IN",
}

func (s *apiSuite) TestAuthFlow() {
	register := map[string]any{
		"username": "asha",
		"email":    "asha@example.com",
		"password": "secret123",
		"fullName": map[string]string{"firstName": "Asha", "lastName": "Rao"},
	}

	req, err := http.NewRequest(http.MethodPost, s.server.URL+"/api/auth/register", bytes.NewReader(mustJSON(register)))
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusCreated, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == middleware.TokenCookie {
			cookie = c
		}
	}
	s.Require().NotNil(cookie)
	s.True(cookie.HttpOnly)
	s.Equal(http.SameSiteStrictMode, cookie.SameSite)

	status, raw := s.do(http.MethodPost, "/api/auth/register", "", register)
	s.Equal(http.StatusBadRequest, status)
	s.JSONEq(`{"error":"User already exists"}`, string(raw))

	status, raw = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "asha@example.com", "password": "wrong-password"})
	s.Equal(http.StatusBadRequest, status)
	s.JSONEq(`{"error":"Invalid credentials"}`, string(raw))

	status, raw = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "asha", "password": "secret123"})
	s.Require().Equal(http.StatusOK, status)
	var login struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	s.decode(raw, &login)
	s.NotEmpty(login.Token)
	s.Equal(models.RoleUser, login.User.Role)
	s.NotContains(string(raw), "password")

	status, _ = s.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	s.Equal(http.StatusOK, status)

	status, _ = s.do(http.MethodGet, "/api/auth/logout", login.Token, nil)
	s.Equal(http.StatusOK, status)

	status, _ = s.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	s.Equal(http.StatusUnauthorized, status)
}

func (s *apiSuite) TestRegisterValidation() {
	status, raw := s.do(http.MethodPost, "/api/auth/register", "", map[string]any{
		"username": "ab",
		"email":    "not-an-email",
		"password": "123",
	})
	s.Require().Equal(http.StatusBadRequest, status)

	var body struct {
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	s.decode(raw, &body)
	fields := map[string]bool{}
	for _, e := range body.Errors {
		fields[e.Field] = true
	}
	s.True(fields["username"], raw)
	s.True(fields["email"])
	s.True(fields["password"])
	s.True(fields["fullName.firstName"])
}

func (s *apiSuite) TestLoginNeedsIdentifier() {
	status, raw := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"password": "secret123"})
	s.Equal(http.StatusBadRequest, status)
	s.Contains(string(raw), "errors")
}

func (s *apiSuite) TestAddresses() {
	_, token := s.newUser(models.RoleUser)
	address := map[string]any{
		"street":  "1 Park Street",
		"city":    "Kolkata",
		"state":   "WB",
		"zipCode": "700016",
		"country": "IN",
		"phone":   "9876543210",
	}

	status, raw := s.do(http.MethodPost, "/api/auth/users/me/addresses", token, address)
	s.Require().Equal(http.StatusCreated, status, string(raw))
	var added struct {
		Address models.Address `json:"address"`
	}
	s.decode(raw, &added)
	s.True(added.Address.IsDefault)

	address["zipCode"] = "7000"
	status, _ = s.do(http.MethodPost, "/api/auth/users/me/addresses", token, address)
	s.Equal(http.StatusBadRequest, status)

	status, _ = s.do(http.MethodDelete, "/api/auth/users/me/addresses/"+primitive.NewObjectID().Hex(), token, nil)
	s.Equal(http.StatusNotFound, status)

	status, raw = s.do(http.MethodDelete, "/api/auth/users/me/addresses/"+added.Address.ID.Hex(), token, nil)
	s.Equal(http.StatusOK, status)
	s.Contains(string(raw), `"addresses":[]`)
}

func (s *apiSuite) TestProductOwnership() {
	_, owner := s.newUser(models.RoleSeller)
	_, otherSeller := s.newUser(models.RoleSeller)
	_, buyer := s.newUser(models.RoleUser)

	status, raw := s.do(http.MethodPost, "/api/products", owner, map[string]any{
		"title":         "Brass Lamp",
		"description":   "Hand made brass table lamp",
		"priceAmount":   1499.5,
		"priceCurrency": "INR",
		"stock":         3,
	})
	s.Require().Equal(http.StatusCreated, status, string(raw))
	var created struct {
		Data models.Product `json:"data"`
	}
	s.decode(raw, &created)
	id := created.Data.ID.Hex()
	s.True(created.Data.Price.Amount.Equal(decimal.RequireFromString("1499.5")))

	status, _ = s.do(http.MethodPost, "/api/products", buyer, map[string]any{"title": "Nope", "priceAmount": 1})
	s.Equal(http.StatusForbidden, status)

	status, _ = s.do(http.MethodPatch, "/api/products/"+id, otherSeller, map[string]any{"title": "Stolen Lamp"})
	s.Equal(http.StatusForbidden, status)

	status, raw = s.do(http.MethodPatch, "/api/products/"+id, owner, map[string]any{
		"price":  map[string]any{"amount": 999},
		"seller": primitive.NewObjectID().Hex(),
	})
	s.Require().Equal(http.StatusOK, status, string(raw))
	var updated struct {
		Product models.Product `json:"product"`
	}
	s.decode(raw, &updated)
	s.True(updated.Product.Price.Amount.Equal(decimal.NewFromInt(999)))
	s.Equal(created.Data.Seller, updated.Product.Seller)

	status, _ = s.do(http.MethodGet, "/api/products/not-an-id", "", nil)
	s.Equal(http.StatusBadRequest, status)

	status, raw = s.do(http.MethodGet, "/api/products?q=brass&maxprice=1000", "", nil)
	s.Equal(http.StatusOK, status)
	s.Contains(string(raw), "Brass Lamp")

	status, _ = s.do(http.MethodGet, "/api/products?minprice=abc", "", nil)
	s.Equal(http.StatusBadRequest, status)

	status, raw = s.do(http.MethodGet, "/api/products/seller", owner, nil)
	s.Equal(http.StatusOK, status)
	s.Contains(string(raw), id)

	status, _ = s.do(http.MethodDelete, "/api/products/"+id, owner, nil)
	s.Equal(http.StatusOK, status)

	status, _ = s.do(http.MethodGet, "/api/products/"+id, "", nil)
	s.Equal(http.StatusNotFound, status)
}

func (s *apiSuite) TestCartFlow() {
	_, token := s.newUser(models.RoleUser)
	_, seller := s.newUser(models.RoleSeller)
	productID := primitive.NewObjectID().Hex()

	status, _ := s.do(http.MethodGet, "/api/cart", seller, nil)
	s.Equal(http.StatusForbidden, status)

	status, raw := s.do(http.MethodPost, "/api/cart/items", token, map[string]any{"productId": "bad", "qty": 0})
	s.Equal(http.StatusBadRequest, status)
	s.Contains(string(raw), "productId")

	for range 2 {
		status, _ = s.do(http.MethodPost, "/api/cart/items", token, map[string]any{"productId": productID, "qty": 2})
		s.Require().Equal(http.StatusOK, status)
	}

	var body struct {
		Cart   models.Cart       `json:"cart"`
		Totals models.CartTotals `json:"totals"`
	}
	status, raw = s.do(http.MethodGet, "/api/cart", token, nil)
	s.Require().Equal(http.StatusOK, status)
	s.decode(raw, &body)
	s.Equal(models.CartTotals{ItemCount: 1, TotalQuantity: 4}, body.Totals)

	status, raw = s.do(http.MethodPatch, "/api/cart/items/"+productID, token, map[string]any{"qty": 0})
	s.Require().Equal(http.StatusOK, status)
	s.decode(raw, &body)
	s.Empty(body.Cart.Items)

	status, _ = s.do(http.MethodDelete, "/api/cart/items/"+productID, token, nil)
	s.Equal(http.StatusNotFound, status)

	status, _ = s.do(http.MethodDelete, "/api/cart", token, nil)
	s.Equal(http.StatusOK, status)
}

func (s *apiSuite) placeOrder(token string) (int, []byte) {
	return s.do(http.MethodPost, "/api/orders", token, shippingBody)
}

func (s *apiSuite) addToCart(token string, productID primitive.ObjectID, qty int) {
	status, raw := s.do(http.MethodPost, "/api/cart/items", token, map[string]any{"productId": productID.Hex(), "qty": qty})
	s.Require().Equal(http.StatusOK, status, string(raw))
}

func (s *apiSuite) TestCheckout() {
	user, token := s.newUser(models.RoleUser)
	notebook := s.seedProduct("Notebook", "50", 5)
	pen := s.seedProduct("Pen", "150", 2)

	status, raw := s.placeOrder(token)
	s.Equal(http.StatusInternalServerError, status)
	s.JSONEq(`{"success":false,"message":"cart is empty"}`, string(raw))

	s.addToCart(token, notebook.ID, 2)
	s.addToCart(token, pen.ID, 1)

	status, raw = s.placeOrder(token)
	s.Require().Equal(http.StatusCreated, status, string(raw))
	var created struct {
		Success bool         `json:"success"`
		Order   models.Order `json:"order"`
	}
	s.decode(raw, &created)
	s.True(created.Success)
	s.Equal(user.ID, created.Order.UserID)
	s.Equal(models.OrderStatusPending, created.Order.Status)
	s.True(created.Order.TotalPrice.Amount.Equal(decimal.NewFromInt(250)), created.Order.TotalPrice.String())
	s.Equal("INR", created.Order.TotalPrice.Currency)
	s.Len(created.Order.Items, 2)
	s.Equal("560001", created.Order.ShippingAddress.ZipCode)

	status, raw = s.do(http.MethodPost, "/api/orders", token, map[string]any{"street": "x"})
	s.Equal(http.StatusBadRequest, status)
	s.Contains(string(raw), "zip")
}

func (s *apiSuite) TestCheckoutHidesStoreErrors() {
	_, token := s.newUser(models.RoleUser)
	notebook := s.seedProduct("Notebook", "50", 5)
	s.addToCart(token, notebook.ID, 1)
	s.orders.createErr = errors.New("mongo: connection refused on 10.0.0.7:27017")

	status, raw := s.placeOrder(token)
	s.Equal(http.StatusInternalServerError, status)
	s.JSONEq(`{"error":"Internal server error"}`, string(raw))
	s.NotContains(string(raw), "10.0.0.7")
}

func (s *apiSuite) TestCheckoutOutOfStock() {
	_, token := s.newUser(models.RoleUser)
	lamp := s.seedProduct("Lamp", "999", 1)
	s.addToCart(token, lamp.ID, 3)

	status, raw := s.placeOrder(token)
	s.Equal(http.StatusInternalServerError, status)
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	s.decode(raw, &body)
	s.False(body.Success)
	s.Contains(body.Message, "Lamp has 1 left")

	status, raw = s.do(http.MethodGet, "/api/orders/me", token, nil)
	s.Equal(http.StatusOK, status)
	s.Contains(string(raw), `"total":0`)
}

func (s *apiSuite) createOrder(token string) models.Order {
	product := s.seedProduct(gofakeit.ProductName(), "100", 10)
	s.addToCart(token, product.ID, 1)
	status, raw := s.placeOrder(token)
	s.Require().Equal(http.StatusCreated, status, string(raw))
	var created struct {
		Order models.Order `json:"order"`
	}
	s.decode(raw, &created)
	return created.Order
}

func (s *apiSuite) TestOrderLifecycle() {
	_, token := s.newUser(models.RoleUser)
	_, stranger := s.newUser(models.RoleUser)
	_, admin := s.newUser(models.RoleAdmin)
	order := s.createOrder(token)
	path := "/api/orders/" + order.ID.Hex()

	status, _ := s.do(http.MethodGet, path, stranger, nil)
	s.Equal(http.StatusForbidden, status)
	status, _ = s.do(http.MethodGet, path, admin, nil)
	s.Equal(http.StatusOK, status)
	status, _ = s.do(http.MethodGet, "/api/orders/"+primitive.NewObjectID().Hex(), token, nil)
	s.Equal(http.StatusNotFound, status)

	var list struct {
		Orders []models.Order `json:"orders"`
		Meta   services.Page  `json:"meta"`
	}
	status, raw := s.do(http.MethodGet, "/api/orders/me?page=1&limit=500", token, nil)
	s.Require().Equal(http.StatusOK, status)
	s.decode(raw, &list)
	s.Len(list.Orders, 1)
	s.Equal(services.Page{Total: 1, Page: 1, Limit: services.MaxOrderPageSize, Skip: 0}, list.Meta)

	status, raw = s.do(http.MethodPatch, path+"/address", token, map[string]any{
		"shippingAddress": map[string]any{"street": "9 Residency Road", "city": "Bengaluru", "state": "KA", "zipCode": "560025", "country": "IN"},
	})
	s.Require().Equal(http.StatusOK, status, string(raw))
	s.Contains(string(raw), "560025")

	status, _ = s.do(http.MethodPatch, path+"/status", token, map[string]any{"status": "CONFIRMED"})
	s.Equal(http.StatusForbidden, status)
	status, _ = s.do(http.MethodPatch, path+"/status", admin, map[string]any{"status": "LOST"})
	s.Equal(http.StatusBadRequest, status)
	status, _ = s.do(http.MethodPatch, path+"/status", admin, map[string]any{"status": "CONFIRMED"})
	s.Equal(http.StatusOK, status)
	status, _ = s.do(http.MethodPatch, path+"/status", admin, map[string]any{"status": "DELIVERED"})
	s.Equal(http.StatusConflict, status)

	status, _ = s.do(http.MethodPatch, path+"/address", token, map[string]any{
		"shippingAddress": map[string]any{"street": "9 Residency Road", "city": "Bengaluru", "state": "KA", "zipCode": "560025", "country": "IN"},
	})
	s.Equal(http.StatusConflict, status)

	status, raw = s.do(http.MethodPost, path+"/cancel", token, nil)
	s.Require().Equal(http.StatusOK, status, string(raw))
	s.Contains(string(raw), `"status":"CANCELLED"`)

	status, _ = s.do(http.MethodPost, path+"/cancel", token, nil)
	s.Equal(http.StatusConflict, status)
}

func (s *apiSuite) TestPaymentFlow() {
	_, token := s.newUser(models.RoleUser)
	order := s.createOrder(token)

	status, raw := s.do(http.MethodPost, "/api/payments/create/"+order.ID.Hex(), token, nil)
	s.Require().Equal(http.StatusCreated, status, string(raw))
	var created struct {
		Success bool           `json:"success"`
		Data    models.Payment `json:"data"`
	}
	s.decode(raw, &created)
	s.True(created.Success)
	s.Equal(models.PaymentStatusPending, created.Data.Status)
	s.Equal(order.ID, created.Data.OrderID)
	s.NotEmpty(created.Data.GatewayOrderID)

	verify := map[string]string{
		"razorpayOrderId":   created.Data.GatewayOrderID,
		"razorpayPaymentId": "pay_test_1",
		"signature":         "deadbeef",
	}
	status, raw = s.do(http.MethodPost, "/api/payments/verify", token, verify)
	s.Equal(http.StatusBadRequest, status)
	s.JSONEq(`{"error":"invalid signature"}`, string(raw))

	verify["signature"] = gateway.Signature(testPaymentSecret, created.Data.GatewayOrderID, "pay_test_1")
	status, raw = s.do(http.MethodPost, "/api/payments/verify", token, verify)
	s.Require().Equal(http.StatusOK, status, string(raw))
	s.Contains(string(raw), `"status":"COMPLETED"`)

	status, _ = s.do(http.MethodPost, "/api/payments/verify", token, verify)
	s.Equal(http.StatusNotFound, status)

	status, _ = s.do(http.MethodPost, "/api/payments/create/"+primitive.NewObjectID().Hex(), token, nil)
	s.Equal(http.StatusInternalServerError, status)
}

func (s *apiSuite) TestPaymentRequiresPendingOrder() {
	_, token := s.newUser(models.RoleUser)
	order := s.createOrder(token)

	status, _ := s.do(http.MethodPost, "/api/orders/"+order.ID.Hex()+"/cancel", token, nil)
	s.Require().Equal(http.StatusOK, status)

	status, _ = s.do(http.MethodPost, "/api/payments/create/"+order.ID.Hex(), token, nil)
	s.Equal(http.StatusConflict, status)
}

func (s *apiSuite) TestRevokedAndMissingTokens() {
	status, raw := s.do(http.MethodGet, "/api/cart", "", nil)
	s.Equal(http.StatusUnauthorized, status)
	s.Contains(string(raw), "token required")

	status, _ = s.do(http.MethodGet, "/api/cart", "garbage.token.value", nil)
	s.Equal(http.StatusUnauthorized, status)
}

func (s *apiSuite) TestHealthz() {
	status, raw := s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, status)
	s.JSONEq(`{"status":"ok","service":"test"}`, string(raw))
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
