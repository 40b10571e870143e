package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"burger-ordering-api/cart"
	"burger-ordering-api/catalog"
	"burger-ordering-api/config"
	"burger-ordering-api/handlers"
	"burger-ordering-api/middleware"
	"burger-ordering-api/models"
	"burger-ordering-api/pricing"
	"burger-ordering-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeGeocoder map[string]float64

func (g fakeGeocoder) DistanceKm(_ context.Context, address string) (float64, error) {
	if d, ok := g[address]; ok {
		return d, nil
	}
	return 0, errors.New("address not found")
}

type fakeNotifier struct {
	mu     sync.Mutex
	sms    []string
	pushes []string
	fail   bool
}

func (n *fakeNotifier) SMS(_ context.Context, phone, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sms = append(n.sms, phone+": "+text)
	return nil
}

func (n *fakeNotifier) Push(_ context.Context, title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("gateway down")
	}
	n.pushes = append(n.pushes, title)
	return nil
}

type env struct {
	r        *gin.Engine
	menu     *catalog.Cache
	notifier *fakeNotifier
	admin    string
	staff    string
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if err := config.InitDB(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatal(err)
	}

	db := config.DB
	for _, p := range []models.Product{
		{Name: "Cheeseburger", Category: models.CategoryBurger, Price: dec("20"), Available: true},
		{Name: "Frytki", Category: models.CategoryFries, Price: dec("10"), Available: true},
		{Name: "Frytki z serem", Category: models.CategoryFries, Price: dec("13"), Available: true},
		{Name: "Coca-Cola 0,5l", Category: models.CategoryDrink, Price: dec("6"), Available: true},
	} {
		if err := db.Create(&p).Error; err != nil {
			t.Fatal(err)
		}
	}
	for _, a := range []models.Addon{
		{Name: "Bekon", Category: models.AddonRegular, Price: dec("4"), Available: true},
		{Name: "Sos czosnkowy", Category: models.AddonSauce, Price: dec("2"), Available: true},
		{Name: "Sos serowy", Category: models.AddonPremium, Price: dec("5"), Available: true},
	} {
		if err := db.Create(&a).Error; err != nil {
			t.Fatal(err)
		}
	}
	freeOver := dec("150")
	for _, z := range []models.DeliveryZone{
		{Name: "Blisko", MinDistanceKm: 0, MaxDistanceKm: 3, PricingType: models.PricingFlat, CostFixed: dec("10"), EtaMinMinutes: 30, EtaMaxMinutes: 45, Active: true},
		{Name: "Dalej", MinDistanceKm: 3, MaxDistanceKm: 10, PricingType: models.PricingPerKm, CostPerKm: dec("2"), MinOrderValue: dec("40"), FreeOver: &freeOver, EtaMinMinutes: 45, EtaMaxMinutes: 60, Active: true},
	} {
		if err := db.Create(&z).Error; err != nil {
			t.Fatal(err)
		}
	}
	ten := models.DiscountCode{Code: "TEN", Type: models.DiscountPercent, Value: dec("10"), PerUserMaxUses: 1, Active: true, IsPublic: true}
	if err := db.Create(&ten).Error; err != nil {
		t.Fatal(err)
	}

	menu := catalog.NewCache(db)
	if err := menu.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	n := &fakeNotifier{}
	handlers.Configure(handlers.Services{
		Menu:     menu,
		Carts:    cart.NewStore(),
		Geocoder: fakeGeocoder{"Nowy Świat 1": 5, "Plac Zamkowy 1": 1.5, "Daleko 7": 50},
		Notifier: n,
		Rules:    pricing.DefaultRules(),
		Now:      func() time.Time { return now },
	})

	r := gin.New()
	routes.SetupRoutes(r)

	admin, err := middleware.GenerateToken(&models.User{ID: 1, Email: "admin@example.com", Role: models.RoleAdmin})
	if err != nil {
		t.Fatal(err)
	}
	staff, err := middleware.GenerateToken(&models.User{ID: 2, Email: "staff@example.com", Role: models.RoleStaff})
	if err != nil {
		t.Fatal(err)
	}
	return &env{r: r, menu: menu, notifier: n, admin: admin, staff: staff}
}

func (e *env) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s %s: invalid JSON %q", method, path, w.Body.String())
		}
	}
	return w.Code, out
}

func obj(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

func num(v any) float64 {
	f, _ := v.(float64)
	return f
}

func placeLocal(t *testing.T, e *env, productID uint, qty int) map[string]any {
	t.Helper()
	code, body := e.do(t, http.MethodPost, "/api/orders", "", gin.H{
		"customer_name": "Ola",
		"phone":         "+48600700800",
		"option":        "local",
		"items":         []gin.H{{"product_id": productID, "quantity": qty}},
	})
	if code != http.StatusCreated {
		t.Fatalf("place order status = %d, body %v", code, body)
	}
	return obj(body["order"])
}

func TestPlaceDeliveryOrderTotals(t *testing.T) {
	e := setup(t)
	req := gin.H{
		"customer_name":  "Jan",
		"phone":          "+48500100200",
		"address":        "Nowy Świat 1",
		"option":         "delivery",
		"payment_method": "cash",
		"promo_code":     " ten ",
		"items": []gin.H{{
			"product_id":       1,
			"quantity":         "2",
			"addons":           []gin.H{{"name": "Bekon", "qty": 1}},
			"extra_meat_count": 1,
			"attributes":       gin.H{"meat": "wołowina", "doneness": "medium"},
		}},
	}
	code, body := e.do(t, http.MethodPost, "/api/orders", "", req)
	if code != http.StatusCreated {
		t.Fatalf("status = %d, body %v", code, body)
	}

	order := obj(body["order"])
	checks := map[string]float64{
		"subtotal":        78,
		"packaging_cost":  2,
		"delivery_cost":   10,
		"discount_amount": 9,
		"total_price":     81,
		"distance_km":     5,
	}
	for field, want := range checks {
		if got := num(order[field]); got != want {
			t.Errorf("%s = %v, want %v", field, got, want)
		}
	}
	if order["promo_code"] != "TEN" {
		t.Errorf("promo_code = %v", order["promo_code"])
	}
	if body["eta"] != "45-60 min" {
		t.Errorf("eta = %v", body["eta"])
	}

	var ten models.DiscountCode
	config.DB.Where("code = ?", "TEN").First(&ten)
	if ten.UsedCount != 1 {
		t.Errorf("used_count = %d, want 1", ten.UsedCount)
	}

	code, tracked := e.do(t, http.MethodGet, "/api/orders/"+order["number"].(string), "", nil)
	if code != http.StatusOK {
		t.Fatalf("track status = %d", code)
	}
	item := obj(list(tracked["items"])[0])
	addons := list(item["addons"])
	if len(addons) != 1 || obj(addons[0])["name"] != "Bekon" || num(obj(addons[0])["qty"]) != 1 {
		t.Errorf("tracked addons = %v", addons)
	}
	if attrs := list(item["attributes"]); len(attrs) != 2 || obj(attrs[0])["key"] != "meat" {
		t.Errorf("tracked attributes = %v", attrs)
	}

	// per-customer limit of one use
	code, body = e.do(t, http.MethodPost, "/api/orders", "", req)
	if code != http.StatusUnprocessableEntity {
		t.Errorf("second use status = %d, body %v", code, body)
	}
}

func TestDeliveryCheckoutBlocked(t *testing.T) {
	e := setup(t)

	code, body := e.do(t, http.MethodPost, "/api/orders", "", gin.H{
		"customer_name": "Jan", "phone": "1", "address": "Daleko 7", "option": "delivery",
		"items": []gin.H{{"product_id": 1, "quantity": 3}},
	})
	if code != http.StatusUnprocessableEntity || body["code"] != "out_of_range" {
		t.Errorf("out of range: status = %d, body %v", code, body)
	}

	// a distance sent by the client never replaces geocoding at placement
	code, body = e.do(t, http.MethodPost, "/api/orders", "", gin.H{
		"customer_name": "Jan", "phone": "1", "address": "Nieznana 999, Berlin", "distance_km": 0.1, "option": "delivery",
		"items": []gin.H{{"product_id": 1, "quantity": 3}},
	})
	if code != http.StatusUnprocessableEntity || body["code"] != "out_of_range" {
		t.Errorf("client distance for unknown address: status = %d, body %v", code, body)
	}
	code, body = e.do(t, http.MethodPost, "/api/orders", "", gin.H{
		"customer_name": "Jan", "phone": "1", "address": "Daleko 7", "distance_km": 1, "option": "delivery",
		"items": []gin.H{{"product_id": 1, "quantity": 3}},
	})
	if code != http.StatusUnprocessableEntity || body["code"] != "out_of_range" {
		t.Errorf("client distance for far address: status = %d, body %v", code, body)
	}

	code, body = e.do(t, http.MethodPost, "/api/orders", "", gin.H{
		"customer_name": "Jan", "phone": "1", "address": "Gdzies 1", "option": "delivery",
		"items": []gin.H{{"product_id": 1}},
	})
	if code != http.StatusUnprocessableEntity || body["code"] != "out_of_range" {
		t.Errorf("failed geocoding: status = %d, body %v", code, body)
	}

	code, body = e.do(t, http.MethodPost, "/api/orders", "", gin.H{
		"customer_name": "Jan", "phone": "1", "address": "Nowy Świat 1", "option": "delivery",
		"items": []gin.H{{"product_id": 2, "quantity": 1}},
	})
	if code != http.StatusUnprocessableEntity || body["code"] != "below_minimum" || num(body["missing_amount"]) != 30 {
		t.Errorf("below minimum: status = %d, body %v", code, body)
	}

	code, body = e.do(t, http.MethodPost, "/api/checkout/quote", "", gin.H{
		"address": "Nowy Świat 1", "option": "delivery",
		"items": []gin.H{{"product_id": 2, "quantity": 1}},
	})
	if code != http.StatusOK || body["can_checkout"] != false || body["blocked_reason"] != "below_minimum" {
		t.Errorf("quote: status = %d, body %v", code, body)
	}

	var count int64
	config.DB.Model(&models.Order{}).Count(&count)
	if count != 0 {
		t.Errorf("orders stored = %d, want 0", count)
	}
}

func TestQuoteAddonEligibilityAndDeposit(t *testing.T) {
	e := setup(t)
	code, body := e.do(t, http.MethodPost, "/api/checkout/quote", "", gin.H{
		"option": "takeaway",
		"items": []gin.H{
			{"product_id": 3, "quantity": 1, "addons": "Sos serowy, Sos czosnkowy, Bekon"},
			{"product_id": 4, "quantity": 2},
		},
	})
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %v", code, body)
	}
	items := list(body["items"])
	if got := num(obj(items[0])["line_total"]); got != 15 {
		t.Errorf("cheese fries line = %v, want 15 (garlic sauce only)", got)
	}
	if got := num(obj(items[1])["line_total"]); got != 13 {
		t.Errorf("cola line = %v, want 13 with deposit", got)
	}
	b := obj(body["breakdown"])
	if num(b["subtotal"]) != 28 || num(b["packaging_cost"]) != 2 || num(b["total_price"]) != 30 {
		t.Errorf("breakdown = %v", b)
	}
}

func TestAutoApplyPromotion(t *testing.T) {
	e := setup(t)
	auto := models.DiscountCode{Code: "AUTO5", Type: models.DiscountAmount, Value: dec("5"), Active: true, AutoApply: true}
	config.DB.Create(&auto)

	items := []gin.H{{"product_id": 1, "quantity": 1}}
	_, body := e.do(t, http.MethodPost, "/api/checkout/quote", "", gin.H{"option": "local", "items": items})
	if d := obj(body["discount"]); d["code"] != "AUTO5" || d["auto"] != true || num(obj(body["breakdown"])["total_price"]) != 15 {
		t.Errorf("auto promotion quote = %v", body)
	}

	_, body = e.do(t, http.MethodPost, "/api/checkout/quote", "", gin.H{"option": "local", "promo_code": "TEN", "items": items})
	if d := obj(body["discount"]); d["code"] != "TEN" || num(obj(body["breakdown"])["total_price"]) != 18 {
		t.Errorf("typed code should replace the promotion, got %v", body)
	}

	code, _ := e.do(t, http.MethodPost, "/api/checkout/quote", "", gin.H{"option": "local", "promo_code": "NOPE", "items": items})
	if code != http.StatusNotFound {
		t.Errorf("unknown code status = %d, want 404", code)
	}

	_, body = e.do(t, http.MethodGet, "/api/promotions", "", nil)
	if num(body["count"]) != 2 {
		t.Errorf("promotions = %v", body)
	}

	_, body = e.do(t, http.MethodPost, "/api/discounts/validate", "", gin.H{"code": "ten", "subtotal": "50,00"})
	if body["valid"] != true || num(body["amount"]) != 5 {
		t.Errorf("validate = %v", body)
	}
}

func TestOrderStatusFlow(t *testing.T) {
	e := setup(t)
	order := placeLocal(t, e, 1, 1)
	id := int(num(order["id"]))
	number := order["number"].(string)
	path := "/api/admin/orders/" + strconv.Itoa(id) + "/status"

	code, body := e.do(t, http.MethodPut, path, e.staff, gin.H{"status": "accepted"})
	if code != http.StatusOK {
		t.Fatalf("accept status = %d, body %v", code, body)
	}
	if len(e.notifier.sms) != 1 {
		t.Errorf("sms sent = %d, want 1", len(e.notifier.sms))
	}

	code, body = e.do(t, http.MethodPut, path, e.staff, gin.H{"status": "pending"})
	if code != http.StatusUnprocessableEntity {
		t.Errorf("back to pending status = %d, body %v", code, body)
	}

	code, _ = e.do(t, http.MethodPost, "/api/orders/"+number+"/cancel", "", gin.H{"phone": "+48600700800"})
	if code != http.StatusUnprocessableEntity {
		t.Errorf("customer cancel after accept status = %d, want 422", code)
	}

	code, _ = e.do(t, http.MethodPut, path, e.admin, gin.H{"status": "completed"})
	if code != http.StatusOK {
		t.Errorf("complete status = %d", code)
	}

	var history []models.OrderStatusHistory
	config.DB.Where("order_id = ?", id).Order("id asc").Find(&history)
	if len(history) != 3 || history[2].ToStatus != models.StatusCompleted || history[1].ChangedBy != 2 {
		t.Errorf("history = %+v", history)
	}
}

func TestCustomerCancel(t *testing.T) {
	e := setup(t)
	number := placeLocal(t, e, 1, 1)["number"].(string)

	code, _ := e.do(t, http.MethodPost, "/api/orders/"+number+"/cancel", "", gin.H{"phone": "+48000000000"})
	if code != http.StatusForbidden {
		t.Errorf("wrong phone status = %d, want 403", code)
	}
	code, _ = e.do(t, http.MethodPost, "/api/orders/"+number+"/cancel", "", gin.H{"phone": "+48600700800"})
	if code != http.StatusOK {
		t.Errorf("cancel status = %d, want 200", code)
	}
	_, body := e.do(t, http.MethodGet, "/api/orders/"+number, "", nil)
	if obj(body["order"])["status"] != "cancelled" {
		t.Errorf("status after cancel = %v", obj(body["order"])["status"])
	}
}

func TestAvailabilityToggle(t *testing.T) {
	e := setup(t)

	code, body := e.do(t, http.MethodPatch, "/api/admin/products/1/availability", e.staff, gin.H{"available": false})
	if code != http.StatusOK {
		t.Fatalf("toggle status = %d, body %v", code, body)
	}
	var p models.Product
	config.DB.First(&p, 1)
	if p.Available {
		t.Error("availability not persisted")
	}
	_, body = e.do(t, http.MethodGet, "/api/menu", "", nil)
	for _, m := range list(body["menu"]) {
		if num(obj(m)["id"]) == 1 {
			t.Error("unavailable product still on the menu")
		}
	}
	code, _ = e.do(t, http.MethodPost, "/api/orders", "", gin.H{
		"customer_name": "Ola", "phone": "1", "option": "local", "items": []gin.H{{"product_id": 1}},
	})
	if code != http.StatusUnprocessableEntity {
		t.Errorf("order for unavailable product status = %d, want 422", code)
	}

	// the row vanished behind the cache's back: the staged change must be undone
	config.DB.Delete(&models.Product{}, 2)
	code, _ = e.do(t, http.MethodPatch, "/api/admin/products/2/availability", e.staff, gin.H{"available": false})
	if code != http.StatusNotFound {
		t.Errorf("missing row status = %d, want 404", code)
	}
	if prod, _ := e.menu.Snapshot().Product(2); !prod.Available {
		t.Error("failed toggle was not rolled back in the menu")
	}

	code, _ = e.do(t, http.MethodPatch, "/api/admin/addons/1/availability", e.staff, gin.H{"available": false})
	if code != http.StatusOK {
		t.Errorf("addon toggle status = %d", code)
	}
	_, body = e.do(t, http.MethodGet, "/api/addons", "", nil)
	if num(body["count"]) != 2 {
		t.Errorf("available addons = %v, want 2", body["count"])
	}
}

func TestCartFlow(t *testing.T) {
	e := setup(t)
	code, body := e.do(t, http.MethodPost, "/api/cart", "", nil)
	if code != http.StatusCreated {
		t.Fatalf("create cart status = %d", code)
	}
	id := obj(body["cart"])["id"].(string)
	actions := "/api/cart/" + id + "/actions"

	_, body = e.do(t, http.MethodPost, actions, "", gin.H{"type": "add_line", "line": gin.H{"product_id": 1, "quantity": 1}})
	lines := list(obj(body["cart"])["lines"])
	if len(lines) != 1 || obj(lines[0])["name"] != "Cheeseburger" {
		t.Fatalf("cart after add = %v", body)
	}
	key := obj(lines[0])["key"].(string)

	e.do(t, http.MethodPost, actions, "", gin.H{"type": "toggle_addon", "key": key, "addon": "Bekon"})
	_, body = e.do(t, http.MethodPost, actions, "", gin.H{"type": "set_option", "option": "takeaway"})
	if got := num(obj(body["breakdown"])["total_price"]); got != 26 {
		t.Errorf("cart total = %v, want 26", got)
	}

	code, _ = e.do(t, http.MethodPost, actions, "", gin.H{"type": "teleport"})
	if code != http.StatusUnprocessableEntity {
		t.Errorf("unknown action status = %d", code)
	}
	code, _ = e.do(t, http.MethodPost, actions, "", gin.H{"type": "add_line", "line": gin.H{"product_id": 99}})
	if code != http.StatusNotFound {
		t.Errorf("unknown product status = %d", code)
	}

	code, body = e.do(t, http.MethodPost, "/api/cart/"+id+"/checkout", "", gin.H{"customer_name": "Ola", "phone": "+48600700800"})
	if code != http.StatusCreated {
		t.Fatalf("checkout status = %d, body %v", code, body)
	}
	if got := num(obj(body["order"])["total_price"]); got != 26 {
		t.Errorf("order total = %v, want 26", got)
	}

	_, body = e.do(t, http.MethodGet, "/api/cart/"+id, "", nil)
	c := obj(body["cart"])
	if c["step"] != "done" || len(list(c["lines"])) != 0 {
		t.Errorf("cart after checkout = %v", c)
	}
}

func TestAdminOrdersNormalizeLegacyItems(t *testing.T) {
	e := setup(t)
	legacy := models.Order{
		Number:         "legacy-1",
		CustomerName:   "Stary",
		Phone:          "1",
		SelectedOption: models.OptionLocal,
		PaymentMethod:  models.PaymentCash,
		Status:         models.StatusPending,
		TotalPrice:     dec("57"),
		Items: []models.OrderItem{
			{
				Name: "Cheeseburger", Category: models.CategoryBurger, UnitPrice: dec("20"), Quantity: 1,
				Addons: datatypes.JSON(`["2x Bekon", {"name": "ser"}, {"medium": true}, {"meat": "wołowina"}]`),
			},
			{
				Name: "Frytki", Category: models.CategoryFries, UnitPrice: dec("10"), Quantity: 1,
				Addons: datatypes.JSON(`{"options": {"Sos czosnkowy": true}, "meat": "beef"}`),
			},
		},
	}
	if err := config.DB.Create(&legacy).Error; err != nil {
		t.Fatal(err)
	}

	code, body := e.do(t, http.MethodGet, "/api/admin/orders?status=pending", e.staff, nil)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if num(obj(body["order_summary"])["pending"]) != 1 {
		t.Errorf("summary = %v", body["order_summary"])
	}
	items := list(obj(list(body["orders"])[0])["items"])

	burger := obj(items[0])
	addons := list(burger["addons"])
	if len(addons) != 2 || obj(addons[0])["name"] != "Bekon" || num(obj(addons[0])["qty"]) != 2 || obj(addons[1])["name"] != "ser" {
		t.Errorf("burger addons = %v", addons)
	}
	if attrs := list(burger["attributes"]); len(attrs) != 1 || obj(attrs[0])["value"] != "wołowina" {
		t.Errorf("burger attributes = %v", attrs)
	}

	fries := obj(items[1])
	if addons := list(fries["addons"]); len(addons) != 1 || obj(addons[0])["name"] != "Sos czosnkowy" {
		t.Errorf("fries addons = %v", addons)
	}
	if attrs := list(fries["attributes"]); len(attrs) != 0 {
		t.Errorf("fries should hide meat, got %v", attrs)
	}
}

func TestUpdateOrderItemsReprices(t *testing.T) {
	e := setup(t)
	order := placeLocal(t, e, 1, 1)
	if num(order["total_price"]) != 20 {
		t.Fatalf("initial total = %v", order["total_price"])
	}
	path := "/api/admin/orders/" + strconv.Itoa(int(num(order["id"]))) + "/items"

	code, body := e.do(t, http.MethodPut, path, e.staff, gin.H{
		"items": []gin.H{{"product_id": 1, "quantity": 2, "addons": []string{"Bekon"}}},
	})
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %v", code, body)
	}
	if got := num(obj(body["breakdown"])["total_price"]); got != 48 {
		t.Errorf("re-priced total = %v, want 48", got)
	}
	var stored models.Order
	config.DB.Preload("Items").First(&stored, uint(num(order["id"])))
	if !stored.TotalPrice.Equal(dec("48")) || len(stored.Items) != 1 || stored.Items[0].Quantity != 2 {
		t.Errorf("stored order = %v with %d items", stored.TotalPrice, len(stored.Items))
	}
}

func TestAdminRoles(t *testing.T) {
	e := setup(t)
	product := gin.H{"name": "Wege Burger", "category": "burger", "price": "27,50", "available": false}

	if code, _ := e.do(t, http.MethodPost, "/api/admin/products", "", product); code != http.StatusUnauthorized {
		t.Errorf("no token status = %d", code)
	}
	if code, _ := e.do(t, http.MethodPost, "/api/admin/products", e.staff, product); code != http.StatusForbidden {
		t.Errorf("staff status = %d", code)
	}
	code, body := e.do(t, http.MethodPost, "/api/admin/products", e.admin, product)
	if code != http.StatusCreated {
		t.Fatalf("admin status = %d, body %v", code, body)
	}
	created := obj(body["product"])
	if num(created["price"]) != 27.5 || created["available"] != false {
		t.Errorf("created product = %v", created)
	}
	var stored models.Product
	config.DB.First(&stored, uint(num(created["id"])))
	if stored.Available {
		t.Error("product created as unavailable is stored as available")
	}

	if code, _ := e.do(t, http.MethodPost, "/api/admin/products", e.admin, gin.H{"name": "X", "category": "pizza", "price": 1}); code != http.StatusBadRequest {
		t.Errorf("bad category status = %d", code)
	}
}

func TestLoginAndCreateUser(t *testing.T) {
	e := setup(t)
	if err := config.EnsureAdmin(config.DB, "Boss@Example.com", "supersecret"); err != nil {
		t.Fatal(err)
	}

	code, body := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "boss@example.com", "password": "supersecret"})
	if code != http.StatusOK {
		t.Fatalf("login status = %d, body %v", code, body)
	}
	token := body["token"].(string)

	if code, _ := e.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "boss@example.com", "password": "nope"}); code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d", code)
	}

	user := gin.H{"name": "Kasia", "email": "kasia@example.com", "password": "password1", "role": "staff"}
	if code, body := e.do(t, http.MethodPost, "/api/admin/users", token, user); code != http.StatusCreated {
		t.Errorf("create user status = %d, body %v", code, body)
	}
	if code, _ := e.do(t, http.MethodPost, "/api/admin/users", token, user); code != http.StatusConflict {
		t.Errorf("duplicate user status = %d", code)
	}
}

func TestZonesAndDeliveryQuote(t *testing.T) {
	e := setup(t)
	overlap := gin.H{"name": "Srodek", "min_distance_km": 2, "max_distance_km": 5, "pricing_type": "flat", "cost_fixed": 12}
	if code, _ := e.do(t, http.MethodPost, "/api/admin/zones", e.admin, overlap); code != http.StatusConflict {
		t.Errorf("overlapping zone status = %d, want 409", code)
	}

	far := gin.H{"name": "Daleko", "min_distance_km": 10, "max_distance_km": 15, "pricing_type": "flat", "cost_fixed": "25", "eta_min_minutes": 60, "eta_max_minutes": 90}
	if code, body := e.do(t, http.MethodPost, "/api/admin/zones", e.admin, far); code != http.StatusCreated {
		t.Fatalf("create zone status = %d, body %v", code, body)
	}

	_, body := e.do(t, http.MethodPost, "/api/delivery/quote", "", gin.H{"distance_km": 12, "subtotal": 100})
	q := obj(body["quote"])
	if body["deliverable"] != true || num(q["cost"]) != 25 || q["eta"] != "60-90 min" {
		t.Errorf("quote = %v", body)
	}

	_, body = e.do(t, http.MethodPost, "/api/delivery/quote", "", gin.H{"address": "Plac Zamkowy 1", "subtotal": 10})
	if num(obj(body["quote"])["cost"]) != 10 {
		t.Errorf("geocoded quote = %v", body)
	}

	_, body = e.do(t, http.MethodPost, "/api/delivery/quote", "", gin.H{"distance_km": 40})
	if body["deliverable"] != false {
		t.Errorf("far quote = %v", body)
	}

	_, body = e.do(t, http.MethodGet, "/api/delivery/zones", "", nil)
	if num(body["count"]) != 3 {
		t.Errorf("zones = %v", body["count"])
	}
}

func TestReservations(t *testing.T) {
	e := setup(t)
	code, body := e.do(t, http.MethodPost, "/api/reservations", "", gin.H{
		"name": "Ola", "phone": "+48600700800", "guests": 4, "reserved_at": now.Add(48 * time.Hour).Format(time.RFC3339),
	})
	if code != http.StatusCreated {
		t.Fatalf("status = %d, body %v", code, body)
	}
	id := int(num(obj(body["reservation"])["id"]))

	code, _ = e.do(t, http.MethodPost, "/api/reservations", "", gin.H{
		"name": "Ola", "phone": "1", "guests": 2, "reserved_at": now.Add(-time.Hour).Format(time.RFC3339),
	})
	if code != http.StatusUnprocessableEntity {
		t.Errorf("past reservation status = %d", code)
	}

	code, _ = e.do(t, http.MethodPut, "/api/admin/reservations/"+strconv.Itoa(id)+"/status", e.staff, gin.H{"status": "confirmed"})
	if code != http.StatusOK || len(e.notifier.sms) != 1 {
		t.Errorf("confirm status = %d, sms = %d", code, len(e.notifier.sms))
	}

	_, body = e.do(t, http.MethodGet, "/api/admin/reservations?status=confirmed", e.staff, nil)
	if num(body["count"]) != 1 {
		t.Errorf("confirmed reservations = %v", body["count"])
	}
}

func TestNotifications(t *testing.T) {
	e := setup(t)
	msg := gin.H{"title": "Promocja", "body": "-20% na frytki"}
	if code, _ := e.do(t, http.MethodPost, "/api/admin/notifications", e.admin, msg); code != http.StatusOK || len(e.notifier.pushes) != 1 {
		t.Errorf("push status = %d, pushes = %d", code, len(e.notifier.pushes))
	}
	e.notifier.fail = true
	if code, _ := e.do(t, http.MethodPost, "/api/admin/notifications", e.admin, msg); code != http.StatusBadGateway {
		t.Errorf("failing gateway status = %d, want 502", code)
	}
}

func TestDiscountAdmin(t *testing.T) {
	e := setup(t)
	auto := gin.H{"code": "lato", "type": "percent", "value": 15, "auto_apply": true}
	code, body := e.do(t, http.MethodPost, "/api/admin/discounts", e.admin, auto)
	if code != http.StatusCreated || obj(body["discount"])["code"] != "LATO" {
		t.Fatalf("create status = %d, body %v", code, body)
	}
	second := gin.H{"code": "JESIEN", "type": "amount", "value": "5", "auto_apply": true}
	if code, _ := e.do(t, http.MethodPost, "/api/admin/discounts", e.admin, second); code != http.StatusCreated {
		t.Fatalf("second create status = %d", code)
	}

	var autos []models.DiscountCode
	config.DB.Where("auto_apply = ?", true).Find(&autos)
	if len(autos) != 1 || autos[0].Code != "JESIEN" {
		t.Errorf("auto-apply codes = %+v, want only JESIEN", autos)
	}

	if code, _ := e.do(t, http.MethodPost, "/api/admin/discounts", e.admin, gin.H{"code": "ten", "type": "percent", "value": 5}); code != http.StatusConflict {
		t.Errorf("duplicate code status = %d", code)
	}
	if code, _ := e.do(t, http.MethodPost, "/api/admin/discounts", e.admin, gin.H{"code": "BIG", "type": "percent", "value": 150}); code != http.StatusBadRequest {
		t.Errorf("over 100 percent status = %d", code)
	}
}

func TestPerCustomerLimitUnderConcurrentCheckouts(t *testing.T) {
	e := setup(t)
	req := gin.H{
		"customer_name": "Ola", "phone": "+48600700800", "option": "local", "promo_code": "TEN",
		"items": []gin.H{{"product_id": 1}},
	}

	var wg sync.WaitGroup
	for n := 0; n < 5; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			body, _ := json.Marshal(req)
			r := httptest.NewRequest(http.MethodPost, "/api/orders", bytes.NewReader(body))
			r.Header.Set("Content-Type", "application/json")
			e.r.ServeHTTP(httptest.NewRecorder(), r)
		}()
	}
	wg.Wait()

	var redemptions int64
	config.DB.Model(&models.DiscountRedemption{}).Where("phone = ?", "+48600700800").Count(&redemptions)
	if redemptions > 1 {
		t.Errorf("redemptions = %d, want at most 1", redemptions)
	}
	var ten models.DiscountCode
	config.DB.Where("code = ?", "TEN").First(&ten)
	if int64(ten.UsedCount) != redemptions {
		t.Errorf("used_count = %d, redemptions = %d", ten.UsedCount, redemptions)
	}
}
