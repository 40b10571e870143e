package routes

import (
	"burger-ordering-api/handlers"
	"burger-ordering-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine) {
	// ── Public storefront ─────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/login", handlers.Login)

		// Menu
		public.GET("/menu", handlers.GetMenu)
		public.GET("/addons", handlers.ListAddons)
		public.GET("/promotions", handlers.ListPromotions)
		public.POST("/discounts/validate", handlers.ValidateDiscount)

		// Delivery
		public.GET("/delivery/zones", handlers.ListZones)
		public.POST("/delivery/quote", handlers.QuoteDelivery)

		// Cart
		public.POST("/cart", handlers.CreateCart)
		public.GET("/cart/:id", handlers.GetCart)
		public.POST("/cart/:id/actions", handlers.DispatchCartAction)
		public.POST("/cart/:id/checkout", handlers.CheckoutCart)
		public.DELETE("/cart/:id", handlers.DeleteCart)

		// Checkout & tracking
		public.POST("/checkout/quote", handlers.QuoteCheckout)
		public.POST("/orders", handlers.PlaceOrder)
		public.GET("/orders/:number", handlers.TrackOrder)
		public.POST("/orders/:number/cancel", handlers.CancelOrder)

		public.POST("/reservations", handlers.CreateReservation)

		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Back office: admin and staff ──────────────────────────────
	staff := r.Group("/api/admin")
	staff.Use(middleware.BackOffice()...)
	{
		staff.GET("/profile", handlers.GetProfile)

		staff.GET("/orders", handlers.AdminListOrders)
		staff.GET("/orders/:id", handlers.AdminGetOrder)
		staff.PUT("/orders/:id/status", handlers.UpdateOrderStatus)
		staff.PUT("/orders/:id/payment", handlers.UpdatePaymentStatus)
		staff.PUT("/orders/:id/items", handlers.UpdateOrderItems)

		staff.GET("/products", handlers.AdminListProducts)
		staff.PATCH("/products/:id/availability", handlers.SetProductAvailability)
		staff.GET("/addons", handlers.AdminListAddons)
		staff.PATCH("/addons/:id/availability", handlers.SetAddonAvailability)
		staff.GET("/zones", handlers.AdminListZones)
		staff.GET("/discounts", handlers.AdminListDiscounts)

		staff.GET("/reservations", handlers.AdminListReservations)
		staff.PUT("/reservations/:id/status", handlers.UpdateReservationStatus)
	}

	// ── Back office: admin only ───────────────────────────────────
	admin := r.Group("/api/admin")
	admin.Use(middleware.AdminOnly()...)
	{
		admin.POST("/products", handlers.AdminCreateProduct)
		admin.PUT("/products/:id", handlers.AdminUpdateProduct)
		admin.DELETE("/products/:id", handlers.AdminDeleteProduct)

		admin.POST("/addons", handlers.AdminCreateAddon)
		admin.PUT("/addons/:id", handlers.AdminUpdateAddon)
		admin.DELETE("/addons/:id", handlers.AdminDeleteAddon)

		admin.POST("/zones", handlers.AdminCreateZone)
		admin.PUT("/zones/:id", handlers.AdminUpdateZone)
		admin.DELETE("/zones/:id", handlers.AdminDeleteZone)

		admin.POST("/discounts", handlers.AdminCreateDiscount)
		admin.PUT("/discounts/:id", handlers.AdminUpdateDiscount)
		admin.DELETE("/discounts/:id", handlers.AdminDeleteDiscount)

		admin.POST("/notifications", handlers.SendNotification)

		admin.GET("/users", handlers.AdminListUsers)
		admin.POST("/users", handlers.AdminCreateUser)
	}
}
