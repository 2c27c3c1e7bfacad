package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-portal/config"
	"github.com/yeremiapane/restaurant-portal/controllers"
	"github.com/yeremiapane/restaurant-portal/middlewares"
	"github.com/yeremiapane/restaurant-portal/policy"
	"github.com/yeremiapane/restaurant-portal/services"
)

// Dependencies are the wired services the routes are served from.
type Dependencies struct {
	Config    *config.Config
	Policy    config.Policy
	Carts     *services.CartService
	Checkout  *services.CheckoutService
	Wizard    *services.ReservationWizard
	Lifecycle *services.LifecycleService
	Receipts  *services.ReceiptRecovery
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	cfg := deps.Config
	loginPath := cfg.LoginPath

	// Apply security middlewares
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, time.Second).RateLimit())

	// Inisialisasi controller
	policyCtrl := controllers.NewPolicyController(deps.Policy.Fees, deps.Policy.PaymentPolicy())
	cartCtrl := controllers.NewCartController(deps.Carts, loginPath)
	checkoutCtrl := controllers.NewCheckoutController(deps.Checkout, loginPath)
	reservationCtrl := controllers.NewReservationController(deps.Wizard, loginPath)
	adminCtrl := controllers.NewAdminController(deps.Receipts, loginPath)
	orderCtrl := controllers.NewLifecycleController(deps.Lifecycle, policy.KindOrder, loginPath)
	eventCtrl := controllers.NewLifecycleController(deps.Lifecycle, policy.KindEvent, loginPath)
	bookingCtrl := controllers.NewLifecycleController(deps.Lifecycle, policy.KindReservation, loginPath)

	strict := middlewares.NewStrictRateLimiter()

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/policy/fee", policyCtrl.Fee)
	r.GET("/policy/payment-methods", policyCtrl.PaymentMethods)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware([]byte(cfg.JWTSecret), loginPath))
	auth.Use(middlewares.NoStore())

	// CART
	auth.GET("/cart", cartCtrl.GetCart)
	auth.POST("/cart/items", cartCtrl.AddItem)
	auth.PATCH("/cart/items/:item_id", cartCtrl.UpdateItem)
	auth.DELETE("/cart/items/:item_id", cartCtrl.RemoveItem)
	auth.PUT("/cart/payment-method", cartCtrl.SetPaymentMethod)

	// CHECKOUT
	auth.GET("/checkout", checkoutCtrl.Quote)
	auth.POST("/checkout", strict.RateLimit(), middlewares.ActionLogger("checkout", ""), checkoutCtrl.Submit)

	// ORDERS (customer)
	auth.GET("/orders/:order_id", orderCtrl.Get)
	auth.POST("/orders/:order_id/cancel", middlewares.ActionLogger("cancel_order", orderCtrl.Param()), orderCtrl.Cancel)

	// RESERVATIONS (customer)
	auth.GET("/reservations/wizard", reservationCtrl.GetWizard)
	auth.POST("/reservations/wizard/stages/:stage", reservationCtrl.SaveStage)
	auth.POST("/reservations/wizard/back", reservationCtrl.Back)
	auth.POST("/reservations/wizard/submit", strict.RateLimit(), middlewares.ActionLogger("submit_reservation", ""), reservationCtrl.Submit)
	auth.GET("/reservations/:reservation_id", bookingCtrl.Get)
	auth.POST("/reservations/:reservation_id/cancel", middlewares.ActionLogger("cancel_reservation", bookingCtrl.Param()), bookingCtrl.Cancel)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := auth.Group("/admin")
	admin.Use(middlewares.RoleCheck(policy.RoleAdmin))

	for _, entity := range []struct {
		path string
		ctrl *controllers.LifecycleController
	}{
		{"/orders", orderCtrl},
		{"/events", eventCtrl},
		{"/reservations", bookingCtrl},
	} {
		item := entity.path + "/:" + entity.ctrl.Param()
		admin.GET(item, entity.ctrl.Get)
		admin.GET(item+"/transitions", entity.ctrl.Transitions)
		admin.PATCH(item, middlewares.ActionLogger("update_status", entity.ctrl.Param()), entity.ctrl.UpdateStatus)
	}

	admin.GET("/receipts/pending", adminCtrl.ListPendingReceipts)
	admin.POST("/receipts/:upload_id/retry", middlewares.ActionLogger("retry_receipt", "upload_id"), adminCtrl.RetryReceipt)

	return r
}
