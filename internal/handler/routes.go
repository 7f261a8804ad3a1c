package handler

import (
	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth      *AuthHandler
	Tenant    *TenantHandler
	Inventory *InventoryHandler
	Supplier  *SupplierHandler
	User      *UserHandler
	Dashboard *DashboardHandler
	POS       *POSHandler
	Report    *ReportHandler
}

// Register mounts every API route under /api/v1. requireAuth is the session
// gate; role checks sit on top of it per group.
func Register(app fiber.Router, h Handlers, requireAuth fiber.Handler) {
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/signup", h.Auth.Signup)
	auth.Post("/validate-token", h.Auth.ValidateToken)

	// ============ PROTECTED ROUTES ============
	auth.Post("/logout", requireAuth, h.Auth.Logout)
	auth.Post("/heartbeat", requireAuth, h.Auth.Heartbeat)
	auth.Post("/change-password", requireAuth, h.Auth.ChangePassword)
	auth.Get("/me", requireAuth, h.Auth.Me)
	auth.Put("/profile", requireAuth, h.Auth.UpdateProfile)

	superAdmin := middleware.RequireRole(model.RoleSuperAdmin)
	owner := middleware.RequireRole(model.RoleOwner)
	staff := middleware.RequireRole(model.RoleOwner, model.RoleKasir)

	// Super admin console
	tenants := api.Group("/tenants", requireAuth, superAdmin)
	tenants.Get("/", h.Tenant.List)
	tenants.Post("/", h.Tenant.Create)
	tenants.Put("/:id", h.Tenant.Update)
	tenants.Patch("/:id/status", h.Tenant.SetStatus)
	tenants.Delete("/:id", h.Tenant.Delete)
	api.Get("/admin/stats", requireAuth, superAdmin, h.Tenant.Stats)

	// Owner back office
	products := api.Group("/products", requireAuth, owner)
	products.Get("/", h.Inventory.GetProducts)
	products.Get("/low-stock", h.Inventory.LowStock)
	products.Get("/:id", h.Inventory.GetProduct)
	products.Post("/", h.Inventory.CreateProduct)
	products.Put("/:id", h.Inventory.UpdateProduct)
	products.Delete("/:id", h.Inventory.DeleteProduct)

	suppliers := api.Group("/suppliers", requireAuth, owner)
	suppliers.Get("/", h.Supplier.List)
	suppliers.Post("/", h.Supplier.Create)
	suppliers.Put("/:id", h.Supplier.Update)
	suppliers.Delete("/:id", h.Supplier.Delete)

	purchases := api.Group("/purchases", requireAuth, owner)
	purchases.Get("/", h.Inventory.GetPurchases)
	purchases.Post("/", h.Inventory.CreatePurchase)

	cashiers := api.Group("/cashiers", requireAuth, owner)
	cashiers.Get("/", h.User.ListCashiers)
	cashiers.Post("/", h.User.CreateCashier)
	cashiers.Delete("/:id", h.User.DeleteCashier)

	api.Get("/settings/store", requireAuth, owner, h.Tenant.GetStore)
	api.Put("/settings/store", requireAuth, owner, h.Tenant.UpdateStore)

	api.Get("/dashboard/owner", requireAuth, owner, h.Dashboard.Owner)
	api.Get("/dashboard/trend", requireAuth, owner, h.Dashboard.Trend)
	api.Get("/reports", requireAuth, owner, h.Report.Get)
	api.Get("/reports/export", requireAuth, owner, h.Report.Export)

	// Cashier screen
	api.Get("/dashboard/kasir", requireAuth, staff, h.Dashboard.Kasir)
	api.Get("/pos/products", requireAuth, staff, h.Inventory.POSProducts)

	cart := api.Group("/cart", requireAuth, staff)
	cart.Get("/", h.POS.GetCart)
	cart.Delete("/", h.POS.ClearCart)
	cart.Post("/items", h.POS.AddItem)
	cart.Patch("/items/:id", h.POS.AdjustItem)
	cart.Delete("/items/:id", h.POS.RemoveItem)

	api.Post("/checkout", requireAuth, staff, h.POS.Checkout)
	api.Get("/sales/:id/receipt", requireAuth, staff, h.POS.Receipt)
}
