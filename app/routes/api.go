// Package routes wires the HTTP route table.
package routes

import (
	"github.com/dukaanlabs/dukaan/app/controllers"
	"github.com/dukaanlabs/dukaan/pkg/router"
)

// RegisterAPI mounts the /api routes. Reads are public; mutations and
// logout sit behind the bearer-token gate.
func RegisterAPI(r *router.Router, products *controllers.ProductController, auth *controllers.AuthController, gate router.Middleware) {
	api := r.Group("/api")

	api.Get("/products", "products.index", products.Index)
	api.Get("/products/{id}", "products.show", products.Show)

	api.Post("/signup", "auth.signup", auth.Signup)
	api.Post("/login", "auth.login", auth.Login)

	protected := api.Group("", gate)
	protected.Post("/products", "products.store", products.Store)
	protected.Put("/products/{id}", "products.update", products.Update)
	protected.Patch("/products/{id}", "products.patch", products.Update)
	protected.Delete("/products/{id}", "products.destroy", products.Destroy)
	protected.Post("/logout", "auth.logout", auth.Logout)
}
