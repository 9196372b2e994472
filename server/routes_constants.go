package server

// Route paths. RouteRegister doubles as the re-authentication entry point a
// rejected credential redirects to.
const (
	RouteHome           = "/"
	RouteLogin          = "/login"
	RouteRegister       = "/register"
	RouteLogout         = "/logout"
	RouteForgotPassword = "/forgot-password"
	RouteFederated      = "/auth/federated"
	RouteCallback       = "/auth/callback"

	RouteBills         = "/bills"
	RouteBillDetails   = "/bills/{id}"
	RouteBillPay       = "/bills/{id}/pay"
	RouteMyBills       = "/myBills"
	RouteMyBillUpdate  = "/myBills/{id}"
	RouteMyBillDelete  = "/myBills/{id}/delete"
	RouteMyStatement   = "/myBills/statement.pdf"
	RouteProfile       = "/myProfile"
	RouteProfileUpdate = "/myProfile/update"
	RouteTheme         = "/theme"
)

// redirectParam carries the navigation intent (the protected path the
// visitor tried to reach) through the login redirect.
const redirectParam = "redirect"
