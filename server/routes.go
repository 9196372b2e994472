package server

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", s.HomeHandler())

	// Authentication
	s.RegisterRouteFunc("GET "+RouteLogin, s.LoginPageHandler())
	s.RegisterRouteFunc("POST "+RouteLogin, s.LoginSubmitHandler())
	s.RegisterRouteFunc("GET "+RouteRegister, s.RegisterPageHandler())
	s.RegisterRouteFunc("POST "+RouteRegister, s.RegisterSubmitHandler())
	s.RegisterRouteFunc("POST "+RouteForgotPassword, s.ForgotPasswordHandler())
	s.RegisterRouteFunc("GET "+RouteLogout, s.LogoutHandler())
	s.RegisterRouteFunc("GET "+RouteFederated, s.FederatedStartHandler())
	s.RegisterRouteFunc("GET "+RouteCallback, s.FederatedCallbackHandler())

	// Bills (browsing is public, paying is guarded)
	s.RegisterRouteHandler("GET "+RouteBills, ChainMiddleware(s.BillsPageHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteBillDetails, ChainMiddleware(s.BillDetailsHandler(), s.HTMLMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteBillPay, ChainMiddleware(s.PayBillHandler(), s.HTMLMiddleware(s.RequireSession())...))

	// Payment history (guarded)
	s.RegisterRouteHandler("GET "+RouteMyBills, ChainMiddleware(s.MyBillsPageHandler(), s.HTMLMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("GET "+RouteMyStatement, ChainMiddleware(s.StatementHandler(), s.HTMLMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteMyBillUpdate, ChainMiddleware(s.UpdatePaymentHandler(), s.HTMLMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteMyBillDelete, ChainMiddleware(s.DeletePaymentHandler(), s.HTMLMiddleware(s.RequireSession())...))

	// Profile (guarded)
	s.RegisterRouteHandler("GET "+RouteProfile, ChainMiddleware(s.ProfilePageHandler(), s.HTMLMiddleware(s.RequireSession())...))
	s.RegisterRouteHandler("POST "+RouteProfileUpdate, ChainMiddleware(s.ProfileUpdateHandler(), s.HTMLMiddleware(s.RequireSession())...))

	// Display theme preference (not security relevant)
	s.RegisterRouteFunc("POST "+RouteTheme, s.ThemeToggleHandler())
}
