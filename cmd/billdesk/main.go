package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-billdesk/billing"
	"github.com/jrsteele09/go-billdesk/identity"
	"github.com/jrsteele09/go-billdesk/identity/flowstate"
	"github.com/jrsteele09/go-billdesk/internal/config"
	"github.com/jrsteele09/go-billdesk/secured"
	"github.com/jrsteele09/go-billdesk/server"
	"github.com/jrsteele09/go-billdesk/server/prefs"
	"github.com/jrsteele09/go-billdesk/session"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return fmt.Errorf("config.New %w", err)
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	displayAppname(c.GetAppName())

	gateway, err := identity.NewHTTPGateway(identity.HTTPGatewayConfig{
		BaseURL:          c.GetIdentityBaseURL(),
		OIDCIssuer:       c.GetOIDCIssuer(),
		OIDCClientID:     c.GetOIDCClientID(),
		OIDCClientSecret: c.GetOIDCClientSecret(),
		RedirectURL:      c.GetBaseURL() + server.RouteCallback,
	}, flowstate.NewInMemoryRepo())
	if err != nil {
		return fmt.Errorf("identity.NewHTTPGateway %w", err)
	}

	sessionStore, err := session.NewStore(gateway)
	if err != nil {
		return fmt.Errorf("session.NewStore %w", err)
	}
	defer sessionStore.Close()

	securedClient, err := secured.New(
		c.GetBillsBaseURL(),
		sessionStore,
		sessionStore.SignOut,
		func() { zlog.Warn().Msg("session rejected, users will be sent to re-authenticate") },
	)
	if err != nil {
		return fmt.Errorf("secured.New %w", err)
	}

	billsClient, err := billing.NewClient(securedClient)
	if err != nil {
		return fmt.Errorf("billing.NewClient %w", err)
	}

	prefsRepo, err := prefs.NewFileRepo(c.GetDataFolder())
	if err != nil {
		return fmt.Errorf("prefs.NewFileRepo %w", err)
	}

	webServer, err := server.New(c, sessionStore, billsClient, prefsRepo)
	if err != nil {
		return fmt.Errorf("server.New %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: webServer}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
