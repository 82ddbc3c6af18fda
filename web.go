/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Seednode/tabletop/broadcast"
	"github.com/Seednode/tabletop/catalog"
	"github.com/Seednode/tabletop/tables"
	"github.com/julienschmidt/httprouter"
)

const (
	logDate string        = `2006-01-02T15:04:05.000-07:00`
	timeout time.Duration = 10 * time.Second
)

// tabletop bundles the state every handler shares.
type tabletop struct {
	registry  *tables.Registry
	processor *tables.Processor
	hubs      *broadcast.Hubs
	catalog   catalog.Catalog
}

func newTabletop(cfg *Config, cat catalog.Catalog) *tabletop {
	hubs := broadcast.NewHubs(broadcast.DefaultBuffer)

	var retain tables.RetainFunc = tables.RetainAll
	if cfg.tableTimeout > 0 {
		retain = tables.IdleFor(cfg.tableTimeout)
	}

	registry := tables.NewRegistry(tables.Options{
		Resolver: cat,
		Retain:   retain,
		OnRemove: func(s *tables.Session) {
			logf(cfg, "SWEEP: Removed table %s (idle since %s)", s.Code(), s.LastActive().Format(logDate))
			hubs.Close(s.Code())
		},
	})

	return &tabletop{
		registry:  registry,
		processor: tables.NewProcessor(registry, hubs),
		hubs:      hubs,
		catalog:   cat,
	}
}

func securityHeaders(cfg *Config, w http.ResponseWriter) {
	w.Header().Set("Cross-Origin-Embedder-Policy", "require-corp")
	w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
	w.Header().Set("Cross-Origin-Resource-Policy", "same-site")
	w.Header().Set("Permissions-Policy", "geolocation=(), midi=(), sync-xhr=(), microphone=(), camera=(), magnetometer=(), gyroscope=(), fullscreen=(), payment=()")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'")

	if cfg.scheme() == "https" {
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
	}
}

func realIP(r *http.Request) string {
	host, port, _ := net.SplitHostPort(r.RemoteAddr)
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	} else if ip := r.Header.Get("X-Real-IP"); ip != "" {
		if net.ParseIP(ip) != nil {
			host = ip
		}
	}
	if net.ParseIP(host) != nil && strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	if port != "" {
		return host + ":" + port
	}
	return host
}

func serveVersion(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusOK)

		written, err := w.Write([]byte("tabletop v" + releaseVersion + "\n"))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Version page (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func newRouter(cfg *Config, tt *tabletop, errs chan<- error) *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		errorf("panic serving %s to %s: %v", r.URL.Path, realIP(r), i)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		securityHeaders(cfg, w)
		w.WriteHeader(http.StatusInternalServerError)

		_, _ = io.WriteString(w, newPage("Server Error", "An error has occurred. Please try again."))
	}

	mux.GET(cfg.prefix+"/", serveHomePage(cfg, errs))

	mux.POST(cfg.prefix+"/find", serveFindTable(cfg, tt))

	mux.GET(cfg.prefix+"/healthz", serveHealthCheck(cfg, tt, errs))

	mux.GET(cfg.prefix+"/robots.txt", serveRobots(cfg, errs))

	mux.GET(cfg.prefix+"/version", serveVersion(cfg, errs))

	mux.GET(cfg.prefix+"/table/:code", serveTablePage(cfg, tt, errs))

	mux.GET(cfg.prefix+"/table/:code/qr", serveQR(cfg, tt, errs))

	mux.POST(cfg.prefix+"/api/table/create", serveCreateTable(cfg, tt, errs))

	mux.GET(cfg.prefix+"/api/table/:code/state", serveTableState(cfg, tt, errs))

	mux.GET(cfg.prefix+"/api/icons", serveIconPacks(cfg, tt, errs))

	mux.GET(cfg.prefix+"/api/icons/:id", serveIconPack(cfg, tt, errs))

	mux.GET(cfg.prefix+"/ws/table/:code", serveLive(cfg, tt))

	if cfg.profile {
		registerProfileHandlers(cfg, mux)
	}

	return mux
}

func ServePage(ctx context.Context, cfg *Config, args []string) error {
	var err error

	timeZone := os.Getenv("TZ")
	if timeZone != "" {
		time.Local, err = time.LoadLocation(timeZone)
		if err != nil {
			return err
		}
	}

	logf(cfg, "START: tabletop v%s", releaseVersion)

	cat, err := catalog.Open(ctx, cfg.catalog)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	logf(cfg, "CATALOG: Opened %s", strings.SplitN(cfg.catalog, "://", 2)[0])

	cfg.prefix = strings.TrimSuffix(cfg.prefix, "/")

	errs := make(chan error, 64)
	go drainErrors(errs)

	tt := newTabletop(cfg, cat)

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port)),
		Handler:           newRouter(cfg, tt, errs),
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       timeout,
		ReadHeaderTimeout: timeout,
		WriteTimeout:      timeout,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()

	go tt.registry.Run(sweepCtx, cfg.sweepInterval, func(removed, remaining int) {
		logf(cfg, "SWEEP: Removed %d tables, %d remaining", removed, remaining)
	})

	serveErr := make(chan error, 1)

	go func() {
		var err error
		logf(cfg, "SERVE: Listening on %s://%s%s/", cfg.scheme(), srv.Addr, cfg.prefix)
		if cfg.tlsKey != "" && cfg.tlsCert != "" {
			err = srv.ListenAndServeTLS(cfg.tlsCert, cfg.tlsKey)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	return nil
}
