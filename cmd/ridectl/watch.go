package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"ride-hail-client/internal/domain/auth"
	"ride-hail-client/internal/domain/ride"
	"ride-hail-client/internal/infrastructure/notify"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// watch 持續輪詢自己的進行中行程；司機另外輪詢待接行程。直到 ctx 結束。
func (a *app) watch(ctx context.Context) error {
	svc, err := a.rideService(ctx)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)

	if addr := a.cfg.Metrics.Addr; addr != "" {
		srv := &http.Server{
			Addr:              addr,
			Handler:           promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			log.Printf("[Metrics] serving on %s", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			return srv.Shutdown(context.Background())
		})
	}

	active := svc.WatchActiveRide(a.cfg.Poll.ActiveRideInterval, a.polls)
	activeCh, unsubscribe := active.Subscribe()
	defer unsubscribe()

	var notifier *notify.RideNotifier
	var notifyCh <-chan *ride.Ride
	if tg := a.cfg.Notifier.Telegram; tg.Enabled && tg.Token != "" && tg.ChatID != 0 {
		notifier = notify.NewRideNotifier(notify.NewTelegramClient(tg.Token, tg.ChatID, notify.WithPrefix("ridectl")), svc.Role())
		var cancelNotify func()
		notifyCh, cancelNotify = active.Subscribe()
		defer cancelNotify()
	}

	active.Start(ctx)
	g.Go(func() error {
		<-ctx.Done()
		active.Stop()
		return nil
	})
	g.Go(func() error {
		for r := range activeCh {
			printActive(a, r, svc.Role())
		}
		return nil
	})
	if notifier != nil {
		g.Go(func() error {
			notifier.Run(ctx, notifyCh)
			return nil
		})
	}

	if svc.Role() == auth.RoleDriver {
		open := svc.WatchAvailableRides(a.cfg.Poll.AvailableRidesInterval, a.polls)
		openCh, unsubscribeOpen := open.Subscribe()
		defer unsubscribeOpen()
		open.Start(ctx)
		g.Go(func() error {
			<-ctx.Done()
			open.Stop()
			return nil
		})
		g.Go(func() error {
			for list := range openCh {
				fmt.Fprintf(a.out, "[%s] %d curse disponibile\n", time.Now().Format("15:04:05"), len(list))
				printRides(a.out, list, svc.Role())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func printActive(a *app, r *ride.Ride, role auth.Role) {
	stamp := time.Now().Format("15:04:05")
	if r == nil {
		fmt.Fprintf(a.out, "[%s] Nicio cursă activă.\n", stamp)
		return
	}
	p := ride.Describe(r.Status, role)
	fmt.Fprintf(a.out, "[%s] Cursa #%d: %s", stamp, r.ID, p.Label)
	if p.Hint != "" {
		fmt.Fprintf(a.out, " (%s)", p.Hint)
	}
	fmt.Fprintln(a.out)
}
