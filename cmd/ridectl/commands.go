package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	appauth "ride-hail-client/internal/application/auth"
	"ride-hail-client/internal/application/rides"
	"ride-hail-client/internal/domain/auth"
	"ride-hail-client/internal/domain/ride"
)

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		if err := a.session.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Deconectat.")
		return nil
	case "me":
		return a.me(ctx)
	case "request":
		return a.request(ctx, args)
	case "rides":
		return a.listRides(ctx)
	case "act":
		return a.act(ctx, args)
	case "available":
		return a.available(ctx)
	case "availability":
		return a.availability(ctx, args)
	case "watch":
		return a.watch(ctx)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	res, err := a.session.Login(ctx, appauth.LoginInput{Username: *user, Password: *pass})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Bun venit, %s (%s)\n", res.User.DisplayName(), res.User.Role())
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	var reg auth.Registration
	fs.StringVar(&reg.Username, "u", "", "username")
	fs.StringVar(&reg.Password, "p", "", "password")
	fs.StringVar(&reg.Password2, "p2", "", "password confirmation (defaults to -p)")
	fs.StringVar(&reg.Email, "email", "", "email")
	fs.StringVar(&reg.Phone, "phone", "", "phone")
	fs.StringVar(&reg.FirstName, "first", "", "first name")
	fs.StringVar(&reg.LastName, "last", "", "last name")
	fs.BoolVar(&reg.IsDriver, "driver", false, "register as a driver")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if reg.Password2 == "" {
		reg.Password2 = reg.Password
	}
	res, err := a.session.Register(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Cont creat: %s (%s)\n", res.User.Username, res.User.Role())
	return nil
}

func (a *app) me(ctx context.Context) error {
	u, err := a.session.Current(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "#%d %s <%s> %s\n", u.ID, u.DisplayName(), u.Email, u.Role())
	if u.IsDriver {
		d, err := a.api.DriverProfile(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%s %s, rating %.1f, disponibil: %v\n", d.CarModel, d.CarPlate, d.Rating, d.IsAvailable)
	}
	return nil
}

func (a *app) rideService(ctx context.Context) (*rides.Service, error) {
	role, err := a.session.Role(ctx)
	if err != nil {
		return nil, err
	}
	return rides.NewService(a.api, role), nil
}

func (a *app) request(ctx context.Context, args []string) error {
	fs := newFlagSet("request")
	var in ride.Request
	fs.StringVar(&in.PickupLocation, "from", "", "pickup location")
	fs.StringVar(&in.DropoffLocation, "to", "", "dropoff location")
	fs.Float64Var(&in.PickupLat, "from-lat", 0, "pickup latitude")
	fs.Float64Var(&in.PickupLng, "from-lng", 0, "pickup longitude")
	fs.Float64Var(&in.DropoffLat, "to-lat", 0, "dropoff latitude")
	fs.Float64Var(&in.DropoffLng, "to-lng", 0, "dropoff longitude")
	fs.Float64Var(&in.DistanceKM, "km", 0, "distance in km")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	svc, err := a.rideService(ctx)
	if err != nil {
		return err
	}
	r, err := svc.Request(ctx, in)
	if err != nil {
		return err
	}
	printRides(a.out, []ride.Ride{r}, svc.Role())
	return nil
}

func (a *app) listRides(ctx context.Context) error {
	svc, err := a.rideService(ctx)
	if err != nil {
		return err
	}
	list, err := svc.Rides(ctx)
	if err != nil {
		return err
	}
	printRides(a.out, list, svc.Role())
	return nil
}

func (a *app) act(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: act needs ID and ACTION", errUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad ride id %q", errUsage, args[0])
	}
	action, err := ride.ParseAction(args[1])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	svc, err := a.rideService(ctx)
	if err != nil {
		return err
	}
	// 先讀取可見行程，讓本地狀態機有最新的副本可檢查。
	if _, err := svc.Rides(ctx); err != nil {
		return err
	}
	r, err := svc.Act(ctx, id, action)
	if err != nil {
		return err
	}
	printRides(a.out, []ride.Ride{r}, svc.Role())
	return nil
}

func (a *app) available(ctx context.Context) error {
	svc, err := a.rideService(ctx)
	if err != nil {
		return err
	}
	if svc.Role() == auth.RoleDriver {
		open, err := svc.AvailableRides(ctx)
		if err != nil {
			return err
		}
		printRides(a.out, open, svc.Role())
		return nil
	}

	drivers, err := a.api.AvailableDrivers(ctx)
	if err != nil {
		return err
	}
	if len(drivers) == 0 {
		fmt.Fprintln(a.out, "Niciun șofer disponibil.")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ȘOFER\tMAȘINĂ\tNR.\tRATING")
	for _, d := range drivers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.1f\n", d.User.DisplayName(), d.CarModel, d.CarPlate, d.Rating)
	}
	return tw.Flush()
}

func (a *app) availability(ctx context.Context, args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return fmt.Errorf("%w: availability needs on or off", errUsage)
	}
	toggle := rides.NewAvailability(a.api)
	if _, err := toggle.Load(ctx); err != nil {
		return err
	}
	v, err := toggle.Set(ctx, args[0] == "on")
	if err != nil {
		return err
	}
	if v {
		fmt.Fprintln(a.out, "Disponibil pentru curse.")
	} else {
		fmt.Fprintln(a.out, "Indisponibil.")
	}
	return nil
}

func printRides(w io.Writer, list []ride.Ride, role auth.Role) {
	if len(list) == 0 {
		fmt.Fprintln(w, "Nicio cursă.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTRASEU\tKM\tPREȚ\tȘOFER\tACȚIUNI")
	for _, r := range list {
		driver := "-"
		if r.Driver != nil {
			driver = r.Driver.User.DisplayName()
		}
		actions := make([]string, 0, 2)
		for _, act := range ride.AllowedActions(r.Status, role) {
			actions = append(actions, string(act))
		}
		fmt.Fprintf(tw, "%d\t%s\t%s → %s\t%.1f\t%s\t%s\t%s\n",
			r.ID, ride.Describe(r.Status, role).Label, r.PickupLocation, r.DropoffLocation,
			r.DistanceKM, r.Price, driver, strings.Join(actions, ","))
	}
	_ = tw.Flush()
}
