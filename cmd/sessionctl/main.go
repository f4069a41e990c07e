// Command sessionctl drives a session against a credential store from the
// command line. The token is kept in a local file, or in redis when
// AUTH_REDIS_ADDR is set, so it survives between invocations.
//
//	sessionctl login -email ana@example.com -password secret
//	sessionctl profile
//	sessionctl update -kitchen-name "Ana's Kitchen"
//	sessionctl logout
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-print"

	session "github.com/goliatone/go-session"
	"github.com/goliatone/go-session/logger"
	"github.com/goliatone/go-session/tokenstore"
)

const usage = `usage: sessionctl <command> [flags]

commands:
  login     authenticate with -email and -password
  signup    register a new user
  profile   restore the session and print the user
  update    update profile fields of the current user
  logout    discard the stored token
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", session.Message(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, args []string) error {
	cfg, err := session.LoadClientConfig(ctx)
	if err != nil {
		return err
	}

	zl := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "sessionctl",
	})
	log := logger.NewAdapter(zl)

	tokens, err := tokenStore(ctx, cfg)
	if err != nil {
		return err
	}

	client := session.NewCredentialClient(cfg, session.WithClientLogger(log))
	ctrl := session.NewController(client, tokens,
		session.WithLogger(log),
		session.WithRoutes(cfg.GetRoutes()),
		session.WithNavigator(session.NavigatorFunc(func(_ context.Context, destination string) {
			fmt.Println("navigate:", destination)
		})),
	)

	switch command {
	case "login":
		return login(ctx, ctrl, args)
	case "signup":
		return signup(ctx, ctrl, args)
	case "profile":
		return profile(ctx, ctrl)
	case "update":
		return update(ctx, ctrl, args)
	case "logout":
		ctrl.Logout(ctx)
		fmt.Println("logged out")
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func tokenStore(ctx context.Context, cfg *session.ClientConfig) (session.TokenStore, error) {
	if cfg.RedisAddr != "" {
		client, err := tokenstore.Connect(ctx, tokenstore.Config{Addr: cfg.RedisAddr})
		if err != nil {
			return nil, err
		}
		return tokenstore.NewRedisTokenStore(client, tokenstore.WithKey("sessionctl:"+cfg.GetTokenKey())), nil
	}

	path := cfg.TokenFile
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		path = filepath.Join(dir, "sessionctl", "storage.json")
	}
	return session.NewFileTokenStore(path, cfg.GetTokenKey()), nil
}

func login(ctx context.Context, ctrl *session.Controller, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := ctrl.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	printUser(user)
	return nil
}

func signup(ctx context.Context, ctrl *session.Controller, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	var req session.SignupRequest
	var role, specialties, experience string
	fs.StringVar(&req.Name, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "account email")
	fs.StringVar(&req.Password, "password", "", "account password")
	fs.StringVar(&req.Phone, "phone", "", "phone number")
	fs.StringVar(&role, "role", string(session.RoleCustomer), "customer, chef or admin")
	fs.StringVar(&req.Address, "address", "", "delivery address")
	fs.StringVar(&req.KitchenName, "kitchen-name", "", "kitchen name (chef)")
	fs.StringVar(&req.KitchenAddress, "kitchen-address", "", "kitchen address (chef)")
	fs.StringVar(&specialties, "specialties", "", "comma separated specialties (chef)")
	fs.StringVar(&experience, "experience", "", "years of experience (chef)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req.Role = session.Role(strings.ToLower(role))
	req.Specialties = session.ParseSpecialties(specialties)
	if experience != "" {
		years, err := strconv.ParseFloat(experience, 64)
		if err != nil {
			return fmt.Errorf("experience must be a number")
		}
		req.Experience = &years
	}

	user, err := ctrl.Signup(ctx, req)
	if err != nil {
		return err
	}
	printUser(user)
	return nil
}

func profile(ctx context.Context, ctrl *session.Controller) error {
	ctrl.Bootstrap(ctx)

	snap := ctrl.Snapshot()
	if !snap.Authenticated() {
		fmt.Println("not authenticated")
		return nil
	}

	printUser(snap.User)
	if missing := snap.MissingProfileFields(); len(missing) > 0 {
		fmt.Println("profile incomplete, missing:", missing)
	}
	return nil
}

func update(ctx context.Context, ctrl *session.Controller, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	address := fs.String("address", "", "delivery address")
	kitchenName := fs.String("kitchen-name", "", "kitchen name")
	kitchenAddress := fs.String("kitchen-address", "", "kitchen address")
	specialties := fs.String("specialties", "", "comma separated specialties")
	experience := fs.Float64("experience", 0, "years of experience")
	maxOrders := fs.Float64("max-orders", 0, "maximum orders per day")
	radius := fs.Float64("delivery-radius", 0, "delivery radius")
	spice := fs.String("spice-level", "", "mild, medium or hot")
	dietary := fs.String("dietary", "", "comma separated dietary restrictions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctrl.Bootstrap(ctx)

	var patch session.UserPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "phone":
			patch.Phone = phone
		case "address":
			patch.Address = address
		case "kitchen-name":
			patch.KitchenName = kitchenName
		case "kitchen-address":
			patch.KitchenAddress = kitchenAddress
		case "specialties":
			patch.Specialties = session.ParseSpecialties(*specialties)
		case "experience":
			patch.Experience = experience
		case "max-orders":
			patch.MaxOrdersPerDay = maxOrders
		case "delivery-radius":
			patch.DeliveryRadius = radius
		case "spice-level":
			if patch.Preferences == nil {
				patch.Preferences = &session.PreferencesPatch{}
			}
			patch.Preferences.SpiceLevel = session.Ptr(session.SpiceLevel(*spice))
		case "dietary":
			if patch.Preferences == nil {
				patch.Preferences = &session.PreferencesPatch{}
			}
			patch.Preferences.DietaryRestrictions = session.ParseSpecialties(*dietary)
		}
	})

	user, err := ctrl.UpdateUser(ctx, patch)
	if err != nil {
		return err
	}
	printUser(user)
	return nil
}

func printUser(u session.User) {
	fmt.Println(print.MaybePrettyJSON(u))
}
