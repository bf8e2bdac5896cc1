// hoguctl is a terminal front end for the Hogu marketplace API. It
// wires the full client stack (config, logging, tracing, durable
// session store, retrying transport with a circuit breaker, the
// authenticated request client and the vertical facades) and exposes a
// handful of commands to sign in, search listings, inspect a detail
// page and book.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlessioMITRM/hogu-frontend-sub001/client"
	"github.com/AlessioMITRM/hogu-frontend-sub001/detail"
	"github.com/AlessioMITRM/hogu-frontend-sub001/domain"
	"github.com/AlessioMITRM/hogu-frontend-sub001/geo"
	"github.com/AlessioMITRM/hogu-frontend-sub001/pkg/config"
	"github.com/AlessioMITRM/hogu-frontend-sub001/pkg/httpclient"
	"github.com/AlessioMITRM/hogu-frontend-sub001/pkg/logger"
	"github.com/AlessioMITRM/hogu-frontend-sub001/pkg/tracing"
	"github.com/AlessioMITRM/hogu-frontend-sub001/search"
	"github.com/AlessioMITRM/hogu-frontend-sub001/service"
	"github.com/AlessioMITRM/hogu-frontend-sub001/session"
)

// Config is the CLI's environment-driven configuration.
type Config struct {
	APIBaseURL     string  `env:"HOGU_API_URL" envDefault:"https://api.hogu.app"`
	GeocoderURL    string  `env:"HOGU_GEOCODER_URL" envDefault:"https://nominatim.openstreetmap.org"`
	SessionDBPath  string  `env:"HOGU_SESSION_DB" envDefault:"hogu-session.db"`
	LogLevel       string  `env:"LOG_LEVEL" envDefault:"info"`
	TracingEnabled bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint   string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	SampleRate     float64 `env:"TRACE_SAMPLE_RATE" envDefault:"1.0"`
}

func main() {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("hoguctl", cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log, os.Args[1:]); err != nil {
		log.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg Config, log *slog.Logger, args []string) error {
	if len(args) == 0 {
		usage()
		return fmt.Errorf("no command given")
	}

	tracingCfg := tracing.DefaultConfig("hoguctl")
	tracingCfg.Enabled = cfg.TracingEnabled
	tracingCfg.OTLPEndpoint = cfg.OTLPEndpoint
	tracingCfg.SampleRate = cfg.SampleRate
	shutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	store, err := session.NewSQLiteStore(cfg.SessionDBPath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer func() { _ = store.Close() }()
	store.OnSignOut(func() {
		fmt.Fprintln(os.Stderr, "signed out")
	})
	if sess, loadErr := store.Load(ctx); loadErr == nil && !sess.IsZero() {
		ctx = logger.WithPrincipalID(ctx, sess.Principal.ID)
	}

	transport := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("hogu-api"),
		log,
	)
	api := client.New(cfg.APIBaseURL, transport, store, log)
	services := service.NewServices(api, store, log)
	geocoder := geo.NewHTTPGeocoder(cfg.GeocoderURL, httpclient.New(httpclient.DefaultConfig()))

	command, rest := args[0], args[1:]
	switch command {
	case "login":
		return runLogin(ctx, services, rest)
	case "logout":
		return services.Auth.Logout(ctx)
	case "whoami":
		return runWhoami(ctx, services)
	case "search":
		return runSearch(ctx, services, log, rest)
	case "detail":
		return runDetail(ctx, services, geocoder, log, rest)
	case "book":
		return runBook(ctx, services, rest)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: hoguctl <command> [flags]

commands:
  login    -email -password
  logout
  whoami
  search   -vertical -location [-from -to -adults -page]
  detail   -vertical -id
  book     -vertical -id [-from -to -time -guests]`)
}

func runLogin(ctx context.Context, services *service.Services, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := services.Auth.Login(ctx, service.LoginInput{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (%s)\n", sess.Principal.Name, sess.Principal.Role)
	return nil
}

func runWhoami(ctx context.Context, services *service.Services) error {
	sess, err := services.Auth.Current(ctx)
	if err != nil {
		return err
	}
	if sess.IsZero() {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s (%s)\n", sess.Principal.Name, sess.Principal.Role)
	if len(sess.Entitlements) > 0 {
		fmt.Printf("entitlements: %v\n", sess.Entitlements)
	}
	return nil
}

func runSearch(ctx context.Context, services *service.Services, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	vertical := fs.String("vertical", "lodging", "marketplace vertical")
	location := fs.String("location", "", "destination")
	from := fs.String("from", "", "start date (YYYY-MM-DD)")
	to := fs.String("to", "", "end date (YYYY-MM-DD)")
	adults := fs.Int("adults", 0, "adult guests")
	page := fs.Int("page", 1, "result page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	facade := services.ByVertical(session.Vertical(*vertical))
	if facade == nil {
		return fmt.Errorf("unknown vertical %q", *vertical)
	}

	criteria, decode := criteriaFor(session.Vertical(*vertical), *location, *from, *to, *adults)
	nav := search.NewMemoryNavigator(nil)
	ctrl := search.NewController(nav, decode, facade.Search, log)

	if err := ctrl.Submit(ctx, criteria); err != nil {
		return err
	}
	if *page > 1 {
		if err := ctrl.SetPage(ctx, *page); err != nil {
			return err
		}
	}

	if ctrl.NoResults() {
		fmt.Println("no results")
		return nil
	}
	for _, listing := range ctrl.Items() {
		label := detail.PriceLabel(listing.PriceCents, listing.Currency)
		if label != "" {
			label = "  " + label
		}
		fmt.Printf("%-12s %s%s\n", listing.ID, listing.Name, label)
	}
	fmt.Printf("page %d/%d  (share: ?%s)\n", ctrl.Page(), ctrl.TotalPages(), nav.Query().Encode())
	return nil
}

// criteriaFor maps the generic search flags onto the vertical's
// criteria type. Transfers read location as "from>to".
func criteriaFor(v session.Vertical, location, from, to string, adults int) (search.Criteria, search.Decoder) {
	switch v {
	case session.VerticalDining:
		return search.DiningCriteria{Location: location, Date: from, Guests: adults}, search.DecodeDining
	case session.VerticalClubs:
		return search.ClubCriteria{Location: location, Date: from, Guests: adults}, search.DecodeClub
	case session.VerticalTransfers:
		fromCity, toCity := splitRoute(location)
		return search.TransferCriteria{FromCity: fromCity, ToCity: toCity, Date: from, Passengers: adults}, search.DecodeTransfer
	case session.VerticalDeposit:
		return search.DepositCriteria{Location: location, DateFrom: from, DateTo: to, Bags: adults}, search.DecodeDeposit
	default:
		return search.LodgingCriteria{Location: location, DateFrom: from, DateTo: to, Adults: adults}, search.DecodeLodging
	}
}

func splitRoute(route string) (string, string) {
	for i := 0; i < len(route); i++ {
		if route[i] == '>' {
			return route[:i], route[i+1:]
		}
	}
	return route, ""
}

func runDetail(ctx context.Context, services *service.Services, geocoder geo.Geocoder, log *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("detail", flag.ContinueOnError)
	vertical := fs.String("vertical", "lodging", "marketplace vertical")
	id := fs.String("id", "", "listing id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	facade := services.ByVertical(session.Vertical(*vertical))
	if facade == nil {
		return fmt.Errorf("unknown vertical %q", *vertical)
	}

	loader := detail.NewLoader(facade, geocoder, log)
	bundle, err := loader.Load(ctx, *id)
	if err != nil {
		return err
	}

	fmt.Println(bundle.Listing.Name)
	if bundle.Presentation.FormattedAddress != "" {
		fmt.Println(bundle.Presentation.FormattedAddress)
	}
	if label := bundle.Presentation.PriceLabel; label != "" {
		fmt.Println(label)
	}
	if bundle.Coordinates != nil {
		fmt.Printf("%.5f, %.5f\n", bundle.Coordinates.Latitude, bundle.Coordinates.Longitude)
	}
	if bundle.Viewers != nil {
		fmt.Printf("%d people are looking at this right now\n", *bundle.Viewers)
	}
	if bundle.Listing.Unavailable {
		fmt.Println("currently unavailable")
	}
	if bundle.Presentation.Menu != nil {
		out, _ := json.MarshalIndent(bundle.Presentation.Menu, "", "  ")
		fmt.Println(string(out))
	}
	return nil
}

func runBook(ctx context.Context, services *service.Services, args []string) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	vertical := fs.String("vertical", "lodging", "marketplace vertical")
	id := fs.String("id", "", "listing id")
	from := fs.String("from", "", "start date (YYYY-MM-DD)")
	to := fs.String("to", "", "end date (YYYY-MM-DD)")
	at := fs.String("time", "", "time (HH:MM)")
	guests := fs.Int("guests", 0, "guests")
	if err := fs.Parse(args); err != nil {
		return err
	}

	facade := services.ByVertical(session.Vertical(*vertical))
	if facade == nil {
		return fmt.Errorf("unknown vertical %q", *vertical)
	}

	booking, err := facade.Book(ctx, domain.BookingRequest{
		ListingID: *id,
		DateFrom:  *from,
		DateTo:    *to,
		Time:      *at,
		Guests:    *guests,
	})
	if err != nil {
		return err
	}
	fmt.Printf("booking %s: %s\n", booking.ID, booking.Status)
	return nil
}
