package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/DavidGamba/go-getoptions"
	"github.com/cyverse-de/go-mod/otelutils"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/alerts"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/config"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/db"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/email"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/handlers"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/handlerset"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/logging"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/notifier"
	"github.com/lakshya189/SoniCart-E-Commerce-platform-sub001/preferences"

	_ "github.com/lib/pq"
)

const serviceName = "notification-dispatch"

var log = logging.Log

// commandLineOptionValues represents the values of the command-line options that were passed on the command line when
// this service was invoked.
type commandLineOptionValues struct {
	Config   string
	Migrate  bool
	Backfill bool
}

func parseCommandLine() *commandLineOptionValues {
	optionValues := &commandLineOptionValues{}
	opt := getoptions.New()

	// Default option values.
	defaultConfigPath := "/etc/sonicart/notifications.yml"

	// Define the command-line options.
	opt.Bool("help", false, opt.Alias("h", "?"))
	opt.StringVar(&optionValues.Config, "config", defaultConfigPath,
		opt.Alias("c"),
		opt.Description("the path to the configuration file"))
	opt.BoolVar(&optionValues.Migrate, "migrate", false,
		opt.Description("create the notification tables before starting"))
	opt.BoolVar(&optionValues.Backfill, "backfill", false,
		opt.Description("create default preferences for every user who doesn't have any before starting"))

	// Parse the command line, handling requests for help and usage errors.
	_, err := opt.Parse(os.Args[1:])
	if opt.Called("help") {
		fmt.Fprint(os.Stderr, opt.Help())
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n\n", err)
		fmt.Fprint(os.Stderr, opt.Help(getoptions.HelpSynopsis))
		os.Exit(1)
	}

	return optionValues
}

func main() {
	// Parse the command-line.
	optionValues := parseCommandLine()

	// Read in the configuration file.
	cfg, err := config.Load(optionValues.Config)
	if err != nil {
		log.Fatal(err)
	}

	// Initialize logging.
	if err := logging.SetupLogging(cfg.LogLevel); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize tracing.
	shutdown := otelutils.TracerProviderFromEnv(ctx, serviceName, func(e error) { log.Fatal(e) })
	defer shutdown()

	// Establish the database connection.
	database, err := db.InitDatabase("postgres", cfg.DB.URI, cfg.DB.Timeout)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	if optionValues.Migrate {
		if err := db.Migrate(ctx, database); err != nil {
			log.Fatal(err)
		}
		log.Info("notification tables are up to date")
	}

	// The preference service is needed for the backfill as well as for the engine.
	preferenceStore := db.NewPreferenceStore(database)
	preferenceService := preferences.New(preferenceStore, cfg.PreferenceDefaults)
	if optionValues.Backfill {
		count, err := preferenceService.Backfill(ctx)
		if err != nil {
			log.Fatal(err)
		}
		log.Infof("created default notification preferences for %d users", count)
	}

	// Connect to the AMQP broker.
	handlerSet, err := handlerset.New(&handlerset.AMQPSettings{
		URI:          cfg.AMQP.URI,
		ExchangeName: cfg.AMQP.ExchangeName,
		ExchangeType: cfg.AMQP.ExchangeType,
		QueueName:    cfg.AMQP.Queue,
	}, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer handlerSet.Close()

	publishChannel, err := handlerSet.PublishChannel()
	if err != nil {
		log.Fatal(err)
	}
	sender := email.NewAMQPSender(publishChannel, cfg.AMQP.ExchangeName, cfg.Email.RoutingKey, cfg.Email.FromName)

	// Build the notification engine.
	catalog := db.NewCatalogStore(database)
	writer := notifier.NewWriter(
		preferenceService,
		db.NewNotificationStore(database),
		catalog,
		email.NewRenderer(cfg.Email.FromName),
		sender,
	)
	dispatcher := notifier.NewDispatcher(writer, preferenceStore, cfg.DispatchWorkers)
	registry := alerts.NewRegistry(
		db.NewAlertStore(database),
		catalog,
		db.NewStockNotificationStore(database),
		writer,
	)

	// Register the event handlers and start listening.
	for routingKey, handler := range handlers.InitMessageHandlers(writer, dispatcher, registry) {
		handlerSet.Register(routingKey, handler)
	}

	log.Info("listening for storefront events")
	if err := handlerSet.Listen(ctx); err != nil {
		log.Fatal(err)
	}
	log.Info("shutting down")
}
