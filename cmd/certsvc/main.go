package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/httprate"
	log "github.com/sirupsen/logrus"

	config "github.com/luxcert/cert-services/configs"
	"github.com/luxcert/cert-services/internal/certsvc/broker"
	certdb "github.com/luxcert/cert-services/internal/certsvc/db"
	handlers "github.com/luxcert/cert-services/internal/certsvc/handlers"
	"github.com/luxcert/cert-services/internal/certsvc/service"
	"github.com/luxcert/cert-services/internal/certsvc/store"
	mongodb "github.com/luxcert/cert-services/internal/db"
	nats "github.com/luxcert/cert-services/internal/nats"
	"github.com/luxcert/cert-services/internal/solanaclient"
	"github.com/luxcert/cert-services/internal/uploader"
)

const SERVICE_NAME = "cert"

var instanceId string

func init() {
	instanceId = "001"
	config.Logging(SERVICE_NAME + "_service_" + instanceId)
	config.LoadEnv(SERVICE_NAME)
}

func main() {

	// pg connection for identities, profiles and sessions
	dbpool, err := certdb.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer certdb.ClosePool()
	log.Printf("pg connection established successfully")

	// mongo holds the keyed certificate collections
	mdb, cancelMongo, err := mongodb.ConnectToDB()
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer cancelMongo()
	mongodb.CreateWalletIndexForCollection(mdb, "certificates")

	tokenAuth := handlers.InitAuth()

	identityStore := store.NewIdentityStore(dbpool)
	profileStore := store.NewProfileStore(dbpool)
	certificateStore := store.NewCertificateStore(mdb)

	sessionService := service.NewSessionService(identityStore, profileStore, tokenAuth)

	uploadClient := uploader.New(os.Getenv("UPLOAD_NODE_URL"), os.Getenv("UPLOAD_GATEWAY_URL"))
	resolver := uploader.NewResolver()

	mintClient, err := solanaclient.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to init solana client: %v", err)
	}

	registryService := service.NewRegistryService(certificateStore, resolver)

	// Connect to NATS
	n, err := nats.Connect(SERVICE_NAME + " service")
	if err != nil {
		log.Errorf("Error: unable to connect to NATS server %v", err)
		os.Exit(0)
	}

	defer n.Conn.Close()
	log.Printf("NATS connection established successfully %s", n.Url)

	// broker answers registry requests and pushes change snapshots
	b := broker.NewBroker(n.Conn, registryService)

	issueService := service.NewIssueService(uploadClient, mintClient, certificateStore, b)

	// subscribe to socket service
	sub, err := b.SubscribeSocketService(broker.TopicSocketService)
	if err != nil {
		log.Errorf("Error: unable to subscribe to queue %v", err)
		os.Exit(0)
	}

	// Setup router
	r := chi.NewRouter()
	c := config.CORS()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(config.CustomLoggerMiddleware())
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(180 * time.Second))
	r.Use(c.Handler)

	// to protect the service api from any over requests
	rateLimitStr := os.Getenv("RATE_LIMIT")
	rateLimit, err := strconv.Atoi(rateLimitStr)
	if err != nil {
		log.Fatalf("Invalid RATE_LIMIT value: %v", err)
	}
	r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))

	// Init handlers and routes
	h := handlers.NewHandler(tokenAuth, sessionService, issueService, registryService)
	h.SetRoutes(r)

	// Create server with timeout settings
	server := &http.Server{
		Addr:         ":" + os.Getenv("CERT_SERVICE_PORT"),
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()
	log.Infof("%s service running at port %s", SERVICE_NAME, server.Addr)

	// Wait for interrupt signal to gracefully shutdown the server
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("%s service shutdown Failed:%+v", SERVICE_NAME, err)
	}
	log.Infof("%s service gracefully stopped", SERVICE_NAME)
}
