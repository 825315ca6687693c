// Package mongo provides MongoDB client initialization and the durable store
// implementations behind the session engine.
//
// Both New and NewWithDatabase implement retry logic to handle managed
// cluster cold starts and brief network interruptions that could otherwise
// cause application startup failures. Every attempt is verified with a ping.
//
// Basic usage:
//
//	import (
//		"github.com/openmarks/gradebook/core/config"
//		"github.com/openmarks/gradebook/integration/database/mongo"
//	)
//
//	var cfg mongo.Config
//	config.MustLoad(&cfg)
//
//	db, err := mongo.NewWithDatabase(ctx, cfg, cfg.Database)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	users := mongo.NewUserStore(db)
//	sessions := mongo.NewSessionStore(db)
//	tx := mongo.NewTxRunner(db.Client())
//
// # Configuration
//
// Configuration is handled through environment variables via the Config
// struct:
//
//	MONGODB_URL                 (required)
//	MONGODB_DATABASE            (default: gradebook)
//	MONGODB_CONNECT_TIMEOUT     (default: 10s)
//	MONGODB_MAX_POOL_SIZE       (default: 100)
//	MONGODB_MIN_POOL_SIZE       (default: 1)
//	MONGODB_MAX_CONN_IDLE_TIME  (default: 300s)
//	MONGODB_RETRY_WRITES        (default: true)
//	MONGODB_RETRY_READS         (default: true)
//	MONGODB_RETRY_ATTEMPTS      (default: 3)
//	MONGODB_RETRY_INTERVAL      (default: 5s)
//
// # Transactions
//
// TxRunner implements session.Transactor: all session reads and writes for
// one request execute inside one transaction, so rotation writes commit or
// roll back together with the request's business mutation.
//
// # Health Checking
//
// Healthcheck returns a probe function for readiness endpoints:
//
//	check := mongo.Healthcheck(client)
//	if err := check(ctx); err != nil {
//		// report unhealthy
//	}
package mongo
