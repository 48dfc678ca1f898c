// Package server exposes the water collector over HTTP.
//
// Available endpoints:
//   - /              : status page (provider, counter, last update, sensor values)
//   - /metrics       : Prometheus metrics endpoint
//   - /api/snapshot  : last successful snapshot and the held sensor values as JSON
//   - /health        : liveness probe (always returns 200)
//   - /ready         : readiness probe (200 once a snapshot is held and the last update succeeded)
//
// The server is configured with the following timeouts:
//   - Read timeout: 15 seconds
//   - Write timeout: 15 seconds
//   - Idle timeout: 60 seconds
//
// Example usage:
//
//	srv := server.NewServer(cfg, waterCollector, log)
//
//	serverErrors := make(chan error, 1)
//	go func() {
//		serverErrors <- srv.Start()
//	}()
//
//	shutdown := make(chan os.Signal, 1)
//	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
//
//	select {
//	case err := <-serverErrors:
//		log.Error("Server error", "error", err)
//	case <-shutdown:
//		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
//		defer cancel()
//		_ = srv.Shutdown(ctx)
//	}
package server
