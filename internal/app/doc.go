// Package app provides application initialization and lifecycle management
// for the Demand Pulse service. It wires configuration, logging,
// observability, the dataset services and the HTTP transport together, and
// owns graceful shutdown.
//
// # Initialization Flow
//
// The typical initialization sequence:
//
//	1. Load configuration from environment and files
//	2. Initialize logging and observability
//	3. Initialize services with their dependencies
//	4. Set up HTTP handlers and middleware
//	5. Configure and start the HTTP server
//	6. Set up graceful shutdown handlers
//
// # Usage
//
// The main entry point is typically:
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// The package handles SIGINT and SIGTERM signals to ensure active requests
// are completed, WebSocket connections are closed cleanly and final metrics
// are flushed.
//
// All initialization errors are returned to the caller; the package never
// calls os.Exit() directly.
package app
