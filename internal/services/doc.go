// Package services implements the business logic layer of the Demand Pulse
// application. It provides a clean separation between HTTP handlers and the
// dataset layer, ensuring that serving rules are centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate serving rules
//
// # Service Layer Responsibilities
//
// The service layer is responsible for:
//
//	- Pagination and display caps on served tables
//	- Typed views over generic table rows
//	- Cross-cutting concerns (logging, metrics)
//	- Error transformation for the transport layer
//	- Cache refresh coordination and event broadcast
//
// # Available Services
//
// The package provides these core services:
//
//	- DataService: serves datasets, series, summaries and catalog lookups
//	- HealthService: provides system health checks
//
// # Error Handling
//
// Services return domain-specific errors that handlers transform:
//
//	- ErrUnknownDataset for unregistered dataset keys
//	- ErrUnknownPattern for unrecognized pattern types
//	- ErrSeriesNotFound for absent product/store pairs
//
// Dataset loads themselves never fail: the loader falls back to synthetic
// substitutes, and provenance metadata tells the caller which branch served
// the table.
//
// # Testing
//
// Services are tested against temp-dir artifact fixtures and mocked
// broadcast dependencies:
//
//	hub := new(MockBroadcaster)
//	service := NewDataServiceWithLogger(cfg, logger)
//	service.SetBroadcaster(hub)
//
//	hub.On("Broadcast", "data:refresh", mock.Anything).Return()
//	service.Refresh(ctx)
package services
