// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// The root package holds flashcard set management. Focused use cases live in
// subpackages:
//
//   - account: registration, credentials, dashboard and leaderboard
//   - practice: practice sessions and the rewards they earn
//   - auth: access and refresh tokens, password verification
//
// Services receive their stores through constructor injection and run
// multi-statement writes through a store.Transactor. Expected conditions
// are reported with sentinel errors; unexpected failures are wrapped in a
// service-specific error type that keeps the operation name.
package service
