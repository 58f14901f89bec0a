// Package database provides the data access layer for the application.
//
// # Architecture
//
//	database/
//	├── database.go      # Connection setup and migrations
//	└── runs/            # Sync run history
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./shelfsync.db")
//	runsRepo := runs.NewRepository(db.DB)
//
//	id, err := runsRepo.StartRun("read")
//	latest, err := runsRepo.LatestRun()
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add a compile-time interface check in internal/interfaces/checks.go
package database
