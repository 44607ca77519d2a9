package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"

	blackoutdomain "github.com/smallbiznis/reservo/internal/blackout/domain"
	bookingdomain "github.com/smallbiznis/reservo/internal/booking/domain"
	catalogdomain "github.com/smallbiznis/reservo/internal/catalog/domain"
	paymentdomain "github.com/smallbiznis/reservo/internal/payment/domain"
	tenantdomain "github.com/smallbiznis/reservo/internal/tenant/domain"
)

// RunMigrations applies the embedded SQL migrations so the service is
// usable out of the box on a fresh database.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// AutoMigrate is the fallback for non-postgres engines, where the
// embedded SQL dialect does not apply.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&tenantdomain.Tenant{},
		&catalogdomain.Segment{},
		&catalogdomain.Package{},
		&catalogdomain.AddOn{},
		&blackoutdomain.Blackout{},
		&bookingdomain.Booking{},
		&bookingdomain.Conflict{},
		&paymentdomain.EventRecord{},
	)
}
