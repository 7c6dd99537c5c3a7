//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/repository"
	"rentacar-backend/internal/repository/postgres"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: RENTACAR_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres/
func prepareDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("RENTACAR_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("RENTACAR_TEST_DATABASE_URL not set")
	}

	var (
		db  *sql.DB
		err error
	)
	// Retry connection as DB might still be starting up
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", dsn)
		if err == nil {
			if err = db.Ping(); err == nil {
				break
			}
		}
		time.Sleep(2 * time.Second)
	}
	require.NoError(t, err, "failed to connect to database")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, postgres.Migrate(db))
	return db
}

func seedRenterAndCar(t *testing.T, store *postgres.Store) (*domain.User, *domain.Car) {
	t.Helper()
	ctx := context.Background()

	role, err := store.RoleRepository.GetByName(ctx, domain.RoleRenter)
	if errors.Is(err, repository.ErrNotFound) {
		role = &domain.Role{Name: domain.RoleRenter}
		require.NoError(t, store.RoleRepository.Create(ctx, role))
	} else {
		require.NoError(t, err)
	}

	user := &domain.User{
		FirstName:    "Integration",
		Email:        fmt.Sprintf("it-%d@example.com", time.Now().UnixNano()),
		RoleID:       role.ID,
		PasswordHash: "x",
	}
	require.NoError(t, store.UserRepository.Create(ctx, user))

	car := &domain.Car{Brand: "Toyota", Model: "Corolla", PricePerDayCents: 4500}
	require.NoError(t, store.CarRepository.Create(ctx, car))

	t.Cleanup(func() {
		_ = store.CarRepository.Delete(context.Background(), car.ID)
		_ = store.UserRepository.Delete(context.Background(), user.ID)
	})
	return user, car
}

func TestIntegration_ConcurrentBookingsNeverOverlap(t *testing.T) {
	store := postgres.NewStore(prepareDB(t))
	user, car := seedRenterAndCar(t, store)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	start := time.Date(2030, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			rt := &domain.Rental{
				CarID:            car.ID,
				UserID:           user.ID,
				PricePerDayCents: car.PricePerDayCents,
				StartingDate:     start.AddDate(0, 0, offset%2),
				DueDate:          start.AddDate(0, 0, 3),
			}
			err := store.RentalRepository.Create(context.Background(), rt)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, repository.ErrRentalOverlap):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)

	carID := car.ID
	rentals, err := store.RentalRepository.List(context.Background(), repository.RentalFilter{CarID: &carID})
	require.NoError(t, err)
	require.Len(t, rentals, 1)

	// A rejected rental frees its days.
	rentals[0].Rejected = true
	require.NoError(t, store.RentalRepository.UpdateStatus(context.Background(), &rentals[0]))
	again := &domain.Rental{
		CarID: car.ID, UserID: user.ID, PricePerDayCents: 4500,
		StartingDate: start, DueDate: start.AddDate(0, 0, 3),
	}
	require.NoError(t, store.RentalRepository.Create(context.Background(), again))

	for _, id := range []int32{rentals[0].ID, again.ID} {
		_, err := store.RentalRepository.Delete(context.Background(), id)
		require.NoError(t, err)
	}
}
