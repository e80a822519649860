package common

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRabbitMQ(t *testing.T) string {
	ctx := context.Background()

	container, err := rabbitmq.Run(ctx, "rabbitmq:3.12.11-management-alpine", rabbitmq.WithAdminUsername("guest"), rabbitmq.WithAdminPassword("guest"))
	if err != nil {
		t.Fatalf("could not start rabbitmq container: %v", err)
	}

	connURL, err := container.AmqpURL(ctx)
	if err != nil {
		t.Fatalf("could not get rabbitmq connection URL: %v", err)
	}

	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Fatalf("could not terminate container: %v", err)
		}
	})

	return connURL
}

// file parameter changes according to the caller filelocation relative to the migrations file and it should be in the format of "file://../../migrations"
func dbMigrate(file, dsn string) (*migrate.Migrate, error) {
	m, err := migrate.New(file, dsn)
	if err != nil {
		return nil, err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return nil, err
	}

	return m, nil
}

func TestDB(filepath string, t *testing.T) *sql.DB {
	ctx := context.Background()

	c, err := postgres.Run(ctx,
		"docker.io/postgres:14.11-bookworm",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60*time.Second)))
	if err != nil {
		t.Fatalf("could not start postgres container: %v", err)
	}

	connURL, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	m, err := dbMigrate(filepath, connURL)
	if err != nil {
		t.Fatalf("could not run migrations: %v", err)
	}

	db, err := connectDB(connURL, 25, 5, time.Minute)
	if err != nil {
		t.Fatalf("could not open database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		m.Drop()
		c.Terminate(ctx)
	})

	return db
}

// TestUser inserts a user row with the given role and token balance and returns its id.
func TestUser(t *testing.T, db *sql.DB, email, role string, tokens int) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(`
		INSERT INTO users (name, email, role, tokens)
		VALUES ($1, $2, $3, $4)
		RETURNING id`, "Test User", email, role, tokens).Scan(&id)
	if err != nil {
		t.Fatalf("could not insert test user: %v", err)
	}

	return id
}

// TestSubscription gives the user an active subscription that ends after d.
func TestSubscription(t *testing.T, db *sql.DB, userID uuid.UUID, status string, d time.Duration) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO subscriptions (user_id, status, current_period_end)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET status = EXCLUDED.status, current_period_end = EXCLUDED.current_period_end`,
		userID, status, time.Now().Add(d))
	if err != nil {
		t.Fatalf("could not insert test subscription: %v", err)
	}
}

// TruncateAll empties every application table between test cases.
func TruncateAll(db *sql.DB) error {
	_, err := db.Exec("TRUNCATE blog_posts, subscription_events, subscriptions, users CASCADE")
	return err
}
