package wines

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/vintrack/vintrack-backend/pkg/config"
	"github.com/vintrack/vintrack-backend/pkg/db"
	"github.com/vintrack/vintrack-backend/pkg/db/models"
	"github.com/vintrack/vintrack-backend/pkg/enums"
)

func newTestClient(t *testing.T) *db.Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	client, err := db.New(context.Background(), config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    dsn,
	}, nil)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	err = client.DB().AutoMigrate(
		&models.Wine{},
		&models.GrapeComposition{},
		&models.InventoryLog{},
		&models.TastingNote{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return client
}

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := newTestClient(t)
	repo := NewRepository(client.DB())
	return NewService(client, repo, nil), client
}

func seedWine(t *testing.T, client *db.Client, wine models.Wine) int64 {
	t.Helper()
	if err := client.DB().Create(&wine).Error; err != nil {
		t.Fatalf("failed to seed wine %q: %v", wine.Name, err)
	}
	return wine.ID
}

func strPtr(v string) *string { return &v }

func intPtr(v int) *int { return &v }

func typePtr(v enums.WineType) *enums.WineType { return &v }

func statusPtr(v enums.DrinkingWindowStatus) *enums.DrinkingWindowStatus { return &v }

func datePtr(year int, month time.Month, day int) *time.Time {
	v := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &v
}

// daysFromToday anchors window tests to the clock the repository uses.
func daysFromToday(days int) *time.Time {
	now := time.Now().UTC()
	v := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, days)
	return &v
}
