package database

import (
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"

	"whitegate/internal/domain"
)

func TestSetupDBSeedsDefaultAdmin(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "test-password")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := SetupDB(WithDialector(sqlite.Open(dsn)))
	if err != nil {
		t.Fatalf("SetupDB returned error: %v", err)
	}
	t.Cleanup(func() { DB = nil })

	var admin domain.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		t.Fatalf("admin user not seeded: %v", err)
	}
	if !admin.Active {
		t.Fatal("seeded admin is inactive")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("test-password")); err != nil {
		t.Fatalf("seeded admin password does not verify: %v", err)
	}

	// Seeding is idempotent.
	if _, err := SetupDB(WithExistingDB(db), WithAutoMigrate(false)); err != nil {
		t.Fatalf("second SetupDB returned error: %v", err)
	}

	var count int64
	if err := db.Model(&domain.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		t.Fatalf("count admins: %v", err)
	}
	if count != 1 {
		t.Fatalf("admin seeded %d times, want 1", count)
	}
}
