package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/grantlyhq/grantly/backend/internal/models"
)

// testDB opens a fresh in-memory database with the full schema and
// cascading foreign keys enabled. The shared-cache DSN keeps every pooled
// connection on the same database, and the foreign-key pragma rides the DSN
// so each of them enforces cascades.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Grant{},
		&models.Request{},
		&models.User{},
		&models.Favorite{},
		&models.SystemLog{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	return db
}

func seedGrant(t *testing.T, db *gorm.DB, name string) *models.Grant {
	t.Helper()
	grant := &models.Grant{
		CompetitionName:  name,
		AreaFocus:        "climate",
		GeographicRegion: "North America",
		Country:          "USA",
	}
	if err := db.Create(grant).Error; err != nil {
		t.Fatalf("failed to seed grant: %v", err)
	}
	return grant
}

func TestGrantService_List_EmptyRequestsAsSlice(t *testing.T) {
	db := testDB(t)
	svc := NewGrantService(db)
	seedGrant(t, db, "Founders Fund Open Call")

	grants, err := svc.List(nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(grants))
	}
	if grants[0].Requests == nil {
		t.Error("Requests should be an empty slice, not nil")
	}
	if len(grants[0].Requests) != 0 {
		t.Errorf("expected no requests, got %d", len(grants[0].Requests))
	}
}

func TestGrantService_List_IncludesRequests(t *testing.T) {
	db := testDB(t)
	svc := NewGrantService(db)
	grant := seedGrant(t, db, "Seed Stage Pitch Competition")

	db.Create(&models.Request{GrantID: grant.ID, Subject: "Broken link", Suggestion: "Update URL"})
	db.Create(&models.Request{GrantID: grant.ID, Subject: "Wrong amount", Suggestion: "It is 50k now"})

	grants, err := svc.List(nil)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(grants[0].Requests) != 2 {
		t.Errorf("expected 2 requests attached, got %d", len(grants[0].Requests))
	}
}

func TestGrantService_List_Filters(t *testing.T) {
	db := testDB(t)
	svc := NewGrantService(db)

	seedGrant(t, db, "US Grant")
	other := &models.Grant{CompetitionName: "Kenya Grant", Country: "Kenya", AreaFocus: "health"}
	db.Create(other)

	grants, err := svc.List(&GrantListRequest{Country: "Kenya"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(grants) != 1 || grants[0].CompetitionName != "Kenya Grant" {
		t.Errorf("country filter returned wrong set: %+v", grants)
	}

	reviewed := true
	grants, err = svc.List(&GrantListRequest{IsReviewed: &reviewed})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(grants) != 0 {
		t.Errorf("expected no reviewed grants, got %d", len(grants))
	}
}

func TestGrantService_Update(t *testing.T) {
	db := testDB(t)
	svc := NewGrantService(db)
	grant := seedGrant(t, db, "Original Name")

	name := "Renamed Competition"
	amount := 25000
	updated, err := svc.Update(grant.ID, &UpdateGrantRequest{
		CompetitionName: &name,
		Amount:          &amount,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.CompetitionName != "Renamed Competition" {
		t.Errorf("CompetitionName = %q", updated.CompetitionName)
	}
	if updated.Amount != 25000 {
		t.Errorf("Amount = %d, expected 25000", updated.Amount)
	}
	if updated.DetailsLastUpdated == nil {
		t.Error("DetailsLastUpdated should be set after an update")
	}
	// Untouched fields survive
	if updated.Country != "USA" {
		t.Errorf("Country = %q, expected USA", updated.Country)
	}
}

func TestGrantService_Update_NotFound(t *testing.T) {
	db := testDB(t)
	svc := NewGrantService(db)

	name := "ghost"
	_, err := svc.Update(9999, &UpdateGrantRequest{CompetitionName: &name})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestGrantService_Delete_CascadesDependents(t *testing.T) {
	db := testDB(t)
	svc := NewGrantService(db)
	grant := seedGrant(t, db, "Doomed Grant")

	db.Create(&models.Request{GrantID: grant.ID, Subject: "s", Suggestion: "x"})
	db.Create(&models.Favorite{GrantID: grant.ID, AuthID: "auth0|abc"})

	if err := svc.Delete(grant.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var requests, favorites int64
	db.Model(&models.Request{}).Where("grant_id = ?", grant.ID).Count(&requests)
	db.Model(&models.Favorite{}).Where("grant_id = ?", grant.ID).Count(&favorites)
	if requests != 0 {
		t.Errorf("expected requests to cascade, %d remain", requests)
	}
	if favorites != 0 {
		t.Errorf("expected favorites to cascade, %d remain", favorites)
	}
}

func TestGrantService_Delete_NotFound(t *testing.T) {
	db := testDB(t)
	svc := NewGrantService(db)

	if err := svc.Delete(404); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestGrantService_ReconcileHasRequests(t *testing.T) {
	db := testDB(t)
	svc := NewGrantService(db)

	// Stale true flag with no requests behind it
	stale := seedGrant(t, db, "Stale Flag")
	db.Model(stale).Update("has_requests", true)

	// Missing true flag on a grant with a request
	missed := seedGrant(t, db, "Missed Flag")
	db.Create(&models.Request{GrantID: missed.ID, Subject: "s", Suggestion: "x"})

	fixed, err := svc.ReconcileHasRequests()
	if err != nil {
		t.Fatalf("ReconcileHasRequests() error = %v", err)
	}
	if fixed != 2 {
		t.Errorf("expected 2 rows fixed, got %d", fixed)
	}

	var check models.Grant
	db.First(&check, stale.ID)
	if check.HasRequests {
		t.Error("stale has_requests flag should be cleared")
	}
	check = models.Grant{}
	db.First(&check, missed.ID)
	if !check.HasRequests {
		t.Error("has_requests should be set for a grant with requests")
	}
}
