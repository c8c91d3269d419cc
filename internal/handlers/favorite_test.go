package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/grantlyhq/grantly/backend/internal/middleware"
	"github.com/grantlyhq/grantly/backend/internal/models"
)

func favoriteRouter(db *gorm.DB, subject string) *gin.Engine {
	h := NewFavoriteHandler(db)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextSubject, subject)
		c.Next()
	})
	r.GET("/api/favorites", h.List)
	r.POST("/api/favorites", h.Create)
	r.DELETE("/api/favorites/:id", h.Delete)
	return r
}

func TestFavoriteHandler_CreateAndList(t *testing.T) {
	db := testDB(t)
	db.Create(&models.Grant{CompetitionName: "Bookmarked"})
	router := favoriteRouter(db, "auth0|alice")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/favorites", strings.NewReader(`{"grant_id":1}`))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/favorites", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Bookmarked") {
		t.Errorf("favorite list should embed the grant: %s", w.Body.String())
	}
}

func TestFavoriteHandler_Create_MissingGrantID(t *testing.T) {
	db := testDB(t)
	router := favoriteRouter(db, "auth0|alice")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/favorites", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestFavoriteHandler_Delete_ForeignFavorite(t *testing.T) {
	db := testDB(t)
	db.Create(&models.Grant{CompetitionName: "Contested"})
	db.Create(&models.Favorite{GrantID: 1, AuthID: "auth0|alice"})

	router := favoriteRouter(db, "auth0|mallory")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/favorites/1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("foreign favorite should read as missing, got %d", w.Code)
	}

	var count int64
	db.Model(&models.Favorite{}).Count(&count)
	if count != 1 {
		t.Error("favorite must survive a foreign delete attempt")
	}
}
