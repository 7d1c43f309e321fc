package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/langleague/internal/db"
)

func TestUpdateSectionProgressReturnsPercentage(t *testing.T) {
	api, gdb := setupTestAPI(t)
	teacher := createTestActor(t, gdb, "teacher", db.RoleTeacher)
	student := createTestActor(t, gdb, "student", db.RoleStudent)
	_, unit := createTestUnit(t, gdb, teacher)

	params := gin.Params{idParam("unitId", unit.ID), {Key: "sectionType", Value: "vocabulary"}}
	w := serveJSON(t, api.UpdateSectionProgress, student, http.MethodPost, params, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	body := decodeBody(t, w)
	if body["completionPercentage"].(float64) != 33 {
		t.Fatalf("expected 33 percent, got %v", body["completionPercentage"])
	}
	if body["isVocabularyFinished"] != true || body["isCompleted"] != false {
		t.Fatalf("unexpected section flags: %v", body)
	}
}

func TestUpdateSectionProgressRejectsUnknownSection(t *testing.T) {
	api, gdb := setupTestAPI(t)
	teacher := createTestActor(t, gdb, "teacher", db.RoleTeacher)
	student := createTestActor(t, gdb, "student", db.RoleStudent)
	_, unit := createTestUnit(t, gdb, teacher)

	params := gin.Params{idParam("unitId", unit.ID), {Key: "sectionType", Value: "speaking"}}
	w := serveJSON(t, api.UpdateSectionProgress, student, http.MethodPost, params, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	gdb.Model(&db.Progress{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no progress rows, got %d", count)
	}
}

func TestUpdateSectionProgressMissingUnit(t *testing.T) {
	api, gdb := setupTestAPI(t)
	student := createTestActor(t, gdb, "student", db.RoleStudent)

	params := gin.Params{idParam("unitId", 999), {Key: "sectionType", Value: "GRAMMAR"}}
	w := serveJSON(t, api.UpdateSectionProgress, student, http.MethodPost, params, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestToggleBookmarkFlips(t *testing.T) {
	api, gdb := setupTestAPI(t)
	teacher := createTestActor(t, gdb, "teacher", db.RoleTeacher)
	student := createTestActor(t, gdb, "student", db.RoleStudent)
	_, unit := createTestUnit(t, gdb, teacher)

	params := gin.Params{idParam("unitId", unit.ID)}
	first := decodeBody(t, serveJSON(t, api.ToggleBookmark, student, http.MethodPost, params, nil))
	if first["isBookmarked"] != true {
		t.Fatalf("expected bookmark on first toggle, got %v", first["isBookmarked"])
	}
	second := decodeBody(t, serveJSON(t, api.ToggleBookmark, student, http.MethodPost, params, nil))
	if second["isBookmarked"] != false {
		t.Fatalf("expected bookmark off on second toggle, got %v", second["isBookmarked"])
	}
}

func TestDeleteProgressRequiresAdmin(t *testing.T) {
	api, gdb := setupTestAPI(t)
	teacher := createTestActor(t, gdb, "teacher", db.RoleTeacher)
	student := createTestActor(t, gdb, "student", db.RoleStudent)
	admin := createTestActor(t, gdb, "admin", db.RoleAdmin)
	_, unit := createTestUnit(t, gdb, teacher)

	progress := decodeBody(t, serveJSON(t, api.TrackUnitAccess, student, http.MethodPost, gin.Params{idParam("unitId", unit.ID)}, nil))
	id := uint(progress["id"].(float64))

	w := serveJSON(t, api.DeleteProgress, student, http.MethodDelete, gin.Params{idParam("id", id)}, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for student, got %d", w.Code)
	}

	w = serveJSON(t, api.DeleteProgress, admin, http.MethodDelete, gin.Params{idParam("id", id)}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d: %s", w.Code, w.Body.String())
	}

	w = serveJSON(t, api.DeleteProgress, admin, http.MethodDelete, gin.Params{idParam("id", id)}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", w.Code)
	}
}

func TestGetUnitProgressNotFound(t *testing.T) {
	api, gdb := setupTestAPI(t)
	teacher := createTestActor(t, gdb, "teacher", db.RoleTeacher)
	student := createTestActor(t, gdb, "student", db.RoleStudent)
	_, unit := createTestUnit(t, gdb, teacher)

	w := serveJSON(t, api.GetUnitProgress, student, http.MethodGet, gin.Params{idParam("unitId", unit.ID)}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any progress, got %d", w.Code)
	}
}
