package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/langleague/internal/db"
	"github.com/langleague/internal/handler"
	"gorm.io/gorm/logger"
)

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
	token   string
}

func newLocalClient(h http.Handler, withJar bool) *localClient {
	var jar http.CookieJar
	if withJar {
		if j, err := cookiejar.New(nil); err == nil {
			jar = j
		}
	}
	return &localClient{handler: h, jar: jar}
}

func (c *localClient) do(t *testing.T, method, path string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body io.Reader = http.NoBody
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "http://langleague.test"+path, body)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}

	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}

	var out map[string]interface{}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("failed to decode %s %s: %v", method, path, err)
		}
	}
	return w.Code, out
}

func setupTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := db.Open(db.Options{
		Driver:   db.DriverSQLite,
		Path:     fmt.Sprintf("file:router_%s?mode=memory&cache=shared", name),
		LogLevel: logger.Silent,
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := db.EnsureUser(gdb, "teacher", "teacher123", db.RoleTeacher); err != nil {
		t.Fatalf("failed to seed teacher: %v", err)
	}
	if err := db.EnsureUser(gdb, "admin", "admin123", db.RoleAdmin); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	uploadDir := t.TempDir()
	api := handler.NewAPI(gdb, handler.Options{
		JWTSecret: "test-secret",
		UploadDir: uploadDir,
		UploadURL: "/static/uploads",
		Location:  time.UTC,
	})
	r := SetupRouter(api, Options{
		SessionSecret:    "test-secret",
		UploadDir:        uploadDir,
		UploadURLPath:    "/static/uploads",
		CORSAllowOrigins: []string{"*"},
	})
	return r, uploadDir
}

func login(t *testing.T, client *localClient, username, password string) {
	t.Helper()

	code, body := client.do(t, http.MethodPost, "/api/authenticate", gin.H{"username": username, "password": password})
	if code != http.StatusOK {
		t.Fatalf("login %s failed with %d: %v", username, code, body)
	}
	token, _ := body["id_token"].(string)
	if token == "" {
		t.Fatalf("expected id_token for %s", username)
	}
	if client.jar == nil {
		client.token = token
	}
}

func TestSetupRouterServesUploads(t *testing.T) {
	r, uploadDir := setupTestRouter(t)

	fileContent := []byte("hello uploads")
	if err := os.WriteFile(filepath.Join(uploadDir, "example.txt"), fileContent, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/static/uploads/example.txt", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if rr.Body.String() != string(fileContent) {
		t.Fatalf("unexpected body, got %q", rr.Body.String())
	}
}

func TestPublicEndpoints(t *testing.T) {
	r, _ := setupTestRouter(t)
	client := newLocalClient(r, false)

	if code, body := client.do(t, http.MethodGet, "/ping", nil); code != http.StatusOK || body["message"] != "pong" {
		t.Fatalf("unexpected ping response %d: %v", code, body)
	}
	if code, body := client.do(t, http.MethodGet, "/healthz", nil); code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health response %d: %v", code, body)
	}
	if code, _ := client.do(t, http.MethodGet, "/api/books/public", nil); code != http.StatusOK {
		t.Fatalf("expected public books to be reachable, got %d", code)
	}
	if code, _ := client.do(t, http.MethodGet, "/api/account", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credentials, got %d", code)
	}

	client.token = "not-a-token"
	if code, _ := client.do(t, http.MethodGet, "/api/account", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", code)
	}
}

func TestRegisterRejectsDuplicatesAndShortPasswords(t *testing.T) {
	r, _ := setupTestRouter(t)
	client := newLocalClient(r, false)

	if code, _ := client.do(t, http.MethodPost, "/api/register", gin.H{"username": "amy", "password": "123"}); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", code)
	}
	if code, _ := client.do(t, http.MethodPost, "/api/register", gin.H{"username": "amy", "password": "secret123"}); code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", code)
	}
	if code, _ := client.do(t, http.MethodPost, "/api/register", gin.H{"username": "amy", "password": "secret123"}); code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", code)
	}
	if code, _ := client.do(t, http.MethodPost, "/api/authenticate", gin.H{"username": "amy", "password": "wrong-pass"}); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", code)
	}
}

func TestLearningFlow(t *testing.T) {
	r, _ := setupTestRouter(t)

	teacher := newLocalClient(r, false)
	login(t, teacher, "teacher", "teacher123")

	code, book := teacher.do(t, http.MethodPost, "/api/books", gin.H{"title": "English Starter", "isPublic": true})
	if code != http.StatusCreated {
		t.Fatalf("create book failed with %d: %v", code, book)
	}
	bookID := uint(book["id"].(float64))

	code, unit := teacher.do(t, http.MethodPost, fmt.Sprintf("/api/books/%d/units", bookID), gin.H{"title": "Greetings"})
	if code != http.StatusCreated {
		t.Fatalf("create unit failed with %d: %v", code, unit)
	}
	unitID := uint(unit["id"].(float64))

	// 学员通过会话 cookie 访问
	student := newLocalClient(r, true)
	if code, _ := student.do(t, http.MethodPost, "/api/register", gin.H{"username": "sam", "password": "secret123"}); code != http.StatusCreated {
		t.Fatalf("register failed with %d", code)
	}
	login(t, student, "sam", "secret123")

	if code, _ := student.do(t, http.MethodPost, "/api/books", gin.H{"title": "Nope"}); code != http.StatusForbidden {
		t.Fatalf("expected students to be blocked from authoring, got %d", code)
	}
	if code, _ := student.do(t, http.MethodPost, fmt.Sprintf("/api/enrollments/books/%d", bookID), nil); code != http.StatusOK {
		t.Fatalf("enroll failed with %d", code)
	}

	for _, section := range []string{"vocabulary", "grammar", "exercise"} {
		code, progress := student.do(t, http.MethodPost, fmt.Sprintf("/api/progresses/update-section/%d/%s", unitID, section), nil)
		if code != http.StatusOK {
			t.Fatalf("update %s failed with %d: %v", section, code, progress)
		}
		if section == "exercise" && progress["isCompleted"] != true {
			t.Fatalf("expected unit to be completed after all sections: %v", progress)
		}
	}

	code, recent := student.do(t, http.MethodGet, "/api/progresses/recent", nil)
	if code != http.StatusOK || uint(recent["unitId"].(float64)) != unitID {
		t.Fatalf("unexpected recent progress %d: %v", code, recent)
	}

	code, streak := student.do(t, http.MethodPost, "/api/user-profiles/sync-streak", nil)
	if code != http.StatusOK || streak["streakCount"].(float64) != 1 {
		t.Fatalf("unexpected streak response %d: %v", code, streak)
	}

	if code, _ := student.do(t, http.MethodGet, "/api/progresses/completion-rate", nil); code != http.StatusForbidden {
		t.Fatalf("expected completion rate to be admin-only, got %d", code)
	}

	admin := newLocalClient(r, false)
	login(t, admin, "admin", "admin123")
	code, rate := admin.do(t, http.MethodGet, "/api/progresses/completion-rate", nil)
	if code != http.StatusOK || rate["completionRate"].(float64) != 100 {
		t.Fatalf("unexpected completion rate %d: %v", code, rate)
	}

	code, dashboard := teacher.do(t, http.MethodGet, "/api/dashboard/teacher", nil)
	if code != http.StatusOK || dashboard["totalStudents"].(float64) != 1 {
		t.Fatalf("unexpected teacher dashboard %d: %v", code, dashboard)
	}

	if code, _ := student.do(t, http.MethodPost, "/api/logout", nil); code != http.StatusOK {
		t.Fatalf("logout failed with %d", code)
	}
	if code, _ := student.do(t, http.MethodGet, "/api/account", nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", code)
	}
}
