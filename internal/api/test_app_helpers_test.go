package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/takahashi-jo/care-emr/internal/db"
	"github.com/takahashi-jo/care-emr/internal/i18n"
	"github.com/takahashi-jo/care-emr/internal/models"
	"github.com/takahashi-jo/care-emr/internal/services"
	"gorm.io/gorm"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	_, testFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("resolve current test file path")
	}
	apiDir := filepath.Dir(testFile)
	internalDir := filepath.Dir(apiDir)
	localesDir := filepath.Join(internalDir, "i18n", "locales")
	databasePath := filepath.Join(t.TempDir(), "care-emr-api-test.db")

	database, err := db.OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	i18nManager, err := i18n.NewManager(i18n.LangJA, localesDir)
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	repositories := db.NewRepositories(database)
	handler := NewHandler(Dependencies{
		Auth:      services.NewAuthService(repositories.Users),
		Residents: services.NewResidentService(repositories.Residents, time.UTC),
		Records:   services.NewMedicalRecordService(repositories.MedicalRecords, time.UTC),
		Export:    services.NewExportService(repositories.Residents),
		I18n:      i18nManager,
		SecretKey: []byte("test-secret-key"),
		Location:  time.UTC,
	})

	app := fiber.New()
	RegisterRoutes(app, handler)
	return app, database
}

func createTestUser(t *testing.T, database *gorm.DB, email string, password string, role string) models.User {
	t.Helper()

	user := models.User{
		Email:       email,
		DisplayName: "テスト職員",
		Role:        role,
	}
	if err := user.SetPassword(password); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func loginAndExtractToken(t *testing.T, app *fiber.App, email string, password string) string {
	t.Helper()

	response := performJSON(t, app, http.MethodPost, "/api/auth/login", fiber.Map{
		"email":    email,
		"password": password,
	}, "")
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected login status 200, got %d", response.StatusCode)
	}

	var body struct {
		Token string `json:"token"`
	}
	decodeJSONBody(t, response, &body)
	if body.Token == "" {
		t.Fatal("token is missing in login response")
	}
	return body.Token
}

func performJSON(t *testing.T, app *fiber.App, method string, target string, payload any, token string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, target, body)
	if payload != nil {
		request.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		request.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, target, err)
	}
	return response
}

func decodeJSONBody(t *testing.T, response *http.Response, target any) {
	t.Helper()

	content, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(content, target); err != nil {
		t.Fatalf("decode response body %q: %v", content, err)
	}
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeErrorBody(t *testing.T, response *http.Response) errorEnvelope {
	t.Helper()

	envelope := errorEnvelope{}
	decodeJSONBody(t, response, &envelope)
	return envelope
}
