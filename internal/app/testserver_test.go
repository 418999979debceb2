package app_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"studyhub_backend/internal/app"
	"studyhub_backend/internal/config"
	"studyhub_backend/internal/models"
	"studyhub_backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestServer - роутер приложения на httptest с in-memory БД и подмененными внешними сервисами
type TestServer struct {
	Server  *httptest.Server
	DB      *gorm.DB
	Gateway *testutil.FakeGateway
	Storage *testutil.FakeStorage
	Mailer  *testutil.RecordingMailer
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.JWT.Secret = "test-jwt-secret"
	cfg.Server.AllowedOrigins = []string{"http://localhost:3000"}

	ts := &TestServer{
		DB:      testutil.NewTestDB(t),
		Gateway: testutil.NewFakeGateway(),
		Storage: testutil.NewFakeStorage(),
		Mailer:  &testutil.RecordingMailer{},
	}
	router := app.SetupRouter(cfg, ts.DB, &app.Dependencies{
		Storage: ts.Storage,
		Gateway: ts.Gateway,
		Mailer:  ts.Mailer,
	})
	ts.Server = httptest.NewServer(router)
	t.Cleanup(ts.Server.Close)

	return ts
}

// SendRequest отправляет JSON запрос, token - access токен для заголовка Authorization
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "Ошибка кодирования JSON для запроса")
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return ts.Do(t, req)
}

// SendWebhook отправляет сырое тело с подписью
func (ts *TestServer) SendWebhook(t *testing.T, body []byte, signature, eventID string) (*http.Response, string) {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/webhook/razorpay", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Razorpay-Signature", signature)
	if eventID != "" {
		req.Header.Set("X-Razorpay-Event-Id", eventID)
	}
	return ts.Do(t, req)
}

// SendUpload - multipart форма преподавателя
func (ts *TestServer) SendUpload(t *testing.T, token string, fields map[string]string, filename string, content []byte) (*http.Response, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/teacher/uploads", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return ts.Do(t, req)
}

func (ts *TestServer) Do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "Ошибка выполнения HTTP-запроса")
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(respBody)
}

// Signup регистрирует студента и возвращает access токен
func (ts *TestServer) Signup(t *testing.T, email string) string {
	t.Helper()

	resp, body := ts.SendRequest(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":     email,
		"password":  "password123",
		"full_name": "Test Student",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	return decode(t, body)["access_token"].(string)
}

// LoginAs создает пользователя с ролью и логинится
func (ts *TestServer) LoginAs(t *testing.T, email string, role models.UserRole) string {
	t.Helper()

	testutil.CreateUser(t, ts.DB, email, "password123", role)
	resp, body := ts.SendRequest(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	return decode(t, body)["access_token"].(string)
}

func decode(t *testing.T, body string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &out), body)
	return out
}
