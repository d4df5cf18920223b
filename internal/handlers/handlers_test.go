package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"dadsadvice/internal/database"
	"dadsadvice/internal/repository"
	"dadsadvice/internal/security"
	"dadsadvice/internal/service"
)

const testMediaBase = "https://cdn.example/media/advice-media"

type testServer struct {
	t       *testing.T
	handler http.Handler
	tokens  *security.TokenIssuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "handlers.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := zap.NewNop()
	tokens := security.NewTokenIssuer("test-secret")
	authService := service.NewAuthService(repository.NewUserRepository(db), tokens, 30*time.Minute, nil, logger)
	adviceService := service.NewAdviceService(repository.NewAdviceRepository(db), logger)
	mediaService := service.NewMediaService(nil, testMediaBase, 1024, logger)

	reg := prometheus.NewRegistry()
	router := NewRouter(RouterConfig{
		Auth:           NewAuthHandler(authService, logger),
		Advice:         NewAdviceHandler(adviceService, logger),
		Media:          NewMediaHandler(mediaService, logger),
		Home:           NewHomeHandler(db, logger),
		Middleware:     NewMiddleware(authService, logger),
		Metrics:        NewMetrics(reg),
		Gatherer:       reg,
		AllowedOrigins: []string{"http://localhost:3000", "https://*.vercel.app"},
	})

	return &testServer{t: t, handler: router, tokens: tokens}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(id, role, fatherID string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/auth/register", "", map[string]string{
		"user_id": id, "password": "secret1", "user_type": role, "name": "Name " + id, "father_id": fatherID,
	})
	if rec.Code != http.StatusOK {
		s.t.Fatalf("register %s: status %d body %s", id, rec.Code, rec.Body.String())
	}
	var resp TokenResponse
	decode(s.t, rec, &resp)
	if resp.TokenType != "bearer" || resp.AccessToken == "" {
		s.t.Fatalf("unexpected token response %+v", resp)
	}
	return resp.AccessToken
}

func (s *testServer) createAdvice(token string, body map[string]interface{}) AdviceResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/advices", token, body)
	if rec.Code != http.StatusOK {
		s.t.Fatalf("create advice: status %d body %s", rec.Code, rec.Body.String())
	}
	var advice AdviceResponse
	decode(s.t, rec, &advice)
	return advice
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func TestHome(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(http.MethodGet, "/", "", nil)
	expectStatus(t, rec, http.StatusOK)

	var resp MessageResponse
	decode(t, rec, &resp)
	if resp.Message == "" {
		t.Error("expected a welcome message")
	}
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)
	expectStatus(t, srv.do(http.MethodGet, "/healthz", "", nil), http.StatusOK)

	rec := srv.do(http.MethodGet, "/metrics", "", nil)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `http_requests_total{method="GET",route="/healthz",status="200"} 1`) {
		t.Errorf("metrics missing healthz sample:\n%s", rec.Body.String())
	}
}

func TestFatherChildScenario(t *testing.T) {
	srv := newTestServer(t)
	f1 := srv.register("F1", "father", "")
	srv.register("F2", "father", "")
	c1 := srv.register("C1", "child", "F1")
	c2 := srv.register("C2", "child", "F2")

	advice := srv.createAdvice(f1, map[string]interface{}{"category": "life", "target_age": 20, "content": "msg"})
	if advice.AuthorID != "F1" || advice.IsRead || advice.IsFavorite || advice.UnlockType != "age" {
		t.Errorf("unexpected advice %+v", advice)
	}

	var list []AdviceResponse
	rec := srv.do(http.MethodGet, "/advices", c1, nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &list)
	if len(list) != 1 || list[0].ID != advice.ID {
		t.Errorf("C1 should see F1's advice, got %+v", list)
	}

	rec = srv.do(http.MethodGet, "/advices", c2, nil)
	expectStatus(t, rec, http.StatusOK)
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("C2 should get an empty list, got %s", rec.Body.String())
	}

	expectStatus(t, srv.do(http.MethodGet, "/advices/"+advice.ID, c1, nil), http.StatusOK)
	expectStatus(t, srv.do(http.MethodGet, "/advices/"+advice.ID, c2, nil), http.StatusForbidden)
	expectStatus(t, srv.do(http.MethodGet, "/advices/does-not-exist", c1, nil), http.StatusNotFound)
}

func TestListFilters(t *testing.T) {
	srv := newTestServer(t)
	f1 := srv.register("F1", "father", "")
	srv.createAdvice(f1, map[string]interface{}{"category": "life", "target_age": 20, "content": "a"})
	srv.createAdvice(f1, map[string]interface{}{"category": "money", "target_age": 30, "content": "b"})

	var list []AdviceResponse
	rec := srv.do(http.MethodGet, "/advices?category=money", f1, nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &list)
	if len(list) != 1 || list[0].Content != "b" {
		t.Errorf("category filter: %+v", list)
	}

	rec = srv.do(http.MethodGet, "/advices?target_age=20", f1, nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &list)
	if len(list) != 1 || list[0].Content != "a" {
		t.Errorf("target_age filter: %+v", list)
	}

	expectStatus(t, srv.do(http.MethodGet, "/advices?target_age=twenty", f1, nil), http.StatusBadRequest)
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t)
	srv.register("F1", "father", "")
	hourAgo := func() time.Time { return time.Now().Add(-time.Hour) }
	expired, _ := srv.tokens.WithClock(hourAgo).Issue("F1", time.Minute)
	unknown, _ := srv.tokens.Issue("ghost", time.Minute)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "garbage token", header: "Bearer not-a-token"},
		{name: "expired token", header: "Bearer " + expired},
		{name: "unknown subject", header: "Bearer " + unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.handler.ServeHTTP(rec, req)

			expectStatus(t, rec, http.StatusUnauthorized)
			if rec.Header().Get("WWW-Authenticate") != "Bearer" {
				t.Error("missing WWW-Authenticate: Bearer")
			}
			var body ErrorResponse
			decode(t, rec, &body)
			if body.Detail == "" {
				t.Error("expected a detail message")
			}
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	srv := newTestServer(t)
	srv.register("dad@example.com", "father", "")
	srv.register("kid", "child", "dad@example.com")

	rec := srv.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "dad@example.com", "password": "secret1"})
	expectStatus(t, rec, http.StatusOK)
	var token TokenResponse
	decode(t, rec, &token)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "bearer "+token.AccessToken)
	me := httptest.NewRecorder()
	srv.handler.ServeHTTP(me, req)
	expectStatus(t, me, http.StatusOK)

	var user UserResponse
	decode(t, me, &user)
	if user.ID != "dad@example.com" || user.UserID != user.ID || user.UserType != "father" || user.FatherID != nil {
		t.Errorf("unexpected user %+v", user)
	}

	rec = srv.do(http.MethodPost, "/auth/login", "", map[string]string{"user_id": "kid", "password": "nope"})
	expectStatus(t, rec, http.StatusUnauthorized)
	rec = srv.do(http.MethodPost, "/auth/login", "", map[string]string{"user_id": "ghost", "password": "secret1"})
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestRegisterRejections(t *testing.T) {
	srv := newTestServer(t)
	srv.register("F1", "father", "")
	srv.register("C1", "child", "F1")

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "duplicate id", body: map[string]string{"user_id": "F1", "password": "secret1", "user_type": "father", "name": "Again"}},
		{name: "unknown father", body: map[string]string{"user_id": "C2", "password": "secret1", "user_type": "child", "name": "Kid", "father_id": "F9"}},
		{name: "father id of a child", body: map[string]string{"user_id": "C3", "password": "secret1", "user_type": "child", "name": "Kid", "father_id": "C1"}},
		{name: "bad role", body: map[string]string{"user_id": "M1", "password": "secret1", "user_type": "mother", "name": "Mom"}},
		{name: "missing password", body: map[string]string{"user_id": "F3", "user_type": "father", "name": "Dad"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectStatus(t, srv.do(http.MethodPost, "/auth/register", "", tt.body), http.StatusBadRequest)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusBadRequest)
}

func TestAdviceOwnership(t *testing.T) {
	srv := newTestServer(t)
	f1 := srv.register("F1", "father", "")
	f2 := srv.register("F2", "father", "")
	c1 := srv.register("C1", "child", "F1")

	advice := srv.createAdvice(f1, map[string]interface{}{"category": "life", "target_age": 20, "content": "msg"})
	update := map[string]interface{}{"category": "work", "target_age": 30, "content": "new"}

	expectStatus(t, srv.do(http.MethodPost, "/advices", c1, update), http.StatusForbidden)

	for name, token := range map[string]string{"other father": f2, "child": c1} {
		t.Run(name, func(t *testing.T) {
			expectStatus(t, srv.do(http.MethodPut, "/advices/"+advice.ID, token, update), http.StatusForbidden)
			expectStatus(t, srv.do(http.MethodDelete, "/advices/"+advice.ID, token, nil), http.StatusForbidden)
		})
	}

	rec := srv.do(http.MethodPut, "/advices/"+advice.ID, f1, update)
	expectStatus(t, rec, http.StatusOK)
	var updated AdviceResponse
	decode(t, rec, &updated)
	if updated.Category != "work" || updated.TargetAge != 30 || updated.Content != "new" {
		t.Errorf("unexpected update %+v", updated)
	}

	expectStatus(t, srv.do(http.MethodPut, "/advices/"+advice.ID, f1, map[string]interface{}{"category": "x", "content": "y"}), http.StatusBadRequest)

	expectStatus(t, srv.do(http.MethodDelete, "/advices/"+advice.ID, f1, nil), http.StatusOK)
	expectStatus(t, srv.do(http.MethodGet, "/advices/"+advice.ID, f1, nil), http.StatusNotFound)
}

func TestReadFavoriteAndStats(t *testing.T) {
	srv := newTestServer(t)
	f1 := srv.register("F1", "father", "")
	c1 := srv.register("C1", "child", "F1")
	young := srv.createAdvice(f1, map[string]interface{}{"category": "life", "target_age": 10, "content": "a"})
	srv.createAdvice(f1, map[string]interface{}{"category": "life", "target_age": 40, "content": "b"})

	expectStatus(t, srv.do(http.MethodPut, "/advices/"+young.ID+"/read", c1, nil), http.StatusOK)
	expectStatus(t, srv.do(http.MethodPut, "/advices/"+young.ID+"/favorite", f1, nil), http.StatusForbidden)

	var fav FavoriteResponse
	rec := srv.do(http.MethodPut, "/advices/"+young.ID+"/favorite", c1, nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &fav)
	if !fav.IsFavorite || fav.Message == "" {
		t.Errorf("first toggle: %+v", fav)
	}

	var fatherStats FatherStatsResponse
	rec = srv.do(http.MethodGet, "/stats", f1, nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &fatherStats)
	if fatherStats != (FatherStatsResponse{TotalAdvices: 2, ReadAdvices: 1, UnreadAdvices: 1}) {
		t.Errorf("father stats %+v", fatherStats)
	}

	var childStats ChildStatsResponse
	rec = srv.do(http.MethodGet, "/stats", c1, nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &childStats)
	if childStats != (ChildStatsResponse{AvailableAdvices: 1, FutureAdvices: 1, FavoriteAdvices: 1, CurrentAge: 25}) {
		t.Errorf("child stats %+v", childStats)
	}

	rec = srv.do(http.MethodPut, "/advices/"+young.ID+"/favorite", c1, nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &fav)
	if fav.IsFavorite {
		t.Error("second toggle must restore the original value")
	}

	var got AdviceResponse
	rec = srv.do(http.MethodGet, "/advices/"+young.ID, c1, nil)
	decode(t, rec, &got)
	if !got.IsRead || got.IsFavorite {
		t.Errorf("unexpected flags %+v", got)
	}
}

func TestPasswordUnlock(t *testing.T) {
	srv := newTestServer(t)
	f1 := srv.register("F1", "father", "")
	c1 := srv.register("C1", "child", "F1")

	rec := srv.do(http.MethodPost, "/advices", f1, map[string]interface{}{
		"category": "life", "target_age": 18, "content": "secret", "unlock_type": "password", "password": "open-sesame",
	})
	expectStatus(t, rec, http.StatusOK)
	if strings.Contains(rec.Body.String(), `"password":`) || strings.Contains(rec.Body.String(), "$2a$") {
		t.Errorf("advice response leaks the password: %s", rec.Body.String())
	}
	var advice AdviceResponse
	decode(t, rec, &advice)

	path := fmt.Sprintf("/advices/%s/unlock", advice.ID)
	expectStatus(t, srv.do(http.MethodPost, path, c1, map[string]string{"password": "wrong"}), http.StatusForbidden)

	rec = srv.do(http.MethodPost, path, c1, map[string]string{"password": "open-sesame"})
	expectStatus(t, rec, http.StatusOK)
	var opened AdviceResponse
	decode(t, rec, &opened)
	if !opened.IsRead || opened.UnlockType != "password" {
		t.Errorf("unexpected unlocked advice %+v", opened)
	}
}

func multipartUpload(t *testing.T, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload-media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadMedia(t *testing.T) {
	srv := newTestServer(t)
	token := srv.register("F1", "father", "")

	tests := []struct {
		name        string
		filename    string
		contentType string
		size        int
		wantStatus  int
		wantType    string
	}{
		{name: "image", filename: "photo.JPG", contentType: "image/jpeg", size: 16, wantStatus: http.StatusOK, wantType: "image"},
		{name: "video", filename: "clip.mp4", contentType: "video/mp4", size: 16, wantStatus: http.StatusOK, wantType: "video"},
		{name: "plain text", filename: "notes.txt", contentType: "text/plain", size: 16, wantStatus: http.StatusBadRequest},
		{name: "too large", filename: "big.png", contentType: "image/png", size: 2048, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := multipartUpload(t, tt.filename, tt.contentType, bytes.Repeat([]byte("x"), tt.size))
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			srv.handler.ServeHTTP(rec, req)

			expectStatus(t, rec, tt.wantStatus)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp MediaUploadResponse
			decode(t, rec, &resp)
			if resp.Type != tt.wantType || !strings.HasPrefix(resp.URL, testMediaBase+"/") {
				t.Errorf("unexpected upload response %+v", resp)
			}
		})
	}

	req := multipartUpload(t, "a.png", "image/png", []byte("x"))
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/advices", nil)
	req.Header.Set("Origin", "https://preview-123.vercel.app")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://preview-123.vercel.app" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
