package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/balcaohq/platform/internal/middleware"
	"github.com/balcaohq/platform/internal/model"
	"github.com/balcaohq/platform/internal/realtime"
	"github.com/balcaohq/platform/internal/service"
	"github.com/balcaohq/platform/internal/store"
	"github.com/balcaohq/platform/pkg/logger"
)

const (
	testSecret      = "test-secret"
	testEmailDomain = "suporte.example.com"
)

type nopFeed struct{}

func (nopFeed) PublishChange(context.Context, realtime.ChangeEvent) error { return nil }

func setupRouter(t *testing.T) *chi.Mux {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := &logger.Logger{Logger: zap.NewNop()}
	feed := nopFeed{}

	convSvc := service.NewConversationService(db, feed, log)
	transferSvc := service.NewTransferService(db, feed, log)
	tagSvc := service.NewTagService(db, log)
	msgSvc := service.NewMessageService(db, feed, log)
	accountSvc := service.NewAccountService(db, log)

	convHandler := NewConversationHandler(convSvc, transferSvc, tagSvc, log)
	msgHandler := NewMessageHandler(msgSvc, log)
	accountHandler := NewAccountHandler(accountSvc, testEmailDomain, log)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(testSecret))
		r.Route("/conversations", func(r chi.Router) {
			r.Post("/", convHandler.Create)
			r.Get("/", convHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", convHandler.Get)
				r.Patch("/", convHandler.Update)
				r.Post("/messages", msgHandler.Send)
				r.Get("/messages", msgHandler.List)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAccessLevel(model.AccessSupport))
					r.Get("/notes", msgHandler.ListNotes)
					r.Post("/notes", msgHandler.AddNote)
				})
				r.Post("/transfer", convHandler.Transfer)
			})
		})
		r.Route("/accounts", func(r chi.Router) {
			r.Use(middleware.RequireAccessLevel(model.AccessAdmin))
			r.Post("/", accountHandler.Create)
			r.Put("/{id}", accountHandler.Update)
		})
	})
	return r
}

func signToken(t *testing.T, subject string, level model.AccessLevel) string {
	t.Helper()
	claims := middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		AccessLevel: level,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreateConversationRequiresToken(t *testing.T) {
	r := setupRouter(t)

	resp := doRequest(t, r, http.MethodPost, "/api/v1/conversations", "",
		map[string]string{"subject": "hello"})

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestCreateAndGetConversation(t *testing.T) {
	r := setupRouter(t)
	token := signToken(t, "user-1", "")

	resp := doRequest(t, r, http.MethodPost, "/api/v1/conversations", token,
		map[string]string{"subject": "pedido atrasado"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var conv model.Conversation
	if err := json.Unmarshal(resp.Body.Bytes(), &conv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if conv.RequesterID != "user-1" {
		t.Fatalf("requester = %s, want token subject", conv.RequesterID)
	}
	if conv.Status != model.StatusOpen {
		t.Fatalf("status = %s, want open", conv.Status)
	}

	resp = doRequest(t, r, http.MethodGet, "/api/v1/conversations/"+conv.ID, token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestCreateConversationRejectsEmptySubject(t *testing.T) {
	r := setupRouter(t)
	token := signToken(t, "user-1", "")

	resp := doRequest(t, r, http.MethodPost, "/api/v1/conversations", token,
		map[string]string{"subject": ""})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetMissingConversationReturns404(t *testing.T) {
	r := setupRouter(t)
	token := signToken(t, "user-1", "")

	resp := doRequest(t, r, http.MethodGet, "/api/v1/conversations/missing", token, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestTransferWithoutDestinationReturns422(t *testing.T) {
	r := setupRouter(t)
	token := signToken(t, "agent-1", model.AccessSupport)

	resp := doRequest(t, r, http.MethodPost, "/api/v1/conversations", token,
		map[string]string{"subject": "precisa transferir"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: got %d", resp.Code)
	}
	var conv model.Conversation
	if err := json.Unmarshal(resp.Body.Bytes(), &conv); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp = doRequest(t, r, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/transfer", token,
		map[string]string{"reason": "no destination"})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestInternalNotesRejectNonStaff(t *testing.T) {
	r := setupRouter(t)
	userToken := signToken(t, "user-1", "")
	agentToken := signToken(t, "agent-1", model.AccessSupport)

	resp := doRequest(t, r, http.MethodPost, "/api/v1/conversations", userToken,
		map[string]string{"subject": "ajuda"})
	var conv model.Conversation
	if err := json.Unmarshal(resp.Body.Bytes(), &conv); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp = doRequest(t, r, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/notes", agentToken,
		map[string]string{"body": "cliente recorrente"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("staff add note: got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doRequest(t, r, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/notes", userToken,
		map[string]string{"body": "tentando escrever nota"})
	if resp.Code != http.StatusForbidden {
		t.Fatalf("requester add note: got %d, want 403", resp.Code)
	}

	resp = doRequest(t, r, http.MethodGet, "/api/v1/conversations/"+conv.ID+"/notes", userToken, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("requester list notes: got %d, want 403", resp.Code)
	}

	resp = doRequest(t, r, http.MethodGet, "/api/v1/conversations/"+conv.ID+"/notes", agentToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("staff list notes: got %d", resp.Code)
	}
	var notes []model.InternalNote
	if err := json.Unmarshal(resp.Body.Bytes(), &notes); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(notes) != 1 || notes[0].Body != "cliente recorrente" {
		t.Fatalf("notes = %+v, want the single staff note", notes)
	}
}

func TestAccountUpdateRevalidatesEmailDomain(t *testing.T) {
	r := setupRouter(t)
	adminToken := signToken(t, "admin-1", model.AccessAdmin)

	resp := doRequest(t, r, http.MethodPost, "/api/v1/accounts", adminToken, model.AccountRequest{
		UserID:      "user-7",
		Email:       "agente@" + testEmailDomain,
		AccessLevel: model.AccessSupport,
		Active:      true,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", resp.Code, resp.Body.String())
	}
	var account model.SupportAccount
	if err := json.Unmarshal(resp.Body.Bytes(), &account); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp = doRequest(t, r, http.MethodPut, "/api/v1/accounts/"+account.ID, adminToken, model.AccountRequest{
		UserID:      "user-7",
		Email:       "agente@gmail.com",
		AccessLevel: model.AccessSupport,
		Active:      true,
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("foreign-domain update: got %d, want 400", resp.Code)
	}

	resp = doRequest(t, r, http.MethodPut, "/api/v1/accounts/"+account.ID, adminToken, model.AccountRequest{
		UserID:      "user-7",
		Email:       "agente.novo@" + testEmailDomain,
		AccessLevel: model.AccessSupervisor,
		Active:      true,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("same-domain update: got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestStaffMessageFlow(t *testing.T) {
	r := setupRouter(t)
	userToken := signToken(t, "user-1", "")
	agentToken := signToken(t, "agent-1", model.AccessSupport)

	resp := doRequest(t, r, http.MethodPost, "/api/v1/conversations", userToken,
		map[string]string{"subject": "ajuda"})
	var conv model.Conversation
	if err := json.Unmarshal(resp.Body.Bytes(), &conv); err != nil {
		t.Fatalf("decode: %v", err)
	}

	resp = doRequest(t, r, http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages", agentToken,
		map[string]string{"body": "como posso ajudar?"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("send: got %d: %s", resp.Code, resp.Body.String())
	}
	var msg model.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !msg.IsStaff {
		t.Fatal("agent message must be flagged staff")
	}

	resp = doRequest(t, r, http.MethodGet, "/api/v1/conversations/"+conv.ID, userToken, nil)
	if err := json.Unmarshal(resp.Body.Bytes(), &conv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if conv.FirstResponseAt == nil {
		t.Fatal("staff reply must mark first response")
	}
}
