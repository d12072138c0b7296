package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/opinionboard/opinion-service/internal/adapters/memory"
	"github.com/opinionboard/opinion-service/internal/application"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	svc := application.NewService(application.Dependencies{
		Posts:  memory.NewPostStore(),
		Outbox: memory.NewOutboxStore(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return NewRouter(NewHandler(svc), slog.New(slog.NewTextHandler(io.Discard, nil)), "")
}

func doJSON(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func createOpinionHTTP(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/opinions/",
		`{"message":"hello","username":"alice","sessionId":"s1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d body %s", rec.Code, rec.Body.String())
	}
	postID, _ := decodeBody(t, rec)["postId"].(string)
	if postID == "" {
		t.Fatalf("create: missing postId in %s", rec.Body.String())
	}
	return postID
}

func assertCORS(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Fatalf("expected allow-credentials true, got %q", got)
	}
}

func TestPreflightShortCircuits(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodOptions, "/api/opinions/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for preflight, got %d", rec.Code)
	}
	assertCORS(t, rec)
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "PATCH") {
		t.Fatalf("allow-methods missing PATCH: %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

func TestCreateOpinion(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/opinions/",
		`{"message":"hello","username":"alice","sessionId":"s1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body %s", rec.Code, rec.Body.String())
	}
	assertCORS(t, rec)
	payload := decodeBody(t, rec)
	if payload["message"] != "hello" || payload["username"] != "alice" {
		t.Fatalf("unexpected body: %v", payload)
	}
	if payload["likes"].(float64) != 0 || payload["dislikes"].(float64) != 0 {
		t.Fatalf("expected zeroed counters: %v", payload)
	}
}

func TestCreateOpinionRejectsBlankMessage(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/opinions/",
		`{"message":"   ","username":"alice","sessionId":"s1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	assertCORS(t, rec)
	if msg, _ := decodeBody(t, rec)["message"].(string); msg == "" {
		t.Fatalf("error body must carry a message: %s", rec.Body.String())
	}
}

func TestCreateOpinionRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/opinions/", `{"message":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed json, got %d", rec.Code)
	}
}

func TestVoteViaActionParam(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	postID := createOpinionHTTP(t, router)

	body := `{"postId":"` + postID + `","username":"bob"}`
	rec := doJSON(t, router, http.MethodPut, "/api/opinions/?action=like", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", rec.Code, rec.Body.String())
	}
	assertCORS(t, rec)
	payload := decodeBody(t, rec)
	if payload["likes"].(float64) != 1 || payload["dislikes"].(float64) != 0 {
		t.Fatalf("expected likes=1 dislikes=0, got %v", payload)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/opinions/?action=like", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("re-vote: expected 200, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["likes"].(float64); got != 1 {
		t.Fatalf("re-vote must not double count, got likes=%v", got)
	}

	rec = doJSON(t, router, http.MethodPut, "/api/opinions/?action=dislike", body)
	payload = decodeBody(t, rec)
	if payload["likes"].(float64) != 1 || payload["dislikes"].(float64) != 1 {
		t.Fatalf("expected independent sets, got %v", payload)
	}
}

func TestVoteUnknownPostReturns404(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPut, "/api/opinions/?action=like",
		`{"postId":"missing","username":"bob"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body %s", rec.Code, rec.Body.String())
	}
	assertCORS(t, rec)
	if got, _ := decodeBody(t, rec)["message"].(string); got != "Post not found" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestUnknownActionReturns400(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPut, "/api/opinions/?action=boost",
		`{"postId":"x","username":"bob"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestEditViaPatch(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	postID := createOpinionHTTP(t, router)

	rec := doJSON(t, router, http.MethodPatch, "/api/opinions/",
		`{"postId":"`+postID+`","message":"updated","likes":3}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	if payload["message"] != "updated" || payload["likes"].(float64) != 3 {
		t.Fatalf("unexpected body: %v", payload)
	}
}

func TestEditRejectsNegativeCounts(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	postID := createOpinionHTTP(t, router)

	rec := doJSON(t, router, http.MethodPut, "/api/opinions/",
		`{"postId":"`+postID+`","likes":-2}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", rec.Code, rec.Body.String())
	}
}

func TestAddCommentViaActionParam(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	postID := createOpinionHTTP(t, router)

	rec := doJSON(t, router, http.MethodPut, "/api/opinions/?action=comment",
		`{"postId":"`+postID+`","username":"bob","comment":"well said"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	comments, ok := payload["comments"].([]any)
	if !ok || len(comments) != 1 {
		t.Fatalf("expected one comment, got %v", payload["comments"])
	}
	comment := comments[0].(map[string]any)
	if comment["username"] != "bob" || comment["comment"] != "well said" {
		t.Fatalf("unexpected comment: %v", comment)
	}
}

func TestGetOpinionByID(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	postID := createOpinionHTTP(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/opinions/"+postID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["postId"]; got != postID {
		t.Fatalf("expected postId %q, got %v", postID, got)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/opinions/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestUnsupportedMethodReturns405(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec := doJSON(t, router, method, "/api/opinions/", "")
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: expected 405, got %d", method, rec.Code)
		}
		assertCORS(t, rec)
		if got, _ := decodeBody(t, rec)["message"].(string); got != "Method Not Allowed" {
			t.Fatalf("%s: unexpected message %q", method, got)
		}
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, router, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
