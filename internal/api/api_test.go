package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/starford/trakker/internal/catalog"
	"github.com/starford/trakker/internal/schema"
	"github.com/starford/trakker/internal/sse"
	"github.com/starford/trakker/internal/testutil"
)

const testSecret = "test-secret"

// testEnv sets up a temp SQLite DB, catalog service and router.
func testEnv(t *testing.T, authEnabled bool, opts ...catalog.Option) http.Handler {
	t.Helper()
	svc := catalog.NewService(testutil.TestStore(t), opts...)
	return NewRouter(svc, schema.NewDumper(2), authEnabled, testSecret, nil)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var doc map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return doc
}

// create posts body and returns the new id.
func create(t *testing.T, h http.Handler, path string, body any) int64 {
	t.Helper()
	w := do(t, h, http.MethodPost, path, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST %s = %d, body = %s", path, w.Code, w.Body.String())
	}
	return int64(decode(t, w)["id"].(float64))
}

func TestCreateAndGetArtist(t *testing.T) {
	router := testEnv(t, false)

	id := create(t, router, "/artists", map[string]any{"name": "Radiohead"})

	w := do(t, router, http.MethodGet, fmt.Sprintf("/artists/%d", id), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	doc := decode(t, w)
	if doc["name"] != "Radiohead" {
		t.Errorf("name = %v", doc["name"])
	}
	for _, key := range []string{"tracks", "links", "tags"} {
		if _, ok := doc[key].([]any); !ok {
			t.Errorf("%s = %v, want list", key, doc[key])
		}
	}
	if doc["created_at"] == nil || doc["updated_at"] == nil {
		t.Error("timestamps missing")
	}
}

func TestLinkScenario(t *testing.T) {
	router := testEnv(t, false)

	a := create(t, router, "/artists", map[string]any{"name": "A"})
	tr := create(t, router, "/tracks", map[string]any{"name": "T", "artist_id": a})
	g := create(t, router, "/tags", map[string]any{"name": "G", "artist_ids": []int64{a}, "track_ids": []int64{tr}})
	l := create(t, router, "/links", map[string]any{"name": "L", "artist_id": a, "track_id": tr, "tag_ids": []int64{g}})

	doc := decode(t, do(t, router, http.MethodGet, fmt.Sprintf("/links/%d", l), nil))

	artist := doc["artist"].(map[string]any)
	if _, ok := artist["links"]; ok {
		t.Error("link.artist must not carry links")
	}
	track := doc["track"].(map[string]any)
	if _, ok := track["links"]; ok {
		t.Error("link.track must not carry links")
	}
	tags := doc["tags"].([]any)
	if len(tags) != 1 {
		t.Fatalf("tags = %v", tags)
	}
	if _, ok := tags[0].(map[string]any)["links"]; ok {
		t.Error("link.tags[] must not carry links")
	}
}

func TestListArtists(t *testing.T) {
	router := testEnv(t, false)
	create(t, router, "/artists", map[string]any{"name": "A"})
	create(t, router, "/artists", map[string]any{"name": "B"})

	w := do(t, router, http.MethodGet, "/artists", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	doc := decode(t, w)
	if doc["total"] != float64(2) {
		t.Errorf("total = %v", doc["total"])
	}
	if items := doc["artists"].([]any); len(items) != 2 {
		t.Errorf("artists = %v", items)
	}
}

func TestErrorStatuses(t *testing.T) {
	router := testEnv(t, false)
	a := create(t, router, "/artists", map[string]any{"name": "A"})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"duplicate name", http.MethodPost, "/artists", map[string]any{"name": "A"}, http.StatusConflict},
		{"missing name", http.MethodPost, "/artists", map[string]any{}, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/artists", "not an object", http.StatusBadRequest},
		{"missing artist fk", http.MethodPost, "/tracks", map[string]any{"name": "T", "artist_id": 999}, http.StatusConflict},
		{"unknown id", http.MethodGet, "/tracks/999", nil, http.StatusNotFound},
		{"invalid id", http.MethodGet, "/tracks/abc", nil, http.StatusBadRequest},
		{"delete unknown", http.MethodDelete, "/links/5", nil, http.StatusNotFound},
		{"update unknown", http.MethodPut, "/tags/5", map[string]any{"name": "X"}, http.StatusNotFound},
		{"unknown tag association", http.MethodPut, fmt.Sprintf("/artists/%d", a), map[string]any{"name": "A", "tag_ids": []int64{42}}, http.StatusConflict},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, router, tc.method, tc.path, tc.body)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d, body = %s", w.Code, tc.want, w.Body.String())
			}
			if msg, _ := decode(t, w)["error"].(string); msg == "" {
				t.Error("error message missing")
			}
		})
	}
}

func TestUpdateAndDeleteCascade(t *testing.T) {
	router := testEnv(t, false)
	a := create(t, router, "/artists", map[string]any{"name": "A"})
	tr := create(t, router, "/tracks", map[string]any{"name": "T", "artist_id": a})
	l := create(t, router, "/links", map[string]any{"name": "L", "artist_id": a, "track_id": tr})

	w := do(t, router, http.MethodPut, fmt.Sprintf("/tracks/%d", tr), map[string]any{"name": "T2", "artist_id": a})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	if name := decode(t, w)["name"]; name != "T2" {
		t.Errorf("name = %v", name)
	}

	w = do(t, router, http.MethodDelete, fmt.Sprintf("/artists/%d", a), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	for _, path := range []string{fmt.Sprintf("/tracks/%d", tr), fmt.Sprintf("/links/%d", l)} {
		if w := do(t, router, http.MethodGet, path, nil); w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, w.Code)
		}
	}
}

func TestETagNotModified(t *testing.T) {
	router := testEnv(t, false)
	id := create(t, router, "/tags", map[string]any{"name": "G"})
	path := fmt.Sprintf("/tags/%d", id)

	w := do(t, router, http.MethodGet, path, nil)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("ETag header missing")
	}

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional GET = %d, want 304", w.Code)
	}

	do(t, router, http.MethodPut, path, map[string]any{"name": "G2"})
	req = httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("GET after update = %d, want 200", w.Code)
	}
}

func TestETagMatching(t *testing.T) {
	const etag = `"abc"`
	tests := []struct {
		header string
		want   bool
	}{
		{`"abc"`, true},
		{`W/"abc"`, true},
		{`"x", "abc"`, true},
		{`"x",W/"abc"`, true},
		{`*`, true},
		{``, false},
		{`"abcd"`, false},
		{`"x", "y"`, false},
	}
	for _, tc := range tests {
		if got := etagMatches(tc.header, etag); got != tc.want {
			t.Errorf("etagMatches(%q) = %v, want %v", tc.header, got, tc.want)
		}
	}
}

func TestETagListNotModified(t *testing.T) {
	router := testEnv(t, false)
	id := create(t, router, "/artists", map[string]any{"name": "A"})
	path := fmt.Sprintf("/artists/%d", id)

	etag := do(t, router, http.MethodGet, path, nil).Header().Get("ETag")
	for _, header := range []string{`"stale", ` + etag, "W/" + etag, "*"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("If-None-Match", header)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusNotModified {
			t.Errorf("If-None-Match %s: status = %d, want 304", header, w.Code)
		}
	}
}

func TestBodyTooLarge(t *testing.T) {
	router := testEnv(t, false)
	name := strings.Repeat("x", maxBodyBytes+1)
	body := bytes.NewBufferString(`{"name":"` + name + `"}`)

	req := httptest.NewRequest(http.MethodPost, "/artists", body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
	if msg, _ := decode(t, w)["error"].(string); msg == "" {
		t.Error("error message missing")
	}
}

func TestAuthDisabled(t *testing.T) {
	router := testEnv(t, false)
	if w := do(t, router, http.MethodGet, "/artists", nil); w.Code != http.StatusOK {
		t.Errorf("disabled mode: status = %d, want 200", w.Code)
	}
}

func TestAuthJWT(t *testing.T) {
	router := testEnv(t, true)

	sign := func(secret string, method jwt.SigningMethod) string {
		token := jwt.NewWithClaims(method, jwt.RegisteredClaims{
			Subject:   "user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		s, err := token.SignedString([]byte(secret))
		if err != nil {
			t.Fatal(err)
		}
		return s
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"garbage", "Bearer abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + sign("other", jwt.SigningMethodHS256), http.StatusUnauthorized},
		{"wrong method", "Bearer " + sign(testSecret, jwt.SigningMethodHS512), http.StatusUnauthorized},
		{"valid", "Bearer " + sign(testSecret, jwt.SigningMethodHS256), http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/artists", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestChangeEventAfterCreate(t *testing.T) {
	broker := sse.NewBroker()
	defer broker.Close()
	router := testEnv(t, false, catalog.WithNotifier(broker))

	frames, cancel := broker.Subscribe("artist")
	defer cancel()

	create(t, router, "/artists", map[string]any{"name": "A"})

	select {
	case msg := <-frames:
		if !strings.Contains(string(msg), "event: artist.created\n") {
			t.Errorf("event = %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change event received")
	}
}
