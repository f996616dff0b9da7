package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	adapthttp "needsstep/internal/adapter/http"
	"needsstep/internal/adapter/graph"
	"needsstep/internal/adapter/memory"
	"needsstep/internal/app"
	"needsstep/internal/domain"
	"needsstep/internal/metrics"
)

// ---------------------------------------------------------------------------
// Test-server helper
// ---------------------------------------------------------------------------

type testEnv struct {
	db      *memory.DB
	auth    *app.AuthService
	metrics *metrics.Metrics
	srv     *adapthttp.Server
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db := memory.New()
	needs := app.NewNeedService(db.Entries(domain.NeedKind), db.Measurements(domain.NeedKind), db.NeedQuestions(), nil)
	targets := app.NewTargetService(db.Entries(domain.TargetKind), db.Measurements(domain.TargetKind), db.TargetNames(), nil)
	m := metrics.New()
	schema, err := graph.New(needs, targets, graph.WithObserver(m.ObserveOperation))
	if err != nil {
		t.Fatalf("graph.New: %v", err)
	}
	auth := app.NewAuthService(db.Users(), db.Sessions(), 0)
	return &testEnv{
		db:      db,
		auth:    auth,
		metrics: m,
		srv:     adapthttp.New(auth, schema, adapthttp.OIDCConfig{}).WithMetrics(m),
	}
}

func newTestServer(t *testing.T, srv *adapthttp.Server) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func postJSON(t *testing.T, c *http.Client, url string, body any, header http.Header) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// query posts a GraphQL query and returns the "data" object.
func query(t *testing.T, c *http.Client, url, q string, header http.Header) (*http.Response, map[string]any) {
	t.Helper()
	resp := postJSON(t, c, url+"/graphql", graph.Request{Query: q}, header)
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	body := decodeBody(t, resp)
	data, _ := body["data"].(map[string]any)
	return resp, data
}

func setupAndLogin(t *testing.T, c *http.Client, url string) string {
	t.Helper()
	creds := map[string]string{"username": "root", "password": "hunter22"}
	if resp := postJSON(t, c, url+"/api/auth/setup", creds, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("setup: expected 200, got %d", resp.StatusCode)
	}
	resp := postJSON(t, c, url+"/api/auth/login", creds, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	token, _ := decodeBody(t, resp)["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}
	return token
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, newEnv(t).srv)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Cache-Control") != "no-store" {
		t.Errorf("expected no-store, got %q", resp.Header.Get("Cache-Control"))
	}
	body := decodeBody(t, resp)
	if body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
}

func TestGraphQLRequiresAuth(t *testing.T) {
	ts := newTestServer(t, newEnv(t).srv)

	resp, _ := query(t, http.DefaultClient, ts.URL, `{ me { ok } }`, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp, _ = query(t, http.DefaultClient, ts.URL, `{ me { ok } }`, http.Header{"Authorization": {"Bearer nope"}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unknown token: expected 401, got %d", resp.StatusCode)
	}
}

func TestSessionCookieFlow(t *testing.T) {
	ts := newTestServer(t, newEnv(t).srv)
	c := newClient(t)
	setupAndLogin(t, c, ts.URL)

	resp, data := query(t, c, ts.URL, `{ me { ok user { username role } } }`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	me, _ := data["me"].(map[string]any)
	user, _ := me["user"].(map[string]any)
	if user["username"] != "root" || user["role"] != "Admin" {
		t.Errorf("unexpected user %v", user)
	}

	if resp := postJSON(t, c, ts.URL+"/api/auth/logout", map[string]any{}, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	resp, _ = query(t, c, ts.URL, `{ me { ok } }`, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("after logout: expected 401, got %d", resp.StatusCode)
	}
}

func TestBearerToken(t *testing.T) {
	ts := newTestServer(t, newEnv(t).srv)
	token := setupAndLogin(t, newClient(t), ts.URL)
	bearer := http.Header{"Authorization": {"Bearer " + token}}

	_, data := query(t, http.DefaultClient, ts.URL,
		`mutation { createNeedQuestion(input: {stage: 1, subStage: 1, content: "Did you rest?"}) { ok needQuestionId } }`,
		bearer)
	created, _ := data["createNeedQuestion"].(map[string]any)
	qid, _ := created["needQuestionId"].(float64)
	if qid == 0 {
		t.Fatalf("admin could not create a question: %v", created)
	}

	resp, data := query(t, http.DefaultClient, ts.URL,
		fmt.Sprintf(`mutation { createMeasureNeed(input: {date: "2022-5-25", needQuestionId: %d, score: 2}) { ok error measureNeedId } }`, int64(qid)),
		bearer)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	out, _ := data["createMeasureNeed"].(map[string]any)
	if out["ok"] != true {
		t.Fatalf("expected ok, got %v", out)
	}
}

func TestSetupTwice(t *testing.T) {
	ts := newTestServer(t, newEnv(t).srv)
	c := newClient(t)
	setupAndLogin(t, c, ts.URL)

	resp := postJSON(t, c, ts.URL+"/api/auth/setup", map[string]string{"username": "again", "password": "pw"}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	env := newEnv(t)
	if _, err := env.auth.CreateUser(context.Background(), "alice", "secret", domain.RoleFree); err != nil {
		t.Fatal(err)
	}
	ts := newTestServer(t, env.srv)

	tests := []struct {
		name       string
		payload    any
		wantStatus int
	}{
		{"valid", map[string]string{"username": "alice", "password": "secret"}, http.StatusOK},
		{"wrong password", map[string]string{"username": "alice", "password": "nope"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"username": "bob", "password": "secret"}, http.StatusUnauthorized},
		{"unknown field", map[string]string{"user": "alice"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, newClient(t), ts.URL+"/api/auth/login", tt.payload, nil)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, resp.StatusCode)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var session *http.Cookie
			for _, c := range resp.Cookies() {
				if c.Name == "session" {
					session = c
				}
			}
			if session == nil || !session.HttpOnly || session.MaxAge != int(app.DefaultSessionTTL.Seconds()) {
				t.Errorf("unexpected session cookie %+v", session)
			}
		})
	}
}

func TestLoginMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, newEnv(t).srv)

	resp, err := http.Get(ts.URL + "/api/auth/login")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestForwardAuth(t *testing.T) {
	header := http.Header{"Remote-User": {"proxy-user"}}

	t.Run("untrusted", func(t *testing.T) {
		ts := newTestServer(t, newEnv(t).srv)
		resp, _ := query(t, http.DefaultClient, ts.URL, `{ me { ok } }`, header)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("trusted", func(t *testing.T) {
		env := newEnv(t)
		ts := newTestServer(t, env.srv.WithForwardAuth())
		_, data := query(t, http.DefaultClient, ts.URL, `{ me { ok user { username role } } }`, header)
		me, _ := data["me"].(map[string]any)
		user, _ := me["user"].(map[string]any)
		if user["username"] != "proxy-user" || user["role"] != "Free" {
			t.Fatalf("unexpected user %v", user)
		}
		if u, _ := env.db.Users().GetByUsername(context.Background(), "proxy-user"); u == nil {
			t.Error("forward-auth user was not provisioned")
		}
	})
}

func TestGraphQLBadRequests(t *testing.T) {
	env := newEnv(t)
	u, _ := env.db.Users().Create(context.Background(), "fixed", "", domain.RoleFree)
	ts := newTestServer(t, env.srv.WithoutAuth(u))

	resp, err := http.Get(ts.URL + "/graphql")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET: expected 405, got %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/graphql", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad json: expected 400, got %d", resp.StatusCode)
	}

	if resp := postJSON(t, http.DefaultClient, ts.URL+"/graphql", map[string]any{"query": ""}, nil); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty query: expected 400, got %d", resp.StatusCode)
	}
}

func TestWithoutAuthRecordsForFixedUser(t *testing.T) {
	env := newEnv(t)
	u, _ := env.db.Users().Create(context.Background(), "fixed", "", domain.RoleFree)
	ts := newTestServer(t, env.srv.WithoutAuth(u))
	qid, err := env.db.NeedQuestions().Create(context.Background(), domain.NeedQuestion{Stage: 1, SubStage: 1, Content: "Did you rest?"})
	if err != nil {
		t.Fatal(err)
	}

	_, data := query(t, http.DefaultClient, ts.URL,
		fmt.Sprintf(`mutation { createMeasureNeed(input: {date: "2022-5-25", needQuestionId: %d, score: 1}) { ok error } }`, qid), nil)
	if out, _ := data["createMeasureNeed"].(map[string]any); out["ok"] != true {
		t.Fatalf("expected ok, got %v", out)
	}

	need, err := env.db.Entries(domain.NeedKind).GetByDate(context.Background(), u.ID, "2022-5-25")
	if err != nil || need == nil {
		t.Fatalf("need not stored for fixed user: %v %v", need, err)
	}
}

func TestSSODisabled(t *testing.T) {
	ts := newTestServer(t, newEnv(t).srv)

	resp, err := http.Get(ts.URL + "/api/auth/config")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if body := decodeBody(t, resp); body["sso_enabled"] != false {
		t.Errorf("expected sso_enabled=false, got %v", body["sso_enabled"])
	}

	for _, path := range []string{"/api/auth/sso/login", "/api/auth/sso/callback"} {
		resp, err := newClient(t).Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close() //nolint:errcheck
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, resp.StatusCode)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newEnv(t)
	u, _ := env.db.Users().Create(context.Background(), "fixed", "", domain.RoleFree)
	ts := newTestServer(t, env.srv.WithoutAuth(u))

	query(t, http.DefaultClient, ts.URL, `{ me { ok } }`, nil)

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close() //nolint:errcheck
	b, _ := io.ReadAll(resp.Body)
	body := string(b)
	for _, want := range []string{
		`needsstep_http_requests_total{code="200",method="POST",route="/graphql"} 1`,
		`needsstep_graphql_operations_total{operation="me",outcome="ok"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}
