package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fitlg/fitlg/internal/app"
	"github.com/fitlg/fitlg/internal/config"
	"github.com/fitlg/fitlg/internal/db/dbtest"
	"github.com/fitlg/fitlg/internal/metrics"
	"github.com/fitlg/fitlg/internal/model"
	"github.com/fitlg/fitlg/internal/seed"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const password = "Sup3r-Strong-Pass"

func newTestApp(t *testing.T) *app.App {
	t.Helper()

	cfg := &config.Config{
		AppName:                    "fitlg",
		AppEnv:                     "development",
		AppURL:                     "http://example.com",
		JWTSecret:                  "test-secret",
		JWTExpiry:                  time.Hour,
		PasswordResetSessionExpiry: 15 * time.Minute,
		TokenAccountActivateExpiry: time.Hour,
		TokenPasswordResetExpiry:   time.Hour,
		MetricsEnabled:             true,
		CatalogCacheSizeMB:         1,
		CatalogCacheTTL:            time.Minute,
	}

	a := app.FromDB(cfg, dbtest.New(t), metrics.NewTestManager())
	t.Cleanup(func() {
		_ = a.Close()
	})
	return a
}

// client drives the handler like a browser: it keeps cookies and sends the
// CSRF token with every POST.
type client struct {
	t       *testing.T
	handler http.Handler
	cookies map[string]*http.Cookie
	addr    string
}

func newClient(t *testing.T, h http.Handler, addr string) *client {
	return &client{t: t, handler: h, cookies: map[string]*http.Cookie{}, addr: addr}
}

func (c *client) do(r *http.Request) *httptest.ResponseRecorder {
	c.t.Helper()

	r.RemoteAddr = c.addr
	for _, cookie := range c.cookies {
		r.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, r)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Value == "" || cookie.MaxAge < 0 {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, "http://example.com"+path, nil))
}

func (c *client) csrfToken() string {
	if _, ok := c.cookies["csrf_token"]; !ok {
		c.get("/healthz")
	}
	return c.cookies["csrf_token"].Value
}

func (c *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	form.Set("csrf_token", c.csrfToken())
	r := httptest.NewRequest(http.MethodPost, "http://example.com"+path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(r)
}

func (c *client) postJSON(path, body string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "http://example.com"+path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-CSRF-Token", c.csrfToken())
	return c.do(r)
}

func seedApp(t *testing.T, a *app.App) {
	t.Helper()

	seeder := seed.NewSeeder(a.UserService, a.CatalogService, a.ExerciseService, a.Markdown)
	_, err := seeder.Run(context.Background(), seed.Superuser{
		Username: "coach",
		Email:    "coach@example.com",
		Password: password,
	})
	require.NoError(t, err)
}

// signUp registers and activates an account through the public pages.
func signUp(t *testing.T, a *app.App, c *client, username string) string {
	t.Helper()

	rec := c.postForm("/users/register/", url.Values{
		"username":       {username},
		"mail":           {username + "@example.com"},
		"password":       {password},
		"password_check": {password},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/login/?notice=account_created", rec.Header().Get("Location"))

	var userID, token string
	err := a.DB.GetContext(context.Background(), &userID, `SELECT id FROM users WHERE username = $1`, username)
	require.NoError(t, err)
	err = a.DB.GetContext(context.Background(), &token,
		`SELECT token FROM tokens WHERE user_id = $1 AND type = $2`, userID, model.TokenTypeAccountActivate)
	require.NoError(t, err)

	rec = c.get("/users/activate/" + userID + "/" + token + "/")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/login/?notice=account_activated", rec.Header().Get("Location"))
	require.Contains(t, c.cookies, "auth_token")

	return userID
}

func exerciseID(t *testing.T, a *app.App, name string) string {
	t.Helper()

	var id string
	err := a.DB.GetContext(context.Background(), &id, `SELECT id FROM exercises WHERE name = $1`, name)
	require.NoError(t, err)
	return id
}

func TestPublicRoutes(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, SetupRoutes(a), "192.0.2.1:1000")

	rec := c.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))

	rec = c.get("/")
	assert.Equal(t, "/users/login/", rec.Header().Get("Location"))

	rec = c.get("/app/trainings/")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/users/login/", rec.Header().Get("Location"))

	rec = c.get("/users/login/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="csrf_token"`)

	rec = c.get("/no/such/page")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.get("/users/activate/nobody/nothing/")
	assert.Equal(t, "/users/register/?error=invalid_link", rec.Header().Get("Location"))

	rec = c.get("/users/password-reset/")
	assert.Equal(t, "/users/password-forgotten/?error=reset_session_gone", rec.Header().Get("Location"))

	r := httptest.NewRequest(http.MethodPost, "http://example.com/users/login/", strings.NewReader("username=a&password=b"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = c.do(r)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fitlg_http_requests_total{method="GET",route="GET /healthz",status="200"} 1`)
}

func TestLoginFlow(t *testing.T) {
	a := newTestApp(t)
	h := SetupRoutes(a)

	c := newClient(t, h, "192.0.2.2:1000")
	rec := c.postForm("/users/register/", url.Values{
		"username":       {"sleepy"},
		"mail":           {"sleepy@example.com"},
		"password":       {password},
		"password_check": {password},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = c.postForm("/users/login/", url.Values{"username": {"sleepy"}, "password": {password}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "not activated yet")
	assert.NotContains(t, c.cookies, "auth_token")

	other := newClient(t, h, "192.0.2.3:1000")
	signUp(t, a, other, "athlete")

	rec = other.get("/users/login/?notice=account_activated")
	assert.Equal(t, "/app/trainings/?notice=account_activated", rec.Header().Get("Location"))

	rec = other.get("/users/register/")
	assert.Equal(t, "/app/trainings/", rec.Header().Get("Location"))

	rec = other.get("/users/logout/")
	assert.Equal(t, "/users/login/", rec.Header().Get("Location"))
	assert.NotContains(t, other.cookies, "auth_token")

	rec = other.postForm("/users/login/", url.Values{"username": {"athlete"}, "password": {"wrong-Pass-123"}})
	assert.Contains(t, rec.Body.String(), "Invalid username or password")

	rec = other.postForm("/users/login/", url.Values{"username": {"athlete"}, "password": {password}})
	assert.Equal(t, "/app/trainings/", rec.Header().Get("Location"))
	assert.Contains(t, other.cookies, "auth_token")
}

func TestLoginIsRateLimited(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, SetupRoutes(a), "192.0.2.9:1000")

	for i := 0; i < 5; i++ {
		rec := c.postForm("/users/login/", url.Values{"username": {"ghost"}, "password": {"whatever-123"}})
		require.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
	}

	rec := c.postForm("/users/login/", url.Values{"username": {"ghost"}, "password": {"whatever-123"}})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, SetupRoutes(a), "192.0.2.4:1000")
	userID := signUp(t, a, c, "forgetful")
	c.get("/users/logout/")

	rec := c.postForm("/users/password-forgotten/", url.Values{"mail": {"forgetful@example.com"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "We sent you an email")

	var token string
	err := a.DB.GetContext(context.Background(), &token,
		`SELECT token FROM tokens WHERE user_id = $1 AND type = $2`, userID, model.TokenTypePasswordReset)
	require.NoError(t, err)

	rec = c.get("/users/password-reset-activate/" + userID + "/" + token + "/")
	assert.Equal(t, "/users/password-reset/", rec.Header().Get("Location"))
	require.Contains(t, c.cookies, "password_reset_token")

	rec = c.get("/users/password-reset/")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.postForm("/users/password-reset/", url.Values{"password": {"N3w-Strong-Pass"}, "password_check": {"N3w-Strong-Pass"}})
	assert.Equal(t, "/users/login/?notice=password_reset", rec.Header().Get("Location"))
	assert.NotContains(t, c.cookies, "password_reset_token")

	rec = c.postForm("/users/login/", url.Values{"username": {"forgetful"}, "password": {"N3w-Strong-Pass"}})
	assert.Equal(t, "/app/trainings/", rec.Header().Get("Location"))
}

func TestExerciseAndTrainingFlow(t *testing.T) {
	a := newTestApp(t)
	seedApp(t, a)
	c := newClient(t, SetupRoutes(a), "192.0.2.5:1000")
	signUp(t, a, c, "athlete")

	rec := c.get("/app/get-all-movements/")
	require.Equal(t, http.StatusOK, rec.Code)
	var movements []struct {
		Name      string   `json:"name"`
		Equipment string   `json:"equipement"`
		Settings  []string `json:"settings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movements))
	assert.NotEmpty(t, movements)

	rec = c.postJSON("/app/add-exercise/", `{
		"name": "my chipper",
		"exerciseType": "FORTIME",
		"description": "Go **fast**.",
		"goalType": "Round",
		"goalValue": 1,
		"movements": [
			{"name": "pullups", "order": 1, "settings": [{"name": "repetitions", "value": "20"}]},
			{"name": "thruster", "order": 2, "settings": [{"name": "repetitions", "value": 10}, {"name": "poids", "value": "42,5"}]}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var id string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &id))
	assert.Equal(t, exerciseID(t, a, "my chipper"), id)

	rec = c.postJSON("/app/add-exercise/", `{"name": "bad", "exerciseType": "AMRAP", "movements": [{"name": "juggling"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown movement")

	rec = c.postJSON("/app/add-exercise/", "")
	assert.Equal(t, "/app/exercices/?error=empty_exercise", rec.Header().Get("Location"))

	rec = c.get("/app/exercices/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "my chipper")
	assert.Contains(t, rec.Body.String(), "fran")

	rec = c.get("/app/exercise/" + id + "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<strong>fast</strong>")
	assert.Contains(t, rec.Body.String(), "poids: 42")

	rec = c.get("/app/exercise/missing/")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = c.postForm("/app/exercise/"+id+"/", url.Values{})
	assert.Equal(t, "/app/trainings/?notice=training_started", rec.Header().Get("Location"))

	var trainingID string
	err := a.DB.GetContext(context.Background(), &trainingID, `SELECT id FROM trainings WHERE exercise_id = $1`, id)
	require.NoError(t, err)

	rec = c.get("/app/trainings/?notice=training_started")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), trainingID)
	assert.Contains(t, rec.Body.String(), "Training started.")

	rec = c.postForm("/app/trainings/", url.Values{"training_pk": {trainingID}, "performance_value": {"00:03:50"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Performance saved.")
	assert.Contains(t, rec.Body.String(), "00:03:50")

	rec = c.postForm("/app/trainings/", url.Values{"training_pk": {trainingID}, "performance_value": {"00:03:10"}})
	assert.Contains(t, rec.Body.String(), "This training is already completed.")

	rec = c.postForm("/app/trainings/", url.Values{"training_pk": {"missing"}, "performance_value": {"12"}})
	assert.Contains(t, rec.Body.String(), "This training does not exist.")

	rec = c.get("/metrics")
	assert.Contains(t, rec.Body.String(), `fitlg_trainings_completed_total{performance_type="duree"} 1`)
	assert.Contains(t, rec.Body.String(), `route="GET /app/exercise/{id}/"`)
}

func TestDeleteExercise(t *testing.T) {
	a := newTestApp(t)
	seedApp(t, a)
	h := SetupRoutes(a)

	c := newClient(t, h, "192.0.2.6:1000")
	signUp(t, a, c, "athlete")
	rec := c.postJSON("/app/add-exercise/", `{"name": "mine", "exerciseType": "STRENGTH", "movements": [{"name": "pushups"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var mine string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mine))

	rec = c.postJSON("/app/exercise/"+mine+"/movements/", `{"name": "squats", "settings": [{"name": "repetitions", "value": 30}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var number int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &number))
	assert.Equal(t, 2, number)

	rec = c.postJSON("/app/exercise/"+mine+"/movements/", `{"name": "juggling"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown movement")

	fran := exerciseID(t, a, "fran")
	rec = c.postJSON("/app/exercise/"+fran+"/movements/", `{"name": "squats"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = c.get("/app/delete-exercise/" + fran + "/")
	assert.Equal(t, "/app/exercices/?error=forbidden", rec.Header().Get("Location"))

	stranger := newClient(t, h, "192.0.2.7:1000")
	signUp(t, a, stranger, "stranger")
	rec = stranger.postJSON("/app/exercise/"+mine+"/movements/", `{"name": "squats"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = stranger.get("/app/delete-exercise/" + mine + "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = stranger.get("/app/exercise/" + mine + "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	r := httptest.NewRequest(http.MethodGet, "http://example.com/app/delete-exercise/"+mine+"/", nil)
	r.Header.Set("Referer", "http://example.com/app/trainings/")
	rec = c.do(r)
	assert.Equal(t, "/app/trainings/?notice=exercise_deleted", rec.Header().Get("Location"))

	rec = c.get("/app/exercise/" + mine + "/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProfile(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, SetupRoutes(a), "192.0.2.8:1000")
	signUp(t, a, c, "athlete")

	rec := c.get("/app/profile/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "athlete@example.com")

	rec = c.postForm("/app/profile/", url.Values{
		"old_password":  {"not-my-Pass-1"},
		"new_password1": {"N3w-Strong-Pass"},
		"new_password2": {"N3w-Strong-Pass"},
	})
	assert.Contains(t, rec.Body.String(), "The current password is incorrect")

	rec = c.postForm("/app/profile/", url.Values{
		"old_password":  {password},
		"new_password1": {"N3w-Strong-Pass"},
		"new_password2": {"N3w-Strong-Pass"},
	})
	assert.Contains(t, rec.Body.String(), "Your password has been changed.")
}
