package targetclient_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/filedrop-checker/internal/domain"
	"github.com/mkrupp/filedrop-checker/internal/svc/checkersvc/targetclient"
)

// fakeService is a minimal stand-in for the target web service, close enough
// to exercise the client's protocol expectations.
type fakeService struct {
	users map[string]string // username -> password
	files map[int64][]byte
	mux   *http.ServeMux
}

func newFakeService() *fakeService {
	svc := &fakeService{
		users: make(map[string]string),
		files: make(map[int64][]byte),
		mux:   http.NewServeMux(),
	}

	svc.mux.HandleFunc("/register", svc.handleRegister)
	svc.mux.HandleFunc("/login", svc.handleLogin)
	svc.mux.HandleFunc("/account", svc.handleAccount)
	svc.mux.HandleFunc("/upload", svc.handleUpload)
	svc.mux.HandleFunc("/download", svc.handleDownload)
	svc.mux.HandleFunc("/logout", svc.handleLogout)

	return svc
}

func (svc *fakeService) handleRegister(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")

	if _, exists := svc.users[username]; exists {
		fmt.Fprintf(w, `<p class="error">username %q is already taken</p>`, username)

		return
	}

	if username == "reject-me" {
		fmt.Fprint(w, `<p class="error">computer says no</p>`)

		return
	}

	svc.users[username] = r.FormValue("password")
	http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
}

func (svc *fakeService) handleLogin(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")

	if svc.users[username] != r.FormValue("password") {
		http.Redirect(w, r, "/login", http.StatusSeeOther)

		return
	}

	http.SetCookie(w, &http.Cookie{Name: "session", Value: username})
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}

func (svc *fakeService) authenticated(r *http.Request) bool {
	cookie, err := r.Cookie("session")

	return err == nil && cookie.Value != ""
}

func (svc *fakeService) handleAccount(w http.ResponseWriter, r *http.Request) {
	if !svc.authenticated(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)

		return
	}

	fmt.Fprint(w, "<html><body>account page</body></html>")
}

func (svc *fakeService) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !svc.authenticated(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)

		return
	}

	if r.Method == http.MethodGet {
		fmt.Fprint(w, "<html><body>upload form</body></html>")

		return
	}

	if err := r.ParseMultipartForm(1 << 20); err != nil {
		w.WriteHeader(http.StatusBadRequest)

		return
	}

	if r.FormValue("user") == "" {
		fmt.Fprint(w, `<p class="error">unknown user</p>`)

		return
	}

	file, _, err := r.FormFile("data")
	if err != nil {
		fmt.Fprint(w, `<p class="error">cannot read uploaded file</p>`)

		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)

		return
	}

	svc.files[int64(len(svc.files)+1)] = data
	fmt.Fprint(w, "File uploaded successfully.")
}

func (svc *fakeService) handleDownload(w http.ResponseWriter, r *http.Request) {
	if !svc.authenticated(r) {
		http.Redirect(w, r, "/login", http.StatusSeeOther)

		return
	}

	fileID, err := strconv.ParseInt(r.URL.RawQuery, 10, 64)
	if err != nil {
		fileID = -1
	}

	data, ok := svc.files[fileID]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintln(w, "file not found")

		return
	}

	w.Write(data)
}

func (svc *fakeService) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func newTestClient(t *testing.T) (*targetclient.HTTPClient, *fakeService) {
	t.Helper()

	svc := newFakeService()
	server := httptest.NewServer(svc.mux)
	t.Cleanup(server.Close)

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	port, err := strconv.Atoi(serverURL.Port())
	require.NoError(t, err)

	cfg := targetclient.HTTPClientConfig{
		Host:    serverURL.Hostname(),
		Port:    port,
		Timeout: 5,
	}

	return targetclient.NewHTTPClient(cfg, nil), svc
}

func TestRegister(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Register(ctx, "alice", "hunter2hunter2!!"))

	err := client.Register(ctx, "alice", "hunter2hunter2!!")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUsernameTaken), "want ErrUsernameTaken, got %v", err)

	err = client.Register(ctx, "reject-me", "hunter2hunter2!!")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrServiceFailure), "want ErrServiceFailure, got %v", err)
	assert.False(t, errors.Is(err, domain.ErrUsernameTaken))
}

func TestLogin(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Register(ctx, "bob", "correct-password"))

	sess, err := client.Login(ctx, "bob", "correct-password")
	require.NoError(t, err)
	require.NotNil(t, sess)

	_, err = client.Login(ctx, "bob", "wrong-password")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrServiceFailure))
}

func TestGetAccount(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Register(ctx, "carol", "secretsecret1234"))

	sess, err := client.Login(ctx, "carol", "secretsecret1234")
	require.NoError(t, err)

	body, err := client.GetAccount(ctx, sess)
	require.NoError(t, err)
	assert.Contains(t, string(body), "account page")
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Register(ctx, "dave", "secretsecret1234"))

	sess, err := client.Login(ctx, "dave", "secretsecret1234")
	require.NoError(t, err)

	// Raw non-UTF-8 payloads must survive the round trip byte-for-byte.
	payload := []byte{0x90, 0x00, 0xff, 0x42, 0x90}
	require.NoError(t, client.UploadFile(ctx, sess, "dave", "raw.bin", payload))

	data, err := client.DownloadFile(ctx, sess, 1)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	_, err = client.DownloadFile(ctx, sess, 999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrServiceFailure))
}

func TestLogout(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t)

	require.NoError(t, client.Logout(context.Background()))
}

func TestLogout_WrongStatus(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	serverURL, err := url.Parse(server.URL)
	require.NoError(t, err)

	port, err := strconv.Atoi(serverURL.Port())
	require.NoError(t, err)

	client := targetclient.NewHTTPClient(targetclient.HTTPClientConfig{
		Host:    serverURL.Hostname(),
		Port:    port,
		Timeout: 5,
	}, nil)

	err = client.Logout(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrServiceFailure))
	assert.True(t, strings.Contains(err.Error(), "303"), "error should name the expected status, got %v", err)
}
