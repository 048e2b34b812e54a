package targetclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mkrupp/filedrop-checker/internal/domain"
	context_ "github.com/mkrupp/filedrop-checker/internal/infra/context"
	"github.com/mkrupp/filedrop-checker/internal/infra/logging"
)

const (
	// RunIDHeader carries the verification run ID on every outgoing request.
	RunIDHeader = "X-Request-ID"

	uploadSuccessMarker = "File uploaded successfully."
	usernameTakenText   = "is already taken"
	errorBannerText     = `<p class="error">`
)

// HTTPClientConfig holds configuration for the HTTP target client.
type HTTPClientConfig struct {
	// Host is the network address of the target service
	Host string `env:"HOST" default:"localhost"`

	// Port is the TCP port of the target service
	Port int `env:"PORT" default:"4377"`

	// Timeout is the per-request timeout in seconds
	Timeout int `env:"TIMEOUT" default:"10"`
}

// BaseURL returns the service endpoint derived from host and port.
func (cfg HTTPClientConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
}

// Session is an opaque authenticated handle bound to exactly one credential,
// obtained via Login and discarded when the current step ends. The target
// requires no explicit close.
type Session struct {
	client *http.Client
}

// HTTPClient implements Client against the configured base endpoint.
// Redirects are never followed; redirect targets are protocol signals here.
type HTTPClient struct {
	httpClient *http.Client
	log        logging.Logger
	cfg        HTTPClientConfig
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient creates a new HTTPClient with the given configuration.
// If httpClient is nil, a client with the configured timeout is used.
func NewHTTPClient(cfg HTTPClientConfig, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		//nolint:exhaustruct
		httpClient = &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		}
	}

	return &HTTPClient{
		httpClient: httpClient,
		log:        logging.GetLogger("svc.checkersvc.http_client"),
		cfg:        cfg,
	}
}

// Register implements Client.Register. Success is a redirect to the login
// view; the literal "is already taken" text maps to domain.ErrUsernameTaken.
func (ht *HTTPClient) Register(ctx context.Context, username, password string) error {
	resp, body, err := ht.postForm(ctx, ht.newClient(nil), "/register", url.Values{
		"username": {username},
		"password": {password},
	})
	if err != nil {
		return fmt.Errorf("%w: POST /register: %w", domain.ErrServiceFailure, err)
	}

	location := resp.Header.Get("Location")

	ht.log.DebugContext(ctx, "registered user",
		logging.Group("user", "username", username),
		"status", resp.StatusCode, "location", location)

	if strings.HasSuffix(location, "/login") {
		return nil
	}

	if strings.Contains(string(body), usernameTakenText) {
		return fmt.Errorf("register %q: %w", username, domain.ErrUsernameTaken)
	}

	for _, line := range strings.Split(string(body), "\n") {
		if strings.Contains(line, errorBannerText) {
			ht.log.InfoContext(ctx, "register error banner", "line", line)
		}
	}

	return fmt.Errorf("%w: /register did not redirect to /login", domain.ErrServiceFailure)
}

// Login implements Client.Login. Success requires a redirect to the account
// view; anything else is fatal for this call.
func (ht *HTTPClient) Login(ctx context.Context, username, password string) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("new cookie jar: %w", err)
	}

	client := ht.newClient(jar)

	resp, _, err := ht.postForm(ctx, client, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: POST /login: %w", domain.ErrServiceFailure, err)
	}

	location := resp.Header.Get("Location")

	ht.log.DebugContext(ctx, "logged in",
		logging.Group("user", "username", username),
		"status", resp.StatusCode, "location", location)

	if !strings.HasSuffix(location, "/account") {
		return nil, fmt.Errorf("%w: /login did not redirect to /account", domain.ErrServiceFailure)
	}

	return &Session{client: client}, nil
}

// GetAccount implements Client.GetAccount.
func (ht *HTTPClient) GetAccount(ctx context.Context, sess *Session) ([]byte, error) {
	resp, body, err := ht.get(ctx, sess.client, "/account")
	if err != nil {
		return nil, fmt.Errorf("%w: GET /account: %w", domain.ErrServiceFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: /account returned %d %s",
			domain.ErrServiceFailure, resp.StatusCode, resp.Header.Get("Location"))
	}

	return body, nil
}

// UploadFile implements Client.UploadFile. The upload form must be reachable
// before the POST, and the response body must contain the literal success
// marker.
func (ht *HTTPClient) UploadFile(
	ctx context.Context,
	sess *Session,
	destUser, fileName string,
	data []byte,
) error {
	resp, _, err := ht.get(ctx, sess.client, "/upload")
	if err != nil {
		return fmt.Errorf("%w: GET /upload: %w", domain.ErrServiceFailure, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: GET /upload returned %d", domain.ErrServiceFailure, resp.StatusCode)
	}

	var form bytes.Buffer

	writer := multipart.NewWriter(&form)

	if err := writer.WriteField("user", destUser); err != nil {
		return fmt.Errorf("write form field: %w", err)
	}

	part, err := writer.CreateFormFile("data", fileName)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}

	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("close form writer: %w", err)
	}

	req, err := ht.newRequest(ctx, http.MethodPost, "/upload", &form)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, body, err := ht.do(sess.client, req)
	if err != nil {
		return fmt.Errorf("%w: POST /upload: %w", domain.ErrServiceFailure, err)
	}

	ht.log.DebugContext(ctx, "uploaded file",
		logging.Group("file", "name", fileName, "destUser", destUser, "size", len(data)),
		"status", resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: POST /upload returned %d", domain.ErrServiceFailure, resp.StatusCode)
	}

	if !bytes.Contains(body, []byte(uploadSuccessMarker)) {
		return fmt.Errorf("%w: POST /upload did not contain success message", domain.ErrServiceFailure)
	}

	return nil
}

// DownloadFile implements Client.DownloadFile. The file ID is the entire raw
// query of the download endpoint.
func (ht *HTTPClient) DownloadFile(ctx context.Context, sess *Session, fileID int64) ([]byte, error) {
	path := "/download?" + strconv.FormatInt(fileID, 10)

	resp, body, err := ht.get(ctx, sess.client, path)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", domain.ErrServiceFailure, path, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", domain.ErrServiceFailure, path, resp.StatusCode)
	}

	return body, nil
}

// Logout implements Client.Logout. The call is unauthenticated; success is an
// immediate 303 redirect to the root path.
func (ht *HTTPClient) Logout(ctx context.Context) error {
	resp, _, err := ht.get(ctx, ht.newClient(nil), "/logout")
	if err != nil {
		return fmt.Errorf("%w: GET /logout: %w", domain.ErrServiceFailure, err)
	}

	if resp.StatusCode != http.StatusSeeOther {
		return fmt.Errorf("%w: /logout returned %d instead of %d",
			domain.ErrServiceFailure, resp.StatusCode, http.StatusSeeOther)
	}

	if location := resp.Header.Get("Location"); !strings.HasSuffix(location, "/") {
		return fmt.Errorf("%w: /logout redirected to %q instead of /", domain.ErrServiceFailure, location)
	}

	return nil
}

// newClient derives a client that keeps the configured transport and timeout
// but never follows redirects. A non-nil jar binds it to one session.
func (ht *HTTPClient) newClient(jar http.CookieJar) *http.Client {
	return &http.Client{
		Transport: ht.httpClient.Transport,
		Timeout:   ht.httpClient.Timeout,
		Jar:       jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (ht *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, ht.cfg.BaseURL()+path, body)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	if runID, ok := context_.RunIDFromContext(ctx); ok {
		req.Header.Set(RunIDHeader, runID)
	}

	return req, nil
}

func (ht *HTTPClient) postForm(
	ctx context.Context,
	client *http.Client,
	path string,
	form url.Values,
) (*http.Response, []byte, error) {
	req, err := ht.newRequest(ctx, http.MethodPost, path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, nil, err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return ht.do(client, req)
}

func (ht *HTTPClient) get(ctx context.Context, client *http.Client, path string) (*http.Response, []byte, error) {
	req, err := ht.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, nil, err
	}

	return ht.do(client, req)
}

func (ht *HTTPClient) do(client *http.Client, req *http.Request) (*http.Response, []byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}

	return resp, body, nil
}
