package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/karasuhime/inkwell/internal/blobstore"
	"github.com/karasuhime/inkwell/internal/common"
	"github.com/karasuhime/inkwell/internal/contentservice"
	"github.com/karasuhime/inkwell/internal/userservice"
)

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatal(err)
	}

	var envelope envelope
	err = json.Unmarshal(responseBody, &envelope)
	if err != nil {
		t.Fatal(err)
	}

	return res.StatusCode, res.Header, envelope
}

func newTestApplication(t *testing.T) (*application, *sql.DB) {
	db := common.TestDB("file://../migrations", t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rabbitURI := common.TestRabbitMQ(t)
	rabbitmq, err := common.NewMessageBroker(rabbitURI)
	assert.NoError(t, err)
	t.Cleanup(func() { rabbitmq.Close() })

	err = common.SetupMailExchange(rabbitmq)
	assert.NoError(t, err)

	blobs, err := blobstore.NewDiskStore(t.TempDir())
	assert.NoError(t, err)

	cfg := &Config{
		Port:           ":0",
		Environment:    "testing",
		Version:        "1.0.0",
		RateLimitRPS:   100,
		RateLimitBurst: 200,
	}

	app := &application{
		config:         cfg,
		logger:         logger,
		userService:    userservice.NewUserService(db, common.NewCache(0, 0)),
		contentService: contentservice.NewContentService(db, common.NewCache(0, 0), blobs, logger),
		broker:         rabbitmq,
		blobs:          blobs,
	}

	return app, db
}

// registerAndLogin creates an account through the API and returns its user id
// and a valid access token.
func registerAndLogin(t *testing.T, ts *testServer, name, email, password string) (int, string) {
	status, _, body := ts.post(t, "/v1/users/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, nil)
	assert.Equal(t, http.StatusCreated, status)

	user, ok := body["user"].(map[string]any)
	assert.True(t, ok)
	id := int(user["id"].(float64))

	status, _, body = ts.post(t, "/v1/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	assert.Equal(t, http.StatusOK, status)

	token, ok := body["token"].(map[string]any)
	assert.True(t, ok)

	return id, token["access_token"].(string)
}

func (ts *testServer) do(t *testing.T, method, path string, payload any, token *string) (int, http.Header, envelope) {
	var body io.Reader

	if payload != nil {
		jsonPayload, err := json.Marshal(payload)
		if err != nil {
			t.Fatal(err)
		}
		body = bytes.NewReader(jsonPayload)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}

func (ts *testServer) post(t *testing.T, path string, payload any, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, payload, token)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, nil, token)
}

func (ts *testServer) patch(t *testing.T, path string, payload any, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPatch, path, payload, token)
}

func (ts *testServer) delete(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodDelete, path, nil, token)
}

// postForm submits a multipart form, optionally attaching fileContent as an
// "image" file upload.
func (ts *testServer) postForm(t *testing.T, path string, fields map[string]string, fileContent []byte, token *string) (int, http.Header, envelope) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		err := writer.WriteField(key, value)
		if err != nil {
			t.Fatal(err)
		}
	}

	if fileContent != nil {
		part, err := writer.CreateFormFile("image", "cover.png")
		if err != nil {
			t.Fatal(err)
		}
		_, err = part.Write(fileContent)
		if err != nil {
			t.Fatal(err)
		}
	}

	err := writer.Close()
	if err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != nil {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", *token))
	}

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}

	return readResponse(t, res)
}
