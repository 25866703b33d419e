package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Well-known Azurite development account key
const azuriteAccountKey = "Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw=="

type fakeBlobService struct {
	mu           sync.Mutex
	staged       []byte
	commitHeader http.Header
	commitStatus int
	commitCode   string
}

func (f *fakeBlobService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q := r.URL.Query()
	switch {
	case r.Method == http.MethodPut && q.Get("restype") == "container":
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodPut && q.Get("comp") == "block":
		body, _ := io.ReadAll(r.Body)
		f.staged = append(f.staged, body...)
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodPut && q.Get("comp") == "blocklist":
		f.commitHeader = r.Header.Clone()
		if f.commitCode != "" {
			w.Header().Set("x-ms-error-code", f.commitCode)
		}
		w.WriteHeader(f.commitStatus)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func (f *fakeBlobService) commit() (string, http.Header) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return string(f.staged), f.commitHeader
}

func newTestAzureBlobBucket(t *testing.T, fake *fakeBlobService) *AzureBlobBucket {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	conn := "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=" + azuriteAccountKey +
		";BlobEndpoint=" + srv.URL + "/devstoreaccount1;"
	bucket, err := NewAzureBlobBucket(context.Background(), conn, "", zap.NewNop())
	require.NoError(t, err)
	return bucket
}

func TestAzureBlobBucket_UploadSendsConditionalCommit(t *testing.T) {
	fake := &fakeBlobService{commitStatus: http.StatusCreated}
	bucket := newTestAzureBlobBucket(t, fake)

	size, err := bucket.Upload(context.Background(), "tool_1.html", "text/html", strings.NewReader("<p>"))
	require.NoError(t, err)

	staged, header := fake.commit()
	assert.Equal(t, int64(3), size)
	assert.Equal(t, "<p>", staged)
	assert.Equal(t, "*", header.Get("If-None-Match"))
	assert.Equal(t, "text/html", header.Get("x-ms-blob-content-type"))
}

func TestAzureBlobBucket_UploadExistingBlob(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
	}{
		{"blob already exists", http.StatusConflict, "BlobAlreadyExists"},
		{"condition not met", http.StatusPreconditionFailed, "ConditionNotMet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeBlobService{commitStatus: tt.status, commitCode: tt.code}
			bucket := newTestAzureBlobBucket(t, fake)

			_, err := bucket.Upload(context.Background(), "tool_1.html", "text/html", strings.NewReader("<p>"))
			assert.ErrorIs(t, err, ErrObjectExists)
			_, header := fake.commit()
			assert.Equal(t, "*", header.Get("If-None-Match"))
		})
	}
}

func TestAzureBlobBucket_UploadOtherFailure(t *testing.T) {
	fake := &fakeBlobService{commitStatus: http.StatusForbidden, commitCode: "AuthorizationFailure"}
	bucket := newTestAzureBlobBucket(t, fake)

	_, err := bucket.Upload(context.Background(), "tool_1.html", "text/html", strings.NewReader("<p>"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrObjectExists)
}

func TestAzureBlobBucket_PublicURLDefaultsToServiceURL(t *testing.T) {
	bucket := newTestAzureBlobBucket(t, &fakeBlobService{commitStatus: http.StatusCreated})

	assert.True(t, strings.HasSuffix(bucket.PublicURL("My Tool_1.png"), "/devstoreaccount1/tool-files/My%20Tool_1.png"),
		bucket.PublicURL("My Tool_1.png"))
}
