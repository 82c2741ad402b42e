package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"dohmane/pkg/store"
)

// mockRoundTripper is a tiny fake S3 subset sufficient to exercise
// Archive/Restore/List without network access. It stores objects
// in-memory keyed by object key.
type mockRoundTripper struct{ state map[string][]byte }

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	if req.Method == http.MethodGet && strings.Contains(req.URL.RawQuery, "list-type=2") {
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range m.state {
			if prefix == "" || strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			b.WriteString("<Contents><Key>")
			b.WriteString(k)
			b.WriteString("</Key><Size>")
			b.WriteString(fmt.Sprintf("%d", len(m.state[k])))
			b.WriteString("</Size><LastModified>2024-01-01T00:00:00Z</LastModified></Contents>")
		}
		b.WriteString("</ListBucketResult>")
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(b.String())), Header: http.Header{"Content-Type": {"application/xml"}}}, nil
	}
	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		m.state[key] = body
		return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"ETag": {`"etag"`}}}, nil
	case http.MethodGet:
		if body, ok := m.state[key]; ok {
			return &http.Response{StatusCode: 200, Body: io.NopCloser(bytes.NewReader(body)), Header: http.Header{
				"Content-Length": {fmt.Sprintf("%d", len(body))},
				"Content-Type":   {"application/json"},
				"ETag":           {`"etag"`},
			}}, nil
		}
		return &http.Response{StatusCode: 404, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	return &http.Response{StatusCode: 501, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
}

func newMockStore(t *testing.T) *Store {
	t.Helper()
	rt := &mockRoundTripper{state: make(map[string][]byte)}
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	if err != nil {
		t.Fatalf("load aws config: %v", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = awssdk.String("https://mock.s3.local")
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
	})
	return &Store{client: client, bucket: "test-bucket"}
}

func TestArchiveRestoreRoundTrip(t *testing.T) {
	s := newMockStore(t)
	ctx := context.Background()

	v := store.New()
	v.Initial["Account"] = map[store.Key]store.Record{
		int64(1): {"id": int64(1), "name": "A"},
	}
	v.Current["Account"] = map[store.Key]store.Record{
		int64(1):  {"id": int64(1), "name": "B"},
		int64(-1): {"id": int64(-1), "name": "new"},
	}
	v.Deleted["Account"] = map[store.Key]store.Record{
		int64(2): {"id": int64(2), "name": "gone"},
	}
	v.NextKey = -2

	if err := s.Archive(ctx, "snapshots/latest.json", v); err != nil {
		t.Fatalf("archive: %v", err)
	}

	loaded, err := s.Restore(ctx, "snapshots/latest.json")
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if loaded.NextKey != v.NextKey {
		t.Fatalf("NextKey = %d, want %d", loaded.NextKey, v.NextKey)
	}
	if loaded.Initial["Account"][int64(1)]["name"] != "A" {
		t.Fatalf("initial not preserved: %#v", loaded.Initial["Account"])
	}
	if loaded.Current["Account"][int64(1)]["name"] != "B" {
		t.Fatalf("current not preserved: %#v", loaded.Current["Account"])
	}
	if loaded.Current["Account"][int64(-1)]["name"] != "new" {
		t.Fatalf("negative auto-key not preserved: %#v", loaded.Current["Account"])
	}
	if loaded.Deleted["Account"][int64(2)]["name"] != "gone" {
		t.Fatalf("deleted not preserved: %#v", loaded.Deleted["Account"])
	}
}

func TestRestoreMissingKey(t *testing.T) {
	s := newMockStore(t)
	if _, err := s.Restore(context.Background(), "nope.json"); err == nil {
		t.Fatalf("expected error restoring a missing object")
	}
}

func TestList(t *testing.T) {
	s := newMockStore(t)
	ctx := context.Background()
	v := store.New()

	if err := s.Archive(ctx, "snapshots/a.json", v); err != nil {
		t.Fatalf("archive a: %v", err)
	}
	if err := s.Archive(ctx, "snapshots/b.json", v); err != nil {
		t.Fatalf("archive b: %v", err)
	}
	if err := s.Archive(ctx, "other/c.json", v); err != nil {
		t.Fatalf("archive c: %v", err)
	}

	keys, err := s.List(ctx, "snapshots/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(keys) != 2 || keys[0] != "snapshots/a.json" || keys[1] != "snapshots/b.json" {
		t.Fatalf("unexpected keys: %#v", keys)
	}
}
