package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/alapierre/sortjson/pkg/backend"
	"github.com/alapierre/sortjson/pkg/compress"
	"github.com/alapierre/sortjson/pkg/secrets"
	"github.com/alapierre/sortjson/pkg/sign"
	"github.com/alapierre/sortjson/pkg/sortjson"
)

const seedB64 = "tG8Y/V8NOnR5i/YkO9uH0WlG6G6fR5e7uI9oP9kI9mI="

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func defaultOptions() sortjson.Options {
	return sortjson.Options{BufferSize: sortjson.DefaultBufferSize}
}

func TestHandleSort(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"b": 1, "a": [3, {"d": 4, "c": 5}]}`)
	b := writeFile(t, dir, "b.json", `["x", {"z": null, "y": true}]`)

	var out bytes.Buffer
	err := handleSort(context.Background(), nil, &out, &SortFlags{}, defaultOptions(), []string{a, b}, "", "", compress.None)
	if err != nil {
		t.Fatalf("handleSort failed: %v", err)
	}
	expected := "{\"a\":[3,{\"c\":5,\"d\":4}],\"b\":1}\n[\"x\",{\"y\":true,\"z\":null}]\n"
	if out.String() != expected {
		t.Errorf("Expected %q, got %q", expected, out.String())
	}
}

func TestHandleSortStdinToFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out", "doc.json")

	stdin := strings.NewReader(`{"b":1,"a":2}`)
	err := handleSort(context.Background(), stdin, io.Discard, &SortFlags{}, defaultOptions(), []string{"-"}, out, "", compress.None)
	if err != nil {
		t.Fatalf("handleSort failed: %v", err)
	}
	content, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != `{"a":2,"b":1}` {
		t.Errorf("Unexpected output %q", content)
	}
}

func TestHandleSortCompressed(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.json", `{"b":1,"a":2}`)
	out := filepath.Join(dir, "doc.json.gz")

	err := handleSort(context.Background(), nil, io.Discard, &SortFlags{}, defaultOptions(), []string{in}, out, "", compress.Gzip)
	if err != nil {
		t.Fatalf("handleSort failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	r, err := compress.NewReader(f, compress.Gzip)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	content, _ := io.ReadAll(r)
	if string(content) != `{"a":2,"b":1}` {
		t.Errorf("Unexpected output %q", content)
	}
}

func TestHandleSortErrors(t *testing.T) {
	dir := t.TempDir()
	dup := writeFile(t, dir, "dup.json", `{"a":1,"a":2}`)
	ok := writeFile(t, dir, "ok.json", `{"a":1}`)
	schemaPath := writeFile(t, dir, "schema.json", `{"type": "array"}`)

	err := handleSort(context.Background(), nil, io.Discard, &SortFlags{}, defaultOptions(), []string{dup}, "", "", compress.None)
	var dupErr *sortjson.KeyDuplicationError
	if !errors.As(err, &dupErr) {
		t.Errorf("Expected KeyDuplicationError, got %v", err)
	}

	err = handleSort(context.Background(), nil, io.Discard, &SortFlags{}, defaultOptions(), []string{ok}, "", schemaPath, compress.None)
	if err == nil {
		t.Error("Expected schema validation error")
	}

	err = handleSort(context.Background(), nil, io.Discard, &SortFlags{}, defaultOptions(), []string{ok, ok}, filepath.Join(dir, "x.json"), "", compress.None)
	if err == nil {
		t.Error("Expected error for --out with several inputs")
	}
}

func TestHandleHash(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"b": 1, "a": 2}`)

	var out bytes.Buffer
	if err := handleHash(context.Background(), nil, &out, &SortFlags{}, defaultOptions(), []string{a}); err != nil {
		t.Fatalf("handleHash failed: %v", err)
	}
	expected := sign.SHA256([]byte(`{"a":2,"b":1}`)) + "  " + a + "\n"
	if out.String() != expected {
		t.Errorf("Expected %q, got %q", expected, out.String())
	}
}

func TestHandleCompare(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", `{"b": 1, "a": 2}`)
	b := writeFile(t, dir, "b.json", "{\n  \"a\": 2,\n  \"b\": 1\n}\n")
	c := writeFile(t, dir, "c.json", `{"a": 2, "b": 10}`)

	var out bytes.Buffer
	if err := handleCompare(context.Background(), nil, &out, &SortFlags{}, defaultOptions(), a, b); err != nil {
		t.Errorf("Expected identical documents, got %v", err)
	}
	if !strings.Contains(out.String(), "identical") {
		t.Errorf("Unexpected output %q", out.String())
	}

	out.Reset()
	err := handleCompare(context.Background(), nil, &out, &SortFlags{}, defaultOptions(), a, c)
	if !errors.Is(err, errMismatch) {
		t.Errorf("Expected errMismatch, got %v", err)
	}
	if !strings.Contains(out.String(), "differ at byte 12") {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestSignVerifyCommands(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", `{"version": "1.0", "items": [1, 2]}`)
	sigPath := filepath.Join(dir, "doc.json.sig")
	pubPath := filepath.Join(dir, "ed25519.pub")

	pubKey, err := sign.SeedToPubKey(seedB64)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(pubPath, pubKey, 0644); err != nil {
		t.Fatal(err)
	}

	if err := handleSign(context.Background(), io.Discard, &SortFlags{}, defaultOptions(), doc, sigPath, "release", seedB64); err != nil {
		t.Fatalf("handleSign failed: %v", err)
	}

	// Reformatted document keeps the signature valid.
	writeFile(t, dir, "doc.json", "{\"items\":[1,2],\n\"version\":\"1.0\"}")
	var out bytes.Buffer
	if err := handleVerify(context.Background(), &out, &SortFlags{}, defaultOptions(), doc, sigPath, pubPath, sign.SHA256(pubKey)); err != nil {
		t.Fatalf("handleVerify failed: %v", err)
	}
	if !strings.Contains(out.String(), "Signature OK (key release") {
		t.Errorf("Unexpected output %q", out.String())
	}

	writeFile(t, dir, "doc.json", `{"items":[2,1],"version":"1.0"}`)
	if err := handleVerify(context.Background(), io.Discard, &SortFlags{}, defaultOptions(), doc, sigPath, pubPath, ""); err == nil {
		t.Error("Expected verification failure for changed document")
	}

	if err := handleVerify(context.Background(), io.Discard, &SortFlags{}, defaultOptions(), doc, sigPath, pubPath, "wrong"); err == nil {
		t.Error("Expected fingerprint mismatch")
	}
}

func TestHandleKeygen(t *testing.T) {
	dir := t.TempDir()
	pubPath := filepath.Join(dir, "ed25519.pub")
	store := secrets.NewInMemorySecretStore()

	var out bytes.Buffer
	if err := handleKeygen(&out, "release", pubPath, false, store); err != nil {
		t.Fatalf("handleKeygen failed: %v", err)
	}

	seed, err := store.Get(secrets.Service, secrets.SigningSeedKey("release"))
	if err != nil {
		t.Fatalf("Seed not stored: %v", err)
	}
	expectedPub, _ := sign.SeedToPubKey(seed)
	pub, err := readPublicKey(pubPath)
	if err != nil {
		t.Fatalf("readPublicKey failed: %v", err)
	}
	if !bytes.Equal(pub, expectedPub) {
		t.Error("Public key does not match stored seed")
	}
	if strings.Contains(out.String(), seed) {
		t.Error("Seed must not be printed when stored in keyring")
	}

	if err := handleKeygen(io.Discard, "release", pubPath, false, store); err == nil {
		t.Error("Expected error when public key exists")
	}
}

func TestReadPublicKeyBase64(t *testing.T) {
	dir := t.TempDir()
	pubKey, _ := sign.SeedToPubKey(seedB64)
	path := writeFile(t, dir, "key.b64", "  "+base64Encode(pubKey)+"\n")
	got, err := readPublicKey(path)
	if err != nil {
		t.Fatalf("readPublicKey failed: %v", err)
	}
	if !bytes.Equal(got, pubKey) {
		t.Error("Decoded key mismatch")
	}

	bad := writeFile(t, dir, "bad.pub", "nope")
	if _, err := readPublicKey(bad); err == nil {
		t.Error("Expected error for invalid key")
	}
}

type memoryRemote struct {
	mu    sync.Mutex
	files map[string][]byte
	types map[string]string
}

func newMemoryRemote() *memoryRemote {
	return &memoryRemote{files: map[string][]byte{}, types: map[string]string{}}
}

func (m *memoryRemote) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		m.files[r.URL.Path] = body
		m.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusCreated)
	case http.MethodHead, http.MethodGet:
		body, ok := m.files[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			w.Write(body)
		}
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestHandlePush(t *testing.T) {
	mem := newMemoryRemote()
	ts := httptest.NewServer(mem)
	defer ts.Close()

	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.json", `{"b": 1, "a": 2}`)
	b := backend.NewHTTPBackend(ts.URL, "", "")

	req := pushRequest{Document: doc, Path: "docs/doc.json", KeyID: "release", Seed: seedB64}
	if err := handlePush(context.Background(), nil, io.Discard, b, &SortFlags{}, defaultOptions(), req); err != nil {
		t.Fatalf("handlePush failed: %v", err)
	}

	if got := string(mem.files["/docs/doc.json"]); got != `{"a":2,"b":1}` {
		t.Errorf("Unexpected uploaded document %q", got)
	}
	if got := mem.types["/docs/doc.json"]; got != "application/json" {
		t.Errorf("Unexpected content type %q", got)
	}
	if got := string(mem.files["/docs/doc.json.sha256"]); got != sign.SHA256([]byte(`{"a":2,"b":1}`)) {
		t.Errorf("Unexpected checksum %q", got)
	}
	if _, ok := mem.files["/docs/doc.json.sig"]; !ok {
		t.Error("Signature was not uploaded")
	}

	// Second push without --force is refused.
	req.KeyID = ""
	if err := handlePush(context.Background(), nil, io.Discard, b, &SortFlags{}, defaultOptions(), req); err == nil {
		t.Error("Expected error when document exists")
	}
	req.Force = true
	if err := handlePush(context.Background(), nil, io.Discard, b, &SortFlags{}, defaultOptions(), req); err != nil {
		t.Errorf("Forced push failed: %v", err)
	}
}

func TestHandlePushCompressed(t *testing.T) {
	mem := newMemoryRemote()
	ts := httptest.NewServer(mem)
	defer ts.Close()

	b := backend.NewHTTPBackend(ts.URL, "", "")
	req := pushRequest{Document: "-", Path: "doc.json", Compress: compress.Zstd}
	stdin := strings.NewReader(`[{"b":1,"a":2}]`)
	if err := handlePush(context.Background(), stdin, io.Discard, b, &SortFlags{}, defaultOptions(), req); err != nil {
		t.Fatalf("handlePush failed: %v", err)
	}

	body, ok := mem.files["/doc.json.zst"]
	if !ok {
		t.Fatalf("Expected upload to doc.json.zst, got %v", mem.files)
	}
	if got := mem.types["/doc.json.zst"]; got != "application/zstd" {
		t.Errorf("Unexpected content type %q", got)
	}
	r, err := compress.NewReader(bytes.NewReader(body), compress.Zstd)
	if err != nil {
		t.Fatal(err)
	}
	content, _ := io.ReadAll(r)
	if string(content) != `[{"a":2,"b":1}]` {
		t.Errorf("Unexpected uploaded document %q", content)
	}
}

func TestTrackStatus(t *testing.T) {
	dir := t.TempDir()
	stateDir := filepath.Join(dir, "state")
	doc := writeFile(t, dir, "doc.json", `{"b": 1, "a": 2}`)

	if err := handleStatus(context.Background(), nil, io.Discard, &SortFlags{}, defaultOptions(), stateDir, "doc", doc); err == nil {
		t.Error("Expected error for untracked document")
	}

	if err := handleTrack(context.Background(), nil, io.Discard, &SortFlags{}, defaultOptions(), stateDir, "doc", doc); err != nil {
		t.Fatalf("handleTrack failed: %v", err)
	}

	// Formatting changes only.
	writeFile(t, dir, "doc.json", "{\n  \"a\": 2,\n  \"b\": 1\n}")
	var out bytes.Buffer
	if err := handleStatus(context.Background(), nil, &out, &SortFlags{}, defaultOptions(), stateDir, "doc", ""); err != nil {
		t.Fatalf("handleStatus failed: %v", err)
	}
	if !strings.Contains(out.String(), "Status:      unchanged") {
		t.Errorf("Unexpected output %q", out.String())
	}

	writeFile(t, dir, "doc.json", `{"a": 3, "b": 1}`)
	out.Reset()
	err := handleStatus(context.Background(), nil, &out, &SortFlags{}, defaultOptions(), stateDir, "doc", "")
	if !errors.Is(err, errMismatch) {
		t.Errorf("Expected errMismatch, got %v", err)
	}
	if !strings.Contains(out.String(), "Status:      changed") {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestTrackStatusRecordedSource(t *testing.T) {
	dir := t.TempDir()
	stateDir := filepath.Join(dir, "state")

	stdin := strings.NewReader(`{"b": 1, "a": 2}`)
	if err := handleTrack(context.Background(), stdin, io.Discard, &SortFlags{}, defaultOptions(), stateDir, "piped", "-"); err != nil {
		t.Fatalf("handleTrack from stdin failed: %v", err)
	}
	err := handleStatus(context.Background(), strings.NewReader(`{}`), io.Discard, &SortFlags{}, defaultOptions(), stateDir, "piped", "")
	if err == nil || !strings.Contains(err.Error(), "document is required") {
		t.Errorf("Expected document required error, got %v", err)
	}
	var out bytes.Buffer
	stdin = strings.NewReader(`{"a": 2, "b": 1}`)
	if err := handleStatus(context.Background(), stdin, &out, &SortFlags{}, defaultOptions(), stateDir, "piped", "-"); err != nil {
		t.Fatalf("handleStatus with explicit stdin failed: %v", err)
	}
	if !strings.Contains(out.String(), "Status:      unchanged") {
		t.Errorf("Unexpected output %q", out.String())
	}

	// Relative paths are recorded as absolute ones.
	writeFile(t, dir, "rel.json", `{"b": 1, "a": 2}`)
	chdir(t, dir)
	if err := handleTrack(context.Background(), nil, io.Discard, &SortFlags{}, defaultOptions(), stateDir, "rel", "rel.json"); err != nil {
		t.Fatalf("handleTrack with relative path failed: %v", err)
	}
	chdir(t, t.TempDir())
	out.Reset()
	if err := handleStatus(context.Background(), nil, &out, &SortFlags{}, defaultOptions(), stateDir, "rel", ""); err != nil {
		t.Fatalf("handleStatus from another directory failed: %v", err)
	}
	if !strings.Contains(out.String(), "Status:      unchanged") {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func TestRemoteCommands(t *testing.T) {
	dir := t.TempDir()
	store := secrets.NewInMemorySecretStore()

	err := handleRemoteInit(io.Discard, dir, store, "nexus", "https://nexus.example.com/repository/json", "deployer", "secret", true)
	if err != nil {
		t.Fatalf("handleRemoteInit failed: %v", err)
	}
	if pass, _ := store.Get(secrets.Service, secrets.RemotePasswordKey("nexus")); pass != "secret" {
		t.Errorf("Password not stored, got %q", pass)
	}

	var out bytes.Buffer
	if err := handleRemoteConfig(&out, dir, "nexus"); err != nil {
		t.Fatalf("handleRemoteConfig failed: %v", err)
	}
	if !strings.Contains(out.String(), "SORTJSON_REMOTE_BASE_URL=https://nexus.example.com/repository/json") {
		t.Errorf("Unexpected output %q", out.String())
	}

	if err := handleRemoteConfig(io.Discard, dir, "missing"); err == nil {
		t.Error("Expected error for unknown remote")
	}
}

func TestHandleVersion(t *testing.T) {
	var out bytes.Buffer
	handleVersion(&out)
	if !strings.HasPrefix(out.String(), "sortjson\nVersion: ") {
		t.Errorf("Unexpected output %q", out.String())
	}
}

func base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// chdir changes the working directory for the rest of the test and restores
// it on cleanup, like testing.T.Chdir in newer Go releases.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restoring working directory failed: %v", err)
		}
	})
}
