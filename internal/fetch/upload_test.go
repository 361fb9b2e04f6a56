package fetch

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestSave_ReadsBackIdenticalBytes(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tmp")
	store, err := NewUploadStore(dir, true, 1<<20)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	payload := make([]byte, 4096)
	for i := range payload {
		payload[i] = byte(i * 7)
	}
	f, err := store.Save("sample.png", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Dir(f.Path()) != store.Dir || !strings.HasSuffix(f.Path(), "-sample.png") {
		t.Fatalf("unexpected path %s", f.Path())
	}
	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("read back bytes differ from upload")
	}
	onDisk, err := os.ReadFile(f.Path())
	if err != nil || !bytes.Equal(onDisk, payload) {
		t.Fatalf("saved file differs: err=%v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(f.Path()); err != nil {
		t.Fatalf("keep=true should leave the upload: %v", err)
	}
}

func TestSave_RemovesWhenNotKept(t *testing.T) {
	store, err := NewUploadStore(t.TempDir(), false, 0)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	f, err := store.Save("../../evil.jpg", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Dir(f.Path()) != store.Dir || !strings.HasSuffix(f.Path(), "-evil.jpg") {
		t.Fatalf("path escaped upload dir: %s", f.Path())
	}
	_ = f.Close()
	if _, err := os.Stat(f.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected upload removed, stat err=%v", err)
	}
}

func TestSave_Limits(t *testing.T) {
	store, err := NewUploadStore(t.TempDir(), false, 8)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if _, err := store.Save("big.png", strings.NewReader("0123456789")); err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Fatalf("err=%v", err)
	}
	if _, err := store.Save("empty.png", strings.NewReader("")); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("err=%v", err)
	}
	if left, _ := os.ReadDir(store.Dir); len(left) != 0 {
		t.Fatalf("rejected uploads left files behind: %d", len(left))
	}
}

func TestSave_SameNameConcurrently(t *testing.T) {
	store, err := NewUploadStore(t.TempDir(), false, 0)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := strings.Repeat(string(rune('a'+i)), 100)
			f, err := store.Save("sample.png", strings.NewReader(want))
			if err != nil {
				t.Errorf("save: %v", err)
				return
			}
			defer f.Close()
			got, _ := io.ReadAll(f)
			if string(got) != want {
				t.Errorf("upload %d read back another request's bytes", i)
			}
		}(i)
	}
	wg.Wait()
}

func TestSave_UnnamedUpload(t *testing.T) {
	store, err := NewUploadStore(t.TempDir(), false, 0)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	f, err := store.Save("..", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	defer f.Close()
	if !strings.HasSuffix(f.Path(), "-upload") {
		t.Fatalf("path=%s", f.Path())
	}
}
