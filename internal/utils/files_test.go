package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSafeWriteFileReplaces(t *testing.T) {
	p := filepath.Join(t.TempDir(), "session.json")
	if err := SafeWriteFile(p, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := SafeWriteFile(p, []byte("two")); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(p)
	if err != nil || string(b) != "two" {
		t.Fatalf("content = %q err=%v", b, err)
	}
	if _, err := os.Stat(p + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	got, err := ExpandHome("~/data/alzheimer.csv")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join("/home/tester", "data", "alzheimer.csv") {
		t.Fatalf("got %q", got)
	}
	if got, _ := ExpandHome("/abs/x.csv"); got != "/abs/x.csv" {
		t.Fatalf("absolute path changed: %q", got)
	}
}

func TestSplitList(t *testing.T) {
	if got := SplitList(" a, b ,,c "); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("got %v", got)
	}
	if got := SplitList(""); got != nil {
		t.Fatalf("got %v", got)
	}
}
