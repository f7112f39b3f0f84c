package filter

import (
	"testing"
	"time"

	"github.com/dualsync/engine/pkg/ignore"
)

func mustMatcher(t *testing.T, patterns []string) *ignore.Matcher {
	t.Helper()
	m, err := ignore.New(ignore.DialectMutagen, patterns, false)
	if err != nil {
		t.Fatalf("ignore.New failed: %v", err)
	}
	return m
}

func TestIncludeFileExtension(t *testing.T) {
	f := New(mustMatcher(t, nil), Options{Extensions: []string{"go"}})
	if !f.IncludeFile("main.go", 10, time.Now()) {
		t.Error("expected main.go to pass extension filter")
	}
	if f.IncludeFile("main.py", 10, time.Now()) {
		t.Error("expected main.py to fail extension filter")
	}
}

func TestIncludeFileSizeRange(t *testing.T) {
	f := New(mustMatcher(t, nil), Options{MinSize: 100, MaxSize: 200})
	if f.IncludeFile("a", 50, time.Now()) {
		t.Error("expected file below MinSize to be excluded")
	}
	if !f.IncludeFile("a", 150, time.Now()) {
		t.Error("expected file within range to be included")
	}
	if f.IncludeFile("a", 300, time.Now()) {
		t.Error("expected file above MaxSize to be excluded")
	}
}

func TestIncludeFileRespectsIgnoreRules(t *testing.T) {
	f := New(mustMatcher(t, []string{"*.log"}), Options{})
	if f.IncludeFile("debug.log", 1, time.Now()) {
		t.Error("expected ignored file to fail regardless of predicates")
	}
}

func TestDirectoriesOnlySubjectToIgnoreRules(t *testing.T) {
	f := New(mustMatcher(t, nil), Options{MinSize: 1000})
	if !f.IncludeDirectory("anydir") {
		t.Error("directories should not be subject to size predicates")
	}
}

func TestIncludeSymlinkRespectsIgnoreRulesButNotDirectoryOnlyPatterns(t *testing.T) {
	f := New(mustMatcher(t, []string{"*.log", "build/"}), Options{MinSize: 1000})
	if f.IncludeSymlink("debug.log") {
		t.Error("expected a plain leaf pattern to exclude a matching symlink")
	}
	if !f.IncludeSymlink("build") {
		t.Error("expected a directory-only pattern to leave a symlink sentinel included")
	}
}
