package remote

import (
	"context"
	"errors"
	"path"
	"sort"
	"testing"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/domain/vo"
)

// fakeTree serves listings from a map of relative dir -> entries
type fakeTree struct {
	dirs  map[string][]domain.RemoteFile
	calls map[string]int
}

func newFakeTree() *fakeTree {
	return &fakeTree{dirs: make(map[string][]domain.RemoteFile), calls: make(map[string]int)}
}

func (f *fakeTree) add(dir, name string, typ domain.RemoteFileType) {
	f.dirs[dir] = append(f.dirs[dir], domain.RemoteFile{
		Name: name,
		Path: path.Join(dir, name),
		Type: typ,
	})
}

func (f *fakeTree) list(ctx context.Context, dir vo.RemotePath) ([]domain.RemoteFile, error) {
	f.calls[dir.Relative()]++
	return f.dirs[dir.Relative()], nil
}

func mustResolve(t *testing.T, base, p string) vo.RemotePath {
	t.Helper()
	rp, err := vo.ResolveRemotePath(base, p)
	if err != nil {
		t.Fatal(err)
	}
	return rp
}

func paths(files []domain.RemoteFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}
	sort.Strings(out)
	return out
}

func TestSearchTree_FindsMatchesAtEveryDepth(t *testing.T) {
	tree := newFakeTree()
	tree.add("", "Demo-Take1.wav", domain.RemoteTypeFile)
	tree.add("", "a", domain.RemoteTypeDirectory)
	tree.add("a", "b", domain.RemoteTypeDirectory)
	tree.add("a", "cover.png", domain.RemoteTypeFile)
	tree.add("a/b", "c", domain.RemoteTypeDirectory)
	tree.add("a/b/c", "final DEMO.flac", domain.RemoteTypeFile)
	tree.add("a/b/c", "notes.txt", domain.RemoteTypeFile)

	got, err := searchTree(context.Background(), mustResolve(t, "/srv/label", ""), "demo", 0, tree.list)
	if err != nil {
		t.Fatalf("searchTree() error = %v", err)
	}

	want := []string{"Demo-Take1.wav", "a/b/c/final DEMO.flac"}
	if gotPaths := paths(got); len(gotPaths) != len(want) || gotPaths[0] != want[0] || gotPaths[1] != want[1] {
		t.Errorf("searchTree() paths = %v, want %v", gotPaths, want)
	}
}

func TestSearchTree_MatchesDirectoriesAndSubtreeRoot(t *testing.T) {
	tree := newFakeTree()
	tree.add("releases", "LBL001-remixes", domain.RemoteTypeDirectory)
	tree.add("releases/LBL001-remixes", "remix.wav", domain.RemoteTypeFile)
	tree.add("releases", "LBL002", domain.RemoteTypeDirectory)

	got, err := searchTree(context.Background(), mustResolve(t, "/", "releases"), "remix", 0, tree.list)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"releases/LBL001-remixes", "releases/LBL001-remixes/remix.wav"}
	gotPaths := paths(got)
	if len(gotPaths) != 2 || gotPaths[0] != want[0] || gotPaths[1] != want[1] {
		t.Errorf("searchTree() paths = %v, want %v", gotPaths, want)
	}
}

func TestSearchTree_DoesNotFollowSymlinks(t *testing.T) {
	tree := newFakeTree()
	tree.add("", "loop", domain.RemoteTypeSymlink)
	tree.add("", "dir", domain.RemoteTypeDirectory)
	tree.add("dir", "loop-back", domain.RemoteTypeSymlink)
	tree.add("loop", "never-listed", domain.RemoteTypeFile)

	got, err := searchTree(context.Background(), mustResolve(t, "/", ""), "loop", 0, tree.list)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("searchTree() = %v, want the two symlinks", paths(got))
	}
	if tree.calls["loop"] != 0 {
		t.Error("symlink was descended into")
	}
	for dir, n := range tree.calls {
		if n > 1 {
			t.Errorf("directory %q listed %d times", dir, n)
		}
	}
}

func TestSearchTree_MaxDepth(t *testing.T) {
	tree := newFakeTree()
	tree.add("", "x", domain.RemoteTypeDirectory)
	tree.add("x", "y", domain.RemoteTypeDirectory)
	tree.add("x/y", "match", domain.RemoteTypeFile)

	got, err := searchTree(context.Background(), mustResolve(t, "/", ""), "match", 2, tree.list)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("searchTree() beyond max depth = %v, want none", paths(got))
	}
	if tree.calls["x/y"] != 0 {
		t.Error("directory beyond max depth was listed")
	}
}

func TestSearchTree_PropagatesListErrors(t *testing.T) {
	listErr := errors.New("permission denied")
	list := func(ctx context.Context, dir vo.RemotePath) ([]domain.RemoteFile, error) {
		return nil, listErr
	}

	if _, err := searchTree(context.Background(), mustResolve(t, "/", ""), "x", 0, list); !errors.Is(err, listErr) {
		t.Errorf("searchTree() error = %v, want %v", err, listErr)
	}
}

func TestSearchTree_ContextCancelled(t *testing.T) {
	tree := newFakeTree()
	tree.add("", "a", domain.RemoteTypeFile)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := searchTree(ctx, mustResolve(t, "/", ""), "a", 0, tree.list); !errors.Is(err, context.Canceled) {
		t.Errorf("searchTree() error = %v, want context.Canceled", err)
	}
}
