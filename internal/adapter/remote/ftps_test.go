package remote

import (
	"errors"
	"fmt"
	"net/textproto"
	"path"
	"reflect"
	"testing"

	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/domain/vo"
)

// fakeFTPDir is an in-memory directory tree answering like an FTP server
type fakeFTPDir struct {
	dirs    map[string]bool
	files   map[string]uint64
	made    []string
	makeErr error
}

func newFakeFTPDir(dirs ...string) *fakeFTPDir {
	f := &fakeFTPDir{dirs: map[string]bool{}, files: map[string]uint64{}}
	for _, d := range dirs {
		f.dirs[d] = true
	}
	return f
}

func unavailable(msg string) error {
	return &textproto.Error{Code: ftp.StatusFileUnavailable, Msg: msg}
}

func (f *fakeFTPDir) MakeDir(p string) error {
	if f.makeErr != nil {
		return f.makeErr
	}
	if f.dirs[p] {
		return unavailable("File exists")
	}
	f.dirs[p] = true
	f.made = append(f.made, p)
	return nil
}

func (f *fakeFTPDir) List(p string) ([]*ftp.Entry, error) {
	if !f.dirs[p] {
		return nil, unavailable("No such file or directory")
	}
	entries := []*ftp.Entry{
		{Name: ".", Type: ftp.EntryTypeFolder},
		{Name: "..", Type: ftp.EntryTypeFolder},
	}
	for d := range f.dirs {
		if d != p && path.Dir(d) == p {
			entries = append(entries, &ftp.Entry{Name: path.Base(d), Type: ftp.EntryTypeFolder})
		}
	}
	for name, size := range f.files {
		if path.Dir(name) == p {
			entries = append(entries, &ftp.Entry{Name: path.Base(name), Type: ftp.EntryTypeFile, Size: size})
		}
	}
	return entries, nil
}

func srvPath(t *testing.T, p string) vo.RemotePath {
	t.Helper()
	rp, err := vo.ResolveRemotePath("/srv", p)
	if err != nil {
		t.Fatal(err)
	}
	return rp
}

func TestMkdirAll(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		dir      string
		wantMade []string
	}{
		{name: "root is a no-op", existing: []string{"/srv"}, dir: ""},
		{name: "creates every missing level", existing: []string{"/srv"}, dir: "a/b/c", wantMade: []string{"/srv/a", "/srv/a/b", "/srv/a/b/c"}},
		{name: "skips existing parents", existing: []string{"/srv", "/srv/a"}, dir: "a/b", wantMade: []string{"/srv/a/b"}},
		{name: "everything exists", existing: []string{"/srv", "/srv/a", "/srv/a/b"}, dir: "a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeFTPDir(tt.existing...)
			if err := mkdirAll(fake, srvPath(t, tt.dir)); err != nil {
				t.Fatalf("mkdirAll() error = %v", err)
			}
			if !reflect.DeepEqual(fake.made, tt.wantMade) {
				t.Errorf("created = %v, want %v", fake.made, tt.wantMade)
			}
		})
	}
}

func TestMkdirAll_OtherErrorsFail(t *testing.T) {
	fake := newFakeFTPDir("/srv")
	fake.makeErr = &textproto.Error{Code: 530, Msg: "Not logged in"}

	if err := mkdirAll(fake, srvPath(t, "a")); err == nil {
		t.Error("mkdirAll() should fail on non-550 replies")
	}
}

func TestStat(t *testing.T) {
	fake := newFakeFTPDir("/srv", "/srv/masters")
	fake.files["/srv/masters/mix.wav"] = 2048

	f, err := stat(fake, srvPath(t, "masters/mix.wav"))
	if err != nil {
		t.Fatalf("stat(file) error = %v", err)
	}
	if f.Type != domain.RemoteTypeFile || f.Size != 2048 || f.Path != "masters/mix.wav" {
		t.Errorf("stat(file) = %+v", f)
	}

	d, err := stat(fake, srvPath(t, "masters"))
	if err != nil || d.Type != domain.RemoteTypeDirectory {
		t.Errorf("stat(dir) = (%+v, %v)", d, err)
	}

	root, err := stat(fake, srvPath(t, ""))
	if err != nil || root.Type != domain.RemoteTypeDirectory {
		t.Errorf("stat(root) = (%+v, %v)", root, err)
	}

	if _, err := stat(fake, srvPath(t, "masters/none.wav")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stat(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := stat(fake, srvPath(t, "gone/none.wav")); !isFileUnavailable(err) {
		t.Errorf("stat(missing parent) error = %v, want 550", err)
	}
}

func TestListDir_SkipsPseudoEntries(t *testing.T) {
	fake := newFakeFTPDir("/srv", "/srv/a")
	fake.files["/srv/b.txt"] = 1

	files, err := listDir(fake, srvPath(t, ""))
	if err != nil {
		t.Fatalf("listDir() error = %v", err)
	}
	if got := filePaths(files); !reflect.DeepEqual(got, []string{"a", "b.txt"}) {
		t.Errorf("listDir() = %v, want [a b.txt]", got)
	}
}

func TestIsFileUnavailable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "550", err: unavailable("nope"), want: true},
		{name: "wrapped 550", err: fmt.Errorf("retr: %w", unavailable("nope")), want: true},
		{name: "450", err: &textproto.Error{Code: 450, Msg: "busy"}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isFileUnavailable(tt.err); got != tt.want {
				t.Errorf("isFileUnavailable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFTPSClient_WrapMapsNotFound(t *testing.T) {
	c := NewFTPSClient(Config{}, zap.NewNop())
	rp := srvPath(t, "a.wav")

	if err := c.wrap("download", rp, unavailable("nope")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("wrap(550) = %v, want ErrNotFound", err)
	}
	if err := c.wrap("stat", rp, domain.ErrNotFound); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("wrap(ErrNotFound) = %v, want ErrNotFound", err)
	}
	boom := errors.New("reset")
	if err := c.wrap("list", rp, boom); errors.Is(err, domain.ErrNotFound) || !errors.Is(err, boom) {
		t.Errorf("wrap(other) = %v", err)
	}
}
