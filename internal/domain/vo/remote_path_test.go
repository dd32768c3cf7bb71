package vo

import "testing"

func TestResolveRemotePath(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		input    string
		wantFull string
		wantRel  string
		wantErr  bool
	}{
		{name: "simple", base: "/srv/label", input: "demos/a.wav", wantFull: "/srv/label/demos/a.wav", wantRel: "demos/a.wav"},
		{name: "leading slash is relative", base: "/srv/label", input: "/demos", wantFull: "/srv/label/demos", wantRel: "demos"},
		{name: "root", base: "/srv/label", input: "", wantFull: "/srv/label", wantRel: ""},
		{name: "dot", base: "/srv/label", input: ".", wantFull: "/srv/label", wantRel: ""},
		{name: "double slashes", base: "/srv/label/", input: "a//b///c", wantFull: "/srv/label/a/b/c", wantRel: "a/b/c"},
		{name: "base is root", base: "/", input: "x/y", wantFull: "/x/y", wantRel: "x/y"},
		{name: "parent escape", base: "/srv/label", input: "../etc/passwd", wantErr: true},
		{name: "nested parent escape", base: "/srv/label", input: "a/../../etc", wantErr: true},
		{name: "backslash parent escape", base: "/srv/label", input: "..\\..\\etc", wantErr: true},
		{name: "harmless parent still rejected", base: "/srv/label", input: "a/../b", wantErr: true},
		{name: "nul byte", base: "/srv/label", input: "a\x00b", wantErr: true},
		{name: "dotted name is fine", base: "/srv/label", input: "..hidden/file", wantFull: "/srv/label/..hidden/file", wantRel: "..hidden/file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rp, err := ResolveRemotePath(tt.base, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ResolveRemotePath(%q, %q) = %q, want error", tt.base, tt.input, rp.Full())
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveRemotePath(%q, %q) error = %v", tt.base, tt.input, err)
			}
			if rp.Full() != tt.wantFull {
				t.Errorf("Full() = %q, want %q", rp.Full(), tt.wantFull)
			}
			if rp.Relative() != tt.wantRel {
				t.Errorf("Relative() = %q, want %q", rp.Relative(), tt.wantRel)
			}
		})
	}
}

func TestRemotePath_DirAndJoin(t *testing.T) {
	rp, err := ResolveRemotePath("/data", "a/b/c.txt")
	if err != nil {
		t.Fatal(err)
	}

	if got := rp.Dir().Full(); got != "/data/a/b" {
		t.Errorf("Dir() = %q, want /data/a/b", got)
	}
	if got := rp.Name(); got != "c.txt" {
		t.Errorf("Name() = %q, want c.txt", got)
	}

	top, _ := ResolveRemotePath("/data", "file")
	if got := top.Dir(); !got.IsRoot() {
		t.Errorf("Dir() of top-level file = %q, want base", got.Full())
	}

	joined, err := rp.Dir().Join("d.txt")
	if err != nil || joined.Full() != "/data/a/b/d.txt" {
		t.Errorf("Join() = (%q, %v), want /data/a/b/d.txt", joined.Full(), err)
	}

	if _, err := rp.Dir().Join("..", "..", ".."); err == nil {
		t.Error("Join() escaping the base should fail")
	}
}
