package remote

import (
	"fmt"
	"path"
	"strings"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/domain/vo"
)

// Layout maps caller paths and upload categories onto the remote tree.
// All caller paths are relative to BasePath.
type Layout struct {
	BasePath        string
	AdminRoot       string
	PublicRoot      string
	PublicURLPrefix string
}

// Resolve checks that p stays inside the base path
func (l Layout) Resolve(p string) (vo.RemotePath, error) {
	rp, err := vo.ResolveRemotePath(l.BasePath, p)
	if err != nil {
		return vo.RemotePath{}, fmt.Errorf("%w: %q", domain.ErrInvalidPath, p)
	}
	return rp, nil
}

// UploadTarget returns where an upload of p in category lands, and the public
// URL for public categories.
func (l Layout) UploadTarget(p string, category domain.UploadCategory) (vo.RemotePath, string, error) {
	inner, err := vo.ResolveRemotePath("/", p)
	if err != nil || inner.IsRoot() {
		return vo.RemotePath{}, "", fmt.Errorf("%w: %q", domain.ErrInvalidPath, p)
	}

	switch {
	case category == domain.CategoryAdmin:
		rp, err := l.Resolve(path.Join(l.AdminRoot, inner.Relative()))
		return rp, "", err
	case category.IsPublic():
		rp, err := l.Resolve(path.Join(l.PublicRoot, string(category), inner.Relative()))
		if err != nil {
			return vo.RemotePath{}, "", err
		}
		url := strings.TrimSuffix(l.PublicURLPrefix, "/") + "/" + string(category) + "/" + inner.Relative()
		return rp, url, nil
	default:
		return vo.RemotePath{}, "", domain.NewValidationError(fmt.Sprintf("unknown upload category %q", category))
	}
}
