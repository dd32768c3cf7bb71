package remote

import (
	"context"
	"strings"

	"github.com/vertextoedge/label-portal/internal/domain"
	"github.com/vertextoedge/label-portal/internal/domain/vo"
)

// DefaultMaxSearchDepth bounds Search when no depth is configured
const DefaultMaxSearchDepth = 32

// listFunc returns the children of dir with Path relative to the base
type listFunc func(ctx context.Context, dir vo.RemotePath) ([]domain.RemoteFile, error)

// searchTree walks the subtree at root depth-first and collects every entry
// whose name contains query, ignoring case. Symbolic links are reported but
// never descended into, and each directory is listed at most once.
func searchTree(ctx context.Context, root vo.RemotePath, query string, maxDepth int, list listFunc) ([]domain.RemoteFile, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxSearchDepth
	}
	needle := strings.ToLower(query)
	visited := make(map[string]struct{})
	results := []domain.RemoteFile{}

	var walk func(dir vo.RemotePath, depth int) error
	walk = func(dir vo.RemotePath, depth int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, seen := visited[dir.Full()]; seen {
			return nil
		}
		visited[dir.Full()] = struct{}{}

		entries, err := list(ctx, dir)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if strings.Contains(strings.ToLower(entry.Name), needle) {
				results = append(results, entry)
			}
			if entry.Type != domain.RemoteTypeDirectory || depth+1 >= maxDepth {
				continue
			}
			child, err := dir.Join(entry.Name)
			if err != nil {
				continue
			}
			if err := walk(child, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walk(root, 0); err != nil {
		return nil, err
	}
	return results, nil
}

// isPseudoEntry reports the self and parent entries some servers list
func isPseudoEntry(name string) bool {
	return name == "." || name == ".." || name == ""
}
