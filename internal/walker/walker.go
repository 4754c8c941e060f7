// -----------------------------------------------------------------------
// Job Tree Walker - depth-first enumeration of leaf jobs
// -----------------------------------------------------------------------

package walker

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/census/internal/interfaces"
	"github.com/ternarybob/census/internal/models"
)

// Walker enumerates a nested job hierarchy as a flat sequence of leaf jobs.
// Traversal uses an explicit stack instead of language recursion: the
// hierarchy has no fixed depth limit, and a visited-set guard turns an
// unexpected cycle into a per-subtree failure instead of an endless loop.
type Walker struct {
	ci     interfaces.CIServer
	logger arbor.ILogger
}

// New creates a walker over the given CI server.
func New(ci interfaces.CIServer, logger arbor.ILogger) *Walker {
	return &Walker{ci: ci, logger: logger}
}

type frame struct {
	path []string
}

// Walk performs a depth-first traversal from root and calls fn once per leaf.
// Folders are expanded further; every other kind is yielded as a leaf. A
// collaborator failure below the root yields a synthetic error leaf for that
// subtree and traversal continues with its siblings. Only two conditions are
// fatal: a failure listing the root itself, and a callback error.
func (w *Walker) Walk(ctx context.Context, root []string, fn func(models.Leaf) error) error {
	visited := map[string]bool{
		models.JoinPath(root): true,
	}

	stack := []frame{{path: root}}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := ctx.Err(); err != nil {
			return err
		}

		children, err := w.ci.ListChildren(ctx, cur.path)
		if err != nil {
			if len(cur.path) == len(root) {
				// Root failure: nothing was traversed, surface to the caller
				return fmt.Errorf("failed to list hierarchy root %q: %w", models.JoinPath(root), err)
			}
			w.logger.Warn().
				Str("path", models.JoinPath(cur.path)).
				Err(err).
				Msg("Folder listing failed, emitting error leaf")
			if err := fn(models.Leaf{Path: cur.path, Kind: models.PipelineTypeUnknown, Err: err}); err != nil {
				return err
			}
			continue
		}

		// Push folders in reverse so the stack pops them in listing order
		var folders []frame
		for _, child := range children {
			childPath := append(append([]string{}, cur.path...), child.Name)

			if child.Kind() != models.PipelineTypeFolder {
				if err := fn(models.Leaf{Path: childPath, Kind: child.Kind(), URL: child.URL}); err != nil {
					return err
				}
				continue
			}

			key := models.JoinPath(childPath)
			if visited[key] {
				cycleErr := &interfaces.CycleError{Path: childPath}
				w.logger.Error().
					Str("path", key).
					Msg("Repeated path prefix in hierarchy, skipping subtree")
				if err := fn(models.Leaf{Path: childPath, Kind: models.PipelineTypeUnknown, Err: cycleErr}); err != nil {
					return err
				}
				continue
			}
			visited[key] = true
			folders = append(folders, frame{path: childPath})
		}
		for i := len(folders) - 1; i >= 0; i-- {
			stack = append(stack, folders[i])
		}
	}

	return nil
}
