package download

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/audio-harvester/internal/config"
	"github.com/user/audio-harvester/internal/domain"
	"github.com/user/audio-harvester/pkg/utils"
)

var (
	ErrInvalidTask          = errors.New("invalid download task")
	ErrDuplicateDestination = errors.New("destination already claimed by an earlier link")
)

// Planner derives a destination for every link: <OutDir>/<Prefix><basename>.
// Policy decides what happens when two links share a basename.
type Planner struct {
	OutDir string
	Prefix string
	Policy string
}

func NewPlanner(outDir, prefix, policy string) *Planner {
	if policy == "" {
		policy = config.CollisionOverwrite
	}
	return &Planner{OutDir: outDir, Prefix: prefix, Policy: policy}
}

// Plan returns the tasks to run and, separately, the outcomes of links that
// were rejected before any network call (no usable name, or a duplicate
// under the skip policy). Both carry the link's index.
func (p *Planner) Plan(links []domain.MediaLink) ([]domain.DownloadTask, []domain.DownloadOutcome) {
	var (
		tasks    []domain.DownloadTask
		rejected []domain.DownloadOutcome
		claimed  = make(map[string]bool, len(links))
	)

	for i, link := range links {
		name, err := p.FileName(link)
		if err != nil {
			rejected = append(rejected, domain.DownloadOutcome{
				Task:   domain.DownloadTask{Index: i, Link: link},
				Status: domain.StatusFailed,
				Err:    err,
			})
			continue
		}
		dest := filepath.Join(p.OutDir, name)

		if claimed[dest] {
			switch p.Policy {
			case config.CollisionSkip:
				rejected = append(rejected, domain.DownloadOutcome{
					Task:   domain.DownloadTask{Index: i, Link: link, Destination: dest},
					Status: domain.StatusSkipped,
					Err:    ErrDuplicateDestination,
				})
				continue
			case config.CollisionRename:
				dest = p.nextFree(dest, claimed)
			}
		}
		claimed[dest] = true
		tasks = append(tasks, domain.DownloadTask{Index: i, Link: link, Destination: dest})
	}
	return tasks, rejected
}

// FileName is Prefix + the link's final path segment.
func (p *Planner) FileName(link domain.MediaLink) (string, error) {
	base := utils.Basename(string(link))
	if base == "" || base == ".." || strings.ContainsAny(base, `/\`) {
		return "", fmt.Errorf("%w: no file name in %q", ErrInvalidTask, link)
	}
	return p.Prefix + base, nil
}

// nextFree appends -2, -3, ... before the extension until the path is unused.
func (p *Planner) nextFree(dest string, claimed map[string]bool) string {
	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s-%d%s", stem, n, ext)
		if !claimed[candidate] {
			return candidate
		}
	}
}
