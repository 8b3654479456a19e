package templates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/reportcard/core"
	appfs "github.com/trezcool/reportcard/fs"
)

var (
	embeddedDir = "templates/comments"
	extensions  = []string{".json", ".yaml", ".yml"}
)

// Catalog holds the templates of every loaded GradeTerm.
type Catalog map[GradeTerm][]Template

// fileContent is either a bare list of templates or an object wrapping it.
type fileContent struct {
	Comments []Template `json:"comments" yaml:"comments"`
}

// Load reads every grade-term file concurrently, from dir when set, otherwise from the embedded files.
// Missing or invalid files are logged and skipped.
func Load(ctx context.Context, logger core.Logger, dir string) (Catalog, error) {
	fsys, root := fs.FS(appfs.FS), embeddedDir
	if dir != "" {
		fsys, root = os.DirFS(dir), "."
	}

	var (
		mu      sync.Mutex
		catalog = make(Catalog)
	)
	eg, egCtx := errgroup.WithContext(ctx)
	for _, gt := range AllGradeTerms() {
		gt := gt
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			tmpls, err := loadFile(fsys, root, gt)
			if err != nil {
				logger.Warn(fmt.Sprintf("loading %s templates: %v", gt, err), core.Fields{"grade_term": gt.String()})
				return nil
			}
			mu.Lock()
			catalog[gt] = tmpls
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, errors.Wrap(err, "loading templates")
	}
	return catalog, nil
}

func loadFile(fsys fs.FS, root string, gt GradeTerm) ([]Template, error) {
	for _, ext := range extensions {
		data, err := fs.ReadFile(fsys, path.Join(root, gt.String()+ext))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		tmpls, err := decode(data, ext)
		if err != nil {
			return nil, errors.Wrapf(err, "decoding %s%s", gt, ext)
		}
		for i := range tmpls {
			if tmpls[i].ID == "" {
				tmpls[i].ID = fmt.Sprintf("%s_%d", gt, i)
			}
		}
		return tmpls, nil
	}
	return nil, fs.ErrNotExist
}

func decode(data []byte, ext string) ([]Template, error) {
	trimmed := bytes.TrimSpace(data)
	if ext == ".json" {
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var tmpls []Template
			err := json.Unmarshal(trimmed, &tmpls)
			return tmpls, err
		}
		var content fileContent
		err := json.Unmarshal(trimmed, &content)
		return content.Comments, err
	}

	var node yaml.Node
	if err := yaml.Unmarshal(trimmed, &node); err != nil {
		return nil, err
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	if node.Content[0].Kind == yaml.SequenceNode {
		var tmpls []Template
		err := node.Decode(&tmpls)
		return tmpls, err
	}
	var content fileContent
	err := node.Decode(&content)
	return content.Comments, err
}
