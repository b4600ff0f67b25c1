package patcher

import (
	"bytes"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/rebang/rebang/pkg/errors"
	"github.com/rebang/rebang/pkg/filesystem"
	"github.com/rebang/rebang/pkg/logging"
	"github.com/rebang/rebang/pkg/shebang"
)

// Options configures a Patcher.
type Options struct {
	// Exclude holds doublestar globs, matched against paths relative to the
	// scan root. Matching files are skipped; matching directories are pruned.
	Exclude []string

	// DryRun classifies and reports but never writes.
	DryRun bool
}

// Patcher walks directory trees and rewrites long or comment-style
// directives in place.
type Patcher struct {
	fs             filesystem.FS
	classifier     *shebang.Classifier
	dispatcherPath string
	opts           Options
	logger         zerolog.Logger
}

// New creates a Patcher targeting the dispatcher installed at dispatcherPath.
func New(fsys filesystem.FS, dispatcherPath string, opts Options) (*Patcher, error) {
	if len("#!"+dispatcherPath) > shebang.MaxDirectiveLen {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"dispatcher path %s does not fit in a portable shebang line", dispatcherPath)
	}
	return &Patcher{
		fs:             fsys,
		classifier:     shebang.NewClassifier(fsys, dispatcherPath),
		dispatcherPath: dispatcherPath,
		opts:           opts,
		logger:         logging.GetLogger("patcher"),
	}, nil
}

// PatchTree visits every entry under root recursively and patches the files
// that need it. Per-file and per-subtree failures are collected in the
// Result; the returned error is reserved for a root that cannot be read.
func (p *Patcher) PatchTree(root string) (*Result, error) {
	done := logging.LogOperationStart(p.logger, "patch-tree")
	defer done()

	result := &Result{}
	if err := p.walk(root, root, result); err != nil {
		return result, err
	}
	return result, nil
}

func (p *Patcher) walk(root, dir string, result *Result) error {
	entries, err := p.fs.ReadDir(dir)
	if err != nil {
		wrapped := errors.Wrapf(err, errors.ErrClassifyRead, "cannot read directory %s", dir)
		if dir == root {
			return wrapped
		}
		// An unlistable subtree is one failure among many; sibling
		// subtrees still get visited.
		p.logger.Warn().Err(err).Str("path", dir).Msg("cannot read directory")
		result.record(FileResult{Path: dir, Kind: shebang.KindDirectory, Err: wrapped})
		return nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = entry.Name()
		}
		if p.excluded(rel) {
			p.logger.Debug().Str("path", path).Msg("excluded by pattern")
			continue
		}

		if entry.IsDir() {
			if err := p.walk(root, path, result); err != nil {
				return err
			}
			continue
		}

		p.visitFile(path, result)
	}
	return nil
}

func (p *Patcher) excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, pattern := range p.opts.Exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (p *Patcher) visitFile(path string, result *Result) {
	cls, err := p.classifier.Classify(path)
	if err != nil {
		p.logger.Warn().Err(err).Str("path", path).Msg("classification failed")
		result.record(FileResult{Path: path, Err: err})
		return
	}

	fr := FileResult{Path: path, Kind: cls.Kind}
	if !cls.Kind.NeedsPatch() {
		p.logger.Trace().Str("path", path).Stringer("kind", cls.Kind).Msg("skipped")
		result.record(fr)
		return
	}

	if p.opts.DryRun {
		p.logger.Info().Str("path", path).Stringer("kind", cls.Kind).Msg("would patch")
		fr.Patched = true
		result.record(fr)
		return
	}

	if err := p.patchFile(path, cls); err != nil {
		p.logger.Warn().Err(err).Str("path", path).Msg("patch failed")
		fr.Err = err
		result.record(fr)
		return
	}

	p.logger.Info().Str("path", path).Stringer("kind", cls.Kind).Msg("patched")
	fr.Patched = true
	result.record(fr)
}

// PatchFile rewrites a single file previously classified as needing a patch.
func (p *Patcher) PatchFile(path string) error {
	cls, err := p.classifier.Classify(path)
	if err != nil {
		return err
	}
	if !cls.Kind.NeedsPatch() {
		return nil
	}
	return p.patchFile(path, cls)
}

func (p *Patcher) patchFile(path string, cls shebang.Classification) error {
	info, err := p.fs.Stat(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrPatchWrite, "cannot stat %s", path)
	}
	origMode := info.Mode().Perm()

	// The directive must be captured verbatim, not through the classifier's
	// bounded probe: nothing of the original bytes may be lost.
	data, err := p.fs.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrPatchWrite, "cannot read %s", path)
	}

	directive, body := splitFirstLine(data)
	newDirective := p.recomment(cls, directive)

	var buf bytes.Buffer
	buf.Grow(len(data) + shebang.MaxDirectiveLen)
	buf.WriteString("#!")
	buf.WriteString(p.dispatcherPath)
	buf.WriteByte('\n')
	buf.Write(newDirective)
	buf.WriteByte('\n')
	buf.Write(body)

	return p.replaceFile(path, buf.Bytes(), origMode)
}

// recomment rewrites a #! marker to the comment syntax of the interpreter's
// language when that language cannot parse #! (Lua, Node). Alternate markers
// are already valid comments and pass through unchanged.
func (p *Patcher) recomment(cls shebang.Classification, directive []byte) []byte {
	if cls.Kind != shebang.KindLongShebang {
		return directive
	}
	d, ok := shebang.ParseDirective(string(directive))
	if !ok {
		return directive
	}
	style := shebang.RecommentStyle(d.Program())
	if style == shebang.StyleDefault {
		return directive
	}
	rewritten := style.Marker() + strings.TrimPrefix(string(directive), "#!")
	return []byte(rewritten)
}

// splitFirstLine returns the first line without its newline, and the
// remaining bytes (newline included semantics: body starts after the first
// newline and is preserved byte-for-byte).
func splitFirstLine(data []byte) (line, body []byte) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[:i], data[i+1:]
	}
	return data, nil
}

// replaceFile writes data to a temporary sibling with the original mode and
// atomically renames it over path. The original mode is restored on every
// exit path, even when the swap fails.
func (p *Patcher) replaceFile(path string, data []byte, origMode fs.FileMode) (err error) {
	// Scoped owner-write grant: read-only files must be patchable, and must
	// come out read-only again.
	if origMode&0200 == 0 {
		if chmodErr := p.fs.Chmod(path, origMode|0200); chmodErr != nil {
			return errors.Wrapf(chmodErr, errors.ErrPermission, "cannot make %s writable", path)
		}
		defer func() {
			if restoreErr := p.fs.Chmod(path, origMode); restoreErr != nil && err == nil {
				err = errors.Wrapf(restoreErr, errors.ErrPatchPartial, "cannot restore mode on %s", path)
			}
		}()
	}

	tmp := path + ".rebang-tmp"
	if err := p.fs.WriteFile(tmp, data, origMode|0200); err != nil {
		return errors.Wrapf(err, errors.ErrPatchWrite, "cannot write temporary for %s", path)
	}
	// WriteFile's perm is subject to umask; pin the exact original bits on
	// the temporary before it takes the original's place.
	if err := p.fs.Chmod(tmp, origMode); err != nil {
		_ = p.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrPatchWrite, "cannot set mode on temporary for %s", path)
	}
	if err := p.fs.Rename(tmp, path); err != nil {
		_ = p.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrPatchWrite, "cannot replace %s", path)
	}
	// The renamed file already carries origMode; the deferred restore above
	// only matters when the swap failed midway.
	return nil
}
