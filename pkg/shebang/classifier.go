package shebang

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/rebang/rebang/pkg/errors"
	"github.com/rebang/rebang/pkg/filesystem"
)

// Classification is the result of inspecting a path's first line.
type Classification struct {
	Kind Kind

	// Style is set for KindCommentShebang entries.
	Style Style

	// Line is the raw first line (no trailing newline) for kinds that carry
	// a directive. Empty for directories and binaries.
	Line string
}

// Classifier classifies paths by their first-line directive.
type Classifier struct {
	fs             filesystem.FS
	dispatcherPath string
}

// NewClassifier returns a classifier that recognizes files already routed
// through the dispatcher installed at dispatcherPath.
func NewClassifier(fs filesystem.FS, dispatcherPath string) *Classifier {
	return &Classifier{fs: fs, dispatcherPath: dispatcherPath}
}

// binaryMagics are container signatures that mark a file as binary before any
// text heuristics run.
var binaryMagics = [][]byte{
	{0x7f, 'E', 'L', 'F'}, // ELF
	{0x1f, 0x8b},          // gzip
	{'P', 'K', 0x03, 0x04}, // zip
	{0xfe, 0xed, 0xfa, 0xce}, // Mach-O 32
	{0xfe, 0xed, 0xfa, 0xcf}, // Mach-O 64
	{0xcf, 0xfa, 0xed, 0xfe}, // Mach-O 64 LE
}

// Classify inspects path and returns its classification. Only line 1 is ever
// examined; identical marker text later in the file never counts.
func (c *Classifier) Classify(path string) (Classification, error) {
	info, err := c.fs.Lstat(path)
	if err != nil {
		return Classification{}, errors.Wrapf(err, errors.ErrClassifyRead, "cannot stat %s", path)
	}
	if info.IsDir() {
		return Classification{Kind: KindDirectory}, nil
	}
	if !info.Mode().IsRegular() {
		// Symlinks, sockets, devices: never candidates for patching.
		return Classification{Kind: KindBinary}, nil
	}

	f, err := c.fs.Open(path)
	if err != nil {
		return Classification{}, errors.Wrapf(err, errors.ErrClassifyRead, "cannot open %s", path)
	}
	defer func() { _ = f.Close() }()

	probe := make([]byte, probeSize)
	n, err := io.ReadFull(f, probe)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Classification{}, errors.Wrapf(err, errors.ErrClassifyRead, "cannot read %s", path)
	}
	probe = probe[:n]

	return c.classifyBytes(probe), nil
}

func (c *Classifier) classifyBytes(probe []byte) Classification {
	if len(probe) == 0 {
		return Classification{Kind: KindNoShebang}
	}

	for _, magic := range binaryMagics {
		if bytes.HasPrefix(probe, magic) {
			return Classification{Kind: KindBinary}
		}
	}

	line := probe
	if i := bytes.IndexByte(probe, '\n'); i >= 0 {
		line = probe[:i]
	}
	line = bytes.TrimSuffix(line, []byte("\r"))

	if bytes.IndexByte(line, 0) >= 0 || !utf8.Valid(line) {
		return Classification{Kind: KindBinary}
	}

	first := string(line)
	for _, m := range markerTable {
		if !strings.HasPrefix(first, m.prefix) {
			continue
		}
		if m.style != StyleDefault {
			return Classification{Kind: KindCommentShebang, Style: m.style, Line: first}
		}
		if first == "#!"+c.dispatcherPath {
			return Classification{Kind: KindAlreadyDispatched, Line: first}
		}
		if len(first) <= MaxDirectiveLen {
			return Classification{Kind: KindShortShebang, Line: first}
		}
		return Classification{Kind: KindLongShebang, Line: first}
	}

	return Classification{Kind: KindNoShebang}
}

// TooLong reports whether path carries a #! directive over the portable
// length limit.
func (c *Classifier) TooLong(path string) (bool, error) {
	cls, err := c.Classify(path)
	if err != nil {
		return false, err
	}
	return cls.Kind == KindLongShebang, nil
}
