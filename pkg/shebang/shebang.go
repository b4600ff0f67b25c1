package shebang

// MaxDirectiveLen is the portable shebang length limit in bytes, marker
// included. Kernels historically truncate or reject interpreter lines beyond
// this, which is the limit that makes the dispatcher necessary.
const MaxDirectiveLen = 127

// probeSize bounds how much of a file the classifier reads. Only line 1
// matters, so huge files are never loaded.
const probeSize = 4096

// Kind is the classification of a file's first line.
type Kind string

const (
	// KindDirectory is a directory; no content is read.
	KindDirectory Kind = "directory"

	// KindBinary is a file whose leading bytes are not text. Binaries are
	// never touched.
	KindBinary Kind = "binary"

	// KindNoShebang is a text file without a recognized directive marker.
	KindNoShebang Kind = "no-shebang"

	// KindShortShebang is a #! directive within MaxDirectiveLen; the kernel
	// can run it as-is.
	KindShortShebang Kind = "short-shebang"

	// KindLongShebang is a #! directive over MaxDirectiveLen; it must be
	// routed through the dispatcher.
	KindLongShebang Kind = "long-shebang"

	// KindCommentShebang is a directive using an alternate comment marker
	// (--! or //!). Those interpreters never honor #!, so these are routed
	// through the dispatcher regardless of length.
	KindCommentShebang Kind = "comment-shebang"

	// KindAlreadyDispatched is a file whose first line already points at the
	// dispatcher; patching it again is a no-op.
	KindAlreadyDispatched Kind = "already-dispatched"
)

func (k Kind) String() string { return string(k) }

// NeedsPatch reports whether the patcher rewrites files of this kind.
func (k Kind) NeedsPatch() bool {
	return k == KindLongShebang || k == KindCommentShebang
}

// Style identifies the comment-marker family of a directive.
type Style string

const (
	// StyleDefault is the ordinary #! marker.
	StyleDefault Style = "default"

	// StyleLua is the --! marker used by Lua-family languages.
	StyleLua Style = "lua"

	// StyleNode is the //! marker used by C-syntax languages such as Node.
	StyleNode Style = "node"
)

// Marker returns the literal comment marker for the style.
func (s Style) Marker() string {
	switch s {
	case StyleLua:
		return "--!"
	case StyleNode:
		return "//!"
	default:
		return "#!"
	}
}

// markerTable is the closed set of recognized directive markers, checked in
// order against line 1. Extend by adding entries, never by sniffing content.
var markerTable = []struct {
	prefix string
	style  Style
}{
	{"#!", StyleDefault},
	{"--!", StyleLua},
	{"//!", StyleNode},
}

// recommentTable maps an interpreter program name to the marker family its
// language parses as a comment. When the patcher demotes a #! directive to
// line 2, interpreters in this table get their marker rewritten so the line
// stays harmless once the real interpreter finally reads the file.
var recommentTable = map[string]Style{
	"lua":    StyleLua,
	"luajit": StyleLua,
	"node":   StyleNode,
	"nodejs": StyleNode,
}

// RecommentStyle returns the style whose marker the given interpreter program
// can parse as a comment, or StyleDefault when #! is already safe for it.
func RecommentStyle(program string) Style {
	if s, ok := recommentTable[program]; ok {
		return s
	}
	return StyleDefault
}
