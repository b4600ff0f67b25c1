package cli

// Short messages (one-liners)
const (
	MsgRootShort = "Patch installed scripts to survive long interpreter paths"
	MsgRootLong  = `rebang rewrites installed scripts whose interpreter line the kernel cannot
execute: #! directives past the portable length limit, and languages like Lua
or Node whose comment syntax the kernel does not understand at all. Patched
scripts route through the short-path relay dispatcher, which recovers the
original directive at run time and hands the script to its real interpreter.`

	MsgPatchShort = "Rewrite unusable interpreter directives under the given trees"
	MsgPatchLong  = `Walk each directory tree, classify every file's first line, and rewrite the
files that need it: line 1 becomes the dispatcher shebang, line 2 keeps the
original directive (re-commented for languages that cannot parse #!), and the
rest of the file is untouched. File modes are preserved, including read-only
ones, and re-running the command is a no-op.`

	MsgClassifyShort = "Show how each path's first line is classified"
	MsgClassifyLong  = `Classify each path without modifying anything. Useful to preview what a
patch run would touch, or to check whether a tree has already been patched.`

	MsgInstallShort = "Install the relay dispatcher under the install root"
	MsgInstallLong  = `Copy the relay dispatcher binary to <root>/bin/relay with mode 0755.
The command is idempotent and repairs a corrupt or non-executable dispatcher.`

	MsgGenConfigShort = "Print the default configuration as TOML"

	MsgDocsShort = "Show documentation topics"
	MsgDocsLong  = "Render a documentation topic in the terminal, or list available topics."

	MsgVersionShort = "Print version information"

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun  = "Preview changes without writing anything"
	MsgFlagRoot    = "Install root under which the dispatcher lives (default: $REBANG_ROOT or cwd)"
	MsgFlagExclude = "Doublestar glob (relative to each tree) to skip; repeatable"
	MsgFlagFormat  = "Output format: text, json or yaml"
	MsgFlagForce   = "Patch even when no dispatcher is installed under the root"
	MsgFlagFrom    = "Dispatcher binary to install (default: relay next to this executable)"
)
