package ignore

// DefaultPatterns is the built-in ignore list seeded by the engine (spec
// §6): VCS directories (also covered by Matcher's VCS switch, and listed
// here so that they stay ignored when that switch is off),
// package/build artifact directories, common IDE scratch files, OS cruft
// files, and log/temporary extensions.
var DefaultPatterns = []string{
	// VCS directories.
	".git/",
	".hg/",
	".svn/",
	".bzr/",
	"_darcs/",

	// Package/build artifact directories.
	"node_modules/",
	"vendor/",
	"target/",
	"dist/",
	"build/",
	"bin/",
	".gradle/",
	"__pycache__/",

	// IDE scratch files and directories.
	".idea/",
	".vscode/",
	"*.swp",
	"*.swo",
	"*~",

	// OS cruft files.
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",

	// Log and temporary extensions.
	"*.log",
	"*.tmp",
	"*.temp",
}
