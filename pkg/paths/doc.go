// Package paths provides the path arithmetic lnedit is built on.
//
// Every computation is anchored on an explicit working directory carried by
// a Resolver, never on the process working directory, so the same inputs
// always give the same answers.
//
// # Absolute, physical and link-relative paths
//
// Absolute joins a path onto the working directory and cleans it lexically;
// symlinks are left alone. Realpath dereferences every component,
// tolerating components that do not exist. A link's stored target is
// interpreted relative to the physical directory holding the link
// (LinkDir), which is what the operating system does when it follows it.
//
// # Root-relative paths
//
// A root marker is a symlink (".userroot" by default) naming a directory
// that paths can be expressed against. RootRelative looks the marker up
// from the working directory and returns "<marker>/<rest>"; the result is a
// valid stored target for a link created next to the marker.
//
// # Environment Variables
//
//   - LNEDIT_CONFIG_DIR: Override the config directory (default: $XDG_CONFIG_HOME/lnedit)
//   - PWD: The logical working directory, honoured by CurrentWorkDir when it
//     names the same directory as the process working directory
package paths
