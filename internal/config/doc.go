// Package config manages the client-side configuration registry for the goe
// command-line tools.
//
// The registry is a YAML file in the user's configuration directory mapping
// nicknames to charger hosts, so commands can say "home" instead of
// "192.168.1.40". It is purely local convenience data: nothing in it is ever
// sent to or read from a charger, and the library itself never touches it.
//
// Files are written atomically (write to temp file, rename) with user-only
// permissions.
package config
