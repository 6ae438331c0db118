/*
Tangled is a tangle consensus node written in Go. It stores the blocks of a
tangle, solidifies them, confirms the milestones issued by a coordinator with
the white-flag algorithm and keeps the resulting ledger in a leveldb database.

The default options are sane for most users. This means tangled will work 'out
of the box' on the test networks. Mainnet requires the coordinator keys to be
given with --milestone-key-range.

Usage:

	tangled [OPTIONS]

For an up-to-date help message:

	tangled --help

The long form of all option flags (except -C) can be specified in a configuration
file that is automatically parsed when tangled starts up. By default, the
configuration file is located at ~/.tangled/tangled.conf on POSIX-style operating
systems and %LOCALAPPDATA%\tangled\tangled.conf on Windows. The -C (--configfile)
flag can be used to override this location.

Simnet accepts milestones signed by the private keys 1, 2 and 3. Keys for
other networks can be derived from a mnemonic with cmd/milestonekeys.
*/
package main
