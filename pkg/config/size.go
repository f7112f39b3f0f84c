package config

import "github.com/dustin/go-humanize"

// ByteSize is a uint64 that unmarshals from either a human-friendly string
// ("64MiB") or a bare integer, adapted from the teacher's
// pkg/configuration.ByteSize.
type ByteSize uint64

// UnmarshalText implements encoding.TextUnmarshaler, used by both the TOML
// and YAML decoders.
func (s *ByteSize) UnmarshalText(text []byte) error {
	value, err := humanize.ParseBytes(string(text))
	if err != nil {
		return err
	}
	*s = ByteSize(value)
	return nil
}

// String renders the size in human-friendly form.
func (s ByteSize) String() string {
	return humanize.Bytes(uint64(s))
}
