package config

import (
	"flag"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Source obtains configuration and writes it to dst, on top of whatever
// earlier sources wrote.
type Source func(dst *Config) error

// Unmarshal applies the sources to dst in order.
func Unmarshal(dst *Config, sources ...Source) error {
	if len(sources) == 0 {
		panic("no sources supplied to config.Unmarshal")
	}
	for _, source := range sources {
		if err := source(dst); err != nil {
			return errors.Wrap(err, "sourcing")
		}
	}
	return nil
}

// Defaults registers the flags of dst on fs, which sets every field to its
// default. fs is kept so that Overrides can later write through it.
func Defaults(fs *flag.FlagSet) Source {
	return func(dst *Config) error {
		dst.RegisterFlags(fs)
		return nil
	}
}

// YAMLFile decodes the file at path into dst. Unknown keys are rejected. An
// empty path is a no-op.
func YAMLFile(path string) Source {
	return func(dst *Config) error {
		if path == "" {
			return nil
		}
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "reading config file")
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return errors.Wrapf(err, "parsing %s", path)
		}
		return nil
	}
}

// Overrides copies every flag that was set on the command line in parsed onto
// the flags of dst registered in fs.
func Overrides(fs, parsed *flag.FlagSet) Source {
	return func(*Config) error {
		var err error
		parsed.Visit(func(f *flag.Flag) {
			target := fs.Lookup(f.Name)
			if target == nil || err != nil {
				return
			}
			err = errors.Wrapf(target.Value.Set(f.Value.String()), "flag -%s", f.Name)
		})
		return err
	}
}

// Load parses args, then builds the configuration from defaults, the file
// named by -config.file and the flags that were given, in that order. The
// flag.ErrHelp error is returned unwrapped when -h is passed.
func Load(name string, args []string, output io.Writer) (*Config, error) {
	// Parse into a throwaway config first: it validates the flags and tells
	// us which file to read.
	var given Config
	parsed := flag.NewFlagSet(name, flag.ContinueOnError)
	parsed.SetOutput(output)
	given.RegisterFlags(parsed)
	if err := parsed.Parse(args); err != nil {
		return nil, err
	}
	if parsed.NArg() > 0 {
		return nil, errors.Errorf("unexpected arguments: %v", parsed.Args())
	}

	var cfg Config
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	if err := Unmarshal(&cfg, Defaults(fs), YAMLFile(given.ConfigFile), Overrides(fs, parsed)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &cfg, nil
}
