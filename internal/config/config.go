// Package config parses and validates the echo server's command-line
// surface.
package config

import (
	"flag"
	"fmt"
	"io"
	"runtime"

	"github.com/pkg/errors"
)

// ErrHelp classifies a request for usage text: Parse has already written the
// usage to its output, so main should exit 0.
var ErrHelp = errors.New("help requested")

// ErrInvalidArgument classifies a configuration error: main should print
// it to stderr and exit 1.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	defaultCores   = 0
	defaultRecvBuf = 4194304
)

// Config is the parsed and validated command-line surface.
type Config struct {
	Port    int
	Cores   int
	RecvBuf int
}

// Parse parses args (excluding the program name) into a Config. On --help
// it returns an error wrapping ErrHelp after writing usage to out. On any
// other problem it returns an error wrapping ErrInvalidArgument.
func Parse(args []string, out io.Writer) (Config, error) {
	fs := flag.NewFlagSet("udpechod", flag.ContinueOnError)
	fs.SetOutput(out)

	var (
		port    int
		cores   int
		recvBuf int
		help    bool
	)
	fs.IntVar(&port, "port", 0, "UDP port (1-65535)")
	fs.IntVar(&port, "p", 0, "UDP port (1-65535) (shorthand)")
	fs.IntVar(&cores, "cores", defaultCores, "worker count; 0 or > processor count uses processor count")
	fs.IntVar(&cores, "c", defaultCores, "worker count (shorthand)")
	fs.IntVar(&recvBuf, "recvbuf", defaultRecvBuf, "kernel SO_RCVBUF/SO_SNDBUF size in bytes")
	fs.IntVar(&recvBuf, "b", defaultRecvBuf, "kernel SO_RCVBUF/SO_SNDBUF size in bytes (shorthand)")
	fs.BoolVar(&help, "help", false, "print usage and exit")
	fs.BoolVar(&help, "h", false, "print usage and exit (shorthand)")

	if err := fs.Parse(args); err != nil {
		return Config{}, errors.Wrap(ErrInvalidArgument, err.Error())
	}
	if help {
		fs.SetOutput(out)
		fs.Usage()
		return Config{}, ErrHelp
	}

	cfg := Config{Port: port, Cores: cores, RecvBuf: recvBuf}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.Wrapf(ErrInvalidArgument, "port %d out of range 1-65535", c.Port)
	}
	if c.RecvBuf <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "recvbuf %d must be positive", c.RecvBuf)
	}
	if c.Cores < 0 {
		return errors.Wrapf(ErrInvalidArgument, "cores %d must not be negative", c.Cores)
	}
	return nil
}

// ResolvedWorkerCount maps the --cores flag to an actual Worker count: 0 or
// a value greater than the logical processor count both mean "use the
// processor count".
func (c Config) ResolvedWorkerCount() int {
	n := runtime.NumCPU()
	if c.Cores == 0 || c.Cores > n {
		return n
	}
	return c.Cores
}

// String renders the config for a start-up log line.
func (c Config) String() string {
	return fmt.Sprintf("port=%d cores=%d recvbuf=%d", c.Port, c.Cores, c.RecvBuf)
}
