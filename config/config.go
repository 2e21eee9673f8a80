package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/ps78674/docopt.go"

	"github.com/ssoellinger/open-ldap-viewer/directory"
)

// Config carries the command line options of the viewer binary.
type Config struct {
	ListenAddr string `docopt:"--listen"`
	EnvPath    string `docopt:"--env"`
	LogPath    string `docopt:"--log"`
	Debug      bool   `docopt:"--debug"`
}

var (
	VersionString = "devel"
	ProgramName   = filepath.Base(os.Args[0])
)

var usage = fmt.Sprintf(`%[1]s: web based LDAP directory browser

Usage:
  %[1]s [-L <LISTENADDR> -e <ENVPATH> -l <LOGPATH> -d]

Options:
  -L, --listen <LISTENADDR>  listen addr for the web UI [default: 127.0.0.1:8080, env: LISTEN_ADDR]
  -e, --env <ENVPATH>        env file with a default connection profile [default: settings.env, env: ENV_PATH]
  -l, --log <LOGPATH>        log file path
  -d, --debug                turn on debug logging [default: false]

  -h, --help                 show this screen
  --version                  show version
`, ProgramName)

// Init parses the command line into the config struct.
func (c *Config) Init() error {
	opts, err := docopt.ParseArgs(usage, nil, VersionString)
	if err != nil {
		return fmt.Errorf("error parsing options: %s", err)
	}
	if err := opts.Bind(c); err != nil {
		return fmt.Errorf("error binding option values: %s", err)
	}
	return nil
}

// DefaultConnection loads the optional env file and returns the connection
// profile it describes, for pre-filling the UI's connect form. A missing
// file yields empty settings.
func (c *Config) DefaultConnection() directory.ConnectionSettings {
	_ = godotenv.Load(c.EnvPath)

	settings := directory.ConnectionSettings{
		Name:     os.Getenv("LDAP_NAME"),
		Server:   os.Getenv("LDAP_HOST"),
		Port:     directory.DefaultPort,
		BaseDn:   os.Getenv("LDAP_BASEDN"),
		Username: os.Getenv("LDAP_USERNAME"),
		Password: os.Getenv("LDAP_PASSWORD"),
	}
	if port, err := strconv.Atoi(os.Getenv("LDAP_PORT")); err == nil && port > 0 && port <= 65535 {
		settings.Port = port
	}
	if ssl, err := strconv.ParseBool(os.Getenv("LDAP_SSL")); err == nil {
		settings.UseSsl = ssl
	}
	return settings
}
