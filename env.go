package dbconn

import (
	"fmt"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables read by LoadConfig.
const EnvPrefix = "DBCONN"

// LoadConfig builds a Config from DBCONN_* environment variables:
//
//	DBCONN_HOST, DBCONN_PORT, DBCONN_DATABASE, DBCONN_USERNAME,
//	DBCONN_PASSWORD, DBCONN_CHARSET, DBCONN_SSLMODE, DBCONN_DRIVER,
//	DBCONN_CONNECT_TIMEOUT (Go duration, e.g. "5s").
//
// Unset optional variables take the Config defaults. A DBCONN_PORT or
// DBCONN_CONNECT_TIMEOUT that does not parse is an error. The result is
// validated.
func LoadConfig() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("charset", CharsetUTF8)
	v.SetDefault("driver", string(DriverPgx))
	v.SetDefault("connect_timeout", defaultConnectTimeout)

	port, err := cast.ToIntE(v.Get("port"))
	if err != nil {
		return Config{}, fmt.Errorf("dbconn: invalid config: %s_PORT: %w", EnvPrefix, err)
	}
	timeout, err := cast.ToDurationE(v.Get("connect_timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("dbconn: invalid config: %s_CONNECT_TIMEOUT: %w", EnvPrefix, err)
	}

	cfg := Config{
		Host:           v.GetString("host"),
		Port:           port,
		Database:       v.GetString("database"),
		Username:       v.GetString("username"),
		Password:       v.GetString("password"),
		Charset:        v.GetString("charset"),
		SSLMode:        v.GetString("sslmode"),
		Driver:         Driver(v.GetString("driver")),
		ConnectTimeout: timeout,
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = defaultSSLModeFor(cfg.Driver)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
