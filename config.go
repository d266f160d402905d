package dbconn

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Driver selects the client stack behind a Conn.
type Driver string

const (
	// DriverPgx uses a native pgx connection. It is the default.
	DriverPgx Driver = "pgx"

	// DriverPQ uses database/sql with the lib/pq driver.
	DriverPQ Driver = "postgres"
)

const (
	CharsetUTF8    = "utf8"
	CharsetUTF8MB4 = "utf8mb4"
)

const (
	defaultSSLMode        = "prefer"
	defaultPQSSLMode      = "require"
	defaultConnectTimeout = 10 * time.Second
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterStructValidation(validatePQSSLMode, Config{})
	return v
}

func defaultSSLModeFor(d Driver) string {
	if d == DriverPQ {
		return defaultPQSSLMode
	}
	return defaultSSLMode
}

// validatePQSSLMode rejects the sslmodes lib/pq does not implement; it only
// knows disable, require, verify-ca and verify-full.
func validatePQSSLMode(sl validator.StructLevel) {
	c := sl.Current().Interface().(Config)
	if c.Driver != DriverPQ {
		return
	}
	switch c.SSLMode {
	case "allow", "prefer":
		sl.ReportError(c.SSLMode, "SSLMode", "SSLMode", "pqsslmode", "")
	}
}

// Config holds the connection parameters of a Conn.
type Config struct {
	Host     string `validate:"required"`
	Database string `validate:"required"`
	Username string `validate:"required"`
	Password string

	// Port defaults to the driver default (5432).
	Port int `validate:"gte=0,lte=65535"`

	// Charset defaults to CharsetUTF8. It is sent as client_encoding.
	Charset string

	// SSLMode defaults to "prefer" for DriverPgx and "require" for DriverPQ.
	// DriverPQ does not support "allow" or "prefer".
	SSLMode string `validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`

	// Driver defaults to DriverPgx.
	Driver Driver `validate:"omitempty,oneof=pgx postgres"`

	// ConnectTimeout defaults to 10s.
	ConnectTimeout time.Duration `validate:"gte=0"`

	// Logger receives lifecycle and statement trace events. Nil discards them.
	Logger *slog.Logger `validate:"-"`
}

func (c Config) withDefaults() Config {
	if c.Charset == "" {
		c.Charset = CharsetUTF8
	}
	if c.Driver == "" {
		c.Driver = DriverPgx
	}
	if c.SSLMode == "" {
		c.SSLMode = defaultSSLModeFor(c.Driver)
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// Validate reports the first invalid field of c, naming the field but never
// its value.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("dbconn: invalid config: %s failed %q", fe.Field(), fe.Tag())
	}
	return fmt.Errorf("dbconn: invalid config: %w", err)
}

// connString formats the keyword/value connection string shared by both
// drivers. Credentials are left out; each driver receives them separately.
func (c Config) connString() string {
	parts := []string{
		"host=" + quoteConnValue(c.Host),
		"dbname=" + quoteConnValue(c.Database),
		"client_encoding=" + quoteConnValue(clientEncoding(c.Charset)),
		"sslmode=" + quoteConnValue(c.SSLMode),
		"connect_timeout=" + strconv.Itoa(timeoutSeconds(c.ConnectTimeout)),
	}
	if c.Port > 0 {
		parts = append(parts, "port="+strconv.Itoa(c.Port))
	}
	return strings.Join(parts, " ")
}

// pqConnString is connString plus the user/password keywords lib/pq expects.
func (c Config) pqConnString() string {
	s := c.connString() + " user=" + quoteConnValue(c.Username)
	if c.Password != "" {
		s += " password=" + quoteConnValue(c.Password)
	}
	return s
}

// clientEncoding maps the configured charset to a Postgres encoding name.
func clientEncoding(charset string) string {
	switch strings.ToLower(charset) {
	case CharsetUTF8, CharsetUTF8MB4, "utf-8":
		return "UTF8"
	default:
		return charset
	}
}

func quoteConnValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// timeoutSeconds rounds up to whole seconds; connect_timeout has no finer unit.
func timeoutSeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}
