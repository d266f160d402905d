//go:build integration

package dbconn

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	integrationPasswordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)
	integrationSchemaPattern   = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// requireIntegrationConfig loads DBCONN_* variables for integration runs.
func requireIntegrationConfig(t *testing.T) Config {
	t.Helper()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("integration requires DBCONN_HOST, DBCONN_DATABASE and DBCONN_USERNAME: %s", sanitizeErrorMessage(err))
	}
	return cfg
}

func integrationSchemaName(t *testing.T) string {
	t.Helper()

	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		t.Fatalf("failed to generate random schema suffix: %s", sanitizeErrorMessage(err))
	}
	name := fmt.Sprintf("dbconn_it_%d_%x", time.Now().Unix(), binary.BigEndian.Uint32(b[:]))
	if !integrationSchemaPattern.MatchString(name) {
		t.Fatalf("generated invalid schema name: %q", name)
	}
	return name
}

func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func qualifiedTable(schema, table string) string {
	return quoteIdent(schema) + "." + quoteIdent(table)
}

func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return integrationPasswordPattern.ReplaceAllString(err.Error(), "password=[REDACTED]")
}

// startIntegrationConn starts a Conn and registers its Stop.
func startIntegrationConn(t *testing.T, cfg Config) *Conn {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	c := New(cfg)
	require.NoError(t, c.Start(ctx), "start")
	t.Cleanup(func() {
		_ = c.Stop(context.Background())
	})
	return c
}
