package scylla

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"kumbam-backend/internal/config"
	"kumbam-backend/internal/util"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists is returned when a conditional insert loses to an
	// existing row.
	ErrAlreadyExists = errors.New("record already exists")
)

type Client struct {
	Session *gocql.Session
	config  *config.ScyllaConfig
}

func NewClient(cfg *config.Config) (*Client, error) {
	scyllaConfig := cfg.Scylla

	cluster := gocql.NewCluster(scyllaConfig.Nodes...)
	cluster.Keyspace = scyllaConfig.Keyspace
	cluster.Consistency = gocql.LocalQuorum
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second
	cluster.NumConns = 4
	cluster.SocketKeepalive = 30 * time.Second
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		Min:        time.Second,
		Max:        10 * time.Second,
		NumRetries: 3,
	}

	if scyllaConfig.Username != "" && scyllaConfig.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: scyllaConfig.Username,
			Password: scyllaConfig.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create scylla session: %w", err)
	}

	client := &Client{
		Session: session,
		config:  &scyllaConfig,
	}

	if err := client.ensureSchema(); err != nil {
		session.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	util.Info("ScyllaDB client initialized",
		zap.Strings("nodes", scyllaConfig.Nodes),
		zap.String("keyspace", scyllaConfig.Keyspace))

	return client, nil
}

// ensureSchema creates the tables on first boot. The otp_codes clustering
// order puts the newest issuance first, so "latest code for an email" is a
// LIMIT 1 read.
func (c *Client) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			email text PRIMARY KEY,
			full_name text,
			phone text,
			password_hash text,
			created_at timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS otp_codes (
			email text,
			issued_at timestamp,
			otp_id uuid,
			code text,
			expires_at timestamp,
			PRIMARY KEY ((email), issued_at, otp_id)
		) WITH CLUSTERING ORDER BY (issued_at DESC, otp_id ASC)`,
		`CREATE TABLE IF NOT EXISTS banquet_halls (
			id uuid PRIMARY KEY,
			name text,
			category text,
			price double,
			capacity int,
			location text,
			image_url text,
			created_at timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			banquet_id uuid,
			booking_date timestamp,
			booking_id uuid,
			email text,
			status text,
			created_at timestamp,
			PRIMARY KEY ((banquet_id), booking_date, booking_id)
		)`,
	}

	for _, stmt := range stmts {
		if err := c.Session.Query(stmt).Exec(); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

func (c *Client) Close() {
	if c.Session != nil {
		c.Session.Close()
		util.Info("ScyllaDB client closed")
	}
}

func (c *Client) Query(stmt string, values ...interface{}) *gocql.Query {
	return c.Session.Query(stmt, values...)
}

func (c *Client) HealthCheck(ctx context.Context) error {
	var clusterName string
	err := c.Session.Query(`SELECT cluster_name FROM system.local`).WithContext(ctx).Scan(&clusterName)
	if err != nil {
		return fmt.Errorf("scylla health check failed: %w", err)
	}
	return nil
}

// ExecuteWithRetry retries transient write failures with a linear backoff.
func (c *Client) ExecuteWithRetry(query *gocql.Query, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := query.Exec(); err != nil {
			lastErr = err
			if i < maxRetries {
				time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
				continue
			}
		} else {
			return nil
		}
	}
	return lastErr
}
