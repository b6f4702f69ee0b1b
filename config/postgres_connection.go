package config

import (
	"fmt"

	"dbupgrade-config-go/dtos/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ApplicationName tags every connection built from a config
const ApplicationName = "dbupgrade"

// PoolConfig builds a pgx pool configuration for role on db.
// Nothing is dialed; the caller passes the result to pgxpool.NewWithConfig.
func PoolConfig(db *postgres.DbConfig, role postgres.Role, maxConns int32) (*pgxpool.Config, error) {
	if db == nil {
		return nil, fmt.Errorf("no database config for role %s", role)
	}
	if err := db.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}
	if maxConns <= 0 {
		return nil, fmt.Errorf("invalid configuration: pool size must be greater than 0")
	}

	uri, err := db.URIFor(role)
	if err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL URI for role %s: %w", role, err)
	}

	poolConfig.MaxConns = maxConns
	poolConfig.MinConns = maxConns / 2
	poolConfig.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	return poolConfig, nil
}

// SrcPoolConfig returns the pool configuration for role on the source instance
func (c *DbupgradeConfig) SrcPoolConfig(role postgres.Role, maxConns int32) (*pgxpool.Config, error) {
	return PoolConfig(c.Src, role, maxConns)
}

// DstPoolConfig returns the pool configuration for role on the destination instance
func (c *DbupgradeConfig) DstPoolConfig(role postgres.Role, maxConns int32) (*pgxpool.Config, error) {
	return PoolConfig(c.Dst, role, maxConns)
}
