package config

import (
	"encoding/json"
	"strings"

	"dbupgrade-config-go/dtos"
	"dbupgrade-config-go/dtos/common"
	"dbupgrade-config-go/dtos/postgres"

	"github.com/samber/lo"
	"go.uber.org/multierr"
)

const (
	// RootDir holds one subtree per datacenter
	RootDir = "configs"
	// FileName is the name of the cached config inside a pair directory
	FileName = "config.json"
	// DefaultSchemaName is used when a config does not name a schema
	DefaultSchemaName = "public"
)

var _ common.Validator = (*DbupgradeConfig)(nil)

// ConfigDir returns the directory owned by the (db, dc) pair.
// The parts are concatenated as given; Validate rejects identities that are not plain names.
func ConfigDir(db, dc string) string {
	return strings.Join([]string{RootDir, dc, db}, "/")
}

// ConfigFile returns the path of the cached config of the (db, dc) pair
func ConfigFile(db, dc string) string {
	return ConfigDir(db, dc) + "/" + FileName
}

// DbupgradeConfig describes a migration between two instances
type DbupgradeConfig struct {
	// Db names this database pair in cli commands
	Db string `json:"db"`
	// Dc names the environment the pair lives in
	Dc string `json:"dc"`
	// Src is the instance data is moved out of
	Src *postgres.DbConfig `json:"src"`
	// Dst is the instance data is moved into
	Dst *postgres.DbConfig `json:"dst"`
	// Tables narrows the replicated tables. Nil replicates every table in the schema.
	Tables *dtos.FilterConfig `json:"tables"`
	// Sequences narrows the replicated sequences. Nil replicates every sequence in the schema.
	Sequences  *dtos.FilterConfig `json:"sequences"`
	SchemaName string             `json:"schema_name"`
}

// NewDbupgradeConfig returns an empty config for the (db, dc) pair
func NewDbupgradeConfig(db, dc string) *DbupgradeConfig {
	return &DbupgradeConfig{
		Db:         db,
		Dc:         dc,
		SchemaName: DefaultSchemaName,
	}
}

// Dir returns the directory owned by this config's pair
func (c *DbupgradeConfig) Dir() string {
	return ConfigDir(c.Db, c.Dc)
}

// File returns the path this config is saved to
func (c *DbupgradeConfig) File() string {
	return ConfigFile(c.Db, c.Dc)
}

// UnmarshalJSON applies DefaultSchemaName when schema_name is absent or null.
// An explicit "" is kept.
func (c *DbupgradeConfig) UnmarshalJSON(data []byte) error {
	type dbupgradeConfig DbupgradeConfig
	data, err := common.ExactKeys(data, "db", "dc", "src", "dst", "tables", "sequences", "schema_name")
	if err != nil {
		return err
	}

	out := dbupgradeConfig{SchemaName: DefaultSchemaName}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*c = DbupgradeConfig(out)
	return nil
}

// Validate checks the identity pair and both instance configs
func (c *DbupgradeConfig) Validate() error {
	errs := validateIdentity(c.Db, c.Dc)
	if c.Src != nil {
		errs = multierr.Append(errs, common.Field("src", c.Src.Validate()))
	}
	if c.Dst != nil {
		errs = multierr.Append(errs, common.Field("dst", c.Dst.Validate()))
	}
	return errs
}

// ScopedTables returns the tables to replicate out of all tables in the schema
func (c *DbupgradeConfig) ScopedTables(tables []string) []string {
	return scoped(c.Tables, tables)
}

// ScopedSequences returns the sequences to replicate out of all sequences in the schema
func (c *DbupgradeConfig) ScopedSequences(sequences []string) []string {
	return scoped(c.Sequences, sequences)
}

// QualifiedTables returns the scoped tables as quoted schema-qualified names
func (c *DbupgradeConfig) QualifiedTables(tables []string) []string {
	return lo.Map(c.ScopedTables(tables), func(table string, _ int) string {
		return postgres.QualifiedName(c.SchemaName, table)
	})
}

func scoped(filter *dtos.FilterConfig, items []string) []string {
	if filter == nil {
		return items
	}
	return filter.Apply(items)
}
