package postgres

import (
	"encoding/json"
	"fmt"
	"strconv"

	"dbupgrade-config-go/dtos/common"

	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// Role selects one of the privileged users of a DbConfig
type Role string

const (
	RoleRoot      Role = "root"
	RoleOwner     Role = "owner"
	RolePglogical Role = "pglogical"
)

var _ common.Validator = (*DbConfig)(nil)

// DbConfig describes one postgres instance taking part in a migration.
// Instance IPs must be reachable from one another.
type DbConfig struct {
	Host string `json:"host"`
	IP   string `json:"ip"`
	// Db is the single database operated on; migrate several databases with several configs
	Db   string `json:"db"`
	Port string `json:"port"`

	// RootUser is a superuser, usually postgres
	RootUser common.User `json:"root_user"`
	// OwnerUser owns the data in the migrated schema. On the destination it ends up owning everything.
	OwnerUser common.User `json:"owner_user"`
	// PglogicalUser is used to configure logical replication and is created if missing
	PglogicalUser common.User `json:"pglogical_user"`
	// OtherUsers are roles whose passwords may be unknown
	OtherUsers []common.User `json:"other_users"`
}

func (c *DbConfig) UnmarshalJSON(data []byte) error {
	type dbConfig DbConfig
	data, err := common.ExactKeys(data,
		"host", "ip", "db", "port", "root_user", "owner_user", "pglogical_user", "other_users")
	if err != nil {
		return err
	}
	return json.Unmarshal(data, (*dbConfig)(c))
}

// Validate checks the instance identity and the three privileged users
func (c *DbConfig) Validate() error {
	errs := multierr.Combine(
		common.NotEmptyField("host", c.Host),
		common.NotEmptyField("ip", c.IP),
		common.NotEmptyField("db", c.Db),
		common.NotEmptyField("port", c.Port),
	)

	privileged := []struct {
		name string
		user common.User
	}{
		{"root_user", c.RootUser},
		{"owner_user", c.OwnerUser},
		{"pglogical_user", c.PglogicalUser},
	}
	for _, p := range privileged {
		if err := p.user.Validate(); err != nil {
			errs = multierr.Append(errs, common.Field(p.name, err))
			continue
		}
		if !p.user.HasPassword() {
			errs = multierr.Append(errs, common.Field(p.name, common.Field("pw", common.ErrMissingPassword)))
		}
	}

	for i, u := range c.OtherUsers {
		errs = multierr.Append(errs, common.Field("other_users["+strconv.Itoa(i)+"]", u.Validate()))
	}

	return errs
}

// Credentials returns the user backing role
func (c *DbConfig) Credentials(role Role) (common.User, error) {
	switch role {
	case RoleRoot:
		return c.RootUser, nil
	case RoleOwner:
		return c.OwnerUser, nil
	case RolePglogical:
		return c.PglogicalUser, nil
	default:
		return common.User{}, fmt.Errorf("unknown role %q", role)
	}
}

// DSNFor returns the keyword/value connection string for role
func (c *DbConfig) DSNFor(role Role) (string, error) {
	u, err := c.Credentials(role)
	if err != nil {
		return "", err
	}
	return DSN(c.IP, c.Port, c.Db, u.Name, u.Password()), nil
}

// URIFor returns the postgresql:// connection string for role
func (c *DbConfig) URIFor(role Role) (string, error) {
	u, err := c.Credentials(role)
	if err != nil {
		return "", err
	}
	return URI(c.IP, c.Port, c.Db, u.Name, u.Password()), nil
}

// RootDSN returns the keyword/value connection string of the root user
func (c *DbConfig) RootDSN() string {
	return DSN(c.IP, c.Port, c.Db, c.RootUser.Name, c.RootUser.Password())
}

// OwnerDSN returns the keyword/value connection string of the owner user
func (c *DbConfig) OwnerDSN() string {
	return DSN(c.IP, c.Port, c.Db, c.OwnerUser.Name, c.OwnerUser.Password())
}

// PglogicalDSN returns the keyword/value connection string of the pglogical user
func (c *DbConfig) PglogicalDSN() string {
	return DSN(c.IP, c.Port, c.Db, c.PglogicalUser.Name, c.PglogicalUser.Password())
}

// RootURI returns the postgresql:// connection string of the root user
func (c *DbConfig) RootURI() string {
	return URI(c.IP, c.Port, c.Db, c.RootUser.Name, c.RootUser.Password())
}

// OwnerURI returns the postgresql:// connection string of the owner user
func (c *DbConfig) OwnerURI() string {
	return URI(c.IP, c.Port, c.Db, c.OwnerUser.Name, c.OwnerUser.Password())
}

// PglogicalURI returns the postgresql:// connection string of the pglogical user
func (c *DbConfig) PglogicalURI() string {
	return URI(c.IP, c.Port, c.Db, c.PglogicalUser.Name, c.PglogicalUser.Password())
}

// OtherUser looks up an entry of OtherUsers by name
func (c *DbConfig) OtherUser(name string) (common.User, bool) {
	return lo.Find(c.OtherUsers, func(u common.User) bool {
		return u.Name == name
	})
}
