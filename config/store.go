package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"unicode/utf8"

	"dbupgrade-config-go/dtos/common"
	"dbupgrade-config-go/utils"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Save writes the config to its file, replacing any previous version atomically
func (c *DbupgradeConfig) Save(ctx context.Context, log *zap.SugaredLogger) error {
	log = orNop(log)
	log.Debug("Caching config to disk...")

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("refusing to cache invalid config: %w", err)
	}
	if err := os.MkdirAll(c.Dir(), dirPerm); err != nil {
		return fmt.Errorf("cannot create config dir %s, cause: %w", c.Dir(), err)
	}

	data, err := utils.MarshalIndentJSON(c)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(c.File(), data, filePerm); err != nil {
		return err
	}

	log.Info("Cached config to disk.")
	return nil
}

// Load reads the cached config of the (db, dc) pair.
// A missing file and a file that does not hold a valid config both yield (nil, nil);
// An unusable (db, dc) identity, I/O failures and cancellation are returned as errors.
func Load(ctx context.Context, log *zap.SugaredLogger, db, dc string) (*DbupgradeConfig, error) {
	log = orNop(log)
	log.Debug("Trying to load cached config...")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateIdentity(db, dc); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(ConfigFile(db, dc))
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("No cached config available")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read cached config %s, cause: %w", ConfigFile(db, dc), err)
	}

	out, err := Parse(raw)
	if err != nil {
		log.Infow("Cached config was not a valid DbupgradeConfig", "error", err)
		return nil, nil
	}

	log.Info("Found cached config.")
	return out, nil
}

// Parse decodes and validates a config document
func Parse(raw []byte) (*DbupgradeConfig, error) {
	if !utf8.Valid(raw) {
		return nil, errors.New("cannot decode config: invalid UTF-8")
	}

	var out DbupgradeConfig
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

func validateIdentity(db, dc string) error {
	return multierr.Combine(
		common.NotEmptyField("db", db),
		common.NotEmptyField("dc", dc),
		common.PathSegmentField("db", db),
		common.PathSegmentField("dc", dc),
	)
}

func orNop(log *zap.SugaredLogger) *zap.SugaredLogger {
	if log == nil {
		return zap.NewNop().Sugar()
	}
	return log
}
