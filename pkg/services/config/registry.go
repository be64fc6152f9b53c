package config

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

// Supported warehouse drivers. The driver name doubles as the
// database/sql registration name.
const (
	DriverSnowflake  = "snowflake"
	DriverDatabricks = "databricks"
	DriverDuckDB     = "duckdb"
)

// Profile is one named warehouse connection.
type Profile struct {
	Name   string
	Driver string
	DSN    string
}

// Registry resolves warehouse profiles from an ini file, one section per
// profile with `driver` and `dsn` keys.
type Registry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	GetProfile(ctx context.Context, name string) (*Profile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &cfgRegistry{cfg: cfg}, nil
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (*Profile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("profile %s not found", name)
	}

	driver := section.Key("driver").String()
	switch driver {
	case DriverSnowflake, DriverDatabricks, DriverDuckDB:
	default:
		return nil, fmt.Errorf("profile %s has unsupported driver %q", name, driver)
	}

	dsn := section.Key("dsn").String()
	if dsn == "" && driver != DriverDuckDB {
		return nil, fmt.Errorf("profile %s is missing a dsn", name)
	}

	return &Profile{
		Name:   name,
		Driver: driver,
		DSN:    dsn,
	}, nil
}
