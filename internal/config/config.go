// Package config loads the process-wide ledger configuration.
//
// Configuration is read once at startup from a CUE file, unified with the
// embedded #Config schema for defaults and constraints, and returned as an
// immutable Config value that callers pass down by value.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/Calindra/solana-twitter/internal/address"
	"github.com/Calindra/solana-twitter/internal/store"
)

//go:embed schema.cue
var schemaCUE string

// Config is the decoded, validated configuration.
type Config struct {
	ProgramID    address.Address
	Database     string
	Listen       string
	Rent         store.Rent
	AirdropLimit int64
	LogLevel     slog.Level
}

// raw mirrors #Config for decoding.
type raw struct {
	ProgramID string `json:"program_id"`
	Database  string `json:"database"`
	Listen    string `json:"listen"`
	Rent      struct {
		LamportsPerByte int64 `json:"lamports_per_byte"`
		AccountOverhead int64 `json:"account_overhead"`
	} `json:"rent"`
	AirdropLimit int64  `json:"airdrop_limit"`
	LogLevel     string `json:"log_level"`
}

// Default returns the configuration of an empty config file.
func Default() Config {
	cfg, err := parse(nil, "")
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema defaults are invalid: %v", err))
	}
	return cfg
}

// Load reads the CUE file at path. An empty path yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parse(src, path)
}

// Parse validates CUE source against the schema.
func Parse(src []byte) (Config, error) {
	return parse(src, "config.cue")
}

func parse(src []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	v := def
	if len(src) > 0 {
		user := ctx.CompileBytes(src, cue.Filename(filename))
		if err := user.Err(); err != nil {
			return Config{}, fmt.Errorf("parse config: %s", cueerrors.Details(err, nil))
		}
		v = def.Unify(user)
	}

	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("invalid config: %s", cueerrors.Details(err, nil))
	}

	var r raw
	if err := v.Decode(&r); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return r.build()
}

func (r raw) build() (Config, error) {
	programID, err := address.Parse(r.ProgramID)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: program_id: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(r.LogLevel)); err != nil {
		return Config{}, fmt.Errorf("invalid config: log_level: %w", err)
	}

	return Config{
		ProgramID: programID,
		Database:  r.Database,
		Listen:    r.Listen,
		Rent: store.Rent{
			LamportsPerByte: r.Rent.LamportsPerByte,
			AccountOverhead: r.Rent.AccountOverhead,
		},
		AirdropLimit: r.AirdropLimit,
		LogLevel:     level,
	}, nil
}
