// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package router

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/luxfi/rpcrouter/observability"
)

// FlagSeed selects the starting value of the IsServer and IsDev folds.
type FlagSeed int

const (
	// SeedNeutral starts both flags at false, so the result is true only
	// when some input router has the flag set.
	SeedNeutral FlagSeed = iota
	// SeedEnvironment starts both flags at the composer's environment.
	SeedEnvironment
)

func (s FlagSeed) String() string {
	switch s {
	case SeedNeutral:
		return "neutral"
	case SeedEnvironment:
		return "environment"
	default:
		return "unknown"
	}
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithFlagSeed selects how the IsServer and IsDev folds start.
func WithFlagSeed(seed FlagSeed) ComposerOption {
	return func(c *Composer) { c.seed = seed }
}

// SeedFromEnvironment seeds the IsServer and IsDev folds with env.
func SeedFromEnvironment(env Environment) ComposerOption {
	return func(c *Composer) {
		c.seed = SeedEnvironment
		c.env = env
	}
}

// WithComposerLogger sets the logger reporting merges.
func WithComposerLogger(logger *zap.Logger) ComposerOption {
	return func(c *Composer) { c.logger = logger }
}

// WithComposerMetrics records merges and conflicts in m.
func WithComposerMetrics(m *observability.Metrics) ComposerOption {
	return func(c *Composer) { c.metrics = m }
}

// Composer merges routers. The zero value is not usable; use NewComposer.
type Composer struct {
	seed    FlagSeed
	env     Environment
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewComposer returns a Composer. Without options it uses SeedNeutral and
// the process environment.
func NewComposer(opts ...ComposerOption) *Composer {
	c := &Composer{
		seed:   SeedNeutral,
		env:    DefaultEnvironment(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

var (
	transformerOverride = override[Transformer]{
		field:    FieldTransformer,
		sentinel: defaultTransformer,
		conflict: ErrTransformerConflict,
		get:      func(c Config) Transformer { return c.Transformer },
	}
	formatterOverride = override[ErrorFormatter]{
		field:    FieldErrorFormatter,
		sentinel: defaultFormatter,
		conflict: ErrErrorFormatterConflict,
		get:      func(c Config) ErrorFormatter { return c.ErrorFormatter },
	}
	delimiterOverride = override[string]{
		field:    FieldNamespaceDelimiter,
		sentinel: DefaultNamespaceDelimiter,
		conflict: ErrNamespaceDelimiterConflict,
		get:      func(c Config) string { return c.NamespaceDelimiter },
	}
)

// Merge composes routers with the default Composer.
func Merge(routers ...*Router) (*Router, error) {
	return NewComposer().Merge(routers...)
}

// Merge composes routers into a new router. Any conflict aborts the whole
// merge; the inputs are never modified.
func (c *Composer) Merge(routers ...*Router) (*Router, error) {
	for i, r := range routers {
		if r == nil {
			return nil, c.fail(fmt.Errorf("%w: nil router at index %d", ErrInvalidConfig, i))
		}
	}

	cfg, err := c.resolve(routers)
	if err != nil {
		return nil, c.fail(err)
	}

	records := make([]Record, len(routers))
	for i, r := range routers {
		records[i] = r.record
	}
	rec, err := MergeRecords(records...)
	if err != nil {
		return nil, c.fail(err)
	}

	merged, err := Build(cfg)(rec)
	if err != nil {
		return nil, c.fail(err)
	}

	c.metrics.RecordMerge(observability.MergeOK, merged.Len())
	c.logger.Debug("routers merged",
		zap.Int("routers", len(routers)),
		zap.Int("procedures", merged.Len()),
		zap.String("delimiter", cfg.NamespaceDelimiter),
		zap.Bool("default_transformer", cfg.HasDefaultTransformer()),
		zap.Bool("default_formatter", cfg.HasDefaultFormatter()),
		zap.Bool("is_server", cfg.IsServer),
		zap.Bool("is_dev", cfg.IsDev),
		zap.Bool("allow_outside_of_server", cfg.AllowOutsideOfServer),
	)
	return merged, nil
}

func (c *Composer) resolve(routers []*Router) (Config, error) {
	transformer, err := reconcile(transformerOverride, routers)
	if err != nil {
		return Config{}, err
	}
	formatter, err := reconcile(formatterOverride, routers)
	if err != nil {
		return Config{}, err
	}
	delimiter, err := reconcile(delimiterOverride, routers)
	if err != nil {
		return Config{}, err
	}

	var isServer, isDev, allowOutside bool
	if c.seed == SeedEnvironment {
		isServer, isDev = c.env.IsServer, c.env.IsDev
	}
	for _, r := range routers {
		isServer = isServer || r.config.IsServer
		isDev = isDev || r.config.IsDev
		allowOutside = allowOutside || r.config.AllowOutsideOfServer
	}

	var types any
	if len(routers) > 0 {
		types = routers[0].config.Types
	}

	return Config{
		Transformer:          transformer,
		ErrorFormatter:       formatter,
		NamespaceDelimiter:   delimiter,
		IsServer:             isServer,
		IsDev:                isDev,
		AllowOutsideOfServer: allowOutside,
		Types:                types,
	}, nil
}

func (c *Composer) fail(err error) error {
	var conflict *ConflictError
	var duplicate *DuplicatePathError
	switch {
	case errors.As(err, &conflict):
		c.metrics.RecordConflict(conflict.Field)
		c.metrics.RecordMerge(observability.MergeConflict, 0)
		c.logger.Warn("router merge conflict",
			zap.String("field", conflict.Field),
			zap.Int("first", conflict.First),
			zap.Int("second", conflict.Second),
		)
	case errors.As(err, &duplicate):
		c.metrics.RecordMerge(observability.MergeDuplicate, 0)
		c.logger.Warn("router merge duplicate path", zap.String("path", duplicate.Path))
	default:
		c.metrics.RecordMerge(observability.MergeInvalid, 0)
		c.logger.Warn("router merge failed", zap.Error(err))
	}
	return err
}
