package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	*zap.SugaredLogger

	name  string
	level AtomicLevel
	core  zapcore.Core
}

func newImpl(name string, level AtomicLevel, core zapcore.Core) *impl {
	ret := zap.New(core, zap.AddCaller()).Sugar()
	if name != "" {
		ret = ret.Named(name)
	}
	return &impl{SugaredLogger: ret, name: name, level: level, core: core}
}

// The level is shared with the parent so a level change applies to the whole tree of loggers
// built from the same root.
func (imp *impl) Sublogger(subname string) Logger {
	newName := subname
	if imp.name != "" {
		newName = imp.name + "." + subname
	}
	return newImpl(newName, imp.level, imp.core)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

func (imp *impl) Desugar() *zap.Logger {
	return imp.SugaredLogger.Desugar()
}

func (imp *impl) Sync() error {
	return imp.core.Sync()
}
