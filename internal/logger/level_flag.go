package logger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
)

var levelStrings = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"error": zapcore.ErrorLevel,
}

type LevelFlagValue struct {
	value            string
	onLevelAvailable func(zapcore.Level)
}

func NewLevelFlagValue(onLevelAvailable func(zapcore.Level)) LevelFlagValue {
	return LevelFlagValue{onLevelAvailable: onLevelAvailable}
}

// StringToLevel accepts a level name or a positive logr verbosity.
func StringToLevel(value string) (zapcore.Level, error) {
	if level, ok := levelStrings[strings.ToLower(value)]; ok {
		return level, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 || n > 127 {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level \"%s\"", value)
	}
	// zap levels run the other way from logr verbosity
	return zapcore.Level(int8(-n)), nil
}

func (lfv *LevelFlagValue) Set(flagValue string) error {
	level, err := StringToLevel(flagValue)
	if err != nil {
		return err
	}
	lfv.onLevelAvailable(level)
	lfv.value = flagValue
	return nil
}

func (lfv *LevelFlagValue) String() string {
	return lfv.value
}

func (*LevelFlagValue) Type() string {
	return "level"
}

var _ pflag.Value = &LevelFlagValue{}
