package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	envFilePath string
	parseOnce   sync.Once
)

// Validator is implemented by config structs that check themselves after
// loading.
type Validator interface {
	Validate() error
}

type options struct {
	envFile    string
	skipDotenv bool
}

type Option func(*options)

// WithEnvFile loads the given file instead of the -env flag or ./.env.
func WithEnvFile(path string) Option {
	return func(o *options) {
		o.envFile = strings.TrimSpace(path)
	}
}

// WithoutEnvFile reads the process environment only.
func WithoutEnvFile() Option {
	return func(o *options) {
		o.skipDotenv = true
	}
}

func MustNew[T any](prefix string, opts ...Option) *T {
	conf, err := New[T](prefix, opts...)
	if err != nil {
		panic(err)
	}
	return conf
}

func New[T any](prefix string, opts ...Option) (*T, error) {
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	if !o.skipDotenv {
		filepath := o.envFile
		if filepath == "" {
			filepath = resolveEnvPath()
		}
		if filepath != "" {
			if err := exportEnvironment(filepath); err != nil {
				return nil, fmt.Errorf("failed to load env file: %w", err)
			}
		} else if err := exportEnvironmentIfExists(".env"); err != nil {
			return nil, fmt.Errorf("failed to load default env file: %w", err)
		}
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, fmt.Errorf("process %q config: %w", prefix, err)
	}

	if v, ok := any(&conf).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("invalid %q config: %w", prefix, err)
		}
	}

	return &conf, nil
}

// resolveEnvPath reads -env from the command line without touching the
// global flag set, so packages that load config from init stay usable
// under go test.
func resolveEnvPath() string {
	parseOnce.Do(func() {
		fs := flag.NewFlagSet("config", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		path := fs.String("env", "", "path to .env file")
		// Unknown flags stop parsing; whatever was read before them counts.
		_ = fs.Parse(os.Args[1:])
		envFilePath = *path
	})
	return strings.TrimSpace(envFilePath)
}

func exportEnvironmentIfExists(filepath string) error {
	info, err := os.Stat(filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportEnvironment(filepath)
}

// exportEnvironment copies the file's keys into the process environment.
// Variables already set in the environment win over the file.
func exportEnvironment(filepath string) error {
	v := viper.New()
	v.SetConfigFile(filepath)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for k, val := range v.AllSettings() {
		key := strings.ToUpper(k)
		if _, set := os.LookupEnv(key); set {
			continue
		}
		if err := os.Setenv(key, fmt.Sprint(val)); err != nil {
			return err
		}
	}

	return nil
}
