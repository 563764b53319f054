// Copyright 2025 The flicker Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads flicker's startup configuration via viper/pflag and
// watches config.yaml for changes that are safe to apply without a restart.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/flicker-io/flicker/internal/fwlog"
)

// shorthandMIME is the closed table accepted-type shorthands resolve
// against. Unlike the source this was distilled from, an unknown shorthand
// fails config load instead of silently expanding to "image/<token>" — see
// DESIGN.md.
var shorthandMIME = map[string]string{
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// Config is flicker's full startup configuration.
type Config struct {
	Addr     string `mapstructure:"addr"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
	LogLevel string `mapstructure:"logLevel"`

	AcceptedFileTypes   string `mapstructure:"acceptedFileTypes"`
	MaxUploadBytes      int64  `mapstructure:"maxUploadBytes"`
	URLTTLMs            int64  `mapstructure:"urlTTLMs"`
	ClockSkewToleranceMs int64 `mapstructure:"clockSkewToleranceMs"`

	BlobStore BlobStoreConfig `mapstructure:"blobStore"`
	MetaIndex MetaIndexConfig `mapstructure:"metaIndex"`
}

type BlobStoreConfig struct {
	Kind  string          `mapstructure:"kind"`
	Local LocalBlobConfig `mapstructure:"local"`
	S3    S3BlobConfig    `mapstructure:"s3"`
}

type LocalBlobConfig struct {
	Dir string `mapstructure:"dir"`
}

type S3BlobConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"accessKeyID"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	Bucket          string `mapstructure:"bucket"`
	UseSSL          bool   `mapstructure:"useSSL"`
}

type MetaIndexConfig struct {
	Kind               string      `mapstructure:"kind"`
	AllowSingleReplica bool        `mapstructure:"allowSingleReplica"`
	Redis              RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
	DB   int    `mapstructure:"db"`
}

// AcceptedMIMETypes resolves AcceptedFileTypes into the closed set of MIME
// types C4 validates uploads against. It fails if any shorthand token is
// not in shorthandMIME.
func (c Config) AcceptedMIMETypes() (map[string]struct{}, error) {
	return resolveShorthand(c.AcceptedFileTypes)
}

func resolveShorthand(raw string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		mime, ok := shorthandMIME[tok]
		if !ok {
			return nil, fmt.Errorf("config: unknown acceptedFileTypes shorthand %q", tok)
		}
		out[mime] = struct{}{}
	}
	if len(out) == 0 {
		return nil, errors.New("config: acceptedFileTypes must name at least one type")
	}
	return out, nil
}

var (
	once sync.Once
	mu   sync.RWMutex
	cfg  Config
)

// InitConfig loads configuration exactly once per process.
func InitConfig() error {
	var initErr error
	once.Do(func() {
		initErr = loadAndWatch()
	})
	return initErr
}

// Get returns a snapshot of the current configuration.
func Get() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

func loadAndWatch() error {
	pflag.String("addr", "", "HTTP listen address (e.g. '127.0.0.1:8080')")
	pflag.String("certFile", "", "Path to the TLS certificate file.")
	pflag.String("keyFile", "", "Path to the TLS private key file.")
	pflag.Parse()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return fmt.Errorf("failed to bind pflags: %w", err)
	}

	viper.SetDefault("addr", "127.0.0.1:8080")
	viper.SetDefault("certFile", "")
	viper.SetDefault("keyFile", "")
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("acceptedFileTypes", "jpeg,jpg,png,webp")
	viper.SetDefault("maxUploadBytes", 5*1024*1024)
	viper.SetDefault("urlTTLMs", 60_000)
	viper.SetDefault("clockSkewToleranceMs", 5_000)
	viper.SetDefault("blobStore.kind", "local")
	viper.SetDefault("blobStore.local.dir", "./blobs")
	viper.SetDefault("metaIndex.kind", "redis")
	viper.SetDefault("metaIndex.redis.addr", "localhost:6379")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/flicker/")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			fwlog.Infof("Config file not found, using defaults and flags.")
		} else {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	}

	var loaded Config
	if err := viper.Unmarshal(&loaded); err != nil {
		return fmt.Errorf("configuration cannot be decoded into Config: %w", err)
	}
	if _, err := loaded.AcceptedMIMETypes(); err != nil {
		return err
	}
	if loaded.MetaIndex.Kind == "memory" && !loaded.MetaIndex.AllowSingleReplica {
		return errors.New("config: metaIndex.kind=memory requires metaIndex.allowSingleReplica=true")
	}

	mu.Lock()
	cfg = loaded
	mu.Unlock()

	viper.OnConfigChange(func(e fsnotify.Event) {
		fwlog.Infof("Config file changed: %s. Reloading...", e.Name)

		var reloaded Config
		if err := viper.Unmarshal(&reloaded); err != nil {
			fwlog.Errorf("Error reloading configuration: %v", err)
			return
		}
		if _, err := reloaded.AcceptedMIMETypes(); err != nil {
			fwlog.Warnf("Reloaded acceptedFileTypes invalid: %v. Keeping previous configuration.", err)
			return
		}

		mu.Lock()
		// Adapter selection and connection parameters require a restart:
		// carry the running process's values forward rather than hot-swap
		// a live storage backend out from under in-flight requests.
		reloaded.BlobStore = cfg.BlobStore
		reloaded.MetaIndex = cfg.MetaIndex
		cfg = reloaded
		mu.Unlock()

		if lv, err := fwlog.ParseLevel(reloaded.LogLevel); err != nil {
			fwlog.Warnf("New log level in config is invalid: %v. Keeping previous level.", err)
		} else {
			fwlog.SetLevel(lv)
			fwlog.Infof("Log level reloaded to: %s", reloaded.LogLevel)
		}
	})
	viper.WatchConfig()

	return nil
}
