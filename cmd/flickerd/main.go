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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flicker-io/flicker/internal/blobstore"
	"github.com/flicker-io/flicker/internal/config"
	"github.com/flicker-io/flicker/internal/core"
	"github.com/flicker-io/flicker/internal/fwlog"
	"github.com/flicker-io/flicker/internal/httpapi"
	"github.com/flicker-io/flicker/internal/metaindex"
	"github.com/flicker-io/flicker/internal/token"
)

func main() {
	if err := config.InitConfig(); err != nil {
		fwlog.Fatalf("Failed to initialize configuration: %v", err)
	}
	cfg := config.Get()

	logLevel, err := fwlog.ParseLevel(cfg.LogLevel)
	if err != nil {
		fwlog.Warnf("Invalid initial log level '%s': %v. Using default.", cfg.LogLevel, err)
	}
	fwlog.SetLevel(logLevel)
	fwlog.Infof("Logger initialized with level: %s", cfg.LogLevel)

	clock := func() int64 { return time.Now().UnixMilli() }

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	blobs, closeBlobs, err := buildBlobStore(ctx, cfg.BlobStore)
	cancel()
	if err != nil {
		fwlog.Fatalf("Failed to initialize blob store: %v", err)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	index, err := buildMetaIndex(ctx, cfg.MetaIndex, cfg.ClockSkewToleranceMs, clock)
	cancel()
	if err != nil {
		fwlog.Fatalf("Failed to initialize metadata index: %v", err)
	}

	acceptedTypes, err := cfg.AcceptedMIMETypes()
	if err != nil {
		fwlog.Fatalf("Invalid accepted file types: %v", err)
	}

	coordinator := &core.Coordinator{
		Blobs:          blobs,
		Index:          index,
		Tokens:         token.New(),
		Clock:          clock,
		AcceptedTypes:  acceptedTypes,
		MaxUploadBytes: cfg.MaxUploadBytes,
		URLTTLMs:       cfg.URLTTLMs,
	}
	arbiter := &core.Arbiter{
		Blobs:           blobs,
		Index:           index,
		Clock:           clock,
		SkewToleranceMs: cfg.ClockSkewToleranceMs,
	}

	server := httpapi.New(coordinator, arbiter, fwlog.DefaultLogger())
	httpSrv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Handler(),
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		fwlog.Info("Shutting down server...")

		if err := index.Close(); err != nil {
			fwlog.Errorf("Error closing metadata index: %v", err)
		}
		if closeBlobs != nil {
			if err := closeBlobs(); err != nil {
				fwlog.Errorf("Error closing blob store: %v", err)
			}
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			fwlog.Errorf("Server shutdown error: %v", err)
		}

		fwlog.Info("Server shutdown complete")
		os.Exit(0)
	}()

	fwlog.Infof("Server starting on %v", cfg.Addr)

	if cfg.CertFile != "" && cfg.KeyFile != "" {
		if _, err := os.Stat(cfg.CertFile); err == nil {
			if _, err := os.Stat(cfg.KeyFile); err == nil {
				fwlog.Infof("Starting HTTPS server with certificates: %s, %s", cfg.CertFile, cfg.KeyFile)
				if err := httpSrv.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile); err != nil && !errors.Is(err, http.ErrServerClosed) {
					fwlog.Fatalf("Failed to start HTTPS server: %v", err)
				}
				return
			}
		}
		fwlog.Warnf("Certificate files not found, falling back to HTTP mode")
	}

	fwlog.Infof("Starting HTTP server")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fwlog.Fatalf("Failed to start HTTP server: %v", err)
	}
}

func buildBlobStore(ctx context.Context, cfg config.BlobStoreConfig) (core.BlobStore, func() error, error) {
	switch cfg.Kind {
	case "local":
		store, err := blobstore.NewLocal(cfg.Local.Dir)
		return store, nil, err
	case "s3":
		store, err := blobstore.NewS3(ctx, blobstore.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
		})
		return store, nil, err
	case "dual":
		local, err := blobstore.NewLocal(cfg.Local.Dir)
		if err != nil {
			return nil, nil, err
		}
		s3, err := blobstore.NewS3(ctx, blobstore.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
		})
		if err != nil {
			return nil, nil, err
		}
		return blobstore.NewDual(local, s3, fwlog.DefaultLogger()), nil, nil
	default:
		return nil, nil, fmt.Errorf("config: unknown blobStore.kind %q", cfg.Kind)
	}
}

func buildMetaIndex(ctx context.Context, cfg config.MetaIndexConfig, skewToleranceMs int64, clock core.Clock) (core.MetadataIndex, error) {
	switch cfg.Kind {
	case "redis":
		return metaindex.NewRedis(ctx, metaindex.RedisConfig{
			Addr:            cfg.Redis.Addr,
			DB:              cfg.Redis.DB,
			SkewToleranceMs: skewToleranceMs,
		}, clock)
	case "memory":
		if !cfg.AllowSingleReplica {
			return nil, errors.New("config: metaIndex.kind=memory requires allowSingleReplica=true")
		}
		return metaindex.NewMemory(), nil
	default:
		return nil, fmt.Errorf("config: unknown metaIndex.kind %q", cfg.Kind)
	}
}
