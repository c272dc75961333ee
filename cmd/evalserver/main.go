/*
Copyright 2025 CareSignal, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main runs the turn evaluation HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/caresignal/turneval/evalconfig"
	"github.com/caresignal/turneval/evaluator"
	"github.com/caresignal/turneval/evaluator/judge"
	"github.com/caresignal/turneval/knowledgebase"
	"github.com/caresignal/turneval/server"
	"github.com/chainguard-dev/clog"
	"github.com/sethvargo/go-envconfig"
)

type config struct {
	Port       int    `env:"PORT,default=8080"`
	KBPath     string `env:"KB_PATH,required"`
	ConfigPath string `env:"CONFIG_PATH,required"`

	// evalBlock names the YAML block holding the evaluator settings.
	EvalBlock string `env:"EVAL_BLOCK,default=llm_evaluator"`

	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	evalCfgFile, err := evalconfig.Load(cfg.ConfigPath)
	if err != nil {
		clog.FatalContextf(ctx, "loading evaluation config: %v", err)
	}
	evalCfg, err := evalCfgFile.Block(cfg.EvalBlock)
	if err != nil {
		clog.FatalContextf(ctx, "reading %q config block: %v", cfg.EvalBlock, err)
	}

	j, err := judge.New(evalCfg.ModelName, judgeOptions(cfg, evalCfg.ModelName)...)
	if err != nil {
		clog.FatalContextf(ctx, "constructing judge for %q: %v", evalCfg.ModelName, err)
	}

	// A knowledge base that fails to load starts the service degraded rather
	// than crash-looping: health stays up reporting kb_items 0, and every
	// evaluation request fails with 500 until restart.
	svc := evaluator.NewService(nil)
	kb, err := knowledgebase.Load(cfg.KBPath)
	if err != nil {
		clog.WarnContextf(ctx, "knowledge base unavailable, starting degraded: %v", err)
	} else if e, err := evaluator.New(kb, evalCfg, j); err != nil {
		clog.WarnContextf(ctx, "evaluator unavailable, starting degraded: %v", err)
	} else {
		svc = evaluator.NewService(e)
		clog.InfoContextf(ctx, "Loaded %d knowledge base items from %s", kb.Len(), cfg.KBPath)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.New(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			clog.ErrorContextf(ctx, "shutting down: %v", err)
		}
	}()

	clog.InfoContextf(ctx, "Starting evaluation service on port %d (model %s, %s mode)",
		cfg.Port, evalCfg.ModelName, evalCfg.ResponseType)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		clog.FatalContextf(ctx, "server failed: %v", err)
	}
}

// judgeOptions selects provider credentials by model family.
func judgeOptions(cfg config, modelName string) []judge.Option {
	var opts []judge.Option
	if strings.HasPrefix(modelName, "claude-") {
		if cfg.AnthropicAPIKey != "" {
			opts = append(opts, judge.WithAPIKey(cfg.AnthropicAPIKey))
		}
		return opts
	}
	if cfg.OpenAIAPIKey != "" {
		opts = append(opts, judge.WithAPIKey(cfg.OpenAIAPIKey))
	}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, judge.WithBaseURL(cfg.OpenAIBaseURL))
	}
	return opts
}
