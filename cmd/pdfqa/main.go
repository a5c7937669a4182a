// Copyright 2025 Poiesic Systems
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
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	pdfqa "github.com/LessGoh/Claude-QA-UI-v2"
	"github.com/LessGoh/Claude-QA-UI-v2/ai"
	"github.com/LessGoh/Claude-QA-UI-v2/core"
	"github.com/LessGoh/Claude-QA-UI-v2/ingestion"
	"github.com/LessGoh/Claude-QA-UI-v2/storage/milvus"
	"github.com/urfave/cli/v2"
	"github.com/urfave/cli/v2/altsrc"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// globalFlags can all be set from the TOML file named by --config.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Load flag values from a TOML file",
		},
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "log-level",
			Aliases: []string{"l"},
			Usage:   "Set logging level (debug, info, warn, error)",
			Value:   "info",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   "./pdfqa-data",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: "http://localhost:11434/v1",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "api-token",
			Usage:   "Bearer token for the embedding service",
			EnvVars: []string{"PDFQA_API_TOKEN", "OPENAI_API_KEY"},
		}),
		altsrc.NewIntFlag(&cli.IntFlag{
			Name:  "embedding-batch-size",
			Usage: "Maximum texts per embedding request",
			Value: 64,
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "milvus-address",
			Usage: "Milvus address (host:port) for the shared index; empty keeps it local",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "milvus-database",
			Usage: "Milvus database name",
			Value: "default",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:  "milvus-username",
			Usage: "Milvus username",
		}),
		altsrc.NewStringFlag(&cli.StringFlag{
			Name:    "milvus-password",
			Usage:   "Milvus password",
			EnvVars: []string{"PDFQA_MILVUS_PASSWORD"},
		}),
		altsrc.NewDurationFlag(&cli.DurationFlag{
			Name:  "milvus-timeout",
			Usage: "Milvus connection timeout",
			Value: 30 * time.Second,
		}),
	}
}

func userFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "user",
			Aliases:  []string{"u"},
			Usage:    "Uploading user",
			Required: true,
			EnvVars:  []string{"PDFQA_USER"},
		},
		&cli.StringFlag{
			Name:    "scope",
			Aliases: []string{"s"},
			Usage:   "Target index (personal, shared)",
			Value:   "personal",
		},
	}
}

func newApp() *cli.App {
	flags := globalFlags()
	loadConfig := altsrc.InitInputSourceWithContext(flags, altsrc.NewTomlSourceFromFlagFunc("config"))

	return &cli.App{
		Name:  "pdfqa",
		Usage: "Ingest PDF documents into personal and shared search indexes",
		Flags: flags,
		Before: func(c *cli.Context) error {
			if err := loadConfig(c); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return setupLogger(c)
		},
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Extract, split and store PDF files",
				ArgsUsage: "FILE...",
				Action:    ingestCommand,
				Flags: append(userFlags(),
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of files processed concurrently",
						Value: ingestion.DefaultPoolSize,
					},
					&cli.Int64Flag{
						Name:  "max-size",
						Usage: "Per-file size limit in bytes",
						Value: core.MaxFileSize,
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "Do not print progress",
					},
				),
			},
			{
				Name:   "documents",
				Usage:  "List documents registered in an index",
				Action: documentsCommand,
				Flags:  userFlags(),
			},
			{
				Name:   "indexes",
				Usage:  "Show the indexes available to a user",
				Action: indexesCommand,
				Flags:  userFlags()[:1],
			},
		},
	}
}

// openWorkspace is replaced in tests.
var openWorkspace = func(c *cli.Context) (*pdfqa.Workspace, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithAPIToken(c.String("api-token")),
		ai.WithBatchSize(c.Int("embedding-batch-size")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []pdfqa.WorkspaceOption{pdfqa.WithAIConfig(aiConfig)}
	if addr := c.String("milvus-address"); addr != "" {
		milvusOpts := milvus.NewOptions()
		milvusOpts.Address = addr
		milvusOpts.Database = c.String("milvus-database")
		milvusOpts.Username = c.String("milvus-username")
		milvusOpts.Password = c.String("milvus-password")
		milvusOpts.Timeout = c.Duration("milvus-timeout")
		opts = append(opts, pdfqa.WithMilvus(milvusOpts))
	}

	ws, err := pdfqa.NewWorkspace(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace: %w", err)
	}
	return ws, nil
}

// startSession opens the workspace and logs the --user in with --scope selected.
func startSession(c *cli.Context) (*pdfqa.Workspace, string, error) {
	user := c.String("user")
	scope, err := core.ParseIndexScope(c.String("scope"))
	if err != nil {
		return nil, "", err
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return nil, "", err
	}
	s, err := ws.Sessions().Login(user)
	if err != nil {
		ws.Close()
		return nil, "", err
	}
	if err := s.SelectIndex(scope); err != nil {
		ws.Close()
		return nil, "", err
	}
	return ws, user, nil
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("at least one file is required")
	}
	if c.Int("pool-size") <= 0 {
		return errors.New("pool-size must be greater than 0")
	}

	files, err := readUploads(c.Args().Slice(), c.Int64("max-size"))
	if err != nil {
		return err
	}

	ws, user, err := startSession(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	opts := []ingestion.Option{
		ingestion.WithPoolSize(c.Int("pool-size")),
		ingestion.WithMaxFileSize(c.Int64("max-size")),
	}
	var progress *ingestion.ProgressWriter
	if !c.Bool("quiet") {
		progress = ingestion.NewProgressWriter(c.App.ErrWriter)
		opts = append(opts, ingestion.WithProgress(progress.Report))
	}

	result, err := ws.Upload(context.Background(), user, files, opts...)
	if progress != nil {
		progress.Finish()
	}
	if result != nil {
		if ferr := result.Summary().Format(c.App.Writer); ferr != nil {
			return ferr
		}
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	slog.Info("ingestion complete", "index", result.IndexName, "files", len(result.Results), "rejected", len(result.Rejected))
	return nil
}

// readUploads loads each path, skipping the content of files over limit so they
// can be reported without being read.
func readUploads(paths []string, limit int64) ([]core.UploadedFile, error) {
	if limit <= 0 {
		limit = core.MaxFileSize
	}
	files := make([]core.UploadedFile, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", path)
		}

		file := core.UploadedFile{Name: filepath.Base(path), Size: info.Size()}
		if info.Size() <= limit {
			file.Content, err = os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
		}
		files = append(files, file)
	}
	return files, nil
}

func documentsCommand(c *cli.Context) error {
	ws, user, err := startSession(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	records, err := ws.Documents(context.Background(), user)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(c.App.Writer, "no documents")
		return nil
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILENAME\tCHUNKS\tSIZE\tUPLOADER\tUPLOADED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d\t%.1fMB\t%s\t%s\n",
			r.Filename, r.ChunkCount, float64(r.FileSizeBytes)/(1024*1024), r.Uploader, r.UploadedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

func indexesCommand(c *cli.Context) error {
	user := c.String("user")
	personal, err := core.IndexName(core.ScopePersonal, user)
	if err != nil {
		return err
	}
	shared, _ := core.IndexName(core.ScopeShared, user)

	sharedBackend := "local"
	if c.String("milvus-address") != "" {
		sharedBackend = "milvus " + c.String("milvus-address")
	}
	fmt.Fprintf(c.App.Writer, "personal\t%s\tlocal\n", personal)
	fmt.Fprintf(c.App.Writer, "shared\t%s\t%s\n", shared, sharedBackend)
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
