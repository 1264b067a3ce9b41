// Copyright 2025 Substrate Systems
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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/substratehq/depot"
	"github.com/substratehq/depot/ai"
	"github.com/substratehq/depot/objectstore"
	"github.com/substratehq/depot/objectstore/minio"
	"github.com/substratehq/depot/vectorindex/chroma"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "depot",
		Usage: "Content-addressed storage pool with multi-modal ingestion",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringSliceFlag{
				Name:     "backend",
				Aliases:  []string{"b"},
				Usage:    "Object storage backend URL (repeatable)",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "access-key",
				Usage: "Object storage access key",
				EnvVars: []string{
					"DEPOT_ACCESS_KEY",
				},
			},
			&cli.StringFlag{
				Name:  "secret-key",
				Usage: "Object storage secret key",
				EnvVars: []string{
					"DEPOT_SECRET_KEY",
				},
			},
			&cli.StringFlag{
				Name:  "bucket",
				Usage: "Bucket name",
				Value: "depot",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to metadata store directory",
				Value:   "./depot-db",
			},
			&cli.StringFlag{
				Name:    "google-api-key",
				Usage:   "Gemini API key for media description",
				EnvVars: []string{"GOOGLE_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "voyage-api-key",
				Usage:   "Voyage API key for embeddings",
				EnvVars: []string{"VOYAGE_API_KEY"},
			},
			&cli.StringFlag{
				Name:  "chroma-url",
				Usage: "Chroma server URL; omit to use the embedded index",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "Store a file and schedule it for ingestion",
				ArgsUsage: "<file>",
				Action:    uploadCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "identity",
						Aliases:  []string{"i"},
						Usage:    "Uploader identity",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "collection",
						Aliases: []string{"c"},
						Usage:   "Target vector collection",
						Value:   "default",
					},
				},
			},
			{
				Name:      "status",
				Usage:     "Show the state of an ingestion job",
				ArgsUsage: "<job-id>",
				Action:    statusCommand,
			},
			{
				Name:      "search",
				Usage:     "Search a collection by text query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "collection",
						Aliases: []string{"c"},
						Usage:   "Vector collection to search",
						Value:   "default",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
						Value:   10,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDepot(c *cli.Context) (*depot.Depot, error) {
	backends := make([]objectstore.Client, 0, len(c.StringSlice("backend")))
	for _, url := range c.StringSlice("backend") {
		client, err := minio.New(minio.Config{
			EndpointURL:     url,
			AccessKeyID:     c.String("access-key"),
			SecretAccessKey: c.String("secret-key"),
		})
		if err != nil {
			return nil, fmt.Errorf("backend %s: %w", url, err)
		}
		backends = append(backends, client)
	}

	opts := []depot.DepotOption{
		depot.WithAIConfig(ai.NewConfig(
			ai.WithGoogleAPIKey(c.String("google-api-key")),
			ai.WithVoyageAPIKey(c.String("voyage-api-key")),
		)),
	}
	if url := c.String("chroma-url"); url != "" {
		opts = append(opts, depot.WithVectorIndex(chroma.New(url)))
	}

	return depot.New(c.Context, c.String("db"), backends, c.String("bucket"), opts...)
}

func uploadCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one file argument")
	}
	path := c.Args().First()

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	d, err := openDepot(c)
	if err != nil {
		return err
	}
	defer d.Close()

	result, err := d.Upload(c.Context, c.String("identity"), path, c.String("collection"), content)
	if err != nil {
		return err
	}

	if result.Duplicate {
		fmt.Printf("duplicate: %s\n", result.Hash)
		return nil
	}
	fmt.Printf("stored: %s\njob: %s\n", result.Hash, result.JobID)
	return nil
}

func statusCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one job id argument")
	}

	d, err := openDepot(c)
	if err != nil {
		return err
	}
	defer d.Close()

	state, err := d.JobStatus(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	fmt.Println(state)
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one query argument")
	}

	d, err := openDepot(c)
	if err != nil {
		return err
	}
	defer d.Close()

	matches, err := d.Search(c.Context, c.String("collection"), c.Args().First(), c.Int("limit"))
	if err != nil {
		return err
	}

	if len(matches) == 0 {
		fmt.Println("no results")
		return nil
	}
	for _, m := range matches {
		fmt.Printf("%.4f  %s  %s\n", m.Score, m.ID, m.Location)
	}
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
		return fmt.Errorf("invalid log level: %s", levelStr)
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return nil
}
