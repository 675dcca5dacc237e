package main

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/biotrust-cli/internal/scrape"
	"github.com/sells-group/biotrust-cli/internal/summarize"
	"github.com/sells-group/biotrust-cli/internal/textsignal"
)

var ingestSource string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Scrape configured newsrooms and record extracted promises",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		env, err := initEnv(cmd.Context())
		if err != nil {
			return err
		}
		defer env.Close()

		scraper := scrape.NewScraper(scrape.NewFetcher(scrape.FetcherOptions{
			UserAgent:  cfg.Scrape.UserAgent,
			Timeout:    time.Duration(cfg.Scrape.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Scrape.MaxRetries,
		}))

		var summarizer *summarize.Summarizer
		if cfg.Ingest.Summarize {
			summarizer = summarize.NewSummarizer(
				summarize.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model)
		}

		batchID := uuid.NewString()
		logger := zap.L().With(zap.String("batch_id", batchID))
		logger.Info("ingest started", zap.Int("sources", len(cfg.Scrape.Sources)))

		var scraped, recorded, failed atomic.Int64

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(cfg.Ingest.MaxConcurrent)

		for _, src := range cfg.Scrape.Sources {
			if ingestSource != "" && src.Name != ingestSource {
				continue
			}

			links, err := scraper.ListReleases(ctx, src)
			if err != nil {
				logger.Warn("source index failed",
					zap.String("source", src.Name), zap.Error(err))
				failed.Add(1)
				continue
			}

			for _, link := range links {
				src, link := src, link
				g.Go(func() error {
					rel, err := scraper.FetchRelease(ctx, src, link)
					if err != nil {
						logger.Warn("release fetch failed",
							zap.String("url", link), zap.Error(err))
						failed.Add(1)
						return nil
					}
					scraped.Add(1)

					dateMade := time.Now().UTC()
					if rel.Published != nil {
						dateMade = *rel.Published
					}
					speaker := textsignal.ExtractSpeaker(rel.Body, rel.Company)
					if speaker.Name == "" {
						logger.Debug("no attributed executive, skipping",
							zap.String("url", link))
						return nil
					}

					promises := textsignal.ExtractPromises(rel.Body, rel.Company,
						speaker.Name, speaker.Title, rel.URL, dateMade)
					if len(promises) > 0 {
						n, err := env.Tracker.Record(ctx, promises)
						if err != nil {
							logger.Warn("record failed",
								zap.String("url", link), zap.Error(err))
							failed.Add(1)
							return nil
						}
						recorded.Add(int64(n))
					}

					if summarizer != nil {
						sum, err := summarizer.Summarize(ctx, rel)
						if err != nil {
							logger.Warn("summarize failed",
								zap.String("url", link), zap.Error(err))
							return nil
						}
						fmt.Printf("--- %s (%s)\n%s\n\n", sum.Title, sum.URL, sum.Text)
					}
					return nil
				})
			}
		}

		if err := g.Wait(); err != nil {
			return err
		}

		logger.Info("ingest finished",
			zap.Int64("releases_scraped", scraped.Load()),
			zap.Int64("promises_recorded", recorded.Load()),
			zap.Int64("failures", failed.Load()),
		)
		fmt.Printf("Scraped %d releases, recorded %d promises (%d failures).\n",
			scraped.Load(), recorded.Load(), failed.Load())
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "restrict to one configured source")
	rootCmd.AddCommand(ingestCmd)
}
