// Command regionsearch builds and queries administrative region indexes.
//
// Logging:
//   - Base logger is created here with output format and level
//   - Logger is passed to all components via dependency injection
//   - No global slog configuration (no slog.SetDefault)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"regionsearch/internal/home"
	"regionsearch/internal/index"
	"regionsearch/internal/region"
	"regionsearch/internal/ridx"
	"regionsearch/internal/search"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	rootCmd := &cobra.Command{
		Use:   "regionsearch",
		Short: "Chinese administrative region search",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	buildCmd := &cobra.Command{
		Use:   "build <records.json>",
		Short: "Build an index file from a JSON region dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			return runBuild(logger, args[0], out)
		},
	}
	buildCmd.Flags().StringP("out", "o", "", "output index path (default: platform data dir)")

	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Query an index file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("index")
			limit, _ := cmd.Flags().GetInt("limit")
			asJSON, _ := cmd.Flags().GetBool("json")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			return runSearch(logger, path, args[0], limit, asJSON, timeout)
		},
	}
	searchCmd.Flags().StringP("index", "i", "", "index file path (default: platform data dir)")
	searchCmd.Flags().IntP("limit", "n", 10, "maximum results")
	searchCmd.Flags().Bool("json", false, "emit results as JSON")
	searchCmd.Flags().Duration("timeout", 2*time.Second, "search deadline")

	infoCmd := &cobra.Command{
		Use:   "info <index.ridx>",
		Short: "Print index metadata without loading it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	rootCmd.AddCommand(buildCmd, searchCmd, infoCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBuild(logger *slog.Logger, recordsPath, outPath string) error {
	if outPath == "" {
		hd, err := home.Default()
		if err != nil {
			return err
		}
		if err := hd.EnsureExists(); err != nil {
			return err
		}
		outPath = hd.IndexPath("")
	}

	data, err := os.ReadFile(recordsPath)
	if err != nil {
		return fmt.Errorf("read records: %w", err)
	}
	var records []region.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse records: %w", err)
	}

	b := index.NewBuilder(logger)
	b.Add(records...)
	ix, err := b.Build()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := ridx.Save(outPath, ix, logger); err != nil {
		return fmt.Errorf("save index: %w", err)
	}

	stats := ix.Stats()
	fmt.Printf("indexed %d regions -> %s\n", stats.Regions, outPath)
	return nil
}

func runSearch(logger *slog.Logger, indexPath, query string, limit int, asJSON bool, timeout time.Duration) error {
	if indexPath == "" {
		hd, err := home.Default()
		if err != nil {
			return err
		}
		indexPath = hd.IndexPath("")
	}

	ix, _, err := ridx.Load(indexPath, logger)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	engine := search.New(ix, search.DefaultConfig(), logger)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	results, err := engine.Search(ctx, query, search.Options{Limit: limit})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for i, r := range results {
		fmt.Printf("%2d. %-12s %-10s %.3f  %s\n",
			i+1, r.Region.Name, r.Region.Level, r.Score, joinPath(r.Path))
	}
	return nil
}

func runInfo(path string) error {
	meta, err := ridx.ReadMeta(path)
	if err != nil {
		return fmt.Errorf("read metadata: %w", err)
	}
	fmt.Printf("build:    %s\n", meta.BuildID)
	fmt.Printf("built at: %s\n", meta.BuiltAt.Format(time.RFC3339))
	fmt.Printf("format:   v%d\n", meta.FormatVersion)
	fmt.Printf("regions:  %d\n", meta.Stats.Regions)
	fmt.Printf("tokens:   %d name, %d pinyin, %d short, %d ngram windows\n",
		meta.Stats.NameTokens, meta.Stats.PinyinTokens,
		meta.Stats.ShortTokens, meta.Stats.NgramWindows)
	return nil
}

func joinPath(path []string) string {
	out := ""
	for i, p := range path {
		if i > 0 {
			out += " > "
		}
		out += p
	}
	return out
}
