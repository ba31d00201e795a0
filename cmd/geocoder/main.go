// Command geocoder is the thin operator-facing CLI around the geocoder
// library: it loads configuration, builds the dictionaries and indexes
// from disk, and exposes import/serve/query subcommands. All of the
// actual parsing/indexing/search logic lives in internal/.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/geocoder/internal/admin"
	"github.com/standardbeagle/geocoder/internal/admincache"
	"github.com/standardbeagle/geocoder/internal/config"
	"github.com/standardbeagle/geocoder/internal/debug"
	"github.com/standardbeagle/geocoder/internal/dictionary"
	"github.com/standardbeagle/geocoder/internal/ftsindex"
	"github.com/standardbeagle/geocoder/internal/pipeline"
	"github.com/standardbeagle/geocoder/internal/poi"
	"github.com/standardbeagle/geocoder/internal/query"
	"github.com/standardbeagle/geocoder/internal/remotedir"
	"github.com/standardbeagle/geocoder/internal/search"
	"github.com/standardbeagle/geocoder/internal/substitution"
)

func main() {
	app := &cli.App{
		Name:  "geocoder",
		Usage: "Parse, index, and search points of interest",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   "geocoder.kdl",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Read newline-delimited POI JSON from a file (or stdin) and build the full-text index",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "source",
						Usage: "Path to a newline-delimited JSON POI file (defaults to stdin)",
					},
				},
				Action: importCommand,
			},
			{
				Name:   "query",
				Usage:  "Parse and score a free-text query, printing its ranked scenarios",
				Action: queryCommand,
			},
			{
				Name:   "serve",
				Usage:  "Run the search façade against a built index",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum results per query",
						Value: 10,
					},
				},
				Action: serveCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "geocoder: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadWordList reads one word per line from path, skipping blank lines.
func loadWordList(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var words []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			words = append(words, line)
		}
	}
	return words, nil
}

func buildDictionary(dir, file string) (*dictionary.KeyedFST, error) {
	words, err := loadWordList(filepath.Join(dir, file))
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", file, err)
	}
	return dictionary.New(strings.TrimSuffix(file, filepath.Ext(file)), words)
}

// buildParser assembles the query parser's dictionaries from the
// configured dictionary directory. Each word list lives in its own
// file, one entry per line; a missing file yields an empty dictionary
// rather than an error, since not every deployment needs every
// component kind (a region-only configuration might omit countries).
func buildParser(cfg *config.Config) (*query.Parser, error) {
	dir := cfg.Index.DictionaryDir

	categories, err := buildDictionary(dir, "categories.txt")
	if err != nil {
		return nil, err
	}
	nearby, err := buildDictionary(dir, "nearby_words.txt")
	if err != nil {
		return nil, err
	}
	joinWords, err := buildDictionary(dir, "intersection_join_words.txt")
	if err != nil {
		return nil, err
	}
	sublocalities, err := buildDictionary(dir, "sublocalities.txt")
	if err != nil {
		return nil, err
	}
	localities, err := buildDictionary(dir, "localities.txt")
	if err != nil {
		return nil, err
	}
	regions, err := buildDictionary(dir, "regions.txt")
	if err != nil {
		return nil, err
	}
	countries, err := buildDictionary(dir, "countries.txt")
	if err != nil {
		return nil, err
	}
	suffixes, err := buildDictionary(dir, "street_suffixes.txt")
	if err != nil {
		return nil, err
	}

	brickMortarWords, err := loadWordList(filepath.Join(dir, "brick_and_mortar.txt"))
	if err != nil {
		return nil, err
	}
	brickMortar := make(map[string]bool, len(brickMortarWords))
	for _, w := range brickMortarWords {
		brickMortar[strings.ToLower(w)] = true
	}

	dicts := &query.Dictionaries{
		Categories:            categories,
		NearbyWords:           nearby,
		IntersectionJoinWords: joinWords,
		Sublocalities:         sublocalities,
		Localities:            localities,
		Regions:               regions,
		Countries:             countries,
		StreetSuffixes:        suffixes,
		BrickAndMortarWords:   brickMortar,
	}
	return query.NewParser(dicts), nil
}

// buildSubstitutionRegistry loads one road-substitution dictionary per
// language file found in cfg.Index.SubstitutionDir, named <lang>.txt
// (e.g. en.txt, es.txt).
func buildSubstitutionRegistry(cfg *config.Config) (*substitution.Registry, error) {
	reg := substitution.NewRegistry()

	entries, err := os.ReadDir(cfg.Index.SubstitutionDir)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return nil, err
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") || name == "categories.txt" {
			continue
		}
		lang := strings.TrimSuffix(name, ".txt")
		content, err := os.ReadFile(filepath.Join(cfg.Index.SubstitutionDir, name))
		if err != nil {
			return nil, err
		}
		reg.Register(lang, substitution.ParseDict(string(content)))
	}
	return reg, nil
}

func importCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	var reader *bufio.Reader
	if sourcePath := c.String("source"); sourcePath != "" {
		f, err := os.Open(sourcePath)
		if err != nil {
			return fmt.Errorf("opening source: %w", err)
		}
		defer f.Close()
		reader = bufio.NewReader(f)
	} else {
		reader = bufio.NewReader(os.Stdin)
	}

	index, err := ftsindex.New(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("creating index: %w", err)
	}
	defer index.Close()

	substitutions, err := buildSubstitutionRegistry(cfg)
	if err != nil {
		return fmt.Errorf("loading substitution dictionaries: %w", err)
	}
	index.SetSubstitutions(substitutions)

	if cfg.Remote.BaseURL != "" {
		if _, err := os.Stat(cfg.Admin.CachePath); os.IsNotExist(err) {
			fetchCtx, fetchCancel := context.WithTimeout(context.Background(), 5*time.Minute)
			remoteURL := cfg.Remote.BaseURL + "/admin_cache.db"
			err := remotedir.FetchFile(fetchCtx, remoteURL, cfg.Admin.CachePath, cfg.Remote.ChunkSize)
			fetchCancel()
			if err != nil {
				return fmt.Errorf("fetching remote admin cache snapshot: %w", err)
			}
		}
	}

	cache, err := admincache.Open(cfg.Admin.CachePath, cfg.Admin.CacheBufferSize)
	if err != nil {
		return fmt.Errorf("opening admin cache: %w", err)
	}
	defer cache.Close()

	var resolver *admin.Resolver
	if cfg.Admin.PIPEndpoint != "" {
		resolver = admin.NewResolver(cache, cfg.Admin.PIPEndpoint)
	}

	source := make(chan poi.POI, cfg.Pipeline.POIChannelCapacity)
	decodeErr := make(chan error, 1)
	go func() {
		defer close(source)
		scanner := bufio.NewScanner(reader)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			var p poi.POI
			if err := json.Unmarshal([]byte(line), &p); err != nil {
				debug.Warnf("skipping malformed POI line: %v", err)
				continue
			}
			source <- p
		}
		decodeErr <- scanner.Err()
	}()

	ctx, cancel := signalContext()
	defer cancel()

	pipelineCfg := pipeline.DefaultConfig()
	pipelineCfg.WorkerMultiplier = cfg.Pipeline.WorkerMultiplier
	pipelineCfg.ReadRefreshEvery = cfg.Pipeline.ReadRefreshEvery
	pipelineCfg.AdminRetryAttempts = cfg.Pipeline.AdminRetryAttempts
	pipelineCfg.ProgressEvery = cfg.Pipeline.ProgressEvery

	if err := pipeline.Run(ctx, pipelineCfg, source, resolver, index); err != nil {
		return fmt.Errorf("import pipeline failed: %w", err)
	}
	if err := <-decodeErr; err != nil {
		return fmt.Errorf("reading source: %w", err)
	}

	return nil
}

func queryCommand(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("usage: geocoder query <text>")
	}
	input := strings.Join(c.Args().Slice(), " ")

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	parser, err := buildParser(cfg)
	if err != nil {
		return fmt.Errorf("building parser: %w", err)
	}

	parsed := parser.Parse(input)
	for i, scenario := range parsed.Scenarios {
		if i >= 10 {
			break
		}
		fmt.Printf("%.4f\t%s\n", query.Score(scenario), describeScenario(scenario))
	}
	return nil
}

func describeScenario(s query.Scenario) string {
	var parts []string
	for _, comp := range s.Components {
		parts = append(parts, fmt.Sprintf("%s(%s)", comp.Kind(), comp.Text()))
	}
	return strings.Join(parts, " ")
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	parser, err := buildParser(cfg)
	if err != nil {
		return fmt.Errorf("building parser: %w", err)
	}

	index, err := ftsindex.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("opening index: %w", err)
	}
	defer index.Close()

	substitutions, err := buildSubstitutionRegistry(cfg)
	if err != nil {
		return fmt.Errorf("loading substitution dictionaries: %w", err)
	}

	facade := search.New(parser, index, substitutions)
	opts := search.DefaultOptions()
	opts.ResultLimit = c.Int("limit")

	ctx, cancel := signalContext()
	defer cancel()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprintln(os.Stderr, "geocoder serve: reading queries from stdin, one per line")
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		results, err := facade.Search(ctx, line, opts)
		if err != nil {
			debug.Errorf("search failed for %q: %v", line, err)
			continue
		}
		for _, r := range results {
			fmt.Printf("%.4f\t%s\t%.6f,%.6f\n", r.Score, r.Document.Name, r.Document.Lat, r.Document.Lng)
		}
	}
	return scanner.Err()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
