package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/document"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/paginator"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/service"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
)

const appName = "searchctl"

var (
	header  = color.New(color.FgGreen, color.Bold).SprintFunc()
	accent  = color.New(color.FgCyan, color.Bold).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
	failure = color.New(color.FgRed, color.Bold).SprintFunc()
)

func main() {
	app := makeApp()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, failure(err.Error()))
		os.Exit(1)
	}
}

func makeApp() *cli.App {
	app := cli.NewApp()
	app.Name = appName
	app.Usage = "query an in-memory TF-IDF index built from a corpus file"
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "log-level",
			Value:  "warn",
			EnvVar: "TS_LOGGING_LEVEL",
			Usage:  "log level for engine diagnostics",
		},
	}
	app.Before = func(c *cli.Context) error {
		logger.SetupWriter(c.App.ErrWriter, c.String("log-level"), "text")
		return nil
	}
	corpusFlag := cli.StringFlag{
		Name:  "corpus",
		Usage: "YAML corpus file; the built-in sample corpus when empty",
	}
	pageSizeFlag := cli.IntFlag{
		Name:  "page-size",
		Value: config.Default().Engine.DefaultPageSize,
		Usage: "results per page",
	}
	app.Commands = []cli.Command{
		{
			Name:   "demo",
			Usage:  `rank the sample corpus for "curly dog" and print it page by page`,
			Flags:  []cli.Flag{pageSizeFlag},
			Action: runDemo,
		},
		{
			Name:           "query",
			Usage:          "rank a corpus for a query",
			ArgsUsage:      "<query words...>",
			SkipArgReorder: true,
			Flags: []cli.Flag{
				corpusFlag,
				pageSizeFlag,
				cli.StringFlag{Name: "status", Usage: `status name or "any" (default ACTUAL)`},
				cli.IntFlag{Name: "min-rating", Value: -1 << 31, Usage: "minimum average rating"},
			},
			Action: runQuery,
		},
		{
			Name:           "match",
			Usage:          "list the query words present in one document",
			ArgsUsage:      "<query words...>",
			SkipArgReorder: true,
			Flags: []cli.Flag{
				corpusFlag,
				cli.IntFlag{Name: "id", Usage: "document id"},
			},
			Action: runMatch,
		},
		{
			Name:   "terms",
			Usage:  "print the vocabulary with its postings",
			Flags:  []cli.Flag{corpusFlag},
			Action: runTerms,
		},
		{
			Name:  "publish",
			Usage: "publish a corpus to the Kafka documents topic",
			Flags: []cli.Flag{
				corpusFlag,
				cli.StringSliceFlag{Name: "broker", Usage: "Kafka broker address (repeatable)"},
				cli.StringFlag{Name: "topic", Value: config.Default().Kafka.Topics.Documents, Usage: "documents topic"},
			},
			Action: runPublish,
		},
		loadTestCommand(),
	}
	return app
}

func runDemo(c *cli.Context) error {
	return rankAndPrint(c, sampleCorpus(), "curly dog", service.Filter{}, c.Int("page-size"))
}

func runQuery(c *cli.Context) error {
	query := strings.Join(c.Args(), " ")
	corp, err := loadCorpus(c.String("corpus"))
	if err != nil {
		return err
	}
	var f service.Filter
	switch status := c.String("status"); strings.ToLower(status) {
	case "":
	case "any":
		f.AnyStatus = true
	default:
		s, err := document.ParseStatus(status)
		if err != nil {
			return err
		}
		f.Status = &s
	}
	if c.IsSet("min-rating") {
		min := c.Int("min-rating")
		f.MinRating = &min
	}
	return rankAndPrint(c, corp, query, f, c.Int("page-size"))
}

// rankAndPrint prints each page of the ranked results followed by a
// "Page break" line.
func rankAndPrint(c *cli.Context, corp *corpus, query string, f service.Filter, pageSize int) error {
	ctx := context.Background()
	out := c.App.Writer
	svc, err := corp.build(ctx, reporter(c.App.ErrWriter))
	if err != nil {
		return err
	}
	result, _, err := svc.Search(ctx, query, f)
	if err != nil {
		return err
	}
	pages, err := paginator.Paginate(result.Results, pageSize)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %q (%s, %d results)\n", header("Results for"), query, f.Key(), len(result.Results))
	for page := range pages {
		for _, doc := range page {
			fmt.Fprint(out, doc)
		}
		fmt.Fprintln(out)
		fmt.Fprintln(out, accent("Page break"))
	}
	return nil
}

func runMatch(c *cli.Context) error {
	if !c.IsSet("id") {
		return errors.New("--id is required")
	}
	corp, err := loadCorpus(c.String("corpus"))
	if err != nil {
		return err
	}
	svc, err := corp.build(context.Background(), reporter(c.App.ErrWriter))
	if err != nil {
		return err
	}
	m, err := svc.MatchDocument(strings.Join(c.Args(), " "), c.Int("id"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s %d %s [%s]\n", header("document"), m.DocumentID, m.Status, strings.Join(m.Words, ", "))
	return nil
}

func runTerms(c *cli.Context) error {
	corp, err := loadCorpus(c.String("corpus"))
	if err != nil {
		return err
	}
	svc, err := corp.build(context.Background(), reporter(c.App.ErrWriter))
	if err != nil {
		return err
	}
	for _, entry := range svc.Terms() {
		parts := make([]string, 0, len(entry.Postings))
		for _, p := range entry.Postings {
			parts = append(parts, fmt.Sprintf("%d:%.6g", p.DocID, p.TermFreq))
		}
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", accent(entry.Term), strings.Join(parts, " "))
	}
	return nil
}

func runPublish(c *cli.Context) error {
	brokers := c.StringSlice("broker")
	if len(brokers) == 0 {
		return errors.New("at least one --broker is required")
	}
	corp, err := loadCorpus(c.String("corpus"))
	if err != nil {
		return err
	}
	producer := kafka.NewProducer(config.KafkaConfig{Brokers: brokers}, c.String("topic"))
	defer producer.Close()
	if err := publisher.New(producer).Publish(context.Background(), corp.Documents); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s %d documents to %s\n", header("published"), len(corp.Documents), c.String("topic"))
	return nil
}

func reporter(w io.Writer) func(ingestion.IngestRequest, error) {
	return func(req ingestion.IngestRequest, err error) {
		id := "?"
		if req.ID != nil {
			id = fmt.Sprint(*req.ID)
		}
		fmt.Fprintf(w, "%s document %s: %v\n", warning("skipped"), id, err)
	}
}
