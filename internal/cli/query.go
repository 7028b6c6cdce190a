package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/watchtowerhq/watchtower/api/config"
	"github.com/watchtowerhq/watchtower/pkg/classify"
	"github.com/watchtowerhq/watchtower/pkg/llm"
	"github.com/watchtowerhq/watchtower/pkg/pipeline"
	"github.com/watchtowerhq/watchtower/pkg/router"
	"github.com/watchtowerhq/watchtower/pkg/shape"
	"github.com/watchtowerhq/watchtower/pkg/store"
	"github.com/watchtowerhq/watchtower/pkg/synth"
)

type QueryCmd struct{}

func NewQueryCmd() *QueryCmd {
	return &QueryCmd{}
}

func (c *QueryCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query [question]",
		Short: "Run a natural language query against the monitoring database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
			if err != nil {
				return fmt.Errorf("failed to get verbose flag: %w", err)
			}
			showSQL, err := cmd.Flags().GetBool("sql")
			if err != nil {
				return fmt.Errorf("failed to get sql flag: %w", err)
			}

			log := newLogger(verbose)
			question := strings.Join(args, " ")

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			p, st, err := newPipeline(ctx, log, true)
			if err != nil {
				log.Error("Failed to build pipeline", "error", err)
				os.Exit(1)
			}
			defer st.Close()

			resp, err := p.Process(ctx, question)
			if err != nil {
				log.Error("Query failed", "error", err)
				os.Exit(1)
			}

			printResponse(resp)
			if showSQL && resp.GeneratedSQL != "" {
				fmt.Printf("\nSQL:\n%s\n", resp.GeneratedSQL)
			}
			return nil
		},
	}
	cmd.Flags().Bool("sql", false, "print the generated SQL after the result")
	return cmd
}

type ExplainCmd struct{}

func NewExplainCmd() *ExplainCmd {
	return &ExplainCmd{}
}

// Command returns the explain command, which routes and synthesizes a query
// without executing it against the database.
func (c *ExplainCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [question]",
		Short: "Show the handler and SQL a query would run, without executing it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, err := cmd.Root().PersistentFlags().GetBool("verbose")
			if err != nil {
				return fmt.Errorf("failed to get verbose flag: %w", err)
			}

			log := newLogger(verbose)
			question := strings.Join(args, " ")

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			p, _, err := newPipeline(ctx, log, false)
			if err != nil {
				log.Error("Failed to build pipeline", "error", err)
				os.Exit(1)
			}

			debug, err := p.Debug(ctx, question)
			if err != nil {
				log.Error("Failed to analyze query", "error", err)
				os.Exit(1)
			}

			fmt.Printf("Handler:     %s\n", debug.Handler)
			fmt.Printf("Description: %s\n", debug.QueryDescription)
			fmt.Printf("Fallback:    %t\n", debug.UsedFallback)
			fmt.Printf("SQL:\n%s\n", debug.GeneratedSQL)
			return nil
		},
	}
}

// newPipeline builds the query pipeline from environment configuration.
// When withStore is false no database connection is opened and the
// returned store is nil.
func newPipeline(ctx context.Context, log *slog.Logger, withStore bool) (*pipeline.Pipeline, *store.Postgres, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var client llm.Client
	switch cfg.Provider {
	case config.ProviderAnthropic:
		client = llm.NewAnthropicClient(anthropic.Model(cfg.AnthropicModel), 1024, log)
	default:
		client = llm.NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaTimeout, log)
	}

	classifier := classify.New(client, log)
	rt, err := router.New(classifier, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build router: %w", err)
	}
	det := shape.NewDetector(classifier, log)
	gen := synth.NewGenerator(client, log)

	var st *store.Postgres
	var querier store.Querier
	if withStore {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		st, err = store.NewPostgres(connectCtx, cfg.PostgresDSN(), log, store.WithQueryTimeout(cfg.QueryTimeout))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		querier = st
	}

	return pipeline.New(classifier, rt, gen, querier, det, log), st, nil
}

func printResponse(resp *pipeline.Response) {
	switch data := resp.Data.(type) {
	case shape.TablePayload:
		renderTable(data)
		fmt.Printf("\n%s (%d rows)\n", resp.QueryDescription, resp.TotalCount)
	case shape.ChartPayload:
		renderChart(data)
		fmt.Printf("\n%s\n", resp.QueryDescription)
	case shape.TextPayload:
		fmt.Println(data.Message)
	default:
		// Instruction and help payloads are structured; print them as JSON.
		out, err := json.MarshalIndent(resp.Data, "", "  ")
		if err != nil {
			fmt.Printf("%v\n", resp.Data)
			return
		}
		fmt.Println(string(out))
	}
}

func renderTable(payload shape.TablePayload) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader(payload.Columns)

	for _, row := range payload.Rows {
		cells := make([]string, 0, len(payload.Columns))
		for _, col := range payload.Columns {
			cells = append(cells, formatCell(row[col]))
		}
		table.Append(cells)
	}
	table.Render()
}

func renderChart(payload shape.ChartPayload) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(true)
	table.SetHeader([]string{"Date", "Count"})

	for i, label := range payload.Labels {
		table.Append([]string{label, strconv.Itoa(payload.Datasets[i])})
	}
	table.Render()
}

func formatCell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
