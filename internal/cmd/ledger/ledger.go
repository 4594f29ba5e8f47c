// Package ledger parses ledger command flags and runs journal and catalog
// inspection against a local ledger database.
package ledger

import (
	"context"
	"flag"
	"fmt"
	"io"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/status"

	"github.com/louisbranch/elysium-descent/internal/platform/config"
	"github.com/louisbranch/elysium-descent/internal/platform/otel"
	ledgerapi "github.com/louisbranch/elysium-descent/internal/services/ledger/api/ledger"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/app"
)

// Config holds ledger command configuration.
type Config struct {
	App app.Config

	Levels     bool
	Events     bool
	GameID     uint64
	AfterSeq   uint64
	PageSize   int
	Descending bool
	Filter     string
	Locale     string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg.App); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.App.DBPath, "db", cfg.App.DBPath, "ledger database path")
	fs.BoolVar(&cfg.Levels, "levels", false, "list the level catalog")
	fs.BoolVar(&cfg.Events, "events", false, "list the event journal")
	fs.Uint64Var(&cfg.GameID, "game", 0, "restrict events to one game (0 = all)")
	fs.Uint64Var(&cfg.AfterSeq, "after", 0, "return events after this sequence number")
	fs.IntVar(&cfg.PageSize, "page-size", 50, "events per page")
	fs.BoolVar(&cfg.Descending, "desc", false, "newest events first")
	fs.StringVar(&cfg.Filter, "filter", "", `event filter, e.g. type = "level.completed" AND level >= 2`)
	fs.StringVar(&cfg.Locale, "locale", "en-US", "locale for error messages")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the ledger command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	shutdown, err := otel.Setup(ctx, "elysium-ledger")
	if err != nil {
		return err
	}
	defer shutdown(ctx)

	a, err := app.New(ctx, cfg.App)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Levels {
		return userFacing(listLevels(ctx, cfg, a, out), cfg.Locale)
	}
	if cfg.Events {
		return userFacing(listEvents(ctx, cfg, a, out), cfg.Locale)
	}
	return fmt.Errorf("nothing to do: pass -levels or -events")
}

// userFacing localizes a service error so shell users read the same message
// a client UI would render. Errors without a localized form pass through.
func userFacing(err error, locale string) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(ledgerapi.HandleError(err, locale))
	if !ok {
		return err
	}
	for _, detail := range st.Details() {
		if msg, ok := detail.(*errdetails.LocalizedMessage); ok {
			return fmt.Errorf("%s (%s)", msg.Message, st.Message())
		}
	}
	return err
}

func listLevels(ctx context.Context, cfg Config, a *app.App, out io.Writer) error {
	pageToken := ""
	for {
		page, err := a.Service.ListLevels(ctx, cfg.PageSize, pageToken)
		if err != nil {
			return err
		}
		for _, lvl := range page.Levels {
			state := "inactive"
			if lvl.Active {
				state = "active"
			}
			fmt.Fprintf(out, "%d\t%s\t%s\t%s\tnext=%d\n",
				lvl.ID, lvl.Name, lvl.Archetype, state, lvl.NextLevel)
		}
		if page.NextPageToken == "" {
			return nil
		}
		pageToken = page.NextPageToken
	}
}

func listEvents(ctx context.Context, cfg Config, a *app.App, out io.Writer) error {
	filter := cfg.Filter
	if cfg.GameID != 0 {
		scope := fmt.Sprintf("game_id = %d", cfg.GameID)
		if filter == "" {
			filter = scope
		} else {
			filter = fmt.Sprintf("(%s) AND %s", filter, scope)
		}
	}
	res, err := a.Service.ListEventsPage(ctx, filter, cfg.AfterSeq, cfg.PageSize, cfg.Descending)
	if err != nil {
		return err
	}
	for _, evt := range res.Events {
		fmt.Fprintf(out, "%d\t%s\t%s\tgame=%d\tlevel=%d\tplayer=%s\t%s\n",
			evt.Seq, evt.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
			evt.Type, evt.GameID, evt.Level, evt.PlayerID, evt.PayloadJSON)
	}
	if res.HasNextPage {
		fmt.Fprintf(out, "# %d of %d events; continue with -after %d\n",
			len(res.Events), res.TotalCount, res.Events[len(res.Events)-1].Seq)
	}
	return nil
}
