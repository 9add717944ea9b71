package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/courtside-app/courtside/internal/app"
	"github.com/courtside-app/courtside/internal/config"
	"github.com/courtside-app/courtside/internal/event"
	"github.com/courtside-app/courtside/internal/realtime"
	"github.com/courtside-app/courtside/internal/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch <topic>...",
	Short: "Subscribe to live changes of one or more tables",
	Long: `Subscribe to live changes of one or more backend tables.

Each topic is requested from the coordinator. When standard output is a
terminal a live dashboard is shown; otherwise, or with --plain, one line is
printed per change and per subscription lifecycle event.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

const lifecycleTimeout = 15 * time.Second

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().String("scope", "", "scope for the requested subscriptions (default from config)")
	watchCmd.Flags().Int("priority", 0, "priority for the requested subscriptions (default from config)")
	watchCmd.Flags().Bool("plain", false, "print lines instead of the dashboard")
}

func runWatch(cmd *cobra.Command, topics []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var (
		coord *realtime.Coordinator
		bus   *event.Bus
	)
	application := app.New(cfg, fx.Populate(&coord, &bus))
	if err := application.Err(); err != nil {
		return err
	}

	startCtx, cancelStart := context.WithTimeout(cmd.Context(), lifecycleTimeout)
	defer cancelStart()
	if err := application.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancelStop := context.WithTimeout(context.Background(), lifecycleTimeout)
		defer cancelStop()
		_ = application.Stop(stopCtx)
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := &syncWriter{w: cmd.OutOrStdout()}
	plain, _ := cmd.Flags().GetBool("plain")
	interactive := !plain && isTerminal(cmd.OutOrStdout())

	var opts []realtime.RequestOption
	if cmd.Flags().Changed("scope") {
		scope, _ := cmd.Flags().GetString("scope")
		opts = append(opts, realtime.WithScope(scope))
	}
	if cmd.Flags().Changed("priority") {
		priority, _ := cmd.Flags().GetInt("priority")
		opts = append(opts, realtime.WithPriority(priority))
	}

	var feed *tui.Feed
	if interactive {
		feed = tui.NewFeed(bus, tui.DefaultFeedSize)
		defer feed.Close()
	} else {
		id := bus.SubscribeAll(func(e event.Event) {
			if e.EventType() == event.TypeSubscriptionChanged {
				return
			}
			out.printf("%s %s\n", e.Timestamp().Format(time.TimeOnly), tui.Describe(e))
		})
		defer bus.Unsubscribe(id)
	}

	for _, topic := range topics {
		onChange := func() {}
		if !interactive {
			onChange = changePrinter(out, topic)
		}
		if _, err := coord.Request(topic, onChange, opts...); err != nil {
			return fmt.Errorf("request %s: %w", topic, err)
		}
	}

	if interactive {
		return runDashboard(ctx, coord, feed)
	}

	<-ctx.Done()
	return nil
}

// runDashboard shows the bubbletea dashboard until the user quits or ctx
// ends.
func runDashboard(ctx context.Context, coord *realtime.Coordinator, feed *tui.Feed) error {
	program := tea.NewProgram(tui.New(coord, feed), tea.WithAltScreen())

	ctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		_, err := program.Run()
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		program.Quit()
		return nil
	})
	return g.Wait()
}

func changePrinter(out *syncWriter, topic string) realtime.Callback {
	return func() {
		out.printf("%s %s changed\n", time.Now().Format(time.TimeOnly), topic)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// syncWriter serializes writes from callbacks running on different
// goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}
