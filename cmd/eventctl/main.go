// cmd/eventctl is the client for the shared event store. Each invocation
// is one session: it opens the local cache, reconciles with the remote
// store, runs a single command and closes the cache again.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/eventboard/eventboard/internal/booking"
	"github.com/eventboard/eventboard/internal/cache"
	"github.com/eventboard/eventboard/internal/config"
	"github.com/eventboard/eventboard/internal/logging"
	"github.com/eventboard/eventboard/internal/model"
	"github.com/eventboard/eventboard/internal/reconcile"
	"github.com/eventboard/eventboard/internal/remote"
)

const usage = `Usage: eventctl [-config FILE] [-v] COMMAND [OPTIONS]

Commands:
  list           list events (-category, -city, -all)
  show ID        show one event
  create         create an event (see eventctl create -h)
  delete ID      delete an event
  fav            add ID | remove ID | list
  reserve ID     reserve a spot with a mock card payment
  reservations   list reservations, or: reservations cancel ID
  export         write an iCalendar feed (-category, -o)
  cities [NAME]  list the city catalogue, or show one city and its events
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// session is the state one command runs against.
type session struct {
	cache  *cache.LocalCache
	rec    *reconcile.Reconciler
	book   *booking.Service
	cities []model.City
	out    io.Writer
	loc    *time.Location
}

func openSession(cfg *config.Config, out io.Writer) *session {
	opts := cache.Options{}
	if cfg.Client.SeedSamples {
		opts.Samples = cache.DefaultSamples()
	}
	local := cache.Open(cache.NewDirStorage(cfg.Client.CacheDir), opts)

	client := remote.New(cfg.Client.RemoteURL, time.Duration(cfg.Client.TimeoutSeconds)*time.Second)
	cities := cache.DefaultCities()
	rec := reconcile.New(client, local, reconcile.Options{Categories: cfg.Categories(), Cities: cities})

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logging.Warn("unknown timezone, using UTC", "timezone", cfg.Timezone)
		loc = time.UTC
	}

	return &session{
		cache:  local,
		rec:    rec,
		book:   booking.New(rec, local),
		cities: cities,
		out:    out,
		loc:    loc,
	}
}

func (s *session) close() {
	if err := s.cache.Close(); err != nil {
		logging.Error("closing cache", err)
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("eventctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", defaultConfigPath(), "Path to config file")
	verbose := global.Bool("v", false, "Log debug output to stderr")
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		global.Usage()
		return 2
	}

	logging.SetOutput(stderr)
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: load config: %v\n", err)
		return 1
	}
	if *verbose {
		logging.SetLevel("debug")
	} else {
		logging.SetLevel("error")
	}

	commands := map[string]func(*session, []string) error{
		"list":         cmdList,
		"show":         cmdShow,
		"create":       cmdCreate,
		"delete":       cmdDelete,
		"fav":          cmdFav,
		"reserve":      cmdReserve,
		"reservations": cmdReservations,
		"export":       cmdExport,
		"cities":       cmdCities,
	}

	name := global.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command %q\n\n%s", name, usage)
		return 2
	}

	s := openSession(cfg, stdout)
	defer s.close()

	if err := cmd(s, global.Args()[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "Error: %s\n", userMessage(err))
		return 1
	}
	return 0
}

// userMessage turns the error taxonomy into the short texts shown to users.
func userMessage(err error) string {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, model.ErrNotFound):
		return "Event not found"
	case errors.Is(err, model.ErrRemoteUnavailable):
		return "Could not reach the event server"
	case errors.Is(err, booking.ErrAlreadyReserved):
		return "You have already reserved a spot for this event"
	case errors.Is(err, booking.ErrNoSpotsAvailable):
		return "No spots available"
	default:
		return err.Error()
	}
}

func defaultConfigPath() string {
	if v := os.Getenv("EVENTBOARD_CONFIG"); v != "" {
		return v
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "eventboard", "config.yaml")
	}
	return "eventboard.yaml"
}
