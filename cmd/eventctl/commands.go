package main

import (
	"context"
	"flag"
	"fmt"
	"html"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/eventboard/eventboard/internal/booking"
	"github.com/eventboard/eventboard/internal/calendar"
	"github.com/eventboard/eventboard/internal/model"
	"github.com/eventboard/eventboard/internal/query"
	"github.com/eventboard/eventboard/internal/reconcile"
)

func newFlagSet(s *session, name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(s.out)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: eventctl %s %s\n\nOptions:\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

func parseCategory(raw string) (model.Category, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	c, ok := model.ParseCategory(raw)
	if !ok {
		return "", &model.ValidationError{Kind: model.KindInvalidPayload, Field: "category", Message: "Unknown category: " + raw}
	}
	return c, nil
}

func requireArg(fs *flag.FlagSet, what string) (string, error) {
	if fs.NArg() == 0 || strings.TrimSpace(fs.Arg(0)) == "" {
		return "", model.MissingField(what)
	}
	return fs.Arg(0), nil
}

// ─── Events ───────────────────────────────────────────────────────────────────

func cmdList(s *session, args []string) error {
	fs := newFlagSet(s, "list", "[-category C] [-city NAME] [-all]")
	category := fs.String("category", "", "Only events of this category")
	city := fs.String("city", "", "Only events in this city (local or English name)")
	all := fs.Bool("all", false, "All-events view: skip incomplete records")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cat, err := parseCategory(*category)
	if err != nil {
		return err
	}

	events, err := s.rec.Query(context.Background(), reconcile.Query{
		Category:  cat,
		City:      *city,
		Aggregate: *all,
	})
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(s.out, "No events found.")
		return nil
	}
	return printEvents(s.out, events)
}

func cmdShow(s *session, args []string) error {
	fs := newFlagSet(s, "show", "ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireArg(fs, "id")
	if err != nil {
		return err
	}

	ev, err := s.rec.Get(context.Background(), id)
	if err != nil {
		return err
	}
	printEvent(s.out, ev, s.book.IsFavorite(ev.ID))
	return nil
}

func cmdCreate(s *session, args []string) error {
	fs := newFlagSet(s, "create", "-title T -organizer O -date YYYY-MM-DD -time HH:MM -location L -description D -email E [options]")
	var req model.CreateEventRequest
	fs.StringVar(&req.Title, "title", "", "Event title")
	fs.StringVar(&req.Organizer, "organizer", "", "Organizer name")
	fs.StringVar(&req.Date, "date", "", "Date, YYYY-MM-DD")
	fs.StringVar(&req.Time, "time", "", "Start time, HH:MM")
	fs.StringVar(&req.Location, "location", "", "Location")
	fs.StringVar(&req.Description, "description", "", "Description")
	fs.StringVar(&req.Email, "email", "", "Contact email")
	fs.StringVar(&req.Phone, "phone", "", "Contact phone")
	fs.StringVar(&req.Category, "category", string(model.DefaultCategory), "Category")
	fs.StringVar(&req.Image, "image", "", "Picture URL")
	price := fs.String("price", "0", "Ticket price in EUR")
	capacity := fs.String("capacity", "", "Number of spots (empty for unlimited)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	req.Price = numberFlag(*price)
	req.Capacity = numberFlag(*capacity)

	ev, err := s.rec.Create(context.Background(), req)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Event created successfully (id %s)\n", ev.ID)
	return nil
}

func numberFlag(raw string) model.Number {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return model.Number{}
	}
	return model.NumberOf(f)
}

func cmdDelete(s *session, args []string) error {
	fs := newFlagSet(s, "delete", "ID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireArg(fs, "id")
	if err != nil {
		return err
	}

	if err := s.rec.Delete(context.Background(), id); err != nil {
		return err
	}
	s.book.RemoveFavorite(id)
	fmt.Fprintln(s.out, "Event deleted successfully")
	return nil
}

func cmdExport(s *session, args []string) error {
	fs := newFlagSet(s, "export", "[-category C] [-o FILE]")
	category := fs.String("category", "", "Only events of this category")
	output := fs.String("o", "", "Write to FILE instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cat, err := parseCategory(*category)
	if err != nil {
		return err
	}
	events, err := s.rec.Query(context.Background(), reconcile.Query{Category: cat, Aggregate: cat == ""})
	if err != nil {
		return err
	}

	feed := calendar.Export(events, s.loc, time.Now())
	if *output == "" {
		_, err := io.WriteString(s.out, feed)
		return err
	}
	if err := os.WriteFile(*output, []byte(feed), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *output, err)
	}
	fmt.Fprintf(s.out, "Wrote %d events to %s\n", len(events), *output)
	return nil
}

func cmdCities(s *session, args []string) error {
	fs := newFlagSet(s, "cities", "[NAME]")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CITY\tENGLISH\tKEY FEATURES")
		for _, c := range s.cities {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.NameEn, strings.Join(c.Characteristics, ", "))
		}
		return tw.Flush()
	}

	name := strings.Join(fs.Args(), " ")
	c, ok := query.LookupCity(s.cities, name)
	if !ok {
		return &model.ValidationError{Kind: model.KindInvalidPayload, Field: "city", Message: "Unknown city: " + name}
	}
	fmt.Fprintf(s.out, "%s (%s)\n  %s\n  Key features: %s\n\n",
		c.Name, c.NameEn, c.Description, strings.Join(c.Characteristics, ", "))

	events, err := s.rec.Query(context.Background(), reconcile.Query{City: c.Name})
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintf(s.out, "No events found for this city. Be the first to create an event in %s!\n", c.Name)
		return nil
	}
	return printEvents(s.out, events)
}

// ─── Favorites and reservations ───────────────────────────────────────────────

func cmdFav(s *session, args []string) error {
	if len(args) == 0 {
		return model.MissingField("action")
	}
	action, rest := args[0], args[1:]

	switch action {
	case "list":
		favs := s.book.Favorites()
		if len(favs) == 0 {
			fmt.Fprintln(s.out, "No favorite events yet.")
			return nil
		}
		return printEvents(s.out, favs)
	case "add", "remove":
		if len(rest) == 0 {
			return model.MissingField("id")
		}
		id := rest[0]
		if action == "remove" {
			if s.book.RemoveFavorite(id) {
				fmt.Fprintln(s.out, "Removed from favorites")
			} else {
				fmt.Fprintln(s.out, "Not in favorites")
			}
			return nil
		}
		ev, err := s.rec.Get(context.Background(), id)
		if err != nil {
			return err
		}
		if s.book.AddFavorite(ev) {
			fmt.Fprintln(s.out, "Added to favorites")
		} else {
			fmt.Fprintln(s.out, "Already in favorites")
		}
		return nil
	default:
		return &model.ValidationError{Kind: model.KindInvalidPayload, Message: "Unknown fav action: " + action}
	}
}

func cmdReserve(s *session, args []string) error {
	fs := newFlagSet(s, "reserve", "-card NUMBER -expiry MM/YY -cvv CVV -name NAME ID")
	var p booking.Payment
	fs.StringVar(&p.CardNumber, "card", "", "Card number")
	fs.StringVar(&p.Expiry, "expiry", "", "Expiry date, MM/YY")
	fs.StringVar(&p.CVV, "cvv", "", "Card security code")
	fs.StringVar(&p.CardName, "name", "", "Cardholder name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := requireArg(fs, "eventId")
	if err != nil {
		return err
	}

	res, err := s.book.Reserve(context.Background(), id, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Payment successful! Your reservation is confirmed.\nReservation %s, %.2f EUR\n", res.ReservationID, res.Amount)
	return nil
}

func cmdReservations(s *session, args []string) error {
	if len(args) > 0 {
		if args[0] != "cancel" {
			return &model.ValidationError{Kind: model.KindInvalidPayload, Message: "Unknown reservations action: " + args[0]}
		}
		if len(args) < 2 {
			return model.MissingField("reservationId")
		}
		if s.book.CancelReservation(args[1]) {
			fmt.Fprintln(s.out, "Reservation cancelled")
		} else {
			fmt.Fprintln(s.out, "No such reservation")
		}
		return nil
	}

	res := s.book.Reservations(context.Background())
	if len(res) == 0 {
		fmt.Fprintln(s.out, "No reservations yet.")
		return nil
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RESERVATION\tEVENT\tAMOUNT\tRESERVED AT\tSTATUS")
	for _, r := range res {
		fmt.Fprintf(tw, "%s\t%s\t%.2f EUR\t%s\t%s\n",
			r.ReservationID, html.UnescapeString(r.EventTitle), r.Amount, r.ReservedAt, r.PaymentStatus)
	}
	return tw.Flush()
}

// ─── Output ───────────────────────────────────────────────────────────────────

func formatPrice(ev model.Event) string {
	if ev.IsFree() {
		return "Free"
	}
	return fmt.Sprintf("%.2f EUR", ev.Price)
}

func printEvents(w io.Writer, events []model.Event) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTIME\tCATEGORY\tTITLE\tLOCATION\tPRICE")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date, e.Time, e.Category,
			html.UnescapeString(e.Title), html.UnescapeString(e.Location), formatPrice(e))
	}
	return tw.Flush()
}

func printEvent(w io.Writer, e model.Event, favorite bool) {
	fmt.Fprintf(w, "%s\n", html.UnescapeString(e.Title))
	fmt.Fprintf(w, "  When:       %s %s\n", e.Date, e.Time)
	fmt.Fprintf(w, "  Where:      %s\n", html.UnescapeString(e.Location))
	fmt.Fprintf(w, "  Organizer:  %s\n", html.UnescapeString(e.Organizer))
	fmt.Fprintf(w, "  Category:   %s\n", e.Category)
	fmt.Fprintf(w, "  Price:      %s\n", formatPrice(e))
	if e.Capacity != nil {
		fmt.Fprintf(w, "  Capacity:   %d\n", *e.Capacity)
	}
	fmt.Fprintf(w, "  Contact:    %s", e.Email)
	if e.Phone != nil && *e.Phone != "" {
		fmt.Fprintf(w, ", %s", html.UnescapeString(*e.Phone))
	}
	fmt.Fprintln(w)
	if e.Image != "" {
		fmt.Fprintf(w, "  Image:      %s\n", html.UnescapeString(e.Image))
	}
	if favorite {
		fmt.Fprintln(w, "  ★ In your favorites")
	}
	fmt.Fprintf(w, "\n%s\n", html.UnescapeString(e.Description))
}
