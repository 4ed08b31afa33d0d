// Package notify emails subscribers about newly created postings that match their preferences.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-scraper/internal/geo"
	"github.com/jonathan/job-scraper/internal/types"
)

// DefaultConcurrency bounds simultaneous sends for one posting.
const DefaultConcurrency = 4

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SubscriberSource lists subscribers that should be considered. *db.DB and *db.MemoryStore
// satisfy it.
type SubscriberSource interface {
	ListActiveSubscribers(ctx context.Context) ([]types.Subscriber, error)
}

// ZipLookup resolves a postal code to a centroid. *geo.ZipTable satisfies it.
type ZipLookup interface {
	Lookup(zip string) (geo.Point, bool)
}

// Notifier matches new postings against subscriber preferences and sends one message per match.
type Notifier struct {
	subscribers SubscriberSource
	sender      Sender
	zips        ZipLookup
	concurrency int
	logger      *slog.Logger
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithZipLookup enables distance filtering.
func WithZipLookup(zips ZipLookup) Option {
	return func(n *Notifier) { n.zips = zips }
}

// WithConcurrency sets how many messages are sent at once.
func WithConcurrency(limit int) Option {
	return func(n *Notifier) {
		if limit > 0 {
			n.concurrency = limit
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// New creates a Notifier.
func New(subscribers SubscriberSource, sender Sender, opts ...Option) *Notifier {
	n := &Notifier{
		subscribers: subscribers,
		sender:      sender,
		concurrency: DefaultConcurrency,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifyNewJob sends rec to every eligible active subscriber and returns how many messages were
// delivered. Individual send failures are logged and do not produce an error; only failing to
// list subscribers does.
func (n *Notifier) NotifyNewJob(ctx context.Context, rec *types.JobRecord) (int, error) {
	if rec == nil || rec.Closed {
		return 0, nil
	}
	subs, err := n.subscribers.ListActiveSubscribers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list subscribers: %w", err)
	}

	msg := Compose(rec)
	results := make([]bool, len(subs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)
	for i := range subs {
		sub := subs[i]
		if !n.Eligible(&sub, rec) {
			continue
		}
		g.Go(func() error {
			m := msg
			m.To = sub.Email
			if err := n.sender.Send(gctx, m); err != nil {
				n.logger.Warn("failed to send job notification",
					"email", sub.Email, "apply_link", rec.ApplyLink, "error", err)
				return nil
			}
			results[i] = true
			return nil
		})
	}
	_ = g.Wait()

	sent := 0
	for _, ok := range results {
		if ok {
			sent++
		}
	}
	n.logger.Info("job notifications sent", "apply_link", rec.ApplyLink, "sent", sent)
	return sent, nil
}

// Hook adapts NotifyNewJob to the upsert engine's created hook signature.
func (n *Notifier) Hook(ctx context.Context, rec *types.JobRecord) error {
	_, err := n.NotifyNewJob(ctx, rec)
	return err
}

// Eligible reports whether sub wants rec. Distance is only enforced when the subscriber has a
// zip code and radius, the record has coordinates, and the zip code resolves.
func (n *Notifier) Eligible(sub *types.Subscriber, rec *types.JobRecord) bool {
	if !sub.Active {
		return false
	}
	if !sub.WantsJobType(rec.JobType) {
		return false
	}
	if !sub.WantsAnySector(rec.Sectors) {
		return false
	}
	if sub.ZipCode == "" || sub.MaxDistanceMiles == nil || !rec.HasCoordinates() || n.zips == nil {
		return true
	}
	home, ok := n.zips.Lookup(sub.ZipCode)
	if !ok {
		n.logger.Debug("subscriber zip code not found", "zip", sub.ZipCode)
		return true
	}
	miles := geo.Miles(home, geo.Point{Lat: *rec.Latitude, Lon: *rec.Longitude})
	return miles <= float64(*sub.MaxDistanceMiles)
}

// Compose builds the notification for rec without a recipient.
func Compose(rec *types.JobRecord) Message {
	label := rec.JobType.Label()
	formats := make([]string, len(rec.WorkFormat))
	for i, f := range rec.WorkFormat {
		formats[i] = string(f)
	}

	var sb strings.Builder
	sb.WriteString("New Job Alert!\n\n")
	fmt.Fprintf(&sb, "Title: %s\n", rec.Title)
	fmt.Fprintf(&sb, "Organization: %s\n", rec.Organization)
	fmt.Fprintf(&sb, "Job Type: %s\n", label)
	fmt.Fprintf(&sb, "Locations: %s\n", strings.Join(rec.Locations, ", "))
	fmt.Fprintf(&sb, "Work Format: %s\n", strings.Join(formats, ", "))
	fmt.Fprintf(&sb, "Sectors: %s\n\n", strings.Join(rec.Sectors, ", "))
	fmt.Fprintf(&sb, "Apply: %s\n\n", rec.ApplyLink)
	sb.WriteString("---\nThis is an automated notification from Job Scraper.\n")

	return Message{
		Subject: fmt.Sprintf("New %s: %s - %s", label, rec.Organization, rec.Title),
		Body:    sb.String(),
	}
}
